package models_test

import (
	"github.com/budgeter/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestDatabaseNotFound() {
	var budget models.Budget
	err := models.DB.Scopes(models.ByID(uuid.New())).First(&budget).Error

	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
	suite.Assert().Equal("there is no budget matching your query", err.Error())

	var history models.AssetHistory
	err = models.DB.Scopes(models.ByID(uuid.New())).First(&history).Error
	suite.Assert().Equal("there is no asset history matching your query", err.Error())
}

func (suite *TestSuiteStandard) TestDatabaseClosed() {
	suite.CloseDB()

	err := models.DB.Create(&models.Account{Name: "Closed", Owned: models.Owned{OwnerID: models.LocalOwner}}).Error
	suite.Assert().ErrorIs(err, models.ErrGeneral)

	var accounts []models.Account
	err = models.DB.Find(&accounts).Error
	suite.Assert().ErrorIs(err, models.ErrGeneral)
}

func (suite *TestSuiteStandard) TestDatabaseMissingReference() {
	missing := uuid.New()
	err := models.DB.Create(&models.Transaction{
		Owned:     models.Owned{OwnerID: models.LocalOwner},
		Type:      models.TransactionDeposit,
		Amount:    decimal.NewFromInt(12),
		Date:      day(2024, 1, 1).Time(),
		AccountID: &missing,
	}).Error

	suite.Assert().ErrorIs(err, models.ErrReferenceMissing)
	suite.Assert().ErrorIs(err, models.ErrValidation)
}
