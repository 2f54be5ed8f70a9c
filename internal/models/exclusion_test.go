package models_test

import (
	"github.com/budgeter/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (suite *TestSuiteStandard) TestToggleExclusion() {
	budget := suite.createTestBudget(models.Budget{StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 31)})
	transaction := suite.createTestTransaction(models.Transaction{Category: "groceries", Date: day(2024, 1, 31).Time()})

	excluded, err := models.ToggleExclusion(models.DB, models.LocalOwner, budget.ID, transaction.ID)
	suite.Require().Nil(err)
	suite.Assert().True(excluded)

	flags, err := models.IsExcluded(models.DB, budget.ID, []uuid.UUID{transaction.ID})
	suite.Require().Nil(err)
	suite.Assert().True(flags[transaction.ID])

	excluded, err = models.ToggleExclusion(models.DB, models.LocalOwner, budget.ID, transaction.ID)
	suite.Require().Nil(err)
	suite.Assert().False(excluded)

	flags, err = models.IsExcluded(models.DB, budget.ID, []uuid.UUID{transaction.ID})
	suite.Require().Nil(err)
	suite.Assert().False(flags[transaction.ID])
}

func (suite *TestSuiteStandard) TestToggleExclusionErrors() {
	budget := suite.createTestBudget(models.Budget{StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 31)})
	transaction := suite.createTestTransaction(models.Transaction{Date: day(2024, 1, 10).Time()})
	outside := suite.createTestTransaction(models.Transaction{Date: day(2024, 2, 1).Time()})
	foreign := suite.createTestTransaction(models.Transaction{Owned: models.Owned{OwnerID: uuid.New()}, Date: day(2024, 1, 10).Time()})

	_, err := models.ToggleExclusion(models.DB, models.LocalOwner, uuid.New(), transaction.ID)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)

	_, err = models.ToggleExclusion(models.DB, models.LocalOwner, budget.ID, uuid.New())
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)

	_, err = models.ToggleExclusion(models.DB, models.LocalOwner, budget.ID, foreign.ID)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)

	_, err = models.ToggleExclusion(models.DB, uuid.New(), budget.ID, transaction.ID)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)

	_, err = models.ToggleExclusion(models.DB, models.LocalOwner, budget.ID, outside.ID)
	suite.Assert().ErrorIs(err, models.ErrExclusionOutsideWindow)
	suite.Assert().ErrorIs(err, models.ErrValidation)
}

// TestToggleExclusionConcurrentCreate verifies that a toggle losing the race
// against a concurrent toggle of the same exclusion toggles it back.
func (suite *TestSuiteStandard) TestToggleExclusionConcurrentCreate() {
	budget := suite.createTestBudget(models.Budget{StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 31)})
	transaction := suite.createTestTransaction(models.Transaction{Date: day(2024, 1, 10).Time()})

	// The first create fails as if another toggle committed the exclusion
	// after the delete found nothing
	conflict := false
	suite.Require().Nil(models.DB.Callback().Create().Before("gorm:create").Register("test:exclusion_conflict", func(db *gorm.DB) {
		if db.Statement.Table != "budget_exclusions" || conflict {
			return
		}

		conflict = true
		_ = db.AddError(models.ErrExclusionExists)
	}))

	// The exclusion of the other toggle is visible to the retry
	committed := false
	suite.Require().Nil(models.DB.Callback().Delete().Before("gorm:delete").Register("test:exclusion_committed", func(db *gorm.DB) {
		if db.Statement.Table != "budget_exclusions" || !conflict || committed {
			return
		}

		committed = true
		err := db.Session(&gorm.Session{NewDB: true}).Omit(clause.Associations).Create(&models.BudgetExclusion{BudgetID: budget.ID, TransactionID: transaction.ID}).Error
		if err != nil {
			_ = db.AddError(err)
		}
	}))

	excluded, err := models.ToggleExclusion(models.DB, models.LocalOwner, budget.ID, transaction.ID)
	suite.Require().Nil(err)
	suite.Assert().True(conflict)
	suite.Assert().True(committed)
	suite.Assert().False(excluded, "the retry must toggle the concurrent exclusion back")

	flags, err := models.IsExcluded(models.DB, budget.ID, []uuid.UUID{transaction.ID})
	suite.Require().Nil(err)
	suite.Assert().False(flags[transaction.ID])
}

// An exclusion that already exists when it is created is rejected.
func (suite *TestSuiteStandard) TestExclusionDuplicate() {
	budget := suite.createTestBudget(models.Budget{StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 31)})
	transaction := suite.createTestTransaction(models.Transaction{Date: day(2024, 1, 10).Time()})

	exclusion := models.BudgetExclusion{BudgetID: budget.ID, TransactionID: transaction.ID}
	suite.Require().Nil(models.DB.Create(&exclusion).Error)

	duplicate := models.BudgetExclusion{BudgetID: budget.ID, TransactionID: transaction.ID}
	suite.Assert().ErrorIs(models.DB.Create(&duplicate).Error, models.ErrExclusionExists)
}

func (suite *TestSuiteStandard) TestExclusionTransactionDeleteCascades() {
	budget := suite.createTestBudget(models.Budget{
		StartDate:   day(2024, 1, 1),
		EndDate:     day(2024, 1, 31),
		Allocations: []models.Allocation{{CategoryID: "groceries", Budgeted: decimal.NewFromInt(500)}},
	})
	transaction := suite.createTestTransaction(models.Transaction{Category: "groceries", Date: day(2024, 1, 10).Time()})

	_, err := models.ToggleExclusion(models.DB, models.LocalOwner, budget.ID, transaction.ID)
	suite.Require().Nil(err)

	suite.Require().Nil(models.DB.Delete(&transaction).Error)

	exclusions, err := models.LoadExclusions(models.DB, []uuid.UUID{budget.ID})
	suite.Require().Nil(err)
	suite.Assert().Len(exclusions, 0)
}
