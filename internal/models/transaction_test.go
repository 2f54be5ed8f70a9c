package models_test

import (
	"testing"
	"time"

	"github.com/budgeter/backend/internal/category"
	"github.com/budgeter/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestTransactionSaveTimeUTC() {
	tz := time.FixedZone("UTC+3", 3*60*60)

	transaction := suite.createTestTransaction(models.Transaction{
		Date: time.Date(2024, 1, 2, 3, 4, 5, 0, tz),
	})
	suite.Assert().Equal(time.UTC, transaction.Date.Location())

	var found models.Transaction
	suite.Require().Nil(models.DB.Scopes(models.ByID(transaction.ID)).First(&found).Error)
	suite.Assert().Equal(time.UTC, found.Date.Location())
	suite.Assert().True(found.Date.Equal(time.Date(2024, 1, 2, 0, 4, 5, 0, time.UTC)))
}

func (suite *TestSuiteStandard) TestTransactionDefaults() {
	transaction := suite.createTestTransaction(models.Transaction{
		Description: "  Coffee  ",
		Date:        day(2024, 3, 1).Time(),
	})

	suite.Assert().Equal("Coffee", transaction.Description)
	suite.Assert().Equal(category.Miscellaneous, transaction.Category)
	suite.Assert().Nil(transaction.AccountID)
}

func (suite *TestSuiteStandard) TestTransactionValidation() {
	tests := []struct {
		name        string
		transaction models.Transaction
		err         error
	}{
		{"Type missing", models.Transaction{Amount: decimal.NewFromInt(1), Date: time.Now()}, models.ErrTransactionTypeInvalid},
		{"Type invalid", models.Transaction{Type: "transfer", Amount: decimal.NewFromInt(1), Date: time.Now()}, models.ErrTransactionTypeInvalid},
		{"Amount zero", models.Transaction{Type: models.TransactionDeposit, Date: time.Now()}, models.ErrTransactionAmountInvalid},
		{"Amount negative", models.Transaction{Type: models.TransactionDeposit, Amount: decimal.NewFromInt(-5), Date: time.Now()}, models.ErrTransactionAmountInvalid},
		{"Date missing", models.Transaction{Type: models.TransactionDeposit, Amount: decimal.NewFromInt(1)}, models.ErrTransactionDateMissing},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			tt.transaction.OwnerID = models.LocalOwner
			err := models.DB.Create(&tt.transaction).Error
			assert.ErrorIs(t, err, tt.err)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionConversions() {
	withdrawal := suite.createTestTransaction(models.Transaction{
		Category: "groceries",
		Amount:   decimal.RequireFromString("12.34"),
		Date:     day(2024, 1, 15).Time(),
	})

	spend := withdrawal.Spend()
	suite.Assert().True(spend.Withdrawal)
	suite.Assert().Equal("groceries", spend.Category)
	suite.Assert().Equal(models.LocalOwner, spend.OwnerID)

	suite.Assert().False(withdrawal.Taxable().Deposit)
}

func (suite *TestSuiteStandard) TestTransactionBetween() {
	for _, d := range []int{1, 10, 20} {
		suite.createTestTransaction(models.Transaction{Date: time.Date(2024, 5, d, 23, 59, 0, 0, time.UTC)})
	}

	var transactions []models.Transaction
	err := models.DB.Scopes(models.Between(day(2024, 5, 10).Time(), day(2024, 5, 20).Time())).Find(&transactions).Error
	suite.Require().Nil(err)
	suite.Assert().Len(transactions, 2)

	var early []models.Transaction
	err = models.DB.Scopes(models.Between(time.Time{}, day(2024, 5, 9).Time())).Find(&early).Error
	suite.Require().Nil(err)
	suite.Assert().Len(early, 1)
}
