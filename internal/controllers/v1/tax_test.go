package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	v1 "github.com/budgeter/backend/internal/controllers/v1"
	"github.com/budgeter/backend/internal/models"
	"github.com/budgeter/backend/internal/tax"
	"github.com/budgeter/backend/internal/types"
	"github.com/budgeter/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatTax returns a controller that taxes all income at 10%.
func flatTax(t *testing.T) v1.Controller {
	calculator, err := tax.NewCalculator(tax.Brackets{{Low: decimal.Zero, Rate: decimal.RequireFromString("0.1")}}, tax.Rates2025())
	require.Nil(t, err)

	co := v1.New()
	co.Tax = calculator
	return co
}

func estimate(t *testing.T, co v1.Controller, request v1.TaxEstimateRequest, expectedStatus int) v1.TaxEstimateResponse {
	r := test.RequestWith(t, co, http.MethodPost, "http://example.com/v1/tax/estimate", request)
	test.AssertHTTPStatus(t, &r, expectedStatus)

	var response v1.TaxEstimateResponse
	test.DecodeResponse(t, &r, &response)
	return response
}

func (suite *TestSuiteStandard) TestTaxBrackets() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/tax/brackets", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.TaxTablesResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data.Brackets, len(tax.Brackets2025()))
	suite.Assert().True(response.Data.Brackets[0].Low.IsZero())
	suite.Assert().Nil(response.Data.Brackets[len(response.Data.Brackets)-1].High)
	suite.Assert().True(decimal.RequireFromString("0.062").Equal(response.Data.Rates.SocialSecurity))
}

func (suite *TestSuiteStandard) TestTaxEstimate() {
	salary := createTestTransaction(suite.T(), v1.TransactionEditable{Type: models.TransactionDeposit, Category: "income", Amount: decimal.RequireFromString("923.50"), Date: types.NewDate(2025, time.March, 1)})
	freelance := createTestTransaction(suite.T(), v1.TransactionEditable{Type: models.TransactionDeposit, Category: "income", Amount: decimal.RequireFromString("1000"), Date: types.NewDate(2025, time.April, 1)})
	gift := createTestTransaction(suite.T(), v1.TransactionEditable{Type: models.TransactionDeposit, Category: "income", Amount: decimal.RequireFromString("500"), Date: types.NewDate(2025, time.May, 1)})
	createTestTransaction(suite.T(), v1.TransactionEditable{Category: "groceries", Amount: decimal.RequireFromString("70"), Date: types.NewDate(2025, time.May, 2)})

	// Outside of the range
	createTestTransaction(suite.T(), v1.TransactionEditable{Type: models.TransactionDeposit, Amount: decimal.RequireFromString("5000"), Date: types.NewDate(2024, time.December, 31)})

	response := estimate(suite.T(), flatTax(suite.T()), v1.TaxEstimateRequest{
		From:  types.NewDate(2025, time.January, 1),
		Until: types.NewDate(2025, time.December, 31),
		Categorization: tax.Categorization{
			salary.Data.ID:    tax.W2,
			freelance.Data.ID: tax.Form1099,
			gift.Data.ID:      tax.None,
		},
	}, http.StatusOK)

	e := response.Data
	suite.Assert().Equal(3, e.Deposits)
	suite.Assert().Equal(types.NewDate(2025, time.January, 1), e.From)

	tests := []struct {
		name     string
		value    decimal.Decimal
		expected string
	}{
		{"W-2 income", e.W2Income, "923.5"},
		{"W-2 gross", e.W2GrossIncome, "1000"},
		{"Social security withheld", e.W2SocialSecurityWithheld, "62"},
		{"Medicare withheld", e.W2MedicareWithheld, "14.5"},
		{"1099 income", e.Income1099, "1000"},
		{"Total income", e.TotalIncome, "2000"},
		{"Income tax", e.IncomeTax, "200"},
		{"Social security tax", e.SocialSecurityTax, "57.26"},
		{"Medicare tax", e.MedicareTax, "13.39"},
		{"Self-employment tax", e.SelfEmploymentTax, "70.65"},
		{"Total owed", e.TotalTaxOwed, "341.3"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(tt.value), "expected %s, got %s", tt.expected, tt.value)
		})
	}
}

func (suite *TestSuiteStandard) TestTaxEstimateDefaults() {
	year := time.Now().UTC().Year()
	response := estimate(suite.T(), v1.New(), v1.TaxEstimateRequest{}, http.StatusOK)

	suite.Assert().Equal(types.NewDate(year, time.January, 1), response.Data.From)
	suite.Assert().Equal(types.NewDate(year, time.December, 31), response.Data.Until)
	suite.Assert().Equal(0, response.Data.Deposits)
	suite.Assert().True(response.Data.TotalTaxOwed.IsZero())
}

func (suite *TestSuiteStandard) TestTaxEstimateFails() {
	deposit := createTestTransaction(suite.T(), v1.TransactionEditable{Type: models.TransactionDeposit, Amount: decimal.NewFromFloat(100)})
	withdrawal := createTestTransaction(suite.T(), v1.TransactionEditable{})

	from, until := types.NewDate(2025, time.January, 1), types.NewDate(2025, time.December, 31)

	tests := []struct {
		name    string
		request v1.TaxEstimateRequest
		message string
	}{
		{"Until before from", v1.TaxEstimateRequest{From: until, Until: from}, "until must not be before from"},
		{"Invalid category", v1.TaxEstimateRequest{From: from, Until: until, Categorization: tax.Categorization{deposit.Data.ID: "w4"}}, tax.ErrCategoryInvalid.Error()},
		{"Withdrawal", v1.TaxEstimateRequest{From: from, Until: until, Categorization: tax.Categorization{withdrawal.Data.ID: tax.W2}}, tax.ErrWithdrawalCategorized.Error()},
		{"Unknown transaction", v1.TaxEstimateRequest{From: from, Until: until, Categorization: tax.Categorization{uuid.New(): tax.W2}}, "there is no transaction with ID"},
		{"Outside of the range", v1.TaxEstimateRequest{From: from, Until: from, Categorization: tax.Categorization{deposit.Data.ID: tax.W2}}, fmt.Sprintf("there is no transaction with ID %s", deposit.Data.ID)},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			response := estimate(t, v1.New(), tt.request, http.StatusBadRequest)
			assert.Contains(t, *response.Error, tt.message)
		})
	}
}
