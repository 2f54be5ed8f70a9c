package v1_test

import (
	"net/http"
	"testing"
	"time"

	v1 "github.com/budgeter/backend/internal/controllers/v1"
	"github.com/budgeter/backend/internal/models"
	"github.com/budgeter/backend/internal/types"
	"github.com/budgeter/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) createSummaryTransactions() {
	createTestTransaction(suite.T(), v1.TransactionEditable{Category: "groceries", Amount: decimal.RequireFromString("40.25"), Date: types.NewDate(2025, time.January, 3)})
	createTestTransaction(suite.T(), v1.TransactionEditable{Category: "groceries", Amount: decimal.RequireFromString("9.75"), Date: types.NewDate(2025, time.March, 31)})
	createTestTransaction(suite.T(), v1.TransactionEditable{Category: "gas", Amount: decimal.RequireFromString("30"), Date: types.NewDate(2025, time.March, 1)})
	createTestTransaction(suite.T(), v1.TransactionEditable{Type: models.TransactionDeposit, Category: "income", Amount: decimal.RequireFromString("2500"), Date: types.NewDate(2025, time.March, 15)})
}

func (suite *TestSuiteStandard) TestSummaryMonthly() {
	suite.createSummaryTransactions()

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/summaries/monthly?months=3&month=2025-03", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.MonthlySummaryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 3)

	jan, feb, mar := response.Data[0], response.Data[1], response.Data[2]
	suite.Assert().Equal(types.NewMonth(2025, time.January), jan.Month)
	suite.Assert().True(decimal.RequireFromString("40.25").Equal(jan.Spending))
	suite.Assert().True(decimal.RequireFromString("-40.25").Equal(jan.Net))

	// Months without transactions are contained
	suite.Assert().Equal(types.NewMonth(2025, time.February), feb.Month)
	suite.Assert().True(feb.Income.IsZero())
	suite.Assert().True(feb.Spending.IsZero())

	suite.Assert().True(decimal.RequireFromString("2500").Equal(mar.Income))
	suite.Assert().True(decimal.RequireFromString("39.75").Equal(mar.Spending))
	suite.Assert().True(decimal.RequireFromString("2460.25").Equal(mar.Net))
}

func (suite *TestSuiteStandard) TestSummaryMonthlyDefaults() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/summaries/monthly", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.MonthlySummaryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 8)
	suite.Assert().Equal(types.MonthOf(time.Now()), response.Data[7].Month)
}

func (suite *TestSuiteStandard) TestSummaryMonthlyInvalid() {
	for _, query := range []string{"months=0", "months=61", "months=many", "month=2025-13", "month=January"} {
		suite.T().Run(query, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, "http://example.com/v1/summaries/monthly?"+query, "")
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}
}

func (suite *TestSuiteStandard) TestSummarySpendingByCategory() {
	suite.createSummaryTransactions()

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/summaries/spending-by-category?month=2025-03", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.CategorySummaryResponse
	test.DecodeResponse(suite.T(), &r, &response)

	// Deposits do not count, categories are ordered like the catalog
	require.Len(suite.T(), response.Data, 2)
	suite.Assert().Equal("gas", response.Data[0].CategoryID)
	suite.Assert().Equal("Gas", response.Data[0].Label)
	suite.Assert().True(decimal.RequireFromString("30").Equal(response.Data[0].Spending))
	suite.Assert().Equal("groceries", response.Data[1].CategoryID)
	suite.Assert().True(decimal.RequireFromString("9.75").Equal(response.Data[1].Spending))

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/summaries/spending-by-category?month=2025-02", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Len(suite.T(), response.Data, 0)

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/summaries/spending-by-category?month=march", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}
