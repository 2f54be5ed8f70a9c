package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	v1 "github.com/budgeter/backend/internal/controllers/v1"
	"github.com/budgeter/backend/internal/models"
	"github.com/budgeter/backend/internal/types"
	"github.com/budgeter/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestBudget(t *testing.T, b v1.BudgetEditable, expectedStatus ...int) v1.BudgetResponse {
	if b.Name == "" {
		b.Name = uuid.NewString()
	}

	if b.StartDate.IsZero() {
		b.StartDate = types.NewDate(2025, time.January, 1)
	}

	if b.EndDate.IsZero() {
		b.EndDate = types.NewDate(2025, time.January, 31)
	}

	// Default to 201 Created as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/budgets", []v1.BudgetEditable{b})
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.BudgetCreateResponse
	test.DecodeResponse(t, &r, &response)

	if r.Code == http.StatusCreated {
		return response.Data[0]
	}

	return v1.BudgetResponse{}
}

func groceries(budgeted string) []v1.AllocationEditable {
	return []v1.AllocationEditable{{CategoryID: "groceries", Budgeted: decimal.RequireFromString(budgeted)}}
}

func (suite *TestSuiteStandard) TestBudgetsCreate() {
	b := createTestBudget(suite.T(), v1.BudgetEditable{
		Name: "January",
		Allocations: []v1.AllocationEditable{
			{CategoryID: "dining", Budgeted: decimal.NewFromFloat(100)},
			{CategoryID: "groceries", Budgeted: decimal.NewFromFloat(400)},
		},
	})

	suite.Assert().Equal("January", b.Data.Name)
	suite.Assert().Equal(models.LocalOwner, b.Data.OwnerID)
	suite.Assert().Equal(fmt.Sprintf("http://example.com/v1/budgets/%s", b.Data.ID), b.Data.Links.Self)
	suite.Assert().True(decimal.NewFromFloat(500).Equal(b.Data.TotalBudgeted))
	suite.Assert().True(b.Data.TotalSpent.IsZero())

	// Spend is ordered like the catalog, groceries come before dining
	require.Len(suite.T(), b.Data.Spend, 2)
	suite.Assert().Equal("groceries", b.Data.Spend[0].CategoryID)
	suite.Assert().Equal("Groceries", b.Data.Spend[0].Label)
	suite.Assert().Equal("dining", b.Data.Spend[1].CategoryID)
}

func (suite *TestSuiteStandard) TestBudgetsCreateFails() {
	tests := []struct {
		name   string
		budget v1.BudgetEditable
		status int
	}{
		{"No allocations", v1.BudgetEditable{}, http.StatusCreated},
		{"End before start", v1.BudgetEditable{StartDate: types.NewDate(2025, time.March, 1), EndDate: types.NewDate(2025, time.February, 1)}, http.StatusBadRequest},
		{"Negative allocation", v1.BudgetEditable{Allocations: groceries("-1")}, http.StatusBadRequest},
		{"Category missing", v1.BudgetEditable{Allocations: []v1.AllocationEditable{{CategoryID: " "}}}, http.StatusBadRequest},
		{"Duplicate allocation", v1.BudgetEditable{Allocations: append(groceries("1"), groceries("2")...)}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			createTestBudget(t, tt.budget, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestBudgetsCreateInvalidBody() {
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/budgets", `{ "name": 2 }`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestBudgetsPrimaryOverlap() {
	createTestBudget(suite.T(), v1.BudgetEditable{Primary: true})

	// A non-primary budget can overlap
	createTestBudget(suite.T(), v1.BudgetEditable{StartDate: types.NewDate(2025, time.January, 15), EndDate: types.NewDate(2025, time.February, 14)})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/budgets", []v1.BudgetEditable{
		{Name: "Overlap", Primary: true, StartDate: types.NewDate(2025, time.January, 31), EndDate: types.NewDate(2025, time.February, 27)},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.BudgetCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Contains(*response.Data[0].Error, models.ErrBudgetPrimaryOverlap.Error())

	// Adjacent primary budgets are fine
	createTestBudget(suite.T(), v1.BudgetEditable{Primary: true, StartDate: types.NewDate(2025, time.February, 1), EndDate: types.NewDate(2025, time.February, 28)})
}

func (suite *TestSuiteStandard) TestBudgetsSpend() {
	b := createTestBudget(suite.T(), v1.BudgetEditable{Allocations: groceries("400")})

	createTestTransaction(suite.T(), v1.TransactionEditable{Category: "groceries", Amount: decimal.RequireFromString("23.505"), Date: types.NewDate(2025, time.January, 3)})
	createTestTransaction(suite.T(), v1.TransactionEditable{Category: "groceries", Amount: decimal.RequireFromString("10"), Date: types.NewDate(2025, time.January, 31)})

	// Outside of the period, deposit and unallocated category do not count
	createTestTransaction(suite.T(), v1.TransactionEditable{Category: "groceries", Amount: decimal.RequireFromString("99"), Date: types.NewDate(2025, time.February, 1)})
	createTestTransaction(suite.T(), v1.TransactionEditable{Type: models.TransactionDeposit, Category: "groceries", Amount: decimal.RequireFromString("50"), Date: types.NewDate(2025, time.January, 10)})
	createTestTransaction(suite.T(), v1.TransactionEditable{Category: "dining", Amount: decimal.RequireFromString("12"), Date: types.NewDate(2025, time.January, 10)})

	r := test.Request(suite.T(), http.MethodGet, b.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var budget v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &budget)

	require.Len(suite.T(), budget.Data.Spend, 1)
	spend := budget.Data.Spend[0]
	suite.Assert().True(decimal.RequireFromString("33.51").Equal(spend.Spent), spend.Spent.String())
	suite.Assert().True(decimal.RequireFromString("366.49").Equal(spend.Remaining), spend.Remaining.String())
	suite.Assert().True(decimal.RequireFromString("33.51").Equal(budget.Data.TotalSpent))
}

// TestBudgetsUnknownCategory verifies that categories outside of the catalog
// are stored as sent and their spend is computed.
func (suite *TestSuiteStandard) TestBudgetsUnknownCategory() {
	b := createTestBudget(suite.T(), v1.BudgetEditable{Allocations: []v1.AllocationEditable{
		{CategoryID: "pet_supplies", Budgeted: decimal.NewFromFloat(50)},
		{CategoryID: "groceries", Budgeted: decimal.NewFromFloat(100)},
	}})

	transaction := createTestTransaction(suite.T(), v1.TransactionEditable{Category: "pet_supplies", Amount: decimal.RequireFromString("12.30"), Date: types.NewDate(2025, time.January, 5)})
	suite.Assert().Equal("pet_supplies", transaction.Data.Category)

	r := test.Request(suite.T(), http.MethodGet, b.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var budget v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &budget)

	// Unknown categories are ordered after the catalog
	require.Len(suite.T(), budget.Data.Spend, 2)
	suite.Assert().Equal("groceries", budget.Data.Spend[0].CategoryID)
	pets := budget.Data.Spend[1]
	suite.Assert().Equal("pet_supplies", pets.CategoryID)
	suite.Assert().Equal("pet_supplies", pets.Label)
	suite.Assert().True(decimal.RequireFromString("12.3").Equal(pets.Spent), pets.Spent.String())
	suite.Assert().True(decimal.RequireFromString("37.7").Equal(pets.Remaining), pets.Remaining.String())

	r = test.Request(suite.T(), http.MethodPatch, b.Data.Links.Self, map[string]any{"allocations": []map[string]string{{"categoryId": "rockets", "budgeted": "10"}}})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &budget)
	require.Len(suite.T(), budget.Data.Spend, 1)
	suite.Assert().Equal("rockets", budget.Data.Spend[0].CategoryID)
}

func (suite *TestSuiteStandard) TestBudgetsExclusion() {
	b := createTestBudget(suite.T(), v1.BudgetEditable{Allocations: groceries("100")})
	t1 := createTestTransaction(suite.T(), v1.TransactionEditable{Category: "groceries", Amount: decimal.NewFromFloat(30), Date: types.NewDate(2025, time.January, 3)})
	createTestTransaction(suite.T(), v1.TransactionEditable{Category: "groceries", Amount: decimal.NewFromFloat(20), Date: types.NewDate(2025, time.January, 4)})

	toggle := func(t *testing.T, expected bool) {
		r := test.Request(t, http.MethodPost, fmt.Sprintf("%s/transactions/%s/toggle-exclusion", b.Data.Links.Self, t1.Data.ID), "")
		test.AssertHTTPStatus(t, &r, http.StatusOK)

		var response v1.ExclusionToggleResponse
		test.DecodeResponse(t, &r, &response)
		assert.Equal(t, expected, response.Data.Excluded)
		assert.Equal(t, b.Data.ID, response.Data.BudgetID)
		assert.Equal(t, t1.Data.ID, response.Data.TransactionID)
	}

	spent := func(t *testing.T) decimal.Decimal {
		r := test.Request(t, http.MethodGet, b.Data.Links.Self, "")
		test.AssertHTTPStatus(t, &r, http.StatusOK)

		var response v1.BudgetResponse
		test.DecodeResponse(t, &r, &response)
		return response.Data.TotalSpent
	}

	suite.Assert().True(decimal.NewFromFloat(50).Equal(spent(suite.T())))

	toggle(suite.T(), true)
	suite.Assert().True(decimal.NewFromFloat(20).Equal(spent(suite.T())))

	// The category transactions carry the flag
	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("%s/categories/groceries/transactions", b.Data.Links.Self), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list v1.BudgetTransactionListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	require.Len(suite.T(), list.Data, 2)
	suite.Assert().Equal(t1.Data.ID, list.Data[0].ID)
	suite.Assert().True(list.Data[0].Excluded)
	suite.Assert().False(list.Data[1].Excluded)

	toggle(suite.T(), false)
	suite.Assert().True(decimal.NewFromFloat(50).Equal(spent(suite.T())))
}

func (suite *TestSuiteStandard) TestBudgetsExclusionFails() {
	b := createTestBudget(suite.T(), v1.BudgetEditable{Allocations: groceries("100")})
	outside := createTestTransaction(suite.T(), v1.TransactionEditable{Category: "groceries", Amount: decimal.NewFromFloat(30), Date: types.NewDate(2025, time.March, 3)})

	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"Outside of the period", fmt.Sprintf("%s/transactions/%s/toggle-exclusion", b.Data.Links.Self, outside.Data.ID), http.StatusBadRequest},
		{"Unknown transaction", fmt.Sprintf("%s/transactions/%s/toggle-exclusion", b.Data.Links.Self, uuid.New()), http.StatusNotFound},
		{"Unknown budget", fmt.Sprintf("http://example.com/v1/budgets/%s/transactions/%s/toggle-exclusion", uuid.New(), outside.Data.ID), http.StatusNotFound},
		{"Invalid ID", fmt.Sprintf("http://example.com/v1/budgets/nope/transactions/%s/toggle-exclusion", outside.Data.ID), http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, tt.url, "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestBudgetsPrimary() {
	// Without a primary budget for today, the data is empty
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/budgets/primary", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var empty v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &empty)
	suite.Assert().Nil(empty.Data)
	suite.Assert().Nil(empty.Error)
	suite.Assert().Contains(r.Body.String(), `"data":null`)

	today := types.Today()
	createTestBudget(suite.T(), v1.BudgetEditable{Name: "Not primary", StartDate: today.AddDays(-1), EndDate: today.AddDays(1)})
	b := createTestBudget(suite.T(), v1.BudgetEditable{Name: "Current", Primary: true, StartDate: today, EndDate: today.AddDays(30), Allocations: groceries("10")})

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/budgets/primary", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal(b.Data.ID, response.Data.ID)
	suite.Assert().Len(response.Data.Allocations, 1)
}

func (suite *TestSuiteStandard) TestBudgetsGetFilter() {
	createTestBudget(suite.T(), v1.BudgetEditable{Name: "January", Primary: true})
	createTestBudget(suite.T(), v1.BudgetEditable{Name: "February", StartDate: types.NewDate(2025, time.February, 1), EndDate: types.NewDate(2025, time.February, 28)})
	createTestBudget(suite.T(), v1.BudgetEditable{Name: "Q1", StartDate: types.NewDate(2025, time.January, 1), EndDate: types.NewDate(2025, time.March, 31)})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"All", "", 3},
		{"Name", "name=February", 1},
		{"Primary", "primary=true", 1},
		{"Not primary", "primary=false", 2},
		{"Date", "date=2025-02-14", 2},
		{"Limit", "limit=1", 1},
		{"Offset", "offset=2", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/budgets?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.BudgetListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.len)
			assert.Equal(t, int64(3), response.Pagination.Total)
		})
	}

	// Ordered by start date, then name
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/budgets", "")
	var response v1.BudgetListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("January", response.Data[0].Name)
	suite.Assert().Equal("Q1", response.Data[1].Name)
	suite.Assert().Equal("February", response.Data[2].Name)
}

func (suite *TestSuiteStandard) TestBudgetsUpdate() {
	b := createTestBudget(suite.T(), v1.BudgetEditable{Name: "Before", Allocations: groceries("100")})

	// Allocations are kept when they are not set
	r := test.Request(suite.T(), http.MethodPatch, b.Data.Links.Self, map[string]any{"name": "After"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("After", response.Data.Name)
	require.Len(suite.T(), response.Data.Allocations, 1)

	r = test.Request(suite.T(), http.MethodPatch, b.Data.Links.Self, map[string]any{"allocations": []v1.AllocationEditable{
		{CategoryID: "gas", Budgeted: decimal.NewFromFloat(60)},
		{CategoryID: "travel", Budgeted: decimal.NewFromFloat(200)},
	}})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data.Allocations, 2)
	suite.Assert().True(decimal.NewFromFloat(260).Equal(response.Data.TotalBudgeted))
}

func (suite *TestSuiteStandard) TestBudgetsUpdateFails() {
	b := createTestBudget(suite.T(), v1.BudgetEditable{})

	tests := []struct {
		name   string
		url    string
		body   any
		status int
	}{
		{"Invalid body", b.Data.Links.Self, `{ "name": 2 }`, http.StatusBadRequest},
		{"End before start", b.Data.Links.Self, map[string]any{"endDate": "2024-12-31"}, http.StatusBadRequest},
		{"Category missing", b.Data.Links.Self, map[string]any{"allocations": []map[string]string{{"categoryId": ""}}}, http.StatusBadRequest},
		{"Unknown budget", fmt.Sprintf("http://example.com/v1/budgets/%s", uuid.New()), map[string]any{"name": "x"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPatch, tt.url, tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestBudgetsDelete() {
	b := createTestBudget(suite.T(), v1.BudgetEditable{Allocations: groceries("100")})

	r := test.Request(suite.T(), http.MethodDelete, b.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, b.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

// TestBudgetsDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestBudgetsDBClosed() {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"Creation fails", func(t *testing.T) {
			createTestBudget(t, v1.BudgetEditable{}, http.StatusInternalServerError)
		}},
		{"GET fails", func(t *testing.T) {
			recorder := test.Request(t, http.MethodGet, "http://example.com/v1/budgets", "")
			test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)

			var response v1.BudgetListResponse
			test.DecodeResponse(t, &recorder, &response)
			assert.Contains(t, *response.Error, models.ErrGeneral.Error())
		}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			suite.CloseDB()

			tt.test(t)
		})
	}
}
