package v1_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/budgeter/backend/internal/bank"
	v1 "github.com/budgeter/backend/internal/controllers/v1"
	"github.com/budgeter/backend/internal/events"
	"github.com/budgeter/backend/internal/models"
	"github.com/budgeter/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBank answers with fixed data for the access token "access-<public token>".
type fakeBank struct {
	balances     map[string][]bank.Account
	transactions map[string][]bank.Transaction
	err          error
}

func (f *fakeBank) CreateLinkToken(_ context.Context, owner uuid.UUID) (string, error) {
	return "link-sandbox-" + owner.String(), f.err
}

func (f *fakeBank) ExchangePublicToken(_ context.Context, publicToken string) (bank.Item, error) {
	if f.err != nil {
		return bank.Item{}, f.err
	}
	return bank.Item{ItemID: "item-" + publicToken, AccessToken: "access-" + publicToken}, nil
}

func (f *fakeBank) Balances(_ context.Context, accessToken string) ([]bank.Account, error) {
	return f.balances[accessToken], f.err
}

func (f *fakeBank) Transactions(_ context.Context, accessToken string, _, _ time.Time) ([]bank.Transaction, error) {
	return f.transactions[accessToken], f.err
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func withBank(t *testing.T, client bank.Client) v1.Controller {
	sealer, err := bank.NewSealer("the sealing secret")
	require.Nil(t, err)

	co := v1.New()
	co.Events = events.LogPublisher{}
	co.Bank = bank.NewService(client, sealer, co.Events, 2, 30*24*time.Hour)
	return co
}

func createTestLinkedItem(t *testing.T, co v1.Controller, publicToken string, expectedStatus ...int) v1.LinkedItemResponse {
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	r := test.RequestWith(t, co, http.MethodPost, "http://example.com/v1/linked-items", v1.LinkedItemCreate{
		PublicToken:     publicToken,
		InstitutionName: "First Platypus Bank",
	})
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.LinkedItemResponse
	test.DecodeResponse(t, &r, &response)
	return response
}

func (suite *TestSuiteStandard) TestLinkedItemsDisabled() {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "http://example.com/v1/linked-items"},
		{http.MethodPost, "http://example.com/v1/linked-items"},
		{http.MethodPost, "http://example.com/v1/linked-items/link-token"},
		{http.MethodGet, "http://example.com/v1/linked-items/balances"},
		{http.MethodPost, "http://example.com/v1/linked-items/sync"},
		{http.MethodDelete, fmt.Sprintf("http://example.com/v1/linked-items/%s", uuid.New())},
	}

	for _, tt := range tests {
		suite.T().Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			r := test.Request(t, tt.method, tt.path, `{ "publicToken": "public" }`)
			test.AssertHTTPStatus(t, &r, http.StatusServiceUnavailable)
			assert.Contains(t, r.Body.String(), bank.ErrDisabled.Error())
		})
	}
}

func (suite *TestSuiteStandard) TestLinkedItemsLink() {
	co := withBank(suite.T(), &fakeBank{})

	item := createTestLinkedItem(suite.T(), co, "public-1")
	suite.Assert().Equal("item-public-1", item.Data.ItemID)
	suite.Assert().Equal("First Platypus Bank", item.Data.InstitutionName)
	suite.Assert().Nil(item.Data.LastSyncedAt)
	suite.Assert().Equal(fmt.Sprintf("http://example.com/v1/linked-items/%s", item.Data.ID), item.Data.Links.Self)

	// The access token is stored sealed
	var stored models.LinkedItem
	require.Nil(suite.T(), models.DB.Scopes(models.ByID(item.Data.ID)).First(&stored).Error)
	suite.Assert().NotEmpty(stored.AccessToken)
	suite.Assert().NotContains(stored.AccessToken, "access-public-1")

	r := test.RequestWith(suite.T(), co, http.MethodGet, "http://example.com/v1/linked-items", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	suite.Assert().NotContains(r.Body.String(), stored.AccessToken)

	var list v1.LinkedItemListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Assert().Len(list.Data, 1)

	// An item can only be linked once
	createTestLinkedItem(suite.T(), co, "public-1", http.StatusBadRequest)

	createTestLinkedItem(suite.T(), co, "", http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestLinkedItemsBankErrors() {
	co := withBank(suite.T(), &fakeBank{err: errors.New("the aggregator is down")})

	createTestLinkedItem(suite.T(), co, "public-1", http.StatusBadGateway)

	r := test.RequestWith(suite.T(), co, http.MethodPost, "http://example.com/v1/linked-items/link-token", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadGateway)

	// Without items, there is nothing to ask the bank for
	r = test.RequestWith(suite.T(), co, http.MethodPost, "http://example.com/v1/linked-items/sync", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.SyncResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Contains(*response.Error, bank.ErrNoLinkedItems.Error())
}

func (suite *TestSuiteStandard) TestLinkedItemsLinkToken() {
	co := withBank(suite.T(), &fakeBank{})

	r := test.RequestWith(suite.T(), co, http.MethodPost, "http://example.com/v1/linked-items/link-token", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.LinkTokenResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().Equal("link-sandbox-"+models.LocalOwner.String(), response.Data.LinkToken)
}

func (suite *TestSuiteStandard) TestLinkedItemsBalancesAndSync() {
	client := &fakeBank{
		balances: map[string][]bank.Account{
			"access-public-1": {
				{ID: "acc-checking", Name: "Plaid Checking", Type: "depository", Subtype: "checking", Current: amount("110.94"), ISOCurrency: "USD"},
				{ID: "acc-card", Name: "Plaid Credit Card", Type: "credit", Subtype: "credit card", Current: amount("-410.00")},
			},
		},
		transactions: map[string][]bank.Transaction{
			"access-public-1": {
				{ID: "tx-1", AccountID: "acc-checking", Name: "Whole Foods", Amount: decimal.RequireFromString("72.10"), Date: time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), Category: "FOOD_AND_DRINK_GROCERIES"},
				{ID: "tx-2", AccountID: "acc-checking", Name: "Payroll", Amount: decimal.RequireFromString("-2500"), Date: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), Category: "INCOME_WAGES"},
				{ID: "tx-3", AccountID: "acc-card", Name: "Coffee", Amount: decimal.RequireFromString("4.50"), Date: time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC), Pending: true},
			},
		},
	}
	co := withBank(suite.T(), client)
	item := createTestLinkedItem(suite.T(), co, "public-1")

	r := test.RequestWith(suite.T(), co, http.MethodGet, "http://example.com/v1/linked-items/balances", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var balances v1.BalancesResponse
	test.DecodeResponse(suite.T(), &r, &balances)
	require.Len(suite.T(), balances.Data, 1)
	suite.Assert().Equal(item.Data.ID, balances.Data[0].LinkedItemID)
	require.Len(suite.T(), balances.Data[0].Accounts, 2)
	require.NotNil(suite.T(), balances.Data[0].Accounts[0].AccountID)

	// The bank accounts are mirrored as local accounts
	r = test.RequestWith(suite.T(), co, http.MethodGet, "http://example.com/v1/accounts?linked=true", "")
	var accounts v1.AccountListResponse
	test.DecodeResponse(suite.T(), &r, &accounts)
	require.Len(suite.T(), accounts.Data, 2)
	suite.Assert().Equal("Plaid Checking", accounts.Data[0].Name)
	suite.Assert().Equal(models.AccountChecking, accounts.Data[0].Type)
	suite.Assert().True(decimal.RequireFromString("110.94").Equal(accounts.Data[0].Balance))
	suite.Assert().Equal(models.AccountCreditCard, accounts.Data[1].Type)
	suite.Assert().True(decimal.RequireFromString("410").Equal(accounts.Data[1].Balance))

	// Fetching the balances again updates the mirrored accounts
	client.balances["access-public-1"][0].Current = amount("99.99")
	r = test.RequestWith(suite.T(), co, http.MethodGet, "http://example.com/v1/linked-items/balances", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = test.RequestWith(suite.T(), co, http.MethodGet, "http://example.com/v1/accounts?linked=true", "")
	test.DecodeResponse(suite.T(), &r, &accounts)
	require.Len(suite.T(), accounts.Data, 2)
	suite.Assert().True(decimal.RequireFromString("99.99").Equal(accounts.Data[0].Balance))

	sync := func(t *testing.T) bank.SyncResult {
		r := test.RequestWith(t, co, http.MethodPost, "http://example.com/v1/linked-items/sync", "")
		test.AssertHTTPStatus(t, &r, http.StatusOK)

		var response v1.SyncResponse
		test.DecodeResponse(t, &r, &response)
		return *response.Data
	}

	result := sync(suite.T())
	suite.Assert().Equal(1, result.Items)
	suite.Assert().Equal(2, result.Imported)
	suite.Assert().Equal(1, result.Pending)
	suite.Assert().Equal(0, result.Duplicates)
	suite.Assert().Equal([]string{}, result.Unmatched)

	r = test.RequestWith(suite.T(), co, http.MethodGet, "http://example.com/v1/transactions", "")
	var transactions v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &transactions)
	require.Len(suite.T(), transactions.Data, 2)

	groceries := transactions.Data[0]
	suite.Assert().Equal("Whole Foods", groceries.Description)
	suite.Assert().Equal("groceries", groceries.Category)
	suite.Assert().Equal(models.TransactionWithdrawal, groceries.Type)
	suite.Assert().Equal(accounts.Data[0].ID, *groceries.AccountID)

	payroll := transactions.Data[1]
	suite.Assert().Equal(models.TransactionDeposit, payroll.Type)
	suite.Assert().True(decimal.NewFromFloat(2500).Equal(payroll.Amount))

	// A second sync finds the same transactions
	result = sync(suite.T())
	suite.Assert().Equal(0, result.Imported)
	suite.Assert().Equal(2, result.Duplicates)

	r = test.RequestWith(suite.T(), co, http.MethodGet, "http://example.com/v1/linked-items", "")
	var items v1.LinkedItemListResponse
	test.DecodeResponse(suite.T(), &r, &items)
	suite.Assert().NotNil(items.Data[0].LastSyncedAt)
}

func (suite *TestSuiteStandard) TestLinkedItemsDelete() {
	client := &fakeBank{
		balances: map[string][]bank.Account{
			"access-public-1": {{ID: "acc-checking", Name: "Plaid Checking", Type: "depository", Subtype: "checking", Current: amount("10")}},
		},
	}
	co := withBank(suite.T(), client)
	item := createTestLinkedItem(suite.T(), co, "public-1")

	r := test.RequestWith(suite.T(), co, http.MethodGet, "http://example.com/v1/linked-items/balances", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = test.RequestWith(suite.T(), co, http.MethodOptions, item.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	suite.Assert().Equal("OPTIONS, DELETE", r.Header().Get("allow"))

	r = test.RequestWith(suite.T(), co, http.MethodDelete, item.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.RequestWith(suite.T(), co, http.MethodDelete, item.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	// The mirrored account is kept as a local account
	r = test.RequestWith(suite.T(), co, http.MethodGet, "http://example.com/v1/accounts", "")
	var accounts v1.AccountListResponse
	test.DecodeResponse(suite.T(), &r, &accounts)
	require.Len(suite.T(), accounts.Data, 1)
	suite.Assert().Nil(accounts.Data[0].LinkedItemID)
	suite.Assert().True(accounts.Data[0].Active)
}
