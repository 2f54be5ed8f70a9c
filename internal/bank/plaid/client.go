// Package plaid implements bank.Client for the Plaid API.
package plaid

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/budgeter/backend/internal/bank"
	"github.com/google/uuid"
	plaidgo "github.com/plaid/plaid-go/v29/plaid"
	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"
	pageSize   = 500
)

// Environments maps environment names to API base URLs.
var Environments = map[string]plaidgo.Environment{
	"sandbox":     plaidgo.Sandbox,
	"development": plaidgo.Environment("https://development.plaid.com"),
	"production":  plaidgo.Production,
}

// Client calls the Plaid API.
type Client struct {
	api        *plaidgo.APIClient
	clientName string
}

// New creates a client for the environment.
func New(environment, clientID, secret string) (*Client, error) {
	baseURL, ok := Environments[environment]
	if !ok {
		return nil, fmt.Errorf("unknown Plaid environment '%s'", environment)
	}

	return NewWithURL(string(baseURL), clientID, secret), nil
}

// NewWithURL creates a client that sends requests to baseURL.
func NewWithURL(baseURL, clientID, secret string) *Client {
	configuration := plaidgo.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	configuration.AddDefaultHeader("PLAID-SECRET", secret)
	configuration.UseEnvironment(plaidgo.Environment(baseURL))
	configuration.HTTPClient = &http.Client{Timeout: 30 * time.Second}

	return &Client{
		api:        plaidgo.NewAPIClient(configuration),
		clientName: "Budgeter",
	}
}

var _ bank.Client = (*Client)(nil)

// Error is an error returned by the API.
type Error struct {
	Status  int
	Type    string
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("plaid: %s %s: %s", e.Type, e.Code, e.Message)
}

// apiError converts errors of the SDK. Errors without a response, e.g. when
// the connection fails, are wrapped with the operation.
func apiError(operation string, res *http.Response, err error) error {
	if res == nil {
		return fmt.Errorf("plaid: %s: %w", operation, err)
	}

	e := &Error{Status: res.StatusCode, Message: err.Error()}

	if p, perr := plaidgo.ToPlaidError(err); perr == nil {
		e.Type = string(p.GetErrorType())
		e.Code = p.GetErrorCode()
		e.Message = p.GetErrorMessage()
	}

	return e
}

func (c *Client) CreateLinkToken(ctx context.Context, owner uuid.UUID) (string, error) {
	user := plaidgo.LinkTokenCreateRequestUser{ClientUserId: owner.String()}

	request := plaidgo.NewLinkTokenCreateRequest(c.clientName, "en", []plaidgo.CountryCode{plaidgo.COUNTRYCODE_US}, user)
	request.SetProducts([]plaidgo.Products{plaidgo.PRODUCTS_TRANSACTIONS})

	response, res, err := c.api.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", apiError("link token", res, err)
	}

	return response.GetLinkToken(), nil
}

func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (bank.Item, error) {
	request := plaidgo.NewItemPublicTokenExchangeRequest(publicToken)

	response, res, err := c.api.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*request).Execute()
	if err != nil {
		return bank.Item{}, apiError("public token exchange", res, err)
	}

	return bank.Item{ItemID: response.GetItemId(), AccessToken: response.GetAccessToken()}, nil
}

// amount converts a nullable amount of the API.
func amount(v plaidgo.NullableFloat64) *decimal.Decimal {
	f := v.Get()
	if f == nil {
		return nil
	}

	d := decimal.NewFromFloat(*f)
	return &d
}

func (c *Client) Balances(ctx context.Context, accessToken string) ([]bank.Account, error) {
	request := plaidgo.NewAccountsBalanceGetRequest(accessToken)

	response, res, err := c.api.PlaidApi.AccountsBalanceGet(ctx).AccountsBalanceGetRequest(*request).Execute()
	if err != nil {
		return nil, apiError("balances", res, err)
	}

	accounts := make([]bank.Account, 0, len(response.GetAccounts()))
	for _, a := range response.GetAccounts() {
		balances := a.GetBalances()

		accounts = append(accounts, bank.Account{
			ID:          a.GetAccountId(),
			Name:        a.GetName(),
			Type:        string(a.GetType()),
			Subtype:     string(a.GetSubtype()),
			Current:     amount(balances.Current),
			Available:   amount(balances.Available),
			ISOCurrency: balances.GetIsoCurrencyCode(),
			Mask:        a.GetMask(),
		})
	}

	return accounts, nil
}

// Transactions pages through all transactions in the range.
func (c *Client) Transactions(ctx context.Context, accessToken string, start, end time.Time) ([]bank.Transaction, error) {
	request := plaidgo.NewTransactionsGetRequest(accessToken, start.Format(dateLayout), end.Format(dateLayout))

	var transactions []bank.Transaction
	for {
		options := plaidgo.NewTransactionsGetRequestOptions()
		options.SetCount(pageSize)
		options.SetOffset(int32(len(transactions)))
		request.SetOptions(*options)

		response, res, err := c.api.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
		if err != nil {
			return nil, apiError("transactions", res, err)
		}

		for _, t := range response.GetTransactions() {
			date, err := time.Parse(dateLayout, t.GetDate())
			if err != nil {
				return nil, fmt.Errorf("plaid: transaction %s: %w", t.GetTransactionId(), err)
			}

			name := t.GetName()
			if merchant := t.GetMerchantName(); merchant != "" {
				name = merchant
			}

			pfc := t.GetPersonalFinanceCategory()
			category := pfc.GetDetailed()
			if category == "" {
				category = pfc.GetPrimary()
			}

			transactions = append(transactions, bank.Transaction{
				ID:        t.GetTransactionId(),
				AccountID: t.GetAccountId(),
				Name:      name,
				Amount:    decimal.NewFromFloat(t.GetAmount()),
				Date:      date,
				Category:  category,
				Pending:   t.GetPending(),
			})
		}

		if len(response.GetTransactions()) == 0 || len(transactions) >= int(response.GetTotalTransactions()) {
			return transactions, nil
		}
	}
}
