// Package bank connects the budget to bank accounts through an aggregator
// like Plaid. It links bank items, reads balances and imports transactions.
package bank

import (
	"context"
	"errors"
	"time"

	"github.com/budgeter/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrDisabled = errors.New("the bank integration is not enabled")

	ErrNoLinkedItems = models.Validation("there are no linked bank items")
)

// Item is a set of credentials for one institution at the aggregator.
type Item struct {
	ItemID      string
	AccessToken string
}

// Account is a bank account with its balances.
type Account struct {
	ID          string           `json:"id" example:"BxBXxLj1m4HMXBm9WZZmCWVbPjX16EHwv99vp"`                 // ID of the account at the aggregator
	Name        string           `json:"name" example:"Plaid Checking"`                                      // Name of the account
	Type        string           `json:"type" example:"depository"`                                          // Account type, e.g. depository, credit, loan, investment
	Subtype     string           `json:"subtype" example:"checking"`                                         // Account subtype, e.g. checking, savings, credit card
	Current     *decimal.Decimal `json:"current" example:"110.94"`                                           // Current balance
	Available   *decimal.Decimal `json:"available" example:"100.94"`                                         // Available balance
	ISOCurrency string           `json:"isoCurrencyCode" example:"USD"`                                      // ISO-4217 currency code
	Mask        string           `json:"mask,omitempty" example:"0000"`                                      // Last digits of the account number
	AccountID   *uuid.UUID       `json:"accountId,omitempty" example:"4e1a7f4c-9f8a-4bd6-8c55-70e01c1fb1b2"` // ID of the local account mirroring this bank account
}

// Transaction is a posted or pending transaction at the bank.
//
// Amounts are positive when money leaves the account.
type Transaction struct {
	ID        string
	AccountID string
	Name      string
	Amount    decimal.Decimal
	Date      time.Time
	Category  string // Personal finance category, e.g. FOOD_AND_DRINK_GROCERIES
	Pending   bool
}

// Client is the aggregator API.
type Client interface {
	// CreateLinkToken creates a token for the link flow in the frontend.
	CreateLinkToken(ctx context.Context, owner uuid.UUID) (string, error)

	// ExchangePublicToken exchanges the public token from the link flow for an item.
	ExchangePublicToken(ctx context.Context, publicToken string) (Item, error)

	Balances(ctx context.Context, accessToken string) ([]Account, error)

	// Transactions returns all transactions between start and end, both inclusive.
	Transactions(ctx context.Context, accessToken string, start, end time.Time) ([]Transaction, error)
}
