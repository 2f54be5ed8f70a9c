package models

import (
	"strings"
	"time"

	"github.com/budgeter/backend/internal/budgeting"
	"github.com/budgeter/backend/internal/category"
	"github.com/budgeter/backend/internal/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionDeposit    TransactionType = "deposit"
)

// Transaction is money leaving or entering the owner's accounts.
type Transaction struct {
	DefaultModel
	Owned
	Type        TransactionType
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Category    string          `gorm:"index"`
	Description string
	Date        time.Time `gorm:"index"`
	AccountID   *uuid.UUID
	Account     *Account `gorm:"constraint:OnDelete:SET NULL"`
	ImportHash  string   `gorm:"index"` // The SHA256 hash of a unique combination of values to use in duplicate detection when importing transactions
}

// AfterFind enforces the date to be in UTC.
func (t *Transaction) AfterFind(tx *gorm.DB) (err error) {
	err = t.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	t.Date = t.Date.In(time.UTC)
	return nil
}

// BeforeSave
//   - trims whitespace from string fields
//   - verifies type, amount and date
//   - defaults the category to miscellaneous
func (t *Transaction) BeforeSave(_ *gorm.DB) (err error) {
	t.Description = strings.TrimSpace(t.Description)
	t.Category = strings.TrimSpace(t.Category)
	t.ImportHash = strings.TrimSpace(t.ImportHash)

	if t.Type != TransactionWithdrawal && t.Type != TransactionDeposit {
		return ErrTransactionTypeInvalid
	}

	if !t.Amount.IsPositive() {
		return ErrTransactionAmountInvalid
	}

	if t.Date.IsZero() {
		return ErrTransactionDateMissing
	}
	t.Date = t.Date.In(time.UTC)

	if t.Category == "" {
		t.Category = category.Miscellaneous
	}

	// Ensure that the Account ID is nil and not a pointer to a nil UUID
	if t.AccountID != nil && *t.AccountID == uuid.Nil {
		t.AccountID = nil
	}

	return nil
}

// Spend returns the transaction as input for spend calculations.
func (t Transaction) Spend() budgeting.Transaction {
	return budgeting.Transaction{
		ID:         t.ID,
		OwnerID:    t.OwnerID,
		Withdrawal: t.Type == TransactionWithdrawal,
		Category:   t.Category,
		Amount:     t.Amount,
		Date:       t.Date,
	}
}

// Taxable returns the transaction as input for tax estimation.
func (t Transaction) Taxable() tax.Transaction {
	return tax.Transaction{
		ID:      t.ID,
		Deposit: t.Type == TransactionDeposit,
		Amount:  t.Amount,
	}
}

// Between limits a transaction query to the inclusive range of days. Zero
// dates leave the respective end open.
func Between(from, until time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !from.IsZero() {
			db = db.Where("transactions.date >= date(?)", from)
		}

		if !until.IsZero() {
			db = db.Where("transactions.date < date(?)", until.AddDate(0, 0, 1))
		}

		return db
	}
}
