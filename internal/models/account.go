package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCreditCard AccountType = "credit_card"
	AccountInvestment AccountType = "investment"
	AccountOther      AccountType = "other"
)

var accountTypes = []AccountType{AccountChecking, AccountSavings, AccountCreditCard, AccountInvestment, AccountOther}

// Account is a bank account or similar store of money.
type Account struct {
	DefaultModel
	Owned
	Name         string
	Type         AccountType
	Balance      decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Institution  string
	Active       bool       `gorm:"default:true"` // Accounts are deactivated instead of deleted
	LinkedItemID *uuid.UUID `gorm:"index"`
	LinkedItem   *LinkedItem `gorm:"constraint:OnDelete:SET NULL"`
	ExternalID   string      // ID of the account at the bank for linked accounts
}

// BeforeSave trims whitespace and verifies name, type and balance.
func (a *Account) BeforeSave(_ *gorm.DB) (err error) {
	a.Name = strings.TrimSpace(a.Name)
	a.Institution = strings.TrimSpace(a.Institution)

	if a.Name == "" {
		return ErrAccountNameMissing
	}

	if a.Type == "" {
		a.Type = AccountOther
	}

	if !slices.Contains(accountTypes, a.Type) {
		return ErrAccountTypeInvalid
	}

	if a.Balance.IsNegative() {
		return ErrAccountBalanceNegative
	}

	if a.LinkedItemID != nil && *a.LinkedItemID == uuid.Nil {
		a.LinkedItemID = nil
	}

	return nil
}

// Deactivate marks the account as inactive. Its transactions are kept.
func (a *Account) Deactivate(db *gorm.DB) error {
	err := db.Model(a).Update("active", false).Error
	if err != nil {
		return err
	}

	a.Active = false
	return nil
}
