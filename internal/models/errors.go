package models

import (
	"errors"
	"fmt"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
	ErrValidation       = errors.New("the request is invalid")
)

// validationError is an error in the input. All of them match ErrValidation.
type validationError string

func (e validationError) Error() string {
	return string(e)
}

func (e validationError) Is(target error) bool {
	return target == ErrValidation
}

const (
	ErrReferenceMissing            = validationError("a referenced resource does not exist")
	ErrTransactionTypeInvalid      = validationError("the transaction type must be one of 'withdrawal' or 'deposit'")
	ErrTransactionAmountInvalid    = validationError("the transaction amount must be greater than 0")
	ErrTransactionDateMissing      = validationError("the transaction date must be set")
	ErrBudgetNameMissing           = validationError("the budget name must be set")
	ErrBudgetDatesMissing          = validationError("the budget start and end date must be set")
	ErrBudgetEndBeforeStart        = validationError("the budget end date must not be before the start date")
	ErrBudgetPrimaryOverlap        = validationError("the budget period overlaps with the primary budget")
	ErrAllocationCategoryMissing   = validationError("the category of a budget allocation must be set")
	ErrAllocationCategoryNotUnique = validationError("a budget can only have one allocation per category")
	ErrAllocationAmountNegative    = validationError("the budgeted amount must not be negative")
	ErrExclusionOutsideWindow      = validationError("the transaction date is not within the budget period")
	ErrExclusionExists             = validationError("the transaction is already excluded from the budget")
	ErrAccountNameMissing          = validationError("the account name must be set")
	ErrAccountTypeInvalid          = validationError("the account type must be one of 'checking', 'savings', 'credit_card', 'investment' or 'other'")
	ErrAccountBalanceNegative      = validationError("the account balance must not be negative")
	ErrAssetNameMissing            = validationError("the asset name must be set")
	ErrAssetTypeInvalid            = validationError("the asset type must be one of 'property', 'automobile', 'collectibles' or 'other'")
	ErrAssetValuationNegative      = validationError("the asset valuation must not be negative")
	ErrAssetOwnershipInvalid       = validationError("the ownership percentage must be greater than 0 and at most 100")
	ErrLinkedItemNotUnique         = validationError("the bank item is already linked")
)

// Validation returns a validation error with the specified message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
