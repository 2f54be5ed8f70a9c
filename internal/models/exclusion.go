package models

import (
	"errors"
	"time"

	"github.com/budgeter/backend/internal/budgeting"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BudgetExclusion removes a transaction from the spend of a budget.
type BudgetExclusion struct {
	BudgetID      uuid.UUID   `gorm:"primaryKey"`
	Budget        Budget      `gorm:"constraint:OnDelete:CASCADE"`
	TransactionID uuid.UUID   `gorm:"primaryKey"`
	Transaction   Transaction `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
}

// LoadExclusions loads the exclusions of all budgets with the IDs.
func LoadExclusions(db *gorm.DB, budgetIDs []uuid.UUID) (budgeting.Exclusions, error) {
	exclusions := budgeting.Exclusions{}
	if len(budgetIDs) == 0 {
		return exclusions, nil
	}

	var rows []BudgetExclusion
	err := db.Where("budget_id IN ?", budgetIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		exclusions.Add(r.BudgetID, r.TransactionID)
	}

	return exclusions, nil
}

// ToggleExclusion excludes the transaction from the spend of the budget or
// includes it again if it is excluded already. It returns if the transaction is
// excluded after the toggle.
//
// Budget and transaction must belong to the owner and the
// transaction must be dated within the budget period.
func ToggleExclusion(db *gorm.DB, owner, budgetID, transactionID uuid.UUID) (excluded bool, err error) {
	excluded, err = toggleExclusion(db, owner, budgetID, transactionID)

	// A concurrent toggle created the exclusion first. Toggle it back.
	if errors.Is(err, ErrExclusionExists) {
		excluded, err = toggleExclusion(db, owner, budgetID, transactionID)
	}

	return excluded, err
}

func toggleExclusion(db *gorm.DB, owner, budgetID, transactionID uuid.UUID) (excluded bool, err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		var budget Budget
		err := tx.Scopes(OwnedBy(owner), ByID(budgetID)).First(&budget).Error
		if err != nil {
			return err
		}

		var transaction Transaction
		err = tx.Scopes(OwnedBy(owner), ByID(transactionID)).First(&transaction).Error
		if err != nil {
			return err
		}

		if !budget.Period().Contains(transaction.Date) {
			return ErrExclusionOutsideWindow
		}

		exclusion := BudgetExclusion{BudgetID: budgetID, TransactionID: transactionID}
		result := tx.Where(&exclusion).Delete(&BudgetExclusion{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			excluded = false
			return nil
		}

		excluded = true
		return tx.Omit(clause.Associations).Create(&exclusion).Error
	})

	return excluded, err
}

// IsExcluded reports which of the transactions are excluded from the budget.
func IsExcluded(db *gorm.DB, budgetID uuid.UUID, transactionIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	excluded := make(map[uuid.UUID]bool, len(transactionIDs))
	if len(transactionIDs) == 0 {
		return excluded, nil
	}

	var rows []BudgetExclusion
	err := db.Where(&BudgetExclusion{BudgetID: budgetID}).Where("transaction_id IN ?", transactionIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		excluded[r.TransactionID] = true
	}

	return excluded, nil
}
