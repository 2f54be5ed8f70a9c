package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeleteOwnerData deletes all resources of the owner.
func DeleteOwnerData(db *gorm.DB, owner uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// Exclusions and allocations are deleted with their budgets and transactions,
		// asset history with the assets
		for _, model := range []any{&Budget{}, &Transaction{}, &Asset{}, &Account{}, &LinkedItem{}} {
			err := tx.Scopes(OwnedBy(owner)).Delete(model).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}
