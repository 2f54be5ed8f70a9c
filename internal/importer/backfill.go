package importer

import (
	"github.com/budgeter/backend/internal/category"
	"github.com/budgeter/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackfillCategories replaces free text categories of imported transactions
// with catalog IDs. Transactions created manually are not changed.
//
// It is idempotent, running it again changes nothing. It returns the
// number of updated transactions.
func BackfillCategories(db *gorm.DB, owner uuid.UUID) (int64, error) {
	known := make([]string, 0)
	for _, c := range category.All() {
		known = append(known, c.ID)
	}

	var transactions []models.Transaction
	err := db.
		Scopes(models.OwnedBy(owner)).
		Where("import_hash != ''").
		Where("category NOT IN ?", known).
		Find(&transactions).Error
	if err != nil {
		return 0, err
	}

	var updated int64
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, t := range transactions {
			id, ok := category.Normalize(t.Category)
			if !ok {
				id = category.Miscellaneous
			}

			err := tx.Model(&models.Transaction{}).Scopes(models.ByID(t.ID)).UpdateColumn("category", id).Error
			if err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return updated, nil
}
