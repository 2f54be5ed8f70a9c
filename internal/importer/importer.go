// Package importer creates transactions from external records, e.g. CSV
// files or bank feeds, without creating duplicates.
package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/budgeter/backend/internal/category"
	"github.com/budgeter/backend/internal/importer/helpers"
	"github.com/budgeter/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Record is a transaction to import.
type Record struct {
	Type        models.TransactionType
	Amount      decimal.Decimal
	Category    string // Free text, normalized on import
	Description string
	Date        time.Time
	AccountID   *uuid.UUID
	Reference   string // Stable ID at the source, e.g. a bank transaction ID. Used for duplicate detection when set.
}

// Result describes what an import did.
type Result struct {
	Imported   []models.Transaction
	Duplicates int      // Records skipped because they were imported before
	Unmatched  []string // Category texts that did not match the catalog
	Backfilled int64    // Transactions whose category was updated by the backfill
}

// ImportHash calculates the hash used to detect duplicates.
func ImportHash(owner uuid.UUID, r Record) string {
	if r.Reference != "" {
		return helpers.Sha256String(strings.Join([]string{owner.String(), r.Reference}, "|"))
	}

	return helpers.Sha256String(strings.Join([]string{
		owner.String(),
		r.Date.In(time.UTC).Format("2006-01-02"),
		r.Amount.String(),
		string(r.Type),
		strings.TrimSpace(r.Description),
	}, "|"))
}

// importHashes returns the hash of each record. Records without a reference
// that have the same values, e.g. two coffees on the same day, are different
// transactions: the hash of the n-th occurrence includes n, so that importing
// the same records again still detects all of them.
func importHashes(owner uuid.UUID, records []Record) []string {
	hashes := make([]string, 0, len(records))
	occurrences := make(map[string]int, len(records))

	for _, r := range records {
		hash := ImportHash(owner, r)
		if r.Reference == "" {
			n := occurrences[hash]
			occurrences[hash]++

			if n > 0 {
				hash = helpers.Sha256String(hash + "|" + strconv.Itoa(n))
			}
		}

		hashes = append(hashes, hash)
	}

	return hashes
}

// Import creates transactions for all records in one database transaction.
// Records that have been imported before are skipped, as are records with a
// reference that appears twice. Afterwards, categories of imported
// transactions are backfilled.
func Import(db *gorm.DB, owner uuid.UUID, records []Record) (Result, error) {
	result := Result{Imported: make([]models.Transaction, 0, len(records))}

	err := db.Transaction(func(tx *gorm.DB) error {
		hashes := importHashes(owner, records)

		seen, err := existingHashes(tx, owner, hashes)
		if err != nil {
			return err
		}

		unmatched := map[string]bool{}
		for i, r := range records {
			if seen[hashes[i]] {
				result.Duplicates++
				continue
			}
			seen[hashes[i]] = true

			id, ok := category.Normalize(r.Category)
			if !ok {
				id = category.Miscellaneous

				if r.Category != "" && !unmatched[r.Category] {
					unmatched[r.Category] = true
					result.Unmatched = append(result.Unmatched, r.Category)
				}
			}

			transaction := models.Transaction{
				Owned:       models.Owned{OwnerID: owner},
				Type:        r.Type,
				Amount:      r.Amount,
				Category:    id,
				Description: r.Description,
				Date:        r.Date,
				AccountID:   r.AccountID,
				ImportHash:  hashes[i],
			}

			err = tx.Create(&transaction).Error
			if err != nil {
				return err
			}

			result.Imported = append(result.Imported, transaction)
		}

		return nil
	})
	if err != nil {
		return Result{}, err
	}

	result.Backfilled, err = BackfillCategories(db, owner)
	if err != nil {
		return Result{}, err
	}

	return result, nil
}

// existingHashes returns the set of hashes that exist for the owner already.
func existingHashes(db *gorm.DB, owner uuid.UUID, hashes []string) (map[string]bool, error) {
	seen := make(map[string]bool, len(hashes))
	if len(hashes) == 0 {
		return seen, nil
	}

	var existing []string
	err := db.
		Model(&models.Transaction{}).
		Scopes(models.OwnedBy(owner)).
		Where("import_hash IN ?", hashes).
		Pluck("import_hash", &existing).Error
	if err != nil {
		return nil, err
	}

	for _, h := range existing {
		seen[h] = true
	}

	return seen, nil
}
