package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LinkedItem is a connection to a bank through the bank integration.
type LinkedItem struct {
	DefaultModel
	OwnerID         uuid.UUID `gorm:"uniqueIndex:linked_item_owner_item_id"`
	ItemID          string    `gorm:"uniqueIndex:linked_item_owner_item_id"` // ID of the item at the bank integration
	InstitutionName string
	AccessToken     string // Sealed, see bank.Sealer
	LastSyncedAt    *time.Time
}

// BeforeSave trims whitespace from string fields.
func (i *LinkedItem) BeforeSave(_ *gorm.DB) (err error) {
	i.ItemID = strings.TrimSpace(i.ItemID)
	i.InstitutionName = strings.TrimSpace(i.InstitutionName)
	return nil
}
