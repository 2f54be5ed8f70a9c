package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type AssetType string

const (
	AssetProperty     AssetType = "property"
	AssetAutomobile   AssetType = "automobile"
	AssetCollectibles AssetType = "collectibles"
	AssetOther        AssetType = "other"
)

var assetTypes = []AssetType{AssetProperty, AssetAutomobile, AssetCollectibles, AssetOther}

// Asset is something of value the owner holds, e.g. a house.
type Asset struct {
	DefaultModel
	Owned
	Name                string
	Type                AssetType
	Valuation           decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	OwnershipPercentage decimal.Decimal `gorm:"type:DECIMAL(7,4)"`
	Note                string
	History             []AssetHistory `gorm:"constraint:OnDelete:CASCADE"`
}

// AssetHistory is a past valuation of an asset.
type AssetHistory struct {
	DefaultModel
	AssetID             uuid.UUID       `gorm:"index"`
	Valuation           decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	OwnershipPercentage decimal.Decimal `gorm:"type:DECIMAL(7,4)"`
	RecordedAt          time.Time
}

// OwnedValue is the share of the valuation owned.
func (a Asset) OwnedValue() decimal.Decimal {
	return a.Valuation.Mul(a.OwnershipPercentage).Div(decimal.NewFromInt(100))
}

// BeforeSave trims whitespace and verifies all values.
func (a *Asset) BeforeSave(_ *gorm.DB) (err error) {
	a.Name = strings.TrimSpace(a.Name)
	a.Note = strings.TrimSpace(a.Note)

	if a.Name == "" {
		return ErrAssetNameMissing
	}

	if !slices.Contains(assetTypes, a.Type) {
		return ErrAssetTypeInvalid
	}

	if a.Valuation.IsNegative() {
		return ErrAssetValuationNegative
	}

	if !a.OwnershipPercentage.IsPositive() || a.OwnershipPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return ErrAssetOwnershipInvalid
	}

	return nil
}

// AfterSave records the valuation when it is new or has changed.
// It runs in the transaction of the save.
func (a *Asset) AfterSave(tx *gorm.DB) (err error) {
	var last AssetHistory
	err = tx.Where(&AssetHistory{AssetID: a.ID}).Order("recorded_at DESC").Limit(1).Find(&last).Error
	if err != nil {
		return err
	}

	if last.ID != uuid.Nil && last.Valuation.Equal(a.Valuation) && last.OwnershipPercentage.Equal(a.OwnershipPercentage) {
		return nil
	}

	return tx.Create(&AssetHistory{
		AssetID:             a.ID,
		Valuation:           a.Valuation,
		OwnershipPercentage: a.OwnershipPercentage,
		RecordedAt:          time.Now().In(time.UTC),
	}).Error
}
