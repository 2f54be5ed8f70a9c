package models

import (
	"fmt"
	"strings"

	"github.com/budgeter/backend/internal/budgeting"
	"github.com/budgeter/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Budget plans spending per category for a period of days.
//
// Of all primary budgets of an owner, no two may overlap.
type Budget struct {
	DefaultModel
	Owned
	Name        string
	StartDate   types.Date
	EndDate     types.Date
	Primary     bool         `gorm:"column:is_primary"`
	Allocations []Allocation `gorm:"constraint:OnDelete:CASCADE"`
}

// Allocation is the amount budgeted for a category.
type Allocation struct {
	DefaultModel
	BudgetID   uuid.UUID       `gorm:"uniqueIndex:allocation_budget_category"`
	CategoryID string          `gorm:"uniqueIndex:allocation_budget_category"`
	Budgeted   decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
}

// Period returns the days the budget covers.
func (b Budget) Period() budgeting.Period {
	return budgeting.Period{Start: b.StartDate, End: b.EndDate}
}

// Plan returns the budget as input for spend calculations.
func (b Budget) Plan() budgeting.Plan {
	p := budgeting.Plan{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		Period:      b.Period(),
		Allocations: make([]budgeting.Allocation, 0, len(b.Allocations)),
	}

	for _, a := range b.Allocations {
		p.Allocations = append(p.Allocations, budgeting.Allocation{CategoryID: a.CategoryID, Budgeted: a.Budgeted})
	}

	return p
}

// BeforeSave verifies name and period. For primary budgets, it verifies
// that no other primary budget of the owner overlaps.
func (b *Budget) BeforeSave(tx *gorm.DB) (err error) {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return ErrBudgetNameMissing
	}

	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return ErrBudgetDatesMissing
	}

	if !b.Period().Valid() {
		return ErrBudgetEndBeforeStart
	}

	if !b.Primary {
		return nil
	}

	conflict, found, err := HasOverlappingPrimary(tx, b.OwnerID, b.StartDate, b.EndDate, b.ID)
	if err != nil {
		return err
	}

	if found {
		return fmt.Errorf("%w '%s' (%s, %s to %s)", ErrBudgetPrimaryOverlap, conflict.Name, conflict.ID, conflict.StartDate, conflict.EndDate)
	}

	return nil
}

// BeforeSave trims whitespace and verifies the category and amount.
func (a *Allocation) BeforeSave(_ *gorm.DB) (err error) {
	a.CategoryID = strings.TrimSpace(a.CategoryID)
	if a.CategoryID == "" {
		return ErrAllocationCategoryMissing
	}

	if a.Budgeted.IsNegative() {
		return ErrAllocationAmountNegative
	}

	return nil
}

// HasOverlappingPrimary finds a primary budget of the owner whose period overlaps
// with the candidate period. The budget with the ID exclude is ignored, pass uuid.Nil
// to check all budgets.
func HasOverlappingPrimary(db *gorm.DB, owner uuid.UUID, start, end types.Date, exclude uuid.UUID) (Budget, bool, error) {
	var budgets []Budget
	err := db.Session(&gorm.Session{NewDB: true}).
		Scopes(OwnedBy(owner)).
		Where(&Budget{Primary: true}).
		Find(&budgets).Error
	if err != nil {
		return Budget{}, false, err
	}

	existing := make([]budgeting.Dated, 0, len(budgets))
	byID := make(map[uuid.UUID]Budget, len(budgets))
	for _, b := range budgets {
		existing = append(existing, budgeting.Dated{BudgetID: b.ID, Period: b.Period()})
		byID[b.ID] = b
	}

	conflict, found := budgeting.FirstOverlap(existing, budgeting.Period{Start: start, End: end}, exclude)
	if !found {
		return Budget{}, false, nil
	}

	return byID[conflict.BudgetID], true, nil
}

// Update saves the budget and replaces its allocations with the ones passed,
// all in one database transaction. With nil allocations, the existing ones are kept.
func (b *Budget) Update(db *gorm.DB, allocations []Allocation) error {
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Omit(clause.Associations).Save(b).Error
		if err != nil {
			return err
		}

		if allocations == nil {
			b.Allocations = nil
			return tx.Where(&Allocation{BudgetID: b.ID}).Order("category_id").Find(&b.Allocations).Error
		}

		err = tx.Where(&Allocation{BudgetID: b.ID}).Delete(&Allocation{}).Error
		if err != nil {
			return err
		}

		for i := range allocations {
			allocations[i].ID = uuid.Nil
			allocations[i].BudgetID = b.ID
		}

		if len(allocations) > 0 {
			err = tx.Create(&allocations).Error
			if err != nil {
				return err
			}
		}

		b.Allocations = allocations
		return nil
	})
}

// CurrentPrimary returns the primary budget of the owner that contains the day.
func CurrentPrimary(db *gorm.DB, owner uuid.UUID, day types.Date) (Budget, error) {
	var budget Budget
	err := db.
		Scopes(OwnedBy(owner)).
		Preload("Allocations").
		Where(&Budget{Primary: true}).
		Where("budgets.start_date <= ? AND budgets.end_date >= ?", day, day).
		First(&budget).Error

	return budget, err
}

// BudgetSpend computes the spend of all budgets, keyed by budget ID. The
// allocations need to be loaded.
func BudgetSpend(db *gorm.DB, owner uuid.UUID, budgets []Budget) (map[uuid.UUID][]budgeting.Spending, error) {
	if len(budgets) == 0 {
		return map[uuid.UUID][]budgeting.Spending{}, nil
	}

	plans := make([]budgeting.Plan, 0, len(budgets))
	ids := make([]uuid.UUID, 0, len(budgets))
	start, end := budgets[0].StartDate, budgets[0].EndDate
	for _, b := range budgets {
		plans = append(plans, b.Plan())
		ids = append(ids, b.ID)

		if b.StartDate.Before(start) {
			start = b.StartDate
		}
		if b.EndDate.After(end) {
			end = b.EndDate
		}
	}

	var transactions []Transaction
	err := db.
		Scopes(OwnedBy(owner), Between(start.Time(), end.Time())).
		Where(&Transaction{Type: TransactionWithdrawal}).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	records := make([]budgeting.Transaction, 0, len(transactions))
	for _, t := range transactions {
		records = append(records, t.Spend())
	}

	exclusions, err := LoadExclusions(db, ids)
	if err != nil {
		return nil, err
	}

	return budgeting.SpendAll(plans, records, exclusions), nil
}
