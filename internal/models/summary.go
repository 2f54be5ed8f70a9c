package models

import (
	"github.com/budgeter/backend/internal/category"
	"github.com/budgeter/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// MonthSummary is the sum of income and spending in a month.
type MonthSummary struct {
	Month    types.Month
	Income   decimal.Decimal
	Spending decimal.Decimal
}

// CategorySummary is the spending in a category.
type CategorySummary struct {
	CategoryID string
	Spending   decimal.Decimal
}

// MonthlySummary sums up deposits and withdrawals per month for the number of months
// up to and including the last month. Months are ordered from oldest to newest, months
// without transactions are contained with zero sums.
func MonthlySummary(db *gorm.DB, owner uuid.UUID, last types.Month, months int) ([]MonthSummary, error) {
	if months < 1 {
		months = 1
	}
	first := last.AddDate(0, -(months - 1))

	var transactions []Transaction
	err := db.
		Scopes(OwnedBy(owner), Between(first.FirstDay().Time(), last.LastDay().Time())).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]MonthSummary, months)
	for i := range summaries {
		summaries[i] = MonthSummary{Month: first.AddDate(0, i), Income: decimal.Zero, Spending: decimal.Zero}
	}

	for _, t := range transactions {
		for i := range summaries {
			if !summaries[i].Month.Contains(t.Date) {
				continue
			}

			if t.Type == TransactionDeposit {
				summaries[i].Income = summaries[i].Income.Add(t.Amount)
			} else {
				summaries[i].Spending = summaries[i].Spending.Add(t.Amount)
			}
			break
		}
	}

	return summaries, nil
}

// SpendingByCategory sums up the withdrawals per category in the month. Categories
// not in the catalog count as miscellaneous. Only categories with spending are
// contained, ordered like the catalog.
func SpendingByCategory(db *gorm.DB, owner uuid.UUID, month types.Month) ([]CategorySummary, error) {
	var transactions []Transaction
	err := db.
		Scopes(OwnedBy(owner), Between(month.FirstDay().Time(), month.LastDay().Time())).
		Where(&Transaction{Type: TransactionWithdrawal}).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	sums := map[string]decimal.Decimal{}
	for _, t := range transactions {
		id := category.Classify(t.Category)
		sums[id] = sums[id].Add(t.Amount)
	}

	summaries := make([]CategorySummary, 0, len(sums))
	for id, sum := range sums {
		summaries = append(summaries, CategorySummary{CategoryID: id, Spending: sum})
	}

	slices.SortFunc(summaries, func(a, b CategorySummary) int {
		return category.Position(a.CategoryID) - category.Position(b.CategoryID)
	})

	return summaries, nil
}
