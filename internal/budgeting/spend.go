package budgeting

import (
	"sort"
	"time"

	"github.com/budgeter/backend/internal/category"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is the part of a transaction that matters for spend.
type Transaction struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Withdrawal bool
	Category   string
	Amount     decimal.Decimal
	Date       time.Time
}

// Allocation is the amount budgeted for a category.
type Allocation struct {
	CategoryID string
	Budgeted   decimal.Decimal
}

// Plan is a budget.
type Plan struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Period      Period
	Allocations []Allocation
}

// Spending is the state of one allocation.
type Spending struct {
	CategoryID string
	Budgeted   decimal.Decimal
	Spent      decimal.Decimal // rounded to cents
}

// Exclusions is a set of transactions excluded from the spend of a budget.
type Exclusions map[exclusionKey]struct{}

type exclusionKey struct {
	budgetID      uuid.UUID
	transactionID uuid.UUID
}

// Add excludes the transaction from the budget.
func (e Exclusions) Add(budgetID, transactionID uuid.UUID) {
	e[exclusionKey{budgetID, transactionID}] = struct{}{}
}

// Remove includes the transaction in the budget again.
func (e Exclusions) Remove(budgetID, transactionID uuid.UUID) {
	delete(e, exclusionKey{budgetID, transactionID})
}

// Has reports if the transaction is excluded from the budget.
func (e Exclusions) Has(budgetID, transactionID uuid.UUID) bool {
	_, ok := e[exclusionKey{budgetID, transactionID}]
	return ok
}

// Counts reports if the transaction counts towards the spend of the plan
// for the category.
func (p Plan) Counts(t Transaction, categoryID string, exclusions Exclusions) bool {
	return t.OwnerID == p.OwnerID &&
		t.Withdrawal &&
		t.Category == categoryID &&
		p.Period.Contains(t.Date) &&
		!exclusions.Has(p.ID, t.ID)
}

// CategorySpend computes the spend for every allocation of the plan.
//
// Allocations without matching transactions are contained with a spend of zero.
// Transactions in categories without allocation are ignored. Amounts are summed
// with full precision and rounded half up to cents once per category.
// The result is ordered like the category catalog.
func CategorySpend(p Plan, transactions []Transaction, exclusions Exclusions) []Spending {
	sums := make(map[string]decimal.Decimal, len(p.Allocations))
	for _, a := range p.Allocations {
		sums[a.CategoryID] = decimal.Zero
	}

	for _, t := range transactions {
		sum, ok := sums[t.Category]
		if !ok || !p.Counts(t, t.Category, exclusions) {
			continue
		}
		sums[t.Category] = sum.Add(t.Amount)
	}

	result := make([]Spending, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		result = append(result, Spending{
			CategoryID: a.CategoryID,
			Budgeted:   a.Budgeted,
			Spent:      sums[a.CategoryID].Round(2),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return category.Less(result[i].CategoryID, result[j].CategoryID)
	})

	return result
}

// SpendAll computes the spend for a batch of plans, keyed by plan ID.
func SpendAll(plans []Plan, transactions []Transaction, exclusions Exclusions) map[uuid.UUID][]Spending {
	result := make(map[uuid.UUID][]Spending, len(plans))
	for _, p := range plans {
		result[p.ID] = CategorySpend(p, transactions, exclusions)
	}
	return result
}

// Totals sums up budgeted and spent amounts.
func Totals(spend []Spending) (budgeted, spent decimal.Decimal) {
	budgeted, spent = decimal.Zero, decimal.Zero
	for _, s := range spend {
		budgeted = budgeted.Add(s.Budgeted)
		spent = spent.Add(s.Spent)
	}
	return budgeted, spent
}
