// Package budgeting computes the state of budgets from plain records.
//
// Nothing in here touches the database, callers load the records and hand them in.
package budgeting

import (
	"time"

	"github.com/budgeter/backend/internal/types"
	"github.com/google/uuid"
)

// Period is an inclusive range of calendar days.
type Period struct {
	Start types.Date
	End   types.Date
}

// Valid reports if the period does not end before it starts.
func (p Period) Valid() bool {
	return !p.End.Before(p.Start)
}

// Contains reports if the time instant falls on one of the days of the period.
func (p Period) Contains(t time.Time) bool {
	d := types.DateOf(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Overlaps reports if both periods share at least one day.
func (p Period) Overlaps(o Period) bool {
	return !p.Start.After(o.End) && !p.End.Before(o.Start)
}

// Dated is a budget period with the ID of the budget it belongs to.
type Dated struct {
	BudgetID uuid.UUID
	Period   Period
}

// FirstOverlap returns the first of the existing periods that overlaps the
// candidate, ignoring the budget with the ID exclude.
func FirstOverlap(existing []Dated, candidate Period, exclude uuid.UUID) (Dated, bool) {
	for _, e := range existing {
		if e.BudgetID == exclude && exclude != uuid.Nil {
			continue
		}

		if e.Period.Overlaps(candidate) {
			return e, true
		}
	}

	return Dated{}, false
}
