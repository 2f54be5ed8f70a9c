// Package tax estimates the annual tax liability from categorized income.
package tax

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrConfiguration is the class of all errors in tax configuration.
var ErrConfiguration = errors.New("invalid tax configuration")

// ConfigurationError describes a problem with a bracket table.
type ConfigurationError struct {
	Index  int // Index of the offending bracket, -1 for the whole table
	Reason string
}

func (e ConfigurationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", ErrConfiguration, e.Reason)
	}
	return fmt.Sprintf("%s: bracket %d: %s", ErrConfiguration, e.Index, e.Reason)
}

func (e ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// Bracket taxes the income in [Low, High) at Rate. A nil High is unbounded.
type Bracket struct {
	Low  decimal.Decimal  `json:"low" example:"15000"`
	High *decimal.Decimal `json:"high" example:"26925"`
	Rate decimal.Decimal  `json:"rate" example:"0.1"`
}

// Brackets is a bracket table ordered by Low.
type Brackets []Bracket

// Validate verifies that the table starts at zero, has neither gaps nor
// overlaps, only has rates in [0, 1] and that only the last bracket is unbounded.
func (b Brackets) Validate() error {
	if len(b) == 0 {
		return ConfigurationError{Index: -1, Reason: "the table has no brackets"}
	}

	if !b[0].Low.IsZero() {
		return ConfigurationError{Index: 0, Reason: fmt.Sprintf("the first bracket must start at 0, not %s", b[0].Low)}
	}

	for i, bracket := range b {
		if bracket.Rate.IsNegative() || bracket.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return ConfigurationError{Index: i, Reason: fmt.Sprintf("rate %s is not between 0 and 1", bracket.Rate)}
		}

		if i > 0 {
			prev := b[i-1]
			if prev.High == nil {
				return ConfigurationError{Index: i - 1, Reason: "only the last bracket may be unbounded"}
			}

			switch {
			case bracket.Low.GreaterThan(*prev.High):
				return ConfigurationError{Index: i, Reason: fmt.Sprintf("gap between %s and %s", prev.High, bracket.Low)}
			case bracket.Low.LessThan(*prev.High):
				return ConfigurationError{Index: i, Reason: fmt.Sprintf("overlaps the previous bracket, starts at %s before %s", bracket.Low, prev.High)}
			}
		}

		if bracket.High != nil && !bracket.High.GreaterThan(bracket.Low) {
			return ConfigurationError{Index: i, Reason: fmt.Sprintf("upper bound %s is not above lower bound %s", bracket.High, bracket.Low)}
		}
	}

	if b[len(b)-1].High != nil {
		return ConfigurationError{Index: len(b) - 1, Reason: "the last bracket must be unbounded"}
	}

	return nil
}

// IncomeTax computes the tax on the income with marginal banding: every part
// of the income is taxed at the rate of the bracket it falls into.
//
// The table must be valid, see Brackets.Validate.
func IncomeTax(income decimal.Decimal, brackets Brackets) decimal.Decimal {
	tax := decimal.Zero
	if !income.IsPositive() {
		return tax
	}

	for _, b := range brackets {
		if !income.GreaterThan(b.Low) {
			break
		}

		upper := income
		if b.High != nil && b.High.LessThan(income) {
			upper = *b.High
		}

		tax = tax.Add(upper.Sub(b.Low).Mul(b.Rate))
	}

	return tax
}

func bound(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// standardDeduction is taxed at 0 in the bracket tables.
const standardDeduction = 15000

// Brackets2025 is the 2025 federal table for single filers with the
// standard deduction as a zero rate bracket.
func Brackets2025() Brackets {
	tops := []int64{11925, 48475, 103350, 197300, 250525, 626350}
	rates := []string{"0.10", "0.12", "0.22", "0.24", "0.32", "0.35", "0.37"}

	brackets := Brackets{{Low: decimal.Zero, High: bound(standardDeduction), Rate: decimal.Zero}}
	low := int64(standardDeduction)
	for i, rate := range rates {
		b := Bracket{Low: decimal.NewFromInt(low), Rate: decimal.RequireFromString(rate)}
		if i < len(tops) {
			b.High = bound(standardDeduction + tops[i])
			low = standardDeduction + tops[i]
		}
		brackets = append(brackets, b)
	}

	return brackets
}
