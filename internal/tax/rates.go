package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rates are the flat payroll tax rates.
type Rates struct {
	SocialSecurity       decimal.Decimal `json:"socialSecurity" example:"0.062"`       // Social Security (OASDI) rate per side
	Medicare             decimal.Decimal `json:"medicare" example:"0.0145"`            // Medicare rate per side
	SelfEmploymentFactor decimal.Decimal `json:"selfEmploymentFactor" example:"0.9235"` // Share of 1099 income subject to self-employment tax
}

// Rates2025 returns the 2025 rates.
func Rates2025() Rates {
	return Rates{
		SocialSecurity:       decimal.RequireFromString("0.062"),
		Medicare:             decimal.RequireFromString("0.0145"),
		SelfEmploymentFactor: decimal.RequireFromString("0.9235"),
	}
}

// Validate verifies that all rates are in [0, 1] and that the payroll
// rates leave something to gross up.
func (r Rates) Validate() error {
	one := decimal.NewFromInt(1)

	for name, rate := range map[string]decimal.Decimal{
		"social security":        r.SocialSecurity,
		"medicare":               r.Medicare,
		"self employment factor": r.SelfEmploymentFactor,
	} {
		if rate.IsNegative() || rate.GreaterThan(one) {
			return ConfigurationError{Index: -1, Reason: fmt.Sprintf("%s rate %s is not between 0 and 1", name, rate)}
		}
	}

	if !r.payroll().LessThan(one) {
		return ConfigurationError{Index: -1, Reason: "social security and medicare rates must add up to less than 1"}
	}

	return nil
}

func (r Rates) payroll() decimal.Decimal {
	return r.SocialSecurity.Add(r.Medicare)
}
