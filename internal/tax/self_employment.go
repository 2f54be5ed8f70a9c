package tax

import "github.com/shopspring/decimal"

// SelfEmployment is the self-employment tax for 1099 income.
type SelfEmployment struct {
	Income         decimal.Decimal // 1099 income
	Taxable        decimal.Decimal // Part of the income subject to self-employment tax
	SocialSecurity decimal.Decimal
	Medicare       decimal.Decimal
	Total          decimal.Decimal // One side, the estimate doubles it
}

// SelfEmploymentTax computes the self-employment tax on 1099 income.
func SelfEmploymentTax(income decimal.Decimal, rates Rates) SelfEmployment {
	taxable := income.Mul(rates.SelfEmploymentFactor)
	ss := taxable.Mul(rates.SocialSecurity)
	medicare := taxable.Mul(rates.Medicare)

	return SelfEmployment{
		Income:         income,
		Taxable:        taxable,
		SocialSecurity: ss,
		Medicare:       medicare,
		Total:          ss.Add(medicare),
	}
}
