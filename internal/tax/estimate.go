package tax

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is the tax treatment of a deposit.
type Category string

const (
	W2       Category = "w2"
	Form1099 Category = "1099"
	None     Category = "none"
)

// Valid reports if the category is one of the known ones.
func (c Category) Valid() bool {
	return c == W2 || c == Form1099 || c == None
}

var (
	ErrCategoryInvalid       = errors.New("the tax category must be one of 'w2', '1099' or 'none'")
	ErrWithdrawalCategorized = errors.New("only deposits can be categorized as 'w2' or '1099'")
)

// Transaction is the part of a transaction that matters for the estimate.
type Transaction struct {
	ID      uuid.UUID
	Deposit bool
	Amount  decimal.Decimal
}

// Categorization maps transaction IDs to their tax category.
// Transactions that are not contained are treated as None.
type Categorization map[uuid.UUID]Category

// Estimate is the estimated tax liability.
type Estimate struct {
	W2Income                 decimal.Decimal `json:"w2Income"`                 // Net W-2 deposits
	W2GrossIncome            decimal.Decimal `json:"w2GrossIncome"`            // Reconstructed gross W-2 pay
	W2SocialSecurityWithheld decimal.Decimal `json:"w2SocialSecurityWithheld"` // Social Security withheld from W-2 pay
	W2MedicareWithheld       decimal.Decimal `json:"w2MedicareWithheld"`       // Medicare withheld from W-2 pay
	W2TotalWithheld          decimal.Decimal `json:"w2TotalWithheld"`          // Sum of the withheld amounts
	Income1099               decimal.Decimal `json:"income1099"`               // 1099 income
	TotalIncome              decimal.Decimal `json:"totalIncome"`              // Gross W-2 pay and 1099 income
	IncomeTax                decimal.Decimal `json:"incomeTax"`                // Progressive income tax on the total income
	SocialSecurityTax        decimal.Decimal `json:"socialSecurityTax"`        // Social Security part of the self-employment tax
	MedicareTax              decimal.Decimal `json:"medicareTax"`              // Medicare part of the self-employment tax
	SelfEmploymentTax        decimal.Decimal `json:"selfEmploymentTax"`        // One side of the self-employment tax
	TotalTaxOwed             decimal.Decimal `json:"totalTaxOwed"`             // Income tax and both sides of the self-employment tax
}

// Round rounds all amounts to cents.
func (e Estimate) Round() Estimate {
	return Estimate{
		W2Income:                 e.W2Income.Round(2),
		W2GrossIncome:            e.W2GrossIncome.Round(2),
		W2SocialSecurityWithheld: e.W2SocialSecurityWithheld.Round(2),
		W2MedicareWithheld:       e.W2MedicareWithheld.Round(2),
		W2TotalWithheld:          e.W2TotalWithheld.Round(2),
		Income1099:               e.Income1099.Round(2),
		TotalIncome:              e.TotalIncome.Round(2),
		IncomeTax:                e.IncomeTax.Round(2),
		SocialSecurityTax:        e.SocialSecurityTax.Round(2),
		MedicareTax:              e.MedicareTax.Round(2),
		SelfEmploymentTax:        e.SelfEmploymentTax.Round(2),
		TotalTaxOwed:             e.TotalTaxOwed.Round(2),
	}
}

// Calculator holds a validated tax configuration.
type Calculator struct {
	brackets Brackets
	rates    Rates
}

// NewCalculator validates the configuration. An error here is a configuration
// error and the application must not start.
func NewCalculator(brackets Brackets, rates Rates) (Calculator, error) {
	if err := brackets.Validate(); err != nil {
		return Calculator{}, err
	}

	if err := rates.Validate(); err != nil {
		return Calculator{}, err
	}

	return Calculator{brackets: brackets, rates: rates}, nil
}

// Default returns the calculator for the 2025 tables.
func Default() Calculator {
	c, err := NewCalculator(Brackets2025(), Rates2025())
	if err != nil {
		panic(err)
	}
	return c
}

// Brackets returns the bracket table.
func (c Calculator) Brackets() Brackets {
	return append(Brackets(nil), c.brackets...)
}

// Rates returns the payroll rates.
func (c Calculator) Rates() Rates {
	return c.rates
}

// Estimate computes the tax estimate for the categorized deposits among the transactions.
func (c Calculator) Estimate(transactions []Transaction, categorization Categorization) (Estimate, error) {
	byID := make(map[uuid.UUID]Transaction, len(transactions))
	for _, t := range transactions {
		byID[t.ID] = t
	}

	for id, cat := range categorization {
		if !cat.Valid() {
			return Estimate{}, fmt.Errorf("%w, transaction %s has '%s'", ErrCategoryInvalid, id, cat)
		}

		if t, ok := byID[id]; ok && !t.Deposit && cat != None {
			return Estimate{}, fmt.Errorf("%w, transaction %s is a withdrawal", ErrWithdrawalCategorized, id)
		}
	}

	w2Net, income1099 := decimal.Zero, decimal.Zero
	for _, t := range transactions {
		if !t.Deposit {
			continue
		}

		switch categorization[t.ID] {
		case W2:
			w2Net = w2Net.Add(t.Amount.Abs())
		case Form1099:
			income1099 = income1099.Add(t.Amount.Abs())
		}
	}

	payroll := GrossUp(w2Net, c.rates)
	se := SelfEmploymentTax(income1099, c.rates)

	totalIncome := payroll.Gross.Add(income1099)
	incomeTax := IncomeTax(totalIncome, c.brackets)

	return Estimate{
		W2Income:                 payroll.Net,
		W2GrossIncome:            payroll.Gross,
		W2SocialSecurityWithheld: payroll.SocialSecurityWithheld,
		W2MedicareWithheld:       payroll.MedicareWithheld,
		W2TotalWithheld:          payroll.TotalWithheld,
		Income1099:               income1099,
		TotalIncome:              totalIncome,
		IncomeTax:                incomeTax,
		SocialSecurityTax:        se.SocialSecurity,
		MedicareTax:              se.Medicare,
		SelfEmploymentTax:        se.Total,
		TotalTaxOwed:             incomeTax.Add(se.Total.Mul(decimal.NewFromInt(2))),
	}, nil
}
