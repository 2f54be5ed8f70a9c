package tax

import "github.com/shopspring/decimal"

// Payroll is the reconstruction of W-2 pay from net deposits.
type Payroll struct {
	Net                    decimal.Decimal
	Gross                  decimal.Decimal
	SocialSecurityWithheld decimal.Decimal
	MedicareWithheld       decimal.Decimal
	TotalWithheld          decimal.Decimal
}

// GrossUp reconstructs gross pay from net W-2 deposits.
//
// This is an approximation. It assumes that only Social Security and Medicare
// were withheld, at one flat combined rate and without the Social Security
// wage base cap. Real withholding also contains income tax and depends on the
// cap, so Gross is lower than the actual gross pay for most payslips.
func GrossUp(net decimal.Decimal, rates Rates) Payroll {
	gross := net.Div(decimal.NewFromInt(1).Sub(rates.payroll()))
	ss := gross.Mul(rates.SocialSecurity)
	medicare := gross.Mul(rates.Medicare)

	return Payroll{
		Net:                    net,
		Gross:                  gross,
		SocialSecurityWithheld: ss,
		MedicareWithheld:       medicare,
		TotalWithheld:          ss.Add(medicare),
	}
}
