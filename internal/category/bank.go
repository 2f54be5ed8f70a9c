package category

import (
	"strings"

	"github.com/ryanuber/go-glob"
)

type bankRule struct {
	pattern string
	id      string
}

// bankRules map Plaid personal finance categories to catalog ids.
// They are evaluated in order, the first match wins.
var bankRules = []bankRule{
	{"INCOME*", Income},
	{"GENERAL_MERCHANDISE*", "shopping"},
	{"ENTERTAINMENT*", "entertainment"},
	{"LOAN_PAYMENT_CAR*", "automotive"},
	{"LOAN_PAYMENT_CREDIT*", Miscellaneous},
	{"BANK_FEES*", Miscellaneous},
	{"FOOD_AND_DRINK_GROCERIES", "groceries"},
	{"FOOD_AND_DRINK*", "dining"},
	{"TRANSPORTATION_GAS", "gas"},
	{"TRANSPORTATION*", "transportation"},
	{"TRAVEL*", "travel"},
	{"RENT_AND_UTILITIES_RENT", "home_garden"},
	{"RENT_AND_UTILITIES*", "utilities"},
	{"HOME_IMPROVEMENT*", "home_garden"},
	{"MEDICAL*", "health_fitness"},
	{"PERSONAL_CARE_GYMS_AND_FITNESS_CENTERS", "health_fitness"},
	{"PERSONAL_CARE*", "personal_care"},
	{"GENERAL_SERVICES_EDUCATION", "education"},
	{"GENERAL_SERVICES_INSURANCE", "insurance"},
	{"GENERAL_SERVICES_AUTOMOTIVE", "automotive"},
	{"GENERAL_SERVICES*", Miscellaneous},
	{"GOVERNMENT_AND_NON_PROFIT_DONATIONS", "charity_donations"},
	{"GOVERNMENT_AND_NON_PROFIT*", Miscellaneous},
}

// FromBank maps a bank category, e.g. "FOOD_AND_DRINK_COFFEE", to a catalog id.
// Unmatched categories map to Miscellaneous.
func FromBank(bankCategory string) string {
	c := strings.ToUpper(strings.TrimSpace(bankCategory))
	for _, r := range bankRules {
		if glob.Glob(r.pattern, c) {
			return r.id
		}
	}
	return Miscellaneous
}
