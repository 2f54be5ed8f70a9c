// Package category holds the fixed catalog of spending categories and the
// rules that map free text and bank categories onto it.
package category

// Category is an entry in the catalog.
type Category struct {
	ID    string `json:"id" example:"groceries"`    // Identifier used by transactions and budgets
	Label string `json:"label" example:"Groceries"` // Display label
}

// Miscellaneous is used wherever a default category is needed.
const Miscellaneous = "miscellaneous"

// Income is the category for deposits.
const Income = "income"

// catalog is ordered. Keep the order stable, clients render it as is.
var catalog = []Category{
	{"gas", "Gas"},
	{"groceries", "Groceries"},
	{"dining", "Dining & Restaurants"},
	{"entertainment", "Entertainment"},
	{"shopping", "Shopping"},
	{"travel", "Travel"},
	{"transportation", "Transportation"},
	{"utilities", "Utilities"},
	{"health_fitness", "Health & Fitness"},
	{"education", "Education"},
	{"personal_care", "Personal Care"},
	{"home_garden", "Home & Garden"},
	{"automotive", "Automotive"},
	{"insurance", "Insurance"},
	{"charity_donations", "Charity & Donations"},
	{Miscellaneous, "Miscellaneous"},
	{Income, "Income"},
}

var index = func() map[string]int {
	m := make(map[string]int, len(catalog))
	for i, c := range catalog {
		m[c.ID] = i
	}
	return m
}()

// All returns a copy of the catalog in display order.
func All() []Category {
	return append([]Category(nil), catalog...)
}

// IsKnown reports if the id is part of the catalog.
func IsKnown(id string) bool {
	_, ok := index[id]
	return ok
}

// LabelOf returns the display label for the id. Unknown ids are
// returned unchanged.
func LabelOf(id string) string {
	if i, ok := index[id]; ok {
		return catalog[i].Label
	}
	return id
}

// Classify returns the id if it is known and Miscellaneous otherwise.
func Classify(id string) string {
	if IsKnown(id) {
		return id
	}
	return Miscellaneous
}

// Position returns the position of the id in the catalog. Unknown ids sort
// after all known ones.
func Position(id string) int {
	if i, ok := index[id]; ok {
		return i
	}
	return len(catalog)
}

// Less orders ids by catalog position, then alphabetically for unknown ids.
func Less(a, b string) bool {
	pa, pb := Position(a), Position(b)
	if pa != pb {
		return pa < pb
	}
	return a < b
}
