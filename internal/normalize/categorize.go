package normalize

import "strings"

// categoryRule maps description keywords to a category. Rules are evaluated
// in order; the first rule with a matching keyword wins.
type categoryRule struct {
	category string
	keywords []string
}

var categoryRules = []categoryRule{
	{"Income", []string{"salary", "payroll", "wages"}},
	{"Fuel", []string{"fuel", "diesel", "petrol"}},
	{"Food", []string{"zomato", "swiggy", "restaurant", "cafe", "grocery"}},
	{"Shopping", []string{"amazon", "flipkart"}},
	{"Investments", []string{"mutual fund", "sip", "brokerage"}},
	{"Transfers", []string{"upi", "transfer", "google pay", "gpay"}},
}

const defaultCategory = "Others"

// Categorize assigns a category from description keywords. Used only when
// the input file carries no usable category column for a row.
func Categorize(description string) string {
	desc := strings.ToLower(description)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.category
			}
		}
	}
	return defaultCategory
}
