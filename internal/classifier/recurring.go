package classifier

import "strings"

// recurringCategories are the buckets that are almost certainly monthly
// fixed costs regardless of what the description says.
var recurringCategories = map[string]struct{}{
	"Mortgage/Rent":            {},
	"Utilities":                {},
	"Subscriptions/Streaming":  {},
	"Gym/Health":               {},
	"Loan/Credit Card Payment": {},
}

// recurringKeywords mark a transaction as a repeating obligation even when
// its category is discretionary or unknown. "PPD ID" is the ACH marker for
// prearranged payments.
var recurringKeywords = []string{
	"AUTOPAY", "RECURRING", "BILL PAY", "INSURANCE", "PPD ID",
}

// IsRecurring reports whether a transaction represents a fixed, repeating
// obligation. An empty category is tolerated and falls through to the
// keyword scan.
func IsRecurring(category, description string) bool {
	if _, ok := recurringCategories[category]; ok {
		return true
	}

	upper := strings.ToUpper(description)
	for _, keyword := range recurringKeywords {
		if strings.Contains(upper, keyword) {
			return true
		}
	}
	return false
}

// RecurringCategories returns a copy of the inherently recurring category
// set.
func RecurringCategories() []string {
	categories := make([]string, 0, len(recurringCategories))
	for category := range recurringCategories {
		categories = append(categories, category)
	}
	return categories
}
