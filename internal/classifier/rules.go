// Package classifier assigns spending categories to transactions through an
// ordered keyword rule table, and flags recurring fixed costs.
//
// Rule order is load-bearing: rules are evaluated top to bottom and the first
// rule with any matching keyword wins. Specific buckets (income, debt
// payments, transfers) are declared before broad discretionary ones so that,
// for example, a Zelle payment mentioning a merchant is classified as a
// transfer rather than shopping.
package classifier

import (
	"os"
	"strings"

	"golang-budget-ledger-service/pkg/errors"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Uncategorized is the terminal fallback label.
const Uncategorized = "Uncategorized"

// Rule pairs a category label with the keywords that select it. Keywords are
// matched as case-insensitive substrings of the description.
type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// RuleSet is an ordered list of rules. Evaluation short-circuits on the
// first match.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet builds a RuleSet, upper-casing every keyword so matching is a
// plain substring check.
func NewRuleSet(rules []Rule) *RuleSet {
	normalized := make([]Rule, len(rules))
	for i, rule := range rules {
		keywords := make([]string, len(rule.Keywords))
		for j, kw := range rule.Keywords {
			keywords[j] = strings.ToUpper(strings.TrimSpace(kw))
		}
		normalized[i] = Rule{Category: rule.Category, Keywords: keywords}
	}
	return &RuleSet{rules: normalized}
}

// Classify returns the category for a transaction description. The amount is
// accepted for future sign-based heuristics but is not currently consulted.
func (rs *RuleSet) Classify(description string, amount decimal.Decimal) string {
	_ = amount
	upper := strings.ToUpper(description)

	for _, rule := range rs.rules {
		for _, keyword := range rule.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(upper, keyword) {
				return rule.Category
			}
		}
	}
	return Uncategorized
}

// Categories returns the rule labels in declaration order, without the
// Uncategorized sentinel.
func (rs *RuleSet) Categories() []string {
	categories := make([]string, len(rs.rules))
	for i, rule := range rs.rules {
		categories[i] = rule.Category
	}
	return categories
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// LoadRuleSet reads an ordered rule list from a YAML file. File order is
// precedence order.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		return nil, errors.FileError(errors.CodeFileUnreadable, path, err)
	}

	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "rules_file", path, err).
			WithSuggestion("the rules file must be a YAML list of {category, keywords} entries")
	}
	if len(rules) == 0 {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "rules_file", path, nil).
			WithSuggestion("the rules file contains no rules")
	}
	for _, rule := range rules {
		if strings.TrimSpace(rule.Category) == "" {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "rules_file", path, nil).
				WithSuggestion("every rule needs a non-empty category")
		}
	}

	return NewRuleSet(rules), nil
}

// DefaultRuleSet returns the built-in rule table. Order matters: income and
// money-movement buckets come before discretionary spending.
func DefaultRuleSet() *RuleSet {
	return NewRuleSet([]Rule{
		{Category: "Income/Payroll", Keywords: []string{
			"PAYROLL", "DIRECT DEP", "DEPOSIT", "REFUND", "IRS TREAS",
		}},
		{Category: "Loan/Credit Card Payment", Keywords: []string{
			"CHASE CREDIT CRD", "CITI CARD ONLINE", "AUTOPAY", "AUTO LOAN",
			"STUDNTLOAN", "STUDENT LOAN", "BARCLAYCARD", "CARDMEMBER SERV",
		}},
		{Category: "Transfer to Savings", Keywords: []string{
			"TRANSFER TO SAV",
		}},
		{Category: "Transfers/P2P", Keywords: []string{
			"ONLINE TRANSFER", "ZELLE", "VENMO", "PAYPAL", "WIRE TRANSFER",
			"ACCT_XFER", "QUICKPAY",
		}},
		{Category: "Mortgage/Rent", Keywords: []string{
			"MORTGAGE", "RENT", "HOA",
		}},
		{Category: "Utilities", Keywords: []string{
			"GAS & ELEC", "ELECTRIC", "WATER", "WASTE", "SOLAR", "SEWER",
		}},
		{Category: "Subscriptions/Streaming", Keywords: []string{
			"NETFLIX", "HULU", "SPOTIFY", "DISNEY", "HBO", "YOUTUBE",
			"PEACOCK", "AUDIBLE", "PRIME VIDEO", "APPLE.COM", "GOOGLE *",
		}},
		{Category: "Groceries", Keywords: []string{
			"TRADER JOE", "COSTCO WHSE", "SPROUTS", "RALPHS", "VONS",
			"ALBERTSONS", "WHOLE FOODS", "SAFEWAY", "KROGER", "FARMERS MARKET",
		}},
		{Category: "Amazon", Keywords: []string{
			"AMAZON", "AMZN",
		}},
		{Category: "Dining/Restaurants", Keywords: []string{
			"IN-N-OUT", "CHIPOTLE", "BURGER", "PIZZA", "TACO", "RAMEN",
			"SUSHI", "GRILL", "CAFE", "BISTRO", "DINER", "PUB", "BAR",
			"DOORDASH", "UBER EATS", "GRUBHUB", "MCDONALD", "STARBUCKS",
			"COFFEE", "DUNKIN", "BAGEL",
		}},
		{Category: "Shopping/Merchandise", Keywords: []string{
			"TARGET", "WALMART", "HOMEGOODS", "MARSHALLS", "TJ MAXX", "ROSS",
			"NORDSTROM", "UNIQLO", "IKEA", "LOWES", "HOME DEPOT", "CVS",
			"RITE AID", "WALGREENS", "BEST BUY", "APPLE STORE", "ETSY",
		}},
		{Category: "Pet Supplies", Keywords: []string{
			"CHEWY", "PETCO", "PETSMART", "VET",
		}},
		{Category: "Automotive/Gas", Keywords: []string{
			"SHELL", "CHEVRON", "MOBIL", "ARCO", "COSTCO GAS", "CAR WASH",
			"SMOG", "DMV", "PARKING", "FASTRAK", "TOYOTA", "TESLA",
		}},
		{Category: "Gym/Health", Keywords: []string{
			"YMCA", "24 HOUR FITNESS", "PLANET FITNESS", "GYM",
		}},
		{Category: "Personal Care", Keywords: []string{
			"SALON", "BARBER", "SPA", "NAILS", "COSMETICS", "SEPHORA", "ULTA",
		}},
		{Category: "Entertainment", Keywords: []string{
			"STUBHUB", "TICKETMASTER", "CINEMA", "THEATER", "MUSEUM",
			"AQUARIUM", "STEAM", "PLAYSTATION", "NINTENDO",
		}},
	})
}
