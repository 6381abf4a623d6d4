package themes

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spacesedan/bankreviews/internal/models"
)

// ThemeRule lists the substrings that pull a keyword into Theme.
type ThemeRule struct {
	Theme    string   `json:"theme"`
	Triggers []string `json:"triggers"`
}

// RuleSet is the ordered rule table of one bank. Key is matched against the
// lowercased bank name by containment.
type RuleSet struct {
	Key   string      `json:"key"`
	Rules []ThemeRule `json:"rules"`
}

// Rules is a list of rule sets; the first set whose key matches a bank wins.
type Rules []RuleSet

var ErrNoRuleSet = errors.New("no theme rules for bank")

// DefaultRules is the built-in table for the three known banks. Order
// within a set is the tie-break order of theme assignment.
var DefaultRules = Rules{
	{
		Key: "commercial bank of ethiopia",
		Rules: []ThemeRule{
			{Theme: models.ThemeAccountAccess, Triggers: []string{"login", "access", "error"}},
			{Theme: models.ThemeTransactions, Triggers: []string{"transfer", "slow", "crash"}},
			{Theme: models.ThemeUserInterface, Triggers: []string{"ui", "interface", "easy"}},
			{Theme: models.ThemeCustomerSupport, Triggers: []string{"support", "help", "service"}},
			{Theme: models.ThemeFeatureRequests, Triggers: []string{"feature", "update", "add"}},
		},
	},
	{
		Key: "bank of abyssinia",
		Rules: []ThemeRule{
			{Theme: models.ThemeTransactions, Triggers: []string{"transfer", "delay", "fail"}},
			{Theme: models.ThemeAccountAccess, Triggers: []string{"login", "password", "issue"}},
			{Theme: models.ThemeUserInterface, Triggers: []string{"design", "navigation", "simple"}},
			{Theme: models.ThemeCustomerSupport, Triggers: []string{"contact", "assistance", "team"}},
		},
	},
	{
		Key: "dashen bank",
		Rules: []ThemeRule{
			{Theme: models.ThemeUserInterface, Triggers: []string{"layout", "smooth", "app"}},
			{Theme: models.ThemeTransactions, Triggers: []string{"payment", "slow", "process"}},
			{Theme: models.ThemeAccountAccess, Triggers: []string{"sign", "lock", "problem"}},
			{Theme: models.ThemeFeatureRequests, Triggers: []string{"new", "option", "improve"}},
		},
	},
}

// For returns the rule set for bankName.
func (r Rules) For(bankName string) (RuleSet, error) {
	name := strings.ToLower(strings.TrimSpace(bankName))
	for _, set := range r {
		if set.Key != "" && strings.Contains(name, strings.ToLower(set.Key)) {
			return set, nil
		}
	}
	return RuleSet{}, fmt.Errorf("%w: %q", ErrNoRuleSet, bankName)
}

// LoadRules reads a JSON rule table. An empty path returns DefaultRules.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme rules: %w", err)
	}
	var rules Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("decode theme rules %s: %w", path, err)
	}
	for i, set := range rules {
		if strings.TrimSpace(set.Key) == "" {
			return nil, fmt.Errorf("theme rules %s: set %d has no key", path, i)
		}
		for _, rule := range set.Rules {
			if rule.Theme == "" || len(rule.Triggers) == 0 {
				return nil, fmt.Errorf("theme rules %s: set %q has an incomplete rule", path, set.Key)
			}
		}
	}
	return rules, nil
}
