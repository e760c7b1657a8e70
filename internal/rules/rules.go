package rules

import (
	_ "embed"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"budgetbuddy/internal/models"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// DefaultRule is one entry of the built-in fallback rule list.
type DefaultRule struct {
	Pattern     string `yaml:"pattern" json:"pattern"`
	Field       string `yaml:"field" json:"field"`
	Category    string `yaml:"category" json:"category"`
	Subcategory string `yaml:"subcategory" json:"subcategory"`
	Priority    int    `yaml:"priority" json:"priority"`
}

type catalog struct {
	Categories    []string            `yaml:"categories"`
	Subcategories map[string][]string `yaml:"subcategories"`
	Rules         []DefaultRule       `yaml:"rules"`
}

var (
	defaults        catalog
	defaultPatterns []*regexp.Regexp
)

func init() {
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		panic("rules: bad embedded defaults: " + err.Error())
	}
	defaultPatterns = make([]*regexp.Regexp, len(defaults.Rules))
	for i, r := range defaults.Rules {
		defaultPatterns[i] = regexp.MustCompile("(?i)" + r.Pattern)
	}
}

// Categories returns the built-in category catalog.
func Categories() []string {
	return append([]string(nil), defaults.Categories...)
}

// Subcategories returns the built-in subcategory catalog keyed by
// category.
func Subcategories() map[string][]string {
	out := make(map[string][]string, len(defaults.Subcategories))
	for k, v := range defaults.Subcategories {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Defaults returns the built-in fallback rules in evaluation order.
func Defaults() []DefaultRule {
	return append([]DefaultRule(nil), defaults.Rules...)
}

// Apply assigns a category and subcategory to every record. User rules
// run first, ordered by (priority asc, id asc); the built-in defaults
// act as a fallback in their declared order. Patterns match
// case-insensitively against the upper-cased field. An invalid user
// pattern never matches and never blocks the rules after it. Records
// nothing matches keep whatever category they already carry.
func Apply(txns []models.Transaction, userRules []models.Rule) []models.Transaction {
	ordered := append([]models.Rule(nil), userRules...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})

	compiled := make([]*regexp.Regexp, len(ordered))
	for i, r := range ordered {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			continue // unmatchable, evaluation moves on
		}
		compiled[i] = re
	}

	for i := range txns {
		merchant := strings.ToUpper(txns[i].Merchant)
		desc := strings.ToUpper(txns[i].Description)

		if cat, sub, ok := matchUser(ordered, compiled, merchant, desc); ok {
			txns[i].Category, txns[i].Subcategory = cat, sub
			continue
		}
		if cat, sub, ok := matchDefaults(merchant, desc); ok {
			txns[i].Category, txns[i].Subcategory = cat, sub
		}
	}
	return txns
}

func matchUser(rules []models.Rule, compiled []*regexp.Regexp, merchant, desc string) (string, string, bool) {
	for i, r := range rules {
		if compiled[i] == nil {
			continue
		}
		text := desc
		if r.Field == "merchant" {
			text = merchant
		}
		if compiled[i].MatchString(text) {
			return r.Category, r.Subcategory, true
		}
	}
	return "", "", false
}

func matchDefaults(merchant, desc string) (string, string, bool) {
	for i, r := range defaults.Rules {
		text := desc
		if r.Field == "merchant" {
			text = merchant
		}
		if defaultPatterns[i].MatchString(text) {
			return r.Category, r.Subcategory, true
		}
	}
	return "", "", false
}
