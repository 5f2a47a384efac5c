// Package category assigns transaction descriptions to spending
// categories with an ordered keyword rule table.
package category

import "strings"

// DefaultLabel is returned when no rule matches.
const DefaultLabel = "Outros"

// Rule maps a set of keywords to a category label. Rules are evaluated
// in order and the first match wins, so more specific rules must come
// before broader ones.
type Rule struct {
	Label    string
	Keywords []string
}

// Engine categorizes descriptions against an immutable rule table.
type Engine struct {
	rules []Rule
}

// NewEngine copies the given rules so later mutation of the caller's
// slice cannot change categorization behavior.
func NewEngine(rules []Rule) *Engine {
	owned := make([]Rule, len(rules))
	copy(owned, rules)
	for i := range owned {
		kw := make([]string, len(owned[i].Keywords))
		copy(kw, owned[i].Keywords)
		owned[i].Keywords = kw
	}
	return &Engine{rules: owned}
}

// Categorize returns the label of the first rule with a keyword
// contained in the lowercased description, or DefaultLabel.
func (e *Engine) Categorize(description string) string {
	desc := strings.ToLower(description)
	for _, rule := range e.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(desc, kw) {
				return rule.Label
			}
		}
	}
	return DefaultLabel
}

// Labels returns every label the engine can produce, in rule order,
// with DefaultLabel last.
func (e *Engine) Labels() []string {
	labels := make([]string, 0, len(e.rules)+1)
	seen := make(map[string]bool, len(e.rules)+1)
	for _, rule := range e.rules {
		if !seen[rule.Label] {
			labels = append(labels, rule.Label)
			seen[rule.Label] = true
		}
	}
	if !seen[DefaultLabel] {
		labels = append(labels, DefaultLabel)
	}
	return labels
}
