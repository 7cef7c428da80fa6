// Package rules provides the YAML-based category joiner: an ordered rule set
// matched against transaction descriptions, first match wins.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embeddedRules []byte

// MatchType defines how patterns are matched against descriptions.
type MatchType string

const (
	// MatchTypeExact requires the pattern to match the entire description.
	MatchTypeExact MatchType = "exact"
	// MatchTypeContains requires the pattern to be a substring.
	MatchTypeContains MatchType = "contains"
	// MatchTypePrefix requires the description to start with the pattern.
	MatchTypePrefix MatchType = "prefix"
)

// Rule is a single categorization rule. Category names the target category
// and is resolved against the metadata catalog when the engine is built.
//
// Rules should be created via YAML loading (NewEngine, LoadEmbedded,
// LoadFromFile); direct struct construction bypasses validation.
type Rule struct {
	Name      string    `yaml:"name"`
	Pattern   string    `yaml:"pattern"`
	MatchType MatchType `yaml:"match_type"`
	Priority  int       `yaml:"priority"`
	Category  string    `yaml:"category"`
}

// RuleSet is the top-level YAML structure.
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// CategoryLookup resolves a category name to its ID, returning "" for
// unknown names. *metadata.Catalog satisfies it.
type CategoryLookup interface {
	CategoryIDByName(name string) string
}

// Match is the outcome of applying the rule set to one description.
type Match struct {
	CategoryID string
	RuleName   string
}

// Engine performs first-match rule evaluation on descriptions.
// Rules are held sorted by priority (highest first); equal priorities keep
// their YAML file order, so matching is deterministic and stable across runs.
type Engine struct {
	rules       []Rule
	categoryIDs []string // parallel to rules, resolved at construction
	patterns    []string // parallel to rules, normalized at construction
}

// NewEngine creates a rules engine from YAML data, resolving every rule's
// category name through lookup. Unknown categories, bad match types, empty
// patterns and out-of-range priorities are rejected up front.
func NewEngine(rulesData []byte, lookup CategoryLookup) (*Engine, error) {
	var ruleSet RuleSet
	if err := yaml.Unmarshal(rulesData, &ruleSet); err != nil {
		return nil, fmt.Errorf("failed to parse YAML rules (check syntax, indentation, and field names): %w", err)
	}

	for i, rule := range ruleSet.Rules {
		if strings.TrimSpace(rule.Pattern) == "" {
			return nil, fmt.Errorf("rule %d (%s): pattern cannot be empty", i, rule.Name)
		}
		if rule.MatchType != MatchTypeExact && rule.MatchType != MatchTypeContains && rule.MatchType != MatchTypePrefix {
			return nil, fmt.Errorf("rule %d (%s): invalid match_type %q (must be 'exact', 'contains' or 'prefix')", i, rule.Name, rule.MatchType)
		}
		if rule.Priority < 0 || rule.Priority > 999 {
			return nil, fmt.Errorf("rule %d (%s): priority must be in [0,999], got %d", i, rule.Name, rule.Priority)
		}
		if lookup.CategoryIDByName(rule.Category) == "" {
			return nil, fmt.Errorf("rule %d (%s): unknown category %q", i, rule.Name, rule.Category)
		}
	}

	// Sort by priority (highest first). SliceStable preserves YAML file
	// order for equal priorities, which is the documented tie-break.
	sorted := make([]Rule, len(ruleSet.Rules))
	copy(sorted, ruleSet.Rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	ids := make([]string, len(sorted))
	patterns := make([]string, len(sorted))
	for i, rule := range sorted {
		ids[i] = lookup.CategoryIDByName(rule.Category)
		patterns[i] = normalizeText(rule.Pattern)
	}

	return &Engine{rules: sorted, categoryIDs: ids, patterns: patterns}, nil
}

// LoadEmbedded loads the embedded rules.yaml file.
func LoadEmbedded(lookup CategoryLookup) (*Engine, error) {
	engine, err := NewEngine(embeddedRules, lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded rules: %w", err)
	}
	return engine, nil
}

// LoadFromFile loads rules from a filesystem path.
func LoadFromFile(path string, lookup CategoryLookup) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	engine, err := NewEngine(data, lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %q: %w", path, err)
	}
	return engine, nil
}

// Match applies the rules to a description and returns the first match.
// Returns (nil, false) if no rule matches.
func (e *Engine) Match(description string) (*Match, bool) {
	desc := normalizeText(description)

	for i, rule := range e.rules {
		pattern := e.patterns[i]

		matched := false
		switch rule.MatchType {
		case MatchTypeExact:
			matched = desc == pattern
		case MatchTypeContains:
			matched = strings.Contains(desc, pattern)
		case MatchTypePrefix:
			matched = strings.HasPrefix(desc, pattern)
		}

		if matched {
			return &Match{CategoryID: e.categoryIDs[i], RuleName: rule.Name}, true
		}
	}

	return nil, false
}

// Rules returns a copy of the rules in evaluation order.
func (e *Engine) Rules() []Rule {
	result := make([]Rule, len(e.rules))
	copy(result, e.rules)
	return result
}

// normalizeText lowercases, trims and strips combining marks so that
// "Café Müller" matches a "cafe muller" pattern.
func normalizeText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
