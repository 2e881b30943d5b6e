// Package rules holds the Commander reference tables consumed by the card
// pipeline: banned cards, excluded card types, non-legal sets, the column
// layout of the output dataset, sort configuration and per-field filter
// rules.
//
// A Spec is the plain, decodable description of the tables. New validates a
// Spec and freezes it into a *Tables value, which has no mutating methods and
// hands out copies from its accessors, so one instance can be shared by any
// number of concurrent pipeline runs.
package rules

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"cardetl/internal/card"
)

// RuleSpec is one filter rule. Exactly one of Exclude or Require is set.
type RuleSpec struct {
	Exclude []string `toml:"exclude" json:"exclude,omitempty"`
	Require []string `toml:"require" json:"require,omitempty"`
}

// Spec is the decodable form of the tables.
type Spec struct {
	BannedCards       []string            `toml:"banned_cards"`
	ExcludedTypes     []string            `toml:"excluded_types"`
	NonLegalSets      []string            `toml:"non_legal_sets"`
	DesiredColumns    []string            `toml:"desired_columns"`
	RequiredColumns   []string            `toml:"required_columns"`
	ColumnOrder       []string            `toml:"column_order"`
	SortKeys          []string            `toml:"sort_keys"`
	SortCaseSensitive bool                `toml:"sort_case_sensitive"`
	FilterRules       map[string]RuleSpec `toml:"filter_rules"`
	ColorIdentities   map[string]string   `toml:"color_identities"`
}

// RuleMode says how a filter rule's values are applied.
type RuleMode string

const (
	ModeExclude RuleMode = "exclude"
	ModeRequire RuleMode = "require"
)

// FilterRule is a validated rule on one record field.
type FilterRule struct {
	Field string
	Mode  RuleMode
	set   map[string]struct{}
	vals  []string
}

// Values returns the rule's values in configured order.
func (r FilterRule) Values() []string { return slices.Clone(r.vals) }

// Has reports whether v is one of the rule's values.
func (r FilterRule) Has(v string) bool {
	_, ok := r.set[v]
	return ok
}

// Tables is the validated, read-only rule set.
type Tables struct {
	banned        map[string]struct{}
	bannedList    []string
	excludedTypes []string
	nonLegalSets  map[string]struct{}
	setList       []string
	desired       []string
	required      []string
	columnOrder   []string
	sortKeys      []string
	caseSensitive bool
	filterRules   []FilterRule
	labels        map[string]string // identity key → label
}

// Fields a filter rule may reference, with the built-in ones first in the
// order the row filter applies them.
var builtinRuleOrder = []string{
	card.ColLayout, card.ColAvailability, card.ColPromoTypes, card.ColSecurityStamp,
}

var filterable = map[string]struct{}{
	card.ColName: {}, card.ColFaceName: {}, card.ColColorIdentity: {},
	card.ColColors: {}, card.ColManaCost: {}, card.ColType: {},
	card.ColLayout: {}, card.ColText: {}, card.ColKeywords: {},
	card.ColSide: {}, card.ColAvailability: {}, card.ColPromoTypes: {},
	card.ColSecurityStamp: {}, card.ColSetCode: {},
}

// New validates spec and returns frozen tables. All problems are reported
// together.
func New(spec Spec) (*Tables, error) {
	var errs []error

	t := &Tables{
		banned:        make(map[string]struct{}, len(spec.BannedCards)),
		nonLegalSets:  make(map[string]struct{}, len(spec.NonLegalSets)),
		excludedTypes: nonEmpty(spec.ExcludedTypes),
		desired:       slices.Clone(spec.DesiredColumns),
		required:      slices.Clone(spec.RequiredColumns),
		columnOrder:   slices.Clone(spec.ColumnOrder),
		sortKeys:      slices.Clone(spec.SortKeys),
		caseSensitive: spec.SortCaseSensitive,
		labels:        make(map[string]string, len(spec.ColorIdentities)),
	}

	for _, name := range spec.BannedCards {
		key := canonicalName(name)
		if key == "" {
			continue
		}
		if _, dup := t.banned[key]; !dup {
			t.banned[key] = struct{}{}
			t.bannedList = append(t.bannedList, strings.TrimSpace(name))
		}
	}
	sort.Strings(t.bannedList)

	for _, code := range spec.NonLegalSets {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, dup := t.nonLegalSets[code]; !dup {
			t.nonLegalSets[code] = struct{}{}
			t.setList = append(t.setList, code)
		}
	}

	if len(t.columnOrder) == 0 {
		errs = append(errs, errors.New("column_order must not be empty"))
	}
	inOrder := make(map[string]struct{}, len(t.columnOrder))
	for _, c := range t.columnOrder {
		if _, dup := inOrder[c]; dup {
			errs = append(errs, fmt.Errorf("column_order: duplicate column %q", c))
		}
		inOrder[c] = struct{}{}
	}
	for _, c := range t.required {
		if _, ok := inOrder[c]; !ok {
			errs = append(errs, fmt.Errorf("required_columns: %q is not in column_order", c))
		}
	}
	for _, c := range t.sortKeys {
		if _, ok := inOrder[c]; !ok {
			errs = append(errs, fmt.Errorf("sort_keys: %q is not in column_order", c))
		}
	}

	fields := make([]string, 0, len(spec.FilterRules))
	for f := range spec.FilterRules {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool {
		pi, pj := ruleRank(fields[i]), ruleRank(fields[j])
		if pi != pj {
			return pi < pj
		}
		return fields[i] < fields[j]
	})
	for _, f := range fields {
		r, err := buildRule(f, spec.FilterRules[f])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		t.filterRules = append(t.filterRules, r)
	}

	for label, ident := range spec.ColorIdentities {
		ci, err := card.ParseColorIdentity(ident)
		if err != nil {
			errs = append(errs, fmt.Errorf("color_identities.%s: %w", label, err))
			continue
		}
		key := ci.Key()
		if prev, dup := t.labels[key]; dup {
			errs = append(errs, fmt.Errorf("color_identities: %q and %q share identity %q", prev, label, key))
			continue
		}
		t.labels[key] = label
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("rules: %w", errors.Join(errs...))
	}
	return t, nil
}

func buildRule(field string, rs RuleSpec) (FilterRule, error) {
	if _, ok := filterable[field]; !ok {
		return FilterRule{}, fmt.Errorf("filter_rules.%s: unknown record field", field)
	}
	hasEx, hasReq := len(rs.Exclude) > 0, len(rs.Require) > 0
	if hasEx == hasReq {
		return FilterRule{}, fmt.Errorf("filter_rules.%s: exactly one of exclude or require must be set", field)
	}
	r := FilterRule{Field: field, Mode: ModeExclude, vals: slices.Clone(rs.Exclude)}
	if hasReq {
		r.Mode = ModeRequire
		r.vals = slices.Clone(rs.Require)
	}
	r.set = make(map[string]struct{}, len(r.vals))
	for _, v := range r.vals {
		r.set[v] = struct{}{}
	}
	return r, nil
}

func ruleRank(field string) int {
	if i := slices.Index(builtinRuleOrder, field); i >= 0 {
		return i
	}
	return len(builtinRuleOrder)
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// canonicalName folds a card name to NFC so precomposed and decomposed
// accents ("Lim-Dûl") compare equal.
func canonicalName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// IsBanned reports whether name is on the banned list.
func (t *Tables) IsBanned(name string) bool {
	_, ok := t.banned[canonicalName(name)]
	return ok
}

// ExcludedTypeIn returns the first excluded type fragment contained in the
// type line. Matching is case-sensitive.
func (t *Tables) ExcludedTypeIn(typeLine string) (string, bool) {
	for _, ex := range t.excludedTypes {
		if strings.Contains(typeLine, ex) {
			return ex, true
		}
	}
	return "", false
}

// IsNonLegalSet reports whether the set code is on the non-legal list.
func (t *Tables) IsNonLegalSet(code string) bool {
	_, ok := t.nonLegalSets[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

func (t *Tables) BannedCards() []string     { return slices.Clone(t.bannedList) }
func (t *Tables) ExcludedTypes() []string   { return slices.Clone(t.excludedTypes) }
func (t *Tables) NonLegalSets() []string    { return slices.Clone(t.setList) }
func (t *Tables) DesiredColumns() []string  { return slices.Clone(t.desired) }
func (t *Tables) RequiredColumns() []string { return slices.Clone(t.required) }
func (t *Tables) ColumnOrder() []string     { return slices.Clone(t.columnOrder) }
func (t *Tables) SortKeys() []string        { return slices.Clone(t.sortKeys) }
func (t *Tables) SortCaseSensitive() bool   { return t.caseSensitive }

// FilterRules returns the configured rules in evaluation order. FilterRule
// exposes no mutators, so the copies share their value sets safely.
func (t *Tables) FilterRules() []FilterRule { return slices.Clone(t.filterRules) }

// Rule returns the rule configured for field.
func (t *Tables) Rule(field string) (FilterRule, bool) {
	for _, r := range t.filterRules {
		if r.Field == field {
			return r, true
		}
	}
	return FilterRule{}, false
}

// ColorIdentityLabel maps an identity to its label ("U, W" → "azorius").
func (t *Tables) ColorIdentityLabel(ci card.ColorIdentity) (string, bool) {
	l, ok := t.labels[ci.Key()]
	return l, ok
}

// ColorIdentityLabels returns every configured label, sorted.
func (t *Tables) ColorIdentityLabels() []string {
	out := make([]string, 0, len(t.labels))
	for _, l := range t.labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
