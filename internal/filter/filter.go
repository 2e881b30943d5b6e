// Package filter decides whether a decoded card belongs in the Commander
// dataset. It is a pure predicate over a card.Record and the rule tables.
package filter

import (
	"fmt"
	"strings"

	"cardetl/internal/card"
	"cardetl/internal/rules"
)

// Stage names the check that rejected a record.
type Stage string

const (
	StageBanned  Stage = "banned"
	StageType    Stage = "type"
	StageSet     Stage = "set"
	StageRequire Stage = "require"
	StageExclude Stage = "exclude"
)

// Reason explains a rejection.
type Reason struct {
	Stage  Stage
	Field  string
	Detail string
}

func (r Reason) String() string {
	if r.Field == "" {
		return fmt.Sprintf("%s: %s", r.Stage, r.Detail)
	}
	return fmt.Sprintf("%s %s: %s", r.Stage, r.Field, r.Detail)
}

// Includes reports whether rec passes every check.
func Includes(rec card.Record, t *rules.Tables) bool {
	_, ok := Evaluate(rec, t)
	return ok
}

// Evaluate runs the checks in order and stops at the first rejection:
// banned name, excluded type, non-legal set, then the configured field rules
// (layout, availability, promoTypes, securityStamp, then any others).
//
// A field the record does not carry never matches an exclude rule and never
// satisfies a require rule.
func Evaluate(rec card.Record, t *rules.Tables) (Reason, bool) {
	for _, n := range rec.FaceNames() {
		if t.IsBanned(n) {
			return Reason{Stage: StageBanned, Detail: n}, false
		}
	}

	if typ, ok := rec.Type.Get(); ok {
		if ex, hit := t.ExcludedTypeIn(typ); hit {
			return Reason{Stage: StageType, Field: card.ColType, Detail: ex}, false
		}
	}

	if code, ok := rec.SetCode.Get(); ok && t.IsNonLegalSet(code) {
		return Reason{Stage: StageSet, Field: card.ColSetCode, Detail: code}, false
	}

	for _, r := range t.FilterRules() {
		vals, present := rec.Values(r.Field)
		switch r.Mode {
		case rules.ModeRequire:
			if !anyIn(vals, r) {
				detail := "no value in " + strings.Join(r.Values(), ",")
				if !present {
					detail = "field absent"
				}
				return Reason{Stage: StageRequire, Field: r.Field, Detail: detail}, false
			}
		case rules.ModeExclude:
			for _, v := range vals {
				if r.Has(v) {
					return Reason{Stage: StageExclude, Field: r.Field, Detail: v}, false
				}
			}
		}
	}

	return Reason{}, true
}

func anyIn(vals []string, r rules.FilterRule) bool {
	for _, v := range vals {
		if r.Has(v) {
			return true
		}
	}
	return false
}
