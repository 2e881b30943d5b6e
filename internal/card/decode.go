package card

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Decode converts an export row into a Record. Cells that do not fit their
// column type produce a *FieldError wrapping ErrMalformedRecord. A missing or
// blank name wraps ErrMissingRequiredField instead: every card must be named.
func Decode(raw Raw) (Record, error) {
	rec := Record{Line: raw.Line}
	get := func(col string) (string, bool) {
		v, ok := raw.Fields[col]
		return v, ok
	}

	name, ok := get(ColName)
	if !ok || strings.TrimSpace(name) == "" {
		return Record{}, &FieldError{Kind: ErrMissingRequiredField, Field: ColName, Line: raw.Line}
	}
	rec.Name = name

	rec.FaceName = textOpt(get(ColFaceName))
	rec.ManaCost = textOpt(get(ColManaCost))
	rec.Type = textOpt(get(ColType))
	rec.Layout = textOpt(get(ColLayout))
	rec.Text = textOpt(get(ColText))
	rec.SecurityStamp = textOpt(get(ColSecurityStamp))
	rec.SetCode = textOpt(get(ColSetCode))

	rec.Keywords = listOpt(get(ColKeywords))
	rec.Availability = listOpt(get(ColAvailability))
	rec.PromoTypes = listOpt(get(ColPromoTypes))

	if s, ok := get(ColEDHRECRank); ok && strings.TrimSpace(s) != "" {
		n, err := parseRank(s)
		if err != nil {
			return Record{}, malformed(raw.Line, ColEDHRECRank, s, err)
		}
		rec.EDHRECRank = Some(n)
	}

	if s, ok := get(ColManaValue); ok && strings.TrimSpace(s) != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Record{}, malformed(raw.Line, ColManaValue, s, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Record{}, malformed(raw.Line, ColManaValue, s, errors.New("mana value must be finite"))
		}
		rec.ManaValue = Some(f)
	}

	if s, ok := get(ColColorIdentity); ok {
		ci, err := ParseColorIdentity(s)
		if err != nil {
			return Record{}, malformed(raw.Line, ColColorIdentity, s, err)
		}
		rec.ColorIdentity = Some(ci)
	}

	if s, ok := get(ColColors); ok {
		colors := SplitList(s)
		for _, c := range colors {
			if !IsColorLetter(c) {
				return Record{}, malformed(raw.Line, ColColors, s, fmt.Errorf("invalid color %q", c))
			}
		}
		rec.Colors = Some(colors)
	}

	if s, ok := get(ColPower); ok {
		rec.Power = ParseStat(s)
	}
	if s, ok := get(ColToughness); ok {
		rec.Toughness = ParseStat(s)
	}

	if s, ok := get(ColSide); ok {
		s = strings.TrimSpace(s)
		if s != "" {
			if utf8.RuneCountInString(s) != 1 {
				return Record{}, malformed(raw.Line, ColSide, s, errors.New("side must be a single letter"))
			}
			rec.Side = Some(s)
		}
	}

	return rec, nil
}

func textOpt(s string, ok bool) Opt[string] {
	if !ok {
		return Opt[string]{}
	}
	return Some(s)
}

func listOpt(s string, ok bool) Opt[[]string] {
	if !ok {
		return Opt[[]string]{}
	}
	return Some(SplitList(s))
}

// parseRank accepts integer ranks and the "123.0" form some exports emit.
func parseRank(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("rank %q is not an integer", s)
	}
	// -2^63 is exact in float64; 2^63 is the first value past MaxInt64.
	if f < math.MinInt64 || f >= -math.MinInt64 {
		return 0, fmt.Errorf("rank %q out of range", s)
	}
	return int64(f), nil
}
