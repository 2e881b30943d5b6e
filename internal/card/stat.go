package card

import (
	"strconv"
	"strings"
)

// StatKind distinguishes the variants of a power/toughness cell.
type StatKind uint8

const (
	StatAbsent StatKind = iota
	StatNumeric
	StatSpecial
)

// Stat is a power or toughness value. Printed cards use plain numbers ("3"),
// half points ("1.5"), and symbols ("*", "1+*", "?"); the raw text is kept so
// rendering never changes what was read.
type Stat struct {
	kind StatKind
	n    float64
	raw  string
}

// ParseStat classifies a raw power/toughness cell. Blank input is absent.
func ParseStat(s string) Stat {
	s = strings.TrimSpace(s)
	if s == "" {
		return Stat{}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return Stat{kind: StatNumeric, n: n, raw: s}
	}
	return Stat{kind: StatSpecial, raw: s}
}

func (s Stat) Kind() StatKind { return s.kind }

// Numeric returns the number for a numeric stat.
func (s Stat) Numeric() (float64, bool) {
	if s.kind != StatNumeric {
		return 0, false
	}
	return s.n, true
}

// Symbol returns the raw text of a special stat such as "*".
func (s Stat) Symbol() (string, bool) {
	if s.kind != StatSpecial {
		return "", false
	}
	return s.raw, true
}

func (s Stat) String() string { return s.raw }
