package card

import (
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindList
	KindInt
	KindFloat
	KindStat
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStat:
		return "stat"
	default:
		return "null"
	}
}

// ListSeparator joins list items when a Value is rendered as a single cell.
const ListSeparator = ", "

// Value is a tagged cell value. The zero Value is Null.
//
// List values are copied on construction and on read so a Value can be shared
// between rows without aliasing.
type Value struct {
	kind Kind
	text string
	list []string
	i    int64
	f    float64
	stat Stat
}

// Null returns the absent value.
func Null() Value { return Value{} }

// Text returns a text value. The empty string is a valid, non-null text.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// List returns a list value. A nil or empty input yields an empty list, not Null.
func List(items ...string) Value {
	out := make([]string, len(items))
	copy(out, items)
	return Value{kind: KindList, list: out}
}

// Int returns an integer value.
func Int(n int64) Value { return Value{kind: KindInt, i: n} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// StatValue wraps a power/toughness value. An absent Stat becomes Null.
func StatValue(s Stat) Value {
	if s.Kind() == StatAbsent {
		return Null()
	}
	return Value{kind: KindStat, stat: s}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the text held by a text value.
func (v Value) Str() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// Items returns a copy of the items held by a list value.
func (v Value) Items() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return slices.Clone(v.list), true
}

// IntVal returns the integer held by an int value.
func (v Value) IntVal() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// FloatVal returns the number held by a float value.
func (v Value) FloatVal() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// StatVal returns the power/toughness held by a stat value.
func (v Value) StatVal() (Stat, bool) {
	if v.kind != KindStat {
		return Stat{}, false
	}
	return v.stat, true
}

// Number reports the numeric reading of int, float and numeric stat values.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindStat:
		return v.stat.Numeric()
	}
	return 0, false
}

// String renders the value as a single CSV cell. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindList:
		return strings.Join(v.list, ListSeparator)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindStat:
		return v.stat.String()
	default:
		return ""
	}
}

// SQL converts the value to a database/sql and pgx friendly Go value.
// Lists and stats are stored as text.
func (v Value) SQL() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	default:
		return v.String()
	}
}

// Equal reports whether two values hold the same variant and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return v.text == o.text
	case KindList:
		return slices.Equal(v.list, o.list)
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindStat:
		return v.stat == o.stat
	}
	return false
}

// SplitList splits a comma separated cell into trimmed, non-empty items.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
