// Package normalize projects card records onto the fixed output column set.
package normalize

import (
	"slices"

	"cardetl/internal/card"
)

// Source is anything that can report a column value and whether it carries
// that column. card.Record and Row both implement it, so normalizing an
// already normalized Row is a no-op.
type Source interface {
	Lookup(column string) (card.Value, bool)
}

// Columns filled by the tagging phase that follows this pipeline. They are
// never read from the export and always start out empty.
var enrichmentColumns = map[string]struct{}{
	card.ColCreatureTypes: {},
	card.ColThemeTags:     {},
}

// Row is a record projected onto an ordered column set. Columns is shared by
// every row of a dataset and must not be modified.
type Row struct {
	Line    int
	Columns []string
	Values  []card.Value
}

// Lookup implements Source.
func (r Row) Lookup(column string) (card.Value, bool) {
	if i := slices.Index(r.Columns, column); i >= 0 {
		return r.Values[i], true
	}
	return card.Null(), false
}

// Get returns the value of column, or Null when the row lacks it.
func (r Row) Get(column string) card.Value {
	v, _ := r.Lookup(column)
	return v
}

// Project returns the values of the given columns that the row carries,
// keyed by column name.
func (r Row) Project(columns []string) map[string]card.Value {
	out := make(map[string]card.Value, len(columns))
	for _, c := range columns {
		if v, ok := r.Lookup(c); ok {
			out[c] = v
		}
	}
	return out
}

// Strings renders every value as a CSV cell.
func (r Row) Strings() []string {
	out := make([]string, len(r.Values))
	for i, v := range r.Values {
		out[i] = v.String()
	}
	return out
}

// SQLValues converts every value for a database copy.
func (r Row) SQLValues() []any {
	out := make([]any, len(r.Values))
	for i, v := range r.Values {
		out[i] = v.SQL()
	}
	return out
}

// Equal reports whether two rows have the same columns and values.
func (r Row) Equal(o Row) bool {
	if !slices.Equal(r.Columns, o.Columns) || len(r.Values) != len(o.Values) {
		return false
	}
	for i := range r.Values {
		if !r.Values[i].Equal(o.Values[i]) {
			return false
		}
	}
	return true
}

// Normalize projects src onto columnOrder. Present values are copied as is.
// An absent column listed in required fails with a *card.FieldError wrapping
// card.ErrMissingRequiredField; any other absent column gets card.Empty.
// creatureTypes and themeTags are always reset to empty lists.
func Normalize(src Source, columnOrder, required []string) (Row, error) {
	line := 0
	if l, ok := src.(interface{ SourceLine() int }); ok {
		line = l.SourceLine()
	}

	row := Row{Line: line, Columns: columnOrder, Values: make([]card.Value, len(columnOrder))}
	for i, col := range columnOrder {
		if _, enrich := enrichmentColumns[col]; enrich {
			row.Values[i] = card.List()
			continue
		}
		v, ok := src.Lookup(col)
		if ok {
			row.Values[i] = v
			continue
		}
		if slices.Contains(required, col) {
			return Row{}, &card.FieldError{Kind: card.ErrMissingRequiredField, Field: col, Line: line}
		}
		row.Values[i] = card.Empty(col)
	}
	return row, nil
}

// SourceLine lets Normalize carry the line number through re-normalization.
func (r Row) SourceLine() int { return r.Line }
