package postgres

import (
	"cardetl/internal/card"
	"cardetl/internal/ddl"
)

// Dialect renders CREATE TABLE IF NOT EXISTS with double-quoted identifiers.
// List and stat values are stored in their rendered text form.
var Dialect = ddl.Dialect{
	Name:       "postgres ddl",
	QuoteIdent: ddl.DoubleQuote,
	MapKind:    MapKind,
}

// MapKind maps a card value kind onto a Postgres column type.
func MapKind(k card.Kind) string {
	switch k {
	case card.KindInt:
		return "BIGINT"
	case card.KindFloat:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}
