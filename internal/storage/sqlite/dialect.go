package sqlite

import (
	"cardetl/internal/card"
	"cardetl/internal/ddl"
)

// Dialect uses SQLite's type affinities: INTEGER, REAL, TEXT.
var Dialect = ddl.Dialect{
	Name:       "sqlite ddl",
	QuoteIdent: ddl.DoubleQuote,
	MapKind: func(k card.Kind) string {
		switch k {
		case card.KindInt:
			return "INTEGER"
		case card.KindFloat:
			return "REAL"
		default:
			return "TEXT"
		}
	},
}
