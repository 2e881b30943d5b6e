package mysql

import (
	"strings"

	"cardetl/internal/card"
	"cardetl/internal/ddl"
)

// Dialect quotes with backticks; text columns are LONGTEXT.
var Dialect = ddl.Dialect{
	Name:       "mysql ddl",
	QuoteIdent: quoteIdent,
	MapKind: func(k card.Kind) string {
		switch k {
		case card.KindInt:
			return "BIGINT"
		case card.KindFloat:
			return "DOUBLE"
		default:
			return "LONGTEXT"
		}
	},
}

func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}
