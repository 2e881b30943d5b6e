package mssql

import (
	"fmt"
	"strings"

	"cardetl/internal/card"
	"cardetl/internal/ddl"
)

// Dialect quotes with [brackets] and guards CREATE TABLE with OBJECT_ID since
// T-SQL has no CREATE TABLE IF NOT EXISTS.
var Dialect = ddl.Dialect{
	Name:       "mssql ddl",
	QuoteIdent: quoteIdent,
	MapKind: func(k card.Kind) string {
		switch k {
		case card.KindInt:
			return "BIGINT"
		case card.KindFloat:
			return "FLOAT"
		default:
			return "NVARCHAR(MAX)"
		}
	},
	Wrap: func(fqn, body string) string {
		return fmt.Sprintf(
			"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n  %s\n  );\nEND;",
			strings.ReplaceAll(fqn, "'", "''"), fqn, body,
		)
	},
}

// quoteIdent quotes a single identifier segment using bracket syntax,
// escaping closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
