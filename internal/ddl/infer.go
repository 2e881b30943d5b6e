package ddl

import (
	"fmt"
	"slices"
	"strings"

	"cardetl/internal/card"
)

// FromColumns builds a table definition for the normalized dataset. Column
// types follow card.KindOf; required columns are NOT NULL because a run never
// emits a row without them.
func FromColumns(fqn string, columns, required []string, d Dialect) (TableDef, error) {
	if strings.TrimSpace(fqn) == "" {
		return TableDef{}, fmt.Errorf("%s: table is required", d.Name)
	}
	if len(columns) == 0 {
		return TableDef{}, fmt.Errorf("%s: columns must not be empty", d.Name)
	}

	defs := make([]ColumnDef, 0, len(columns))
	for _, name := range columns {
		defs = append(defs, ColumnDef{
			Name:     name,
			SQLType:  d.MapKind(card.KindOf(name)),
			Nullable: !slices.Contains(required, name),
		})
	}
	return TableDef{FQN: fqn, Columns: defs}, nil
}
