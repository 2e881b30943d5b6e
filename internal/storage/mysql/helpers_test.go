package mysql

import (
	"testing"

	"cardetl/internal/ddl"
)

func mustDef(t *testing.T) ddl.TableDef {
	t.Helper()
	td, err := ddl.FromColumns("cards", []string{"name", "manaValue"}, []string{"name"}, Dialect)
	if err != nil {
		t.Fatal(err)
	}
	return td
}
