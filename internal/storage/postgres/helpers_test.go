package postgres

import (
	"testing"

	"cardetl/internal/ddl"
)

func mustDef(t *testing.T) ddl.TableDef {
	t.Helper()
	td, err := ddl.FromColumns("public.cards", []string{"name", "edhrecRank", "manaValue"}, []string{"name"}, Dialect)
	if err != nil {
		t.Fatalf("FromColumns: %v", err)
	}
	return td
}
