package all

import (
	"slices"
	"testing"

	"cardetl/internal/storage"
)

func TestAllKindsRegistered(t *testing.T) {
	kinds := storage.ListKinds()
	for _, k := range []string{"csv", "postgres", "sqlite", "mssql", "mysql"} {
		if !slices.Contains(kinds, k) {
			t.Errorf("kind %q not registered; have %v", k, kinds)
		}
	}
}
