package mysql

import (
	"context"
	"strings"
	"testing"

	"cardetl/internal/storage"
)

func TestInsertSQL(t *testing.T) {
	stmt, args, err := insertSQL("cards.commander", []string{"name", "edhrecRank"}, [][]any{
		{"Sol Ring", int64(1)},
		{"Command Tower", nil},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "INSERT INTO `cards`.`commander` (`name`, `edhrecRank`) VALUES (?, ?), (?, ?)"
	if stmt != want {
		t.Fatalf("stmt = %q\nwant %q", stmt, want)
	}
	if len(args) != 4 || args[2] != "Command Tower" || args[3] != nil {
		t.Fatalf("args = %#v", args)
	}

	if _, _, err := insertSQL("t", []string{"a", "b"}, [][]any{{1}}); err == nil || !strings.Contains(err.Error(), "row length") {
		t.Fatalf("err = %v", err)
	}
}

/*
TestChunkRows checks that batches are split so no statement exceeds the
placeholder limit and no row is lost.
*/
func TestChunkRows(t *testing.T) {
	per := rowsPerStatement(20)
	if per*20 > maxPlaceholders {
		t.Fatalf("rowsPerStatement(20) = %d exceeds the limit", per)
	}
	rows := make([][]any, per*2+3)
	chunks := chunkRows(rows, per)
	if len(chunks) != 3 || len(chunks[2]) != 3 {
		t.Fatalf("chunks = %d, last = %d", len(chunks), len(chunks[len(chunks)-1]))
	}
	if len(chunkRows(nil, per)) != 0 {
		t.Fatal("empty input should yield no chunks")
	}
	if rowsPerStatement(maxPlaceholders*2) != 1 {
		t.Fatal("rowsPerStatement must be at least 1")
	}
}

func TestNewRepository_BadDSN(t *testing.T) {
	_, _, err := NewRepository(context.Background(), Config{DSN: "not a dsn"})
	if err == nil || !strings.Contains(err.Error(), "mysql dsn") {
		t.Fatalf("err = %v", err)
	}
}

func TestAdapterRegistration(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		if cfg.Table != "cards" {
			t.Errorf("cfg.Table = %q", cfg.Table)
		}
		return &Repository{}, func() { closed = true }, nil
	}
	repo, err := storage.New(context.Background(), storage.Config{Kind: "mysql", DSN: "u:p@tcp(localhost:3306)/db", Table: "cards"})
	if err != nil {
		t.Fatal(err)
	}
	repo.Close()
	if !closed {
		t.Fatal("Close did not call closeFn")
	}
}

func TestDialect(t *testing.T) {
	got, err := Dialect.BuildCreateTableSQL(mustDef(t))
	if err != nil {
		t.Fatal(err)
	}
	want := "CREATE TABLE IF NOT EXISTS `cards` (\n  `name` LONGTEXT NOT NULL,\n  `manaValue` DOUBLE\n);"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}
