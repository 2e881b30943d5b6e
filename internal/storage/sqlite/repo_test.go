package sqlite

import (
	"context"
	"strings"
	"testing"

	"cardetl/internal/storage"
)

func newRepo(tb testing.TB, table string) *Repository {
	tb.Helper()
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: ":memory:", Table: table})
	if err != nil {
		tb.Fatalf("NewRepository: %v", err)
	}
	tb.Cleanup(closeFn)
	return r
}

/*
TestEnsureTableAndCopyFrom creates the card table from the column kinds and
loads a batch holding text, integer, float and null values.
*/
func TestEnsureTableAndCopyFrom(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t, "cards")

	cols := []string{"name", "edhrecRank", "manaValue", "keywords"}
	if err := storage.EnsureTable(ctx, "sqlite", &wrappedRepo{Repository: r}, "cards", cols, []string{"name"}); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	// Idempotent.
	if err := storage.EnsureTable(ctx, "sqlite", &wrappedRepo{Repository: r}, "cards", cols, []string{"name"}); err != nil {
		t.Fatalf("EnsureTable again: %v", err)
	}

	rows := [][]any{
		{"Sol Ring", int64(1), float64(1), ""},
		{"Arcane Signet", nil, float64(2), "Flying, Trample"},
	}
	n, err := r.CopyFrom(ctx, cols, rows)
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 2 {
		t.Fatalf("CopyFrom = %d, want 2", n)
	}

	var (
		name string
		rank *int64
		mv   float64
		kw   string
	)
	err = r.db.QueryRowContext(ctx, `SELECT "name", "edhrecRank", "manaValue", "keywords" FROM "cards" WHERE "name" = 'Arcane Signet'`).Scan(&name, &rank, &mv, &kw)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rank != nil || mv != 2 || kw != "Flying, Trample" {
		t.Fatalf("row = %q %v %v %q", name, rank, mv, kw)
	}
}

func TestCopyFrom_RequiredColumnRejectsNull(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t, "cards")
	if err := storage.EnsureTable(ctx, "sqlite", &wrappedRepo{Repository: r}, "cards", []string{"name"}, []string{"name"}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.CopyFrom(ctx, []string{"name"}, [][]any{{"ok"}, {nil}}); err == nil {
		t.Fatal("expected NOT NULL violation")
	}
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "cards"`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("count = %d; failed batch should roll back", count)
	}
}

func TestCopyFrom_Validation(t *testing.T) {
	r := newRepo(t, "cards")
	if _, err := r.CopyFrom(context.Background(), nil, [][]any{{1}}); err == nil {
		t.Fatal("expected error for empty columns")
	}
	if n, err := r.CopyFrom(context.Background(), []string{"name"}, nil); err != nil || n != 0 {
		t.Fatalf("empty batch: n=%d err=%v", n, err)
	}
	if err := r.Exec(context.Background(), `CREATE TABLE "cards" ("name" TEXT)`); err != nil {
		t.Fatal(err)
	}
	_, err := r.CopyFrom(context.Background(), []string{"name"}, [][]any{{"a", "b"}})
	if err == nil || !strings.Contains(err.Error(), "row length") {
		t.Fatalf("err = %v", err)
	}
}

func TestTruncate(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t, "cards")
	if err := r.Exec(ctx, `CREATE TABLE "cards" ("name" TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := r.CopyFrom(ctx, []string{"name"}, [][]any{{"a"}, {"b"}}); err != nil {
		t.Fatal(err)
	}
	if err := storage.Truncate(ctx, "sqlite", &wrappedRepo{Repository: r}, "cards"); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "cards"`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("count = %d after truncate", count)
	}
}

func TestInsertSQL(t *testing.T) {
	got := insertSQL("main.cards", []string{"name", "faceName"})
	want := `INSERT INTO "main"."cards" ("name", "faceName") VALUES (?, ?)`
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	if _, _, err := NewRepository(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

// TestSQLiteStorageRegistrationUsesNewRepositoryHook verifies that the
// "sqlite" kind registered in init() uses the newRepository hook and that
// wrappedRepo delegates Close.
func TestSQLiteStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var (
		gotCfg Config
		closed bool
		fake   = &Repository{}
	)
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return fake, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: "cards.db", Table: "cards"})
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	if gotCfg.DSN != "cards.db" || gotCfg.Table != "cards" {
		t.Fatalf("hook cfg = %+v", gotCfg)
	}
	w, ok := repo.(*wrappedRepo)
	if !ok || w.Repository != fake {
		t.Fatalf("storage.New() = %T", repo)
	}
	repo.Close()
	if !closed {
		t.Fatalf("wrappedRepo.Close() did not invoke closeFn")
	}
}
