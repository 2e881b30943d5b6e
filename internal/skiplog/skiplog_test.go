package skiplog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open for read: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("readall: %v", err)
	}
	return rows
}

// TestNew_CreatesDirFileAndHeader verifies that New creates missing parent
// directories, creates the CSV file and writes the header immediately.
func TestNew_CreatesDirFileAndHeader(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "skipped", "commander.csv")
	l, err := New(target)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows := readRows(t, target)
	if len(rows) != 1 || !reflect.DeepEqual(rows[0], Header) {
		t.Fatalf("rows = %#v", rows)
	}
	if l.Path() != target {
		t.Fatalf("Path = %q", l.Path())
	}
}

// TestAdd_WritesRowsAndCounts ensures Add counts per kind and appends
// properly quoted CSV rows.
func TestAdd_WritesRowsAndCounts(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "skipped.csv")
	l, err := New(target)
	if err != nil {
		t.Fatal(err)
	}

	inputs := [][]string{
		{"excluded", "3", "Mana Crypt", "banned"},
		{"malformed", "7", "", `line 7: field "manaValue": malformed record`},
		{"excluded", "9", "Fire // Ice", "layout=split, not normal"},
	}
	for i, in := range inputs {
		line := []int{3, 7, 9}[i]
		if err := l.Add(in[0], line, in[2], in[3]); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	rows := readRows(t, target)
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	for i, want := range inputs {
		if !reflect.DeepEqual(rows[i+1], want) {
			t.Fatalf("row %d = %#v, want %#v", i+1, rows[i+1], want)
		}
	}

	want := []KindCount{{Kind: "excluded", Count: 2}, {Kind: "malformed", Count: 1}}
	if got := l.Counts(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Counts = %+v, want %+v", got, want)
	}
}

func TestNew_BadPath(t *testing.T) {
	t.Parallel()

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(filepath.Join(blocker, "sub", "skipped.csv")); err == nil {
		t.Fatal("expected error when parent is a file")
	}
}
