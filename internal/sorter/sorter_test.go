package sorter

import (
	"testing"

	"cardetl/internal/card"
	"cardetl/internal/normalize"
)

var cols = []string{"name", "side", "edhrecRank"}

func row(line int, name string, side card.Value, rank card.Value) normalize.Row {
	return normalize.Row{Line: line, Columns: cols, Values: []card.Value{card.Text(name), side, rank}}
}

func names(rows []normalize.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Get("name").String()
	}
	return out
}

func lines(rows []normalize.Row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Line
	}
	return out
}

/*
TestSort_CaseInsensitiveKeepsCasing verifies names that differ only by case
("Forest" and "forest") sort adjacently and both keep their original casing.
*/
func TestSort_CaseInsensitiveKeepsCasing(t *testing.T) {
	in := []normalize.Row{
		row(1, "forest", card.Text(""), card.Null()),
		row(2, "Island", card.Text(""), card.Null()),
		row(3, "Forest", card.Text(""), card.Null()),
		row(4, "Elvish Mystic", card.Text(""), card.Null()),
	}
	got := Sort(in, []string{"name"}, false)

	want := []string{"Elvish Mystic", "forest", "Forest", "Island"}
	for i, n := range names(got) {
		if n != want[i] {
			t.Fatalf("order = %q; want %q", names(got), want)
		}
	}
	if names(in)[0] != "forest" {
		t.Fatalf("input was reordered: %q", names(in))
	}
}

func TestSort_CaseSensitive(t *testing.T) {
	in := []normalize.Row{
		row(1, "forest", card.Text(""), card.Null()),
		row(2, "Island", card.Text(""), card.Null()),
		row(3, "Forest", card.Text(""), card.Null()),
	}
	got := names(Sort(in, []string{"name"}, true))
	want := []string{"Forest", "Island", "forest"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %q; want %q", got, want)
		}
	}
}

/*
TestSort_StableMultiKey verifies ties on the first key break on the second
and rows equal on every key keep their input order.
*/
func TestSort_StableMultiKey(t *testing.T) {
	in := []normalize.Row{
		row(1, "Fire // Ice", card.Text("b"), card.Null()),
		row(2, "Bala Ged Recovery", card.Text("a"), card.Null()),
		row(3, "Fire // Ice", card.Text("a"), card.Null()),
		row(4, "Fire // Ice", card.Text("a"), card.Null()),
		row(5, "Bala Ged Recovery", card.Text("a"), card.Null()),
	}
	got := lines(Sort(in, []string{"name", "side"}, false))
	want := []int{2, 5, 3, 4, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("lines = %v; want %v", got, want)
		}
	}
}

func TestSort_NullsLastNumeric(t *testing.T) {
	in := []normalize.Row{
		row(1, "A", card.Text(""), card.Null()),
		row(2, "B", card.Text(""), card.Int(100)),
		row(3, "C", card.Text(""), card.Int(9)),
		row(4, "D", card.Text(""), card.Null()),
		row(5, "E", card.Text(""), card.Int(25)),
	}
	got := lines(Sort(in, []string{"edhrecRank"}, false))
	want := []int{3, 5, 2, 1, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("lines = %v; want %v", got, want)
		}
	}
}

// TestSort_EmptySideLast verifies a printing without a side sorts after the
// lettered faces of the same name.
func TestSort_EmptySideLast(t *testing.T) {
	in := []normalize.Row{
		row(1, "Fire // Ice", card.Text(""), card.Null()),
		row(2, "Fire // Ice", card.Text("b"), card.Null()),
		row(3, "Fire // Ice", card.Null(), card.Null()),
		row(4, "Fire // Ice", card.Text("a"), card.Null()),
	}
	got := lines(Sort(in, []string{"name", "side"}, false))
	want := []int{4, 2, 1, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("lines = %v; want %v", got, want)
		}
	}
}

func TestSort_UnknownKeyPreservesOrder(t *testing.T) {
	in := []normalize.Row{
		row(1, "Z", card.Text(""), card.Null()),
		row(2, "A", card.Text(""), card.Null()),
	}
	got := lines(Sort(in, []string{"themeTags"}, false))
	if got[0] != 1 || got[1] != 2 {
		t.Fatalf("lines = %v", got)
	}
	if len(Sort(nil, []string{"name"}, false)) != 0 {
		t.Fatal("empty input should give empty output")
	}
}
