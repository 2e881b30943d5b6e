package normalize

import (
	"errors"
	"testing"

	"cardetl/internal/card"
	"cardetl/internal/rules"
)

func decode(t *testing.T, fields map[string]string) card.Record {
	t.Helper()
	rec, err := card.Decode(card.Raw{Line: 2, Fields: fields})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return rec
}

/*
TestNormalize_FillsOptional verifies that every column in the order is
present in the output, with kind-appropriate empty values for absent fields
and empty lists for the enrichment columns.
*/
func TestNormalize_FillsOptional(t *testing.T) {
	tb := rules.Default()
	rec := decode(t, map[string]string{"name": "Sol Ring", "layout": "normal"})

	row, err := Normalize(rec, tb.ColumnOrder(), tb.RequiredColumns())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(row.Values) != len(tb.ColumnOrder()) || row.Line != 2 {
		t.Fatalf("row = %+v", row)
	}
	for i, col := range tb.ColumnOrder() {
		if row.Columns[i] != col {
			t.Fatalf("column %d = %s; want %s", i, row.Columns[i], col)
		}
	}

	checks := map[string]card.Value{
		"name":          card.Text("Sol Ring"),
		"layout":        card.Text("normal"),
		"faceName":      card.Text(""),
		"text":          card.Text(""),
		"colors":        card.List(),
		"keywords":      card.List(),
		"creatureTypes": card.List(),
		"themeTags":     card.List(),
		"edhrecRank":    card.Null(),
		"manaValue":     card.Null(),
		"power":         card.Null(),
	}
	for col, want := range checks {
		if got := row.Get(col); !got.Equal(want) {
			t.Errorf("%s = %v (%s); want %v (%s)", col, got, got.Kind(), want, want.Kind())
		}
	}
}

func TestNormalize_MissingRequired(t *testing.T) {
	tb := rules.Default()
	rec := decode(t, map[string]string{"name": "Sol Ring"})

	_, err := Normalize(rec, tb.ColumnOrder(), []string{"name", "type"})
	if !errors.Is(err, card.ErrMissingRequiredField) {
		t.Fatalf("err = %v; want ErrMissingRequiredField", err)
	}
	var fe *card.FieldError
	if !errors.As(err, &fe) || fe.Field != "type" || fe.Line != 2 {
		t.Fatalf("field error = %+v", fe)
	}
}

func TestNormalize_EnrichmentColumnsNeverRequiredError(t *testing.T) {
	order := []string{"name", "creatureTypes", "themeTags"}
	rec := decode(t, map[string]string{"name": "Llanowar Elves"})
	row, err := Normalize(rec, order, order)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !row.Get("themeTags").Equal(card.List()) {
		t.Fatalf("themeTags = %v", row.Get("themeTags"))
	}
}

/*
TestNormalize_Idempotent verifies that normalizing an already normalized row
yields an identical row.
*/
func TestNormalize_Idempotent(t *testing.T) {
	tb := rules.Default()
	rec := decode(t, map[string]string{
		"name": "Fire // Ice", "faceName": "Fire", "side": "a",
		"manaValue": "4", "colors": "R", "power": "", "keywords": "",
		"edhrecRank": "900", "type": "Instant",
	})
	once, err := Normalize(rec, tb.ColumnOrder(), tb.RequiredColumns())
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Normalize(once, tb.ColumnOrder(), tb.RequiredColumns())
	if err != nil {
		t.Fatal(err)
	}
	if !once.Equal(twice) || once.Line != twice.Line {
		t.Fatalf("not idempotent:\n%v\n%v", once.Strings(), twice.Strings())
	}
}

/*
TestNormalize_RoundTrip verifies that projecting a normalized row back onto
the raw columns recovers every value the record carried.
*/
func TestNormalize_RoundTrip(t *testing.T) {
	tb := rules.Default()
	rec := decode(t, map[string]string{
		"name": "Tarmogoyf", "colorIdentity": "G", "colors": "G",
		"manaCost": "{1}{G}", "manaValue": "2", "type": "Creature — Lhurgoyf",
		"layout": "normal", "text": "...", "power": "*", "toughness": "1+*",
		"keywords": "", "edhrecRank": "1200",
	})
	row, err := Normalize(rec, tb.ColumnOrder(), tb.RequiredColumns())
	if err != nil {
		t.Fatal(err)
	}
	back := row.Project(tb.DesiredColumns())
	for _, col := range tb.DesiredColumns() {
		want, present := rec.Lookup(col)
		if !present {
			continue
		}
		if got := back[col]; !got.Equal(want) {
			t.Errorf("%s: got %v want %v", col, got, want)
		}
	}
}

func TestRow_Renderers(t *testing.T) {
	row := Row{
		Columns: []string{"name", "keywords", "edhrecRank"},
		Values:  []card.Value{card.Text("Sol Ring"), card.List("A", "B"), card.Null()},
	}
	got := row.Strings()
	if got[0] != "Sol Ring" || got[1] != "A, B" || got[2] != "" {
		t.Fatalf("Strings = %q", got)
	}
	sv := row.SQLValues()
	if sv[2] != nil || sv[1] != "A, B" {
		t.Fatalf("SQLValues = %#v", sv)
	}
}
