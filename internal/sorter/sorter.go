// Package sorter orders normalized rows by a list of sort keys.
//
// The sort is stable and multi-key. When case folding is enabled only the
// comparison key is folded; the rows keep their original casing. Null values
// and empty text sort after everything else so rows with missing keys land at
// the end. Normalization fills absent text columns such as side with "".
package sorter

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"cardetl/internal/card"
	"cardetl/internal/normalize"
)

// Sort returns a new slice holding rows ordered by keys. The input slice is
// not modified. Keys a row does not carry compare as Null, and so does
// empty text.
func Sort(rows []normalize.Row, keys []string, caseSensitive bool) []normalize.Row {
	out := slices.Clone(rows)
	if len(out) < 2 || len(keys) == 0 {
		return out
	}

	// Precompute comparison keys once per row; folding inside the comparator
	// would redo the work O(n log n) times.
	type keyed struct {
		row  normalize.Row
		keys []sortKey
	}
	var fold cases.Caser
	if !caseSensitive {
		fold = cases.Fold()
	}
	ks := make([]keyed, len(out))
	for i, r := range out {
		k := keyed{row: r, keys: make([]sortKey, len(keys))}
		for j, col := range keys {
			k.keys[j] = makeKey(r.Get(col), caseSensitive, fold)
		}
		ks[i] = k
	}

	slices.SortStableFunc(ks, func(a, b keyed) int {
		for i := range a.keys {
			if c := a.keys[i].compare(b.keys[i]); c != 0 {
				return c
			}
		}
		return 0
	})

	for i := range ks {
		out[i] = ks[i].row
	}
	return out
}

type sortKey struct {
	null    bool
	numeric bool
	n       float64
	s       string
}

func makeKey(v card.Value, caseSensitive bool, fold cases.Caser) sortKey {
	if v.IsNull() {
		return sortKey{null: true}
	}
	if s, ok := v.Str(); ok && s == "" {
		return sortKey{null: true}
	}
	if n, ok := v.Number(); ok {
		return sortKey{numeric: true, n: n}
	}
	s := v.String()
	if !caseSensitive {
		s = fold.String(s)
	}
	return sortKey{s: s}
}

// compare orders null last, numbers before text, numbers numerically and
// text bytewise.
func (a sortKey) compare(b sortKey) int {
	switch {
	case a.null && b.null:
		return 0
	case a.null:
		return 1
	case b.null:
		return -1
	case a.numeric && b.numeric:
		return cmp.Compare(a.n, b.n)
	case a.numeric:
		return -1
	case b.numeric:
		return 1
	}
	return strings.Compare(a.s, b.s)
}
