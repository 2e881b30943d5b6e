package pipeline

import (
	"strconv"

	"github.com/zeebo/xxh3"

	"cardetl/internal/card"
)

// dedupeKey hashes the printing-independent identity of a card face: the face
// name (or card name for single-faced cards) plus the side letter.
func dedupeKey(rec card.Record) uint64 {
	name := rec.Name
	if fn, ok := rec.FaceName.Get(); ok && fn != "" {
		name = fn
	}
	h := xxh3.New()
	_, _ = h.WriteString(name)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(rec.Side.Or(""))
	return h.Sum64()
}

// dedupe keeps the first record seen for each key. Order is preserved.
// Records sharing a hash are compared by name and side, so a collision never
// drops a distinct card.
func dedupe(recs []card.Record) ([]card.Record, []Reject) {
	type ident struct{ name, side string }
	seen := make(map[uint64][]ident, len(recs))
	out := make([]card.Record, 0, len(recs))
	var dups []Reject

	for _, rec := range recs {
		k := dedupeKey(rec)
		id := ident{name: rec.FaceName.Or(""), side: rec.Side.Or("")}
		if id.name == "" {
			id.name = rec.Name
		}
		dup := false
		for _, prev := range seen[k] {
			if prev == id {
				dup = true
				break
			}
		}
		if dup {
			dups = append(dups, Reject{
				Kind:   RejectDuplicate,
				Line:   rec.Line,
				Name:   rec.Name,
				Reason: "duplicate of " + strconv.Quote(id.name) + " side " + strconv.Quote(id.side),
			})
			continue
		}
		seen[k] = append(seen[k], id)
		out = append(out, rec)
	}
	return out, dups
}
