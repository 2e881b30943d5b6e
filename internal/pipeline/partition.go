package pipeline

import (
	"cardetl/internal/card"
	"cardetl/internal/rules"
)

// Colorless is the partition label for rows whose color identity is empty or
// not in the label table.
const Colorless = "colorless"

// Partition splits ds by the color identity label of each row, preserving row
// order inside each part. Every part shares ds.Columns.
func Partition(ds Dataset, t *rules.Tables) map[string]Dataset {
	out := make(map[string]Dataset)
	for _, row := range ds.Rows {
		label := labelOf(row.Get(card.ColColorIdentity), t)
		part := out[label]
		part.Columns = ds.Columns
		part.Rows = append(part.Rows, row)
		out[label] = part
	}
	return out
}

func labelOf(v card.Value, t *rules.Tables) string {
	s, ok := v.Str()
	if !ok || s == "" {
		return Colorless
	}
	ci, err := card.ParseColorIdentity(s)
	if err != nil {
		return Colorless
	}
	if l, ok := t.ColorIdentityLabel(ci); ok {
		return l
	}
	return Colorless
}
