package pipeline

import (
	"context"
	"strconv"
	"testing"

	"cardetl/internal/card"
	"cardetl/internal/rules"
	"cardetl/internal/storage"
)

type discardRepo struct{}

func (discardRepo) CopyFrom(_ context.Context, _ []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}
func (discardRepo) Exec(context.Context, string) error { return nil }
func (discardRepo) Close()                             {}

func benchInput(n int) []card.Raw {
	idents := []string{"", "W", "U, B", "B, G, R", "G"}
	out := make([]card.Raw, n)
	for i := range out {
		out[i] = paper(i+2, "Card "+strconv.Itoa(n-i),
			"colorIdentity", idents[i%len(idents)],
			"edhrecRank", strconv.Itoa(i%5000),
			"manaValue", strconv.Itoa(i%8),
			"keywords", "Flying, Haste",
			"power", "2", "toughness", "1+*",
		)
	}
	return out
}

// BenchmarkRunAndLoad exercises decode, filter, normalize and sort over a
// synthetic export and then batches the dataset into a repository that
// discards the rows, so the numbers exclude real I/O.
//
// Run with:
//
//	go test ./internal/pipeline -run=^$ -bench ^BenchmarkRunAndLoad$ -benchmem
func BenchmarkRunAndLoad(b *testing.B) {
	ctx := context.Background()
	in := benchInput(20000)
	tb := rules.Default()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ds, _, err := Run(ctx, in, tb, Options{Job: "bench"})
		if err != nil {
			b.Fatalf("Run: %v", err)
		}
		rows := make([][]any, ds.Len())
		for j, r := range ds.Rows {
			rows[j] = r.SQLValues()
		}
		if _, err := storage.Load(ctx, discardRepo{}, ds.Columns, rows, storage.LoadOptions{Job: "bench"}); err != nil {
			b.Fatalf("Load: %v", err)
		}
	}
	b.ReportMetric(float64(len(in)*b.N)/b.Elapsed().Seconds(), "rows/s")
}
