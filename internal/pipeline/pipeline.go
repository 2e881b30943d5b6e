// Package pipeline composes the card stages into one run:
//
//	raw → decode → filter → (dedupe) → normalize → sort → Dataset
//
// Decode, filter and normalize are independent per record, so they run over
// contiguous chunks of the input in parallel. Chunk results are concatenated
// in input order, which keeps the output identical to a sequential run.
// Dedupe and sort need the whole batch and run on the merged slice.
//
// A run never mutates the rule tables and never returns a partial dataset:
// a missing required column fails the whole run, whether it is caught while
// decoding (a nameless row) or while normalizing a kept record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"cardetl/internal/card"
	"cardetl/internal/filter"
	"cardetl/internal/metrics"
	"cardetl/internal/normalize"
	"cardetl/internal/rules"
	"cardetl/internal/sorter"
)

// RejectKind classifies a record dropped before the output dataset.
type RejectKind string

const (
	RejectMalformed RejectKind = "malformed"
	RejectExcluded  RejectKind = "excluded"
	RejectDuplicate RejectKind = "duplicate"
)

// Reject describes one dropped record.
type Reject struct {
	Kind   RejectKind
	Line   int
	Name   string
	Reason string
	Err    error // set for malformed records
}

// Options tune a run. The zero value is a valid sequential configuration
// without de-duplication.
type Options struct {
	// Job labels metrics; defaults to "cardetl".
	Job string

	// Workers bounds the parallel stages. <= 0 means GOMAXPROCS.
	Workers int

	// Dedupe keeps only the first printing of each (face name, side).
	Dedupe bool

	// OnReject, if set, is called for every dropped record in input order
	// from the calling goroutine.
	OnReject func(Reject)
}

// Dataset is the normalized, sorted output of a run.
type Dataset struct {
	Columns []string
	Rows    []normalize.Row
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Rows) }

// Summary counts what happened to the input batch.
//
//	Input == Malformed + Excluded + Duplicates + Output
type Summary struct {
	Input      int
	Malformed  int
	Excluded   int
	Duplicates int
	Output     int
}

// minChunk keeps tiny batches on a single goroutine.
const minChunk = 256

// Run decodes raw rows and runs them through the pipeline. Malformed rows are
// skipped and counted. The only error a run returns for data is a missing
// required column (card.ErrMissingRequiredField); context cancellation is
// also reported.
func Run(ctx context.Context, raw []card.Raw, t *rules.Tables, opt Options) (Dataset, Summary, error) {
	opt = opt.withDefaults()
	ds := Dataset{Columns: t.ColumnOrder()}
	if len(raw) == 0 {
		return ds, Summary{}, nil
	}

	sum := Summary{Input: len(raw)}
	start := time.Now()
	kept, rejects, err := decodeAndFilter(ctx, raw, t, opt.Workers)
	metrics.RecordStep(opt.Job, "decode_filter", err, time.Since(start))
	if err != nil {
		return Dataset{}, Summary{}, err
	}
	report(opt, rejects, &sum)

	return finish(ctx, kept, ds, sum, t, opt)
}

// RunRecords runs already decoded records through filter, dedupe, normalize
// and sort.
func RunRecords(ctx context.Context, recs []card.Record, t *rules.Tables, opt Options) (Dataset, Summary, error) {
	opt = opt.withDefaults()
	ds := Dataset{Columns: t.ColumnOrder()}
	if len(recs) == 0 {
		return ds, Summary{}, nil
	}

	sum := Summary{Input: len(recs)}
	start := time.Now()
	kept, rejects, err := filterRecords(ctx, recs, t, opt.Workers)
	metrics.RecordStep(opt.Job, "filter", err, time.Since(start))
	if err != nil {
		return Dataset{}, Summary{}, err
	}
	report(opt, rejects, &sum)

	return finish(ctx, kept, ds, sum, t, opt)
}

func (o Options) withDefaults() Options {
	if o.Job == "" {
		o.Job = "cardetl"
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

func finish(ctx context.Context, kept []card.Record, ds Dataset, sum Summary, t *rules.Tables, opt Options) (Dataset, Summary, error) {
	if opt.Dedupe {
		var dups []Reject
		kept, dups = dedupe(kept)
		report(opt, dups, &sum)
	}

	start := time.Now()
	rows, err := normalizeAll(ctx, kept, t, opt.Workers)
	metrics.RecordStep(opt.Job, "normalize", err, time.Since(start))
	if err != nil {
		return Dataset{}, Summary{}, fmt.Errorf("normalize: %w", err)
	}

	start = time.Now()
	ds.Rows = sorter.Sort(rows, t.SortKeys(), t.SortCaseSensitive())
	metrics.RecordStep(opt.Job, "sort", nil, time.Since(start))

	sum.Output = len(ds.Rows)
	metrics.RecordRow(opt.Job, "input", int64(sum.Input))
	metrics.RecordRow(opt.Job, "malformed", int64(sum.Malformed))
	metrics.RecordRow(opt.Job, "excluded", int64(sum.Excluded))
	metrics.RecordRow(opt.Job, "duplicates", int64(sum.Duplicates))
	metrics.RecordRow(opt.Job, "output", int64(sum.Output))
	return ds, sum, nil
}

func report(opt Options, rejects []Reject, sum *Summary) {
	for _, r := range rejects {
		switch r.Kind {
		case RejectMalformed:
			sum.Malformed++
		case RejectExcluded:
			sum.Excluded++
		case RejectDuplicate:
			sum.Duplicates++
		}
		if opt.OnReject != nil {
			opt.OnReject(r)
		}
	}
}

// chunkResult is what one worker hands back. Workers only write their own
// slot, so no locking is needed.
type chunkResult[T any] struct {
	out     []T
	rejects []Reject
	err     error
}

// parallel splits n items into contiguous chunks and runs fn on each. Results
// come back in chunk order. The first failing chunk (by position, not by time)
// decides the returned error so runs are deterministic.
func parallel[T any](ctx context.Context, n, workers int, fn func(ctx context.Context, lo, hi int) chunkResult[T]) ([]T, []Reject, error) {
	chunks := workers
	if limit := (n + minChunk - 1) / minChunk; chunks > limit {
		chunks = limit
	}
	if chunks < 1 {
		chunks = 1
	}
	size := (n + chunks - 1) / chunks

	results := make([]chunkResult[T], chunks)
	g, gctx := errgroup.WithContext(ctx)
	for c := 0; c < chunks; c++ {
		lo := c * size
		if lo >= n {
			break
		}
		hi := min(lo+size, n)
		g.Go(func() error {
			results[c] = fn(gctx, lo, hi)
			return results[c].err
		})
	}
	gerr := g.Wait()

	var (
		out     []T
		rejects []Reject
	)
	for _, r := range results {
		if r.err != nil && !errors.Is(r.err, context.Canceled) {
			return nil, nil, r.err
		}
		out = append(out, r.out...)
		rejects = append(rejects, r.rejects...)
	}
	if gerr != nil {
		return nil, nil, gerr
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return out, rejects, nil
}

func decodeAndFilter(ctx context.Context, raw []card.Raw, t *rules.Tables, workers int) ([]card.Record, []Reject, error) {
	return parallel(ctx, len(raw), workers, func(ctx context.Context, lo, hi int) chunkResult[card.Record] {
		var res chunkResult[card.Record]
		res.out = make([]card.Record, 0, hi-lo)
		for i := lo; i < hi; i++ {
			if (i-lo)%minChunk == 0 && ctx.Err() != nil {
				res.err = ctx.Err()
				return res
			}
			rec, err := card.Decode(raw[i])
			if errors.Is(err, card.ErrMissingRequiredField) {
				res.err = err
				return res
			}
			if err != nil {
				res.rejects = append(res.rejects, Reject{
					Kind:   RejectMalformed,
					Line:   raw[i].Line,
					Name:   raw[i].Fields[card.ColName],
					Reason: err.Error(),
					Err:    err,
				})
				continue
			}
			if reason, ok := filter.Evaluate(rec, t); !ok {
				res.rejects = append(res.rejects, excluded(rec, reason))
				continue
			}
			res.out = append(res.out, rec)
		}
		return res
	})
}

func filterRecords(ctx context.Context, recs []card.Record, t *rules.Tables, workers int) ([]card.Record, []Reject, error) {
	return parallel(ctx, len(recs), workers, func(ctx context.Context, lo, hi int) chunkResult[card.Record] {
		var res chunkResult[card.Record]
		res.out = make([]card.Record, 0, hi-lo)
		for i := lo; i < hi; i++ {
			if (i-lo)%minChunk == 0 && ctx.Err() != nil {
				res.err = ctx.Err()
				return res
			}
			if reason, ok := filter.Evaluate(recs[i], t); !ok {
				res.rejects = append(res.rejects, excluded(recs[i], reason))
				continue
			}
			res.out = append(res.out, recs[i])
		}
		return res
	})
}

func excluded(rec card.Record, reason filter.Reason) Reject {
	return Reject{Kind: RejectExcluded, Line: rec.Line, Name: rec.Name, Reason: reason.String()}
}

func normalizeAll(ctx context.Context, recs []card.Record, t *rules.Tables, workers int) ([]normalize.Row, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	order, required := t.ColumnOrder(), t.RequiredColumns()
	rows, _, err := parallel(ctx, len(recs), workers, func(ctx context.Context, lo, hi int) chunkResult[normalize.Row] {
		var res chunkResult[normalize.Row]
		res.out = make([]normalize.Row, 0, hi-lo)
		for i := lo; i < hi; i++ {
			if (i-lo)%minChunk == 0 && ctx.Err() != nil {
				res.err = ctx.Err()
				return res
			}
			row, err := normalize.Normalize(recs[i], order, required)
			if err != nil {
				res.err = err
				return res
			}
			res.out = append(res.out, row)
		}
		return res
	})
	return rows, err
}
