// Package main wires the card pipeline end-to-end:
//
//	source → CSV reader → pipeline.Run → storage sink(s)
//
// The CLI layer stays thin. It depends only on storage-agnostic interfaces
// and never imports database drivers or backend-specific packages directly.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"cardetl/internal/config"
	"cardetl/internal/datasource"
	"cardetl/internal/datasource/file"
	"cardetl/internal/datasource/httpds"
	csvparser "cardetl/internal/parser/csv"
	"cardetl/internal/pipeline"
	"cardetl/internal/rules"
	"cardetl/internal/skiplog"
	"cardetl/internal/storage"
)

// runtimeConfig contains the resolved concurrency and buffering configuration
// for a run. Values are derived from the pipeline file with optional
// environment variable overrides (12-factor style).
type runtimeConfig struct {
	workers       int
	loaderWorkers int
	batchSize     int
	bufferSize    int
}

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return storage.New(ctx, cfg)
	}

	openSourceFn = openSource

	loadRulesFn = rules.Load
)

// runStats is the end-of-run accounting.
type runStats struct {
	unreadable int
	summary    pipeline.Summary
	written    int64
}

// run executes one batch: read the whole export, filter and normalize it,
// then write the dataset to the configured sink.
//
// Unreadable lines and malformed records are dropped (fail-soft) and
// summarized at the end; a missing required column aborts the run before
// anything is written.
func run(ctx context.Context, p config.Pipeline) error {
	rt := newRuntimeConfig(p)
	log.Printf("runtime: workers=%d loaders=%d batch=%d buffer=%d",
		rt.workers, rt.loaderWorkers, rt.batchSize, rt.bufferSize)

	tables, err := loadRulesFn(p.Rules.Path)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	rs, err := newRejectSink(p.SkipLog.Path)
	if err != nil {
		return err
	}
	defer rs.close()

	src, err := openSourceFn(ctx, p)
	if err != nil {
		return err
	}
	opt := csvparser.OptionsFrom(p.Parser.Options)
	opt.RequiredHeaders = tables.DesiredColumns()

	var stats runStats
	start := time.Now()
	raw, err := csvparser.ReadAll(ctx, src, opt, func(line int, err error) {
		stats.unreadable++
		rs.add("unreadable", line, "", err.Error())
	})
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	log.Printf("reader: rows=%d unreadable=%d elapsed=%s",
		len(raw), stats.unreadable, time.Since(start).Truncate(time.Millisecond))

	ds, sum, err := pipeline.Run(ctx, raw, tables, pipeline.Options{
		Job:      p.Job,
		Workers:  rt.workers,
		Dedupe:   p.Process.Dedupe,
		OnReject: rs.reject,
	})
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	stats.summary = sum

	switch p.Storage.Kind {
	case "csv":
		stats.written, err = writeCSV(ctx, p, tables, ds, rt)
	default:
		stats.written, err = writeDB(ctx, p, tables, ds, rt)
	}
	if err != nil {
		return err
	}

	if err := rs.close(); err != nil {
		return err
	}
	rs.logSummaries()
	logGlobalSummary(stats)
	return nil
}

func newRuntimeConfig(p config.Pipeline) runtimeConfig {
	rt := runtimeConfig{
		workers:       getenvInt("CARDETL_WORKERS", pickInt(p.Runtime.Workers, 0)),
		loaderWorkers: getenvInt("CARDETL_LOADER_WORKERS", pickInt(p.Runtime.LoaderWorkers, 4)),
		batchSize:     getenvInt("CARDETL_BATCH_SIZE", pickInt(p.Runtime.BatchSize, 5000)),
	}
	rt.bufferSize = getenvInt("CARDETL_CH_BUFFER", pickInt(p.Runtime.ChannelBuffer, 4*rt.batchSize))
	if rt.loaderWorkers < 1 {
		rt.loaderWorkers = 1
	}
	return rt
}

// openSource maps source configuration onto a reader.
func openSource(ctx context.Context, p config.Pipeline) (io.ReadCloser, error) {
	var (
		src      datasource.Source
		location string
	)
	switch p.Source.Kind {
	case "file":
		l := file.NewLocal(p.Source.File.Path)
		src, location = l, l.Path()
	case "http":
		h := p.Source.HTTP
		s := httpds.NewSource(h.URL, httpds.Config{
			Timeout:            time.Duration(h.TimeoutSeconds) * time.Second,
			MaxRetries:         h.MaxRetries,
			InsecureSkipVerify: h.InsecureSkipVerify,
		})
		src, location = s, s.URL()
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", p.Source.Kind)
	}
	log.Printf("source: kind=%s location=%s", p.Source.Kind, location)
	return src.Open(ctx)
}

// writeCSV writes ds to one file, or to one <label>.csv per color identity
// when splitting. Parts are written concurrently, bounded by loaderWorkers.
func writeCSV(ctx context.Context, p config.Pipeline, t *rules.Tables, ds pipeline.Dataset, rt runtimeConfig) (int64, error) {
	c := p.Storage.CSV
	if !c.SplitByColorIdentity {
		return writeDataset(ctx, p, storage.Config{Kind: "csv", Path: c.Path, Columns: ds.Columns}, ds, rt)
	}

	parts := pipeline.Partition(ds, t)
	labels := make([]string, 0, len(parts))
	for l := range parts {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	var total atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.loaderWorkers)
	for _, label := range labels {
		part := parts[label]
		path := filepath.Join(c.Dir, label+".csv")
		g.Go(func() error {
			n, err := writeDataset(gctx, p, storage.Config{Kind: "csv", Path: path, Columns: part.Columns}, part, rt)
			if err != nil {
				return fmt.Errorf("write %s: %w", label, err)
			}
			log.Printf("sink: label=%s rows=%d path=%s", label, n, path)
			total.Add(n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return total.Load(), err
	}
	log.Printf("sink: parts=%d dir=%s", len(labels), c.Dir)
	return total.Load(), nil
}

// writeDB loads ds into the configured database table, creating and
// truncating it first when asked to.
func writeDB(ctx context.Context, p config.Pipeline, t *rules.Tables, ds pipeline.Dataset, rt runtimeConfig) (int64, error) {
	db := p.Storage.DB
	log.Printf("sink: kind=%s table=%s columns=%d", p.Storage.Kind, db.Table, len(ds.Columns))

	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:    p.Storage.Kind,
		DSN:     db.DSN,
		Table:   db.Table,
		Columns: ds.Columns,
	})
	if err != nil {
		return 0, fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()

	if db.AutoCreateTable {
		if err := storage.EnsureTable(ctx, p.Storage.Kind, repo, db.Table, ds.Columns, t.RequiredColumns()); err != nil {
			return 0, err
		}
	}
	if db.Truncate {
		if err := storage.Truncate(ctx, p.Storage.Kind, repo, db.Table); err != nil {
			return 0, fmt.Errorf("truncate %s: %w", db.Table, err)
		}
	}
	return load(ctx, p, repo, ds, rt)
}

func writeDataset(ctx context.Context, p config.Pipeline, cfg storage.Config, ds pipeline.Dataset, rt runtimeConfig) (int64, error) {
	repo, err := newRepositoryFn(ctx, cfg)
	if err != nil {
		return 0, fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()
	return load(ctx, p, repo, ds, rt)
}

func load(ctx context.Context, p config.Pipeline, repo storage.Repository, ds pipeline.Dataset, rt runtimeConfig) (int64, error) {
	rows := make([][]any, len(ds.Rows))
	for i, r := range ds.Rows {
		rows[i] = r.SQLValues()
	}
	return storage.Load(ctx, repo, ds.Columns, rows, storage.LoadOptions{
		Job:           p.Job,
		BatchSize:     rt.batchSize,
		ChannelBuffer: rt.bufferSize,
	})
}

// rejectSink fans dropped records out to the log aggregators and the
// optional skip log.
type rejectSink struct {
	mu        sync.Mutex
	skips     *skiplog.Log
	err       error // first skip log write error
	unread    *errAgg
	malformed *errAgg
	excluded  *errAgg
	dups      int
}

func newRejectSink(path string) (*rejectSink, error) {
	rs := &rejectSink{
		unread:    newErrAgg(thisMany),
		malformed: newErrAgg(thisMany),
		excluded:  newErrAgg(thisMany),
	}
	if path == "" {
		return rs, nil
	}
	l, err := skiplog.New(path)
	if err != nil {
		return nil, err
	}
	rs.skips = l
	return rs, nil
}

func (rs *rejectSink) add(kind string, line int, name, reason string) {
	switch kind {
	case "unreadable":
		rs.unread.add(fmt.Sprintf("line %d: %s", line, reason))
	case string(pipeline.RejectMalformed):
		rs.malformed.add(fmt.Sprintf("line %d: %s", line, reason))
	case string(pipeline.RejectExcluded):
		rs.excluded.add(reason)
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if kind == string(pipeline.RejectDuplicate) {
		rs.dups++
	}
	if rs.skips == nil || rs.err != nil {
		return
	}
	if err := rs.skips.Add(kind, line, name, reason); err != nil {
		rs.err = fmt.Errorf("skiplog: %w", err)
	}
}

func (rs *rejectSink) reject(r pipeline.Reject) {
	rs.add(string(r.Kind), r.Line, r.Name, r.Reason)
}

// close flushes the skip log; it is safe to call more than once.
func (rs *rejectSink) close() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.skips == nil {
		return rs.err
	}
	err := rs.skips.Close()
	if err == nil {
		for _, kc := range rs.skips.Counts() {
			log.Printf("skiplog: kind=%s count=%d", kc.Kind, kc.Count)
		}
		log.Printf("skiplog: wrote path=%s", rs.skips.Path())
	}
	rs.skips = nil
	if rs.err != nil {
		return rs.err
	}
	return err
}

func (rs *rejectSink) logSummaries() {
	rs.unread.logFirst("unreadable lines")
	rs.malformed.logFirst("malformed records")
	rs.excluded.logTop("excluded by rule", 10)
	if rs.dups > 0 {
		log.Printf("duplicate printings dropped: %d", rs.dups)
	}
}

// logGlobalSummary prints final aggregated statistics for the run.
//
// Invariants are:
//
//	input == malformed + excluded + duplicates + output
//	output == written
func logGlobalSummary(s runStats) {
	sum := s.summary
	log.Printf(
		"summary: unreadable=%d input=%d malformed=%d excluded=%d duplicates=%d output=%d written=%d",
		s.unreadable, sum.Input, sum.Malformed, sum.Excluded, sum.Duplicates, sum.Output, s.written,
	)

	accounted := sum.Malformed + sum.Excluded + sum.Duplicates + sum.Output
	if accounted != sum.Input || int64(sum.Output) != s.written {
		log.Printf(
			"WARNING: row accounting mismatch: input=%d accounted=%d output=%d written=%d",
			sum.Input, accounted, sum.Output, s.written,
		)
	}
}
