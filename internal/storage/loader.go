package storage

// The batched loader drains rows from a channel and hands each full batch to
// a backend's bulk primitive (Postgres COPY, MSSQL bulk copy, multi-row
// INSERT, CSV writer). Every successful flush logs running totals and the
// rows/sec since the previous flush.

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"cardetl/internal/metrics"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations should
// insert the provided rows (aligned to 'columns' order) and return the number
// of rows reported as inserted. The function should be safe for repeated calls
// and cancel promptly when ctx is done.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains typed rows from 'in', groups them into batches of size
// 'batchSize', and calls 'copyFn' for each non-empty batch. It returns the total
// number of rows reported by copyFn and the first error encountered.
//
// Cancellation: returns (total, ctx.Err()) when canceled. Progress is logged on
// each successful flush.
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total       int64
		batches     int64
		batch       = make([][]any, 0, batchSize)
		start       = time.Now()
		lastFlushTS = start
		lastTotal   int64
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n

		// Reuse allocated slice; keep capacity to avoid churn.
		batch = batch[:0]

		if err != nil {
			log.Printf("loader: copy failed after=%d total=%d err=%v", n, total, err)

			return err
		}

		// Progress log per successful batch.
		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		insertedSinceLast := total - lastTotal
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(insertedSinceLast) / sinceLast.Seconds()
		}
		log.Printf(
			"loader: batch=%d rps=%.0f inserted=%d total_inserted=%d elapsed=%s since_last=%s",
			batches,
			rps,
			n,
			total,
			now.Sub(start).Truncate(time.Millisecond),
			sinceLast.Truncate(time.Millisecond),
		)
		lastFlushTS = now
		lastTotal = total

		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				// Channel closed: flush remaining rows.
				if err := flush(); err != nil {
					return total, err
				}
				log.Printf("loader: input closed batches=%d total_inserted=%d", batches, total)

				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}

// LoadOptions tune Load. Zero values fall back to sane defaults.
type LoadOptions struct {
	// Job labels metrics.
	Job string
	// BatchSize is the number of rows per CopyFrom call (default 5000).
	BatchSize int
	// ChannelBuffer bounds the producer/loader queue (default 4 batches).
	ChannelBuffer int
}

// Load streams rows into repo in batches. A producer goroutine feeds a bounded
// channel that LoadBatches drains.
func Load(ctx context.Context, repo Repository, columns []string, rows [][]any, opt LoadOptions) (int64, error) {
	if opt.BatchSize <= 0 {
		opt.BatchSize = 5000
	}
	if opt.ChannelBuffer <= 0 {
		opt.ChannelBuffer = 4 * opt.BatchSize
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan []any, opt.ChannelBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(in)
		for _, r := range rows {
			select {
			case in <- r:
			case <-ctx.Done():
				return
			}
		}
	}()

	var batches atomic.Int64
	start := time.Now()
	total, err := LoadBatches(ctx, columns, in, opt.BatchSize, func(ctx context.Context, cols []string, b [][]any) (int64, error) {
		batches.Add(1)
		return repo.CopyFrom(ctx, cols, b)
	})
	cancel()
	<-done

	metrics.RecordStep(opt.Job, "load", err, time.Since(start))
	metrics.RecordBatches(opt.Job, batches.Load())
	metrics.RecordRow(opt.Job, "inserted", total)
	return total, err
}
