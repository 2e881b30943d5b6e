// Package csvfile implements the "csv" storage kind: the normalized dataset
// written as a CSV file with a header row in column order. Nulls are written
// as empty cells and lists use their joined text form.
package csvfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"cardetl/internal/storage"
)

// Config holds CSV sink configuration.
type Config struct {
	Path    string
	Columns []string // header; written on open so an empty dataset still has one
	Comma   rune     // defaults to ','
}

// Repository writes batches to a CSV file.
type Repository struct {
	cfg  Config
	f    *os.File
	bw   *bufio.Writer
	cw   *csv.Writer
	rows int64
}

// NewRepository creates (or truncates) cfg.Path, creating parent directories,
// and writes the header.
func NewRepository(_ context.Context, cfg Config) (*Repository, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("csvfile: path must not be empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("csvfile: mkdir %s: %w", dir, err)
		}
	}
	f, err := os.Create(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("csvfile: create %s: %w", cfg.Path, err)
	}
	bw := bufio.NewWriterSize(f, 1<<20)
	cw := csv.NewWriter(bw)
	if cfg.Comma != 0 {
		cw.Comma = cfg.Comma
	}
	r := &Repository{cfg: cfg, f: f, bw: bw, cw: cw}

	if len(cfg.Columns) > 0 {
		if err := cw.Write(cfg.Columns); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("csvfile: write header: %w", err)
		}
	}
	return r, nil
}

// CopyFrom appends rows. columns must match the header written on open.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(r.cfg.Columns) > 0 && len(columns) != len(r.cfg.Columns) {
		return 0, fmt.Errorf("csvfile: %d columns, header has %d", len(columns), len(r.cfg.Columns))
	}
	rec := make([]string, len(columns))
	var n int64
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if len(row) != len(columns) {
			return n, fmt.Errorf("csvfile: row length %d != columns length %d", len(row), len(columns))
		}
		for i, v := range row {
			rec[i] = cell(v)
		}
		if err := r.cw.Write(rec); err != nil {
			return n, fmt.Errorf("csvfile: write: %w", err)
		}
		n++
	}
	r.cw.Flush()
	if err := r.cw.Error(); err != nil {
		return n, fmt.Errorf("csvfile: flush: %w", err)
	}
	r.rows += n
	return n, nil
}

// Exec is a no-op; files have no DDL.
func (r *Repository) Exec(context.Context, string) error { return nil }

// Close flushes buffered output and closes the file.
func (r *Repository) Close() {
	r.cw.Flush()
	if err := r.cw.Error(); err != nil {
		log.Printf("csvfile: flush path=%s err=%v", r.cfg.Path, err)
	}
	if err := r.bw.Flush(); err != nil {
		log.Printf("csvfile: flush path=%s err=%v", r.cfg.Path, err)
	}
	if err := r.f.Close(); err != nil {
		log.Printf("csvfile: close path=%s err=%v", r.cfg.Path, err)
		return
	}
	log.Printf("csvfile: wrote path=%s rows=%d", r.cfg.Path, r.rows)
}

// cell renders one value the way the dataset prints it.
func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

var _ storage.Repository = (*Repository)(nil)

func init() {
	storage.Register("csv", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, Config{Path: cfg.Path, Columns: cfg.Columns})
	})
}
