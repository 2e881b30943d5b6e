// Package storage contains the storage-agnostic sink contract and the
// factory that maps a storage kind ("csv", "postgres", ...) to a backend.
//
// Backends register themselves from init; callers import storage/all for the
// side effect and then only deal with Repository.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is the sink a normalized card dataset is written to.
type Repository interface {
	// CopyFrom writes rows aligned to columns and returns how many were written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	// Exec runs a backend statement (DDL, TRUNCATE). File sinks ignore it.
	Exec(ctx context.Context, sql string) error
	// Close flushes buffered output and releases connections.
	Close()
}

// Config is the backend-neutral construction input. Each backend reads the
// fields it understands.
type Config struct {
	Kind    string
	DSN     string
	Table   string
	Columns []string

	// Path is the output file for file sinks.
	Path string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered kinds.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
