package storage

import (
	"context"
	"fmt"
	"sync"

	"cardetl/internal/ddl"
)

// DDLBootstrapper applies a backend's CREATE TABLE for def through repo.Exec.
// Backends register one for their kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, def ddl.TableDef) error

var (
	ddlMu    sync.RWMutex
	ddlFns   = map[string]DDLBootstrapper{}
	dialects = map[string]ddl.Dialect{}
)

// RegisterDDL registers (or replaces) the DDL support of kind: the dialect
// used to infer the table definition and the bootstrapper that applies it.
func RegisterDDL(kind string, d ddl.Dialect, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	dialects[kind] = d
	ddlFns[kind] = fn
}

// EnsureTable infers the table definition for the dataset columns using the
// dialect registered for kind and applies it. Callers stay backend-agnostic.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string, columns, required []string) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	d := dialects[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	def, err := ddl.FromColumns(table, columns, required, d)
	if err != nil {
		return fmt.Errorf("infer table definition: %w", err)
	}
	if err := fn(ctx, repo, def); err != nil {
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}

// ExecCreateTable is the common bootstrapper: render def with d and Exec it.
func ExecCreateTable(d ddl.Dialect) DDLBootstrapper {
	return func(ctx context.Context, repo Repository, def ddl.TableDef) error {
		stmt, err := d.BuildCreateTableSQL(def)
		if err != nil {
			return err
		}
		return repo.Exec(ctx, stmt)
	}
}

// Truncate empties table before a load. DELETE is used rather than TRUNCATE
// because every supported SQL backend accepts it.
func Truncate(ctx context.Context, kind string, repo Repository, table string) error {
	ddlMu.RLock()
	d, ok := dialects[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("storage.kind=%q does not support truncate", kind)
	}
	return repo.Exec(ctx, "DELETE FROM "+d.QuoteFQN(table))
}
