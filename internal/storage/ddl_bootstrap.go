package storage

import (
	"context"
	"fmt"
	"sync"

	"flowprep/internal/table"
)

// DDLBootstrapper is a backend-specific function that infers a table
// definition from t and applies it via repo.Exec (typically
// CREATE TABLE IF NOT EXISTS).
//
// Backends register their implementation for a storage kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, name string, t *table.Table) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for the given storage
// kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable locates the DDLBootstrapper for kind and creates the
// destination table name shaped like t.
func EnsureTable(ctx context.Context, kind string, repo Repository, name string, t *table.Table) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, name, t)
}
