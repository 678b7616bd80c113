// Package storage contains storage-agnostic contracts and utilities for
// writing the pipeline's output tables.
//
// Backends register a Factory under a kind ("sqlite", "postgres", "mssql",
// "csv") from their init functions; callers open a Repository with New and
// write whole tables with WriteTable. Import internal/storage/all to enable
// every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Repository is a bulk sink bound to a single destination table.
type Repository interface {
	// CopyFrom appends rows, aligned to columns, and returns the number of
	// rows the backend reports as written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	// Exec runs a statement, typically DDL. Backends without SQL may ignore it.
	Exec(ctx context.Context, sql string) error
	Close()
}

// Config carries everything a backend needs to open a Repository.
type Config struct {
	Kind string
	DSN  string
	// Table is the destination, possibly schema-qualified.
	Table string
	// Columns is the destination column order.
	Columns []string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
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
		return nil, fmt.Errorf("unsupported storage.kind=%s (registered: %s)", cfg.Kind, strings.Join(ListKinds(), ", "))
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
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
