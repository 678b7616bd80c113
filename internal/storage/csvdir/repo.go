// Package csvdir implements a storage.Repository that writes each table to
// <dir>/<table>.csv. The DSN is the output directory.
package csvdir

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"flowprep/internal/storage"
	"flowprep/internal/table"
)

// Repository appends rows to a single CSV file. The header is written on the
// first CopyFrom.
type Repository struct {
	f       *os.File
	w       *csv.Writer
	columns []string
}

// NewRepository creates (or truncates) <dir>/<name>.csv, creating dir.
func NewRepository(dir, name string) (*Repository, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("csvdir: directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csvdir: mkdir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, name+".csv"))
	if err != nil {
		return nil, fmt.Errorf("csvdir: create: %w", err)
	}
	return &Repository{f: f, w: csv.NewWriter(f)}, nil
}

// Path returns the file being written.
func (r *Repository) Path() string { return r.f.Name() }

func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if r.columns == nil {
		if err := r.w.Write(columns); err != nil {
			return 0, fmt.Errorf("csvdir: header: %w", err)
		}
		r.columns = columns
	} else if len(columns) != len(r.columns) {
		return 0, fmt.Errorf("csvdir: %d columns after header of %d", len(columns), len(r.columns))
	}

	rec := make([]string, len(columns))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return int64(i), err
		}
		if len(row) != len(columns) {
			return int64(i), fmt.Errorf("csvdir: row length %d != columns length %d", len(row), len(columns))
		}
		for j, v := range row {
			rec[j] = formatValue(v)
		}
		if err := r.w.Write(rec); err != nil {
			return int64(i), fmt.Errorf("csvdir: write: %w", err)
		}
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return 0, fmt.Errorf("csvdir: flush: %w", err)
	}
	return int64(len(rows)), nil
}

// Exec is a no-op; CSV files have no schema.
func (r *Repository) Exec(ctx context.Context, sql string) error { return nil }

func (r *Repository) Close() {
	r.w.Flush()
	_ = r.f.Close()
}

// formatValue renders driver values the way table columns format them.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

func init() {
	storage.Register("csv", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(cfg.DSN, cfg.Table)
	})
	storage.RegisterDDL("csv", func(context.Context, storage.Repository, string, *table.Table) error {
		return nil
	})
}
