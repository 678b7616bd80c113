package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"flowprep/internal/metrics"
	"flowprep/internal/table"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is used when WriteOptions.BatchSize is zero.
const DefaultBatchSize = 5000

// WriteOptions tunes WriteTable.
type WriteOptions struct {
	// Job labels metrics.
	Job string
	// BatchSize is the number of rows per CopyFrom call.
	BatchSize int
	// ChannelBuffer sizes the row channel between producer and loader.
	ChannelBuffer int
}

// WriteTable streams every row of t into repo in batches. A producer
// goroutine renders rows while loadBatches drains them, so rendering and
// backend I/O overlap.
func WriteTable(ctx context.Context, repo Repository, t *table.Table, opt WriteOptions) (int64, error) {
	if opt.BatchSize <= 0 {
		opt.BatchSize = DefaultBatchSize
	}
	if opt.ChannelBuffer <= 0 {
		opt.ChannelBuffer = opt.BatchSize
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	rows := make(chan []any, opt.ChannelBuffer)

	g.Go(func() error {
		defer close(rows)
		for i := 0; i < t.NumRows(); i++ {
			select {
			case rows <- t.Row(i):
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var st loadStats
	g.Go(func() error {
		var err error
		st, err = loadBatches(gctx, t.Names(), rows, opt.BatchSize, repo.CopyFrom)
		return err
	})

	err := g.Wait()
	metrics.RecordBatches(opt.Job, st.batches)
	metrics.RecordRows(opt.Job, "written", st.rows)
	metrics.RecordStep(opt.Job, "write", err, time.Since(start))
	if err != nil {
		return st.rows, fmt.Errorf("write table: %w", err)
	}
	return st.rows, nil
}

// Sink writes named tables to one storage backend.
type Sink struct {
	Kind string
	DSN  string
	// TablePrefix is prepended to every table name.
	TablePrefix     string
	AutoCreateTable bool
	Options         WriteOptions
}

// Write opens a Repository for name, creates the table when AutoCreateTable
// is set, and streams t into it.
func (s Sink) Write(ctx context.Context, name string, t *table.Table) (int64, error) {
	fqn := s.TablePrefix + name
	repo, err := New(ctx, Config{Kind: s.Kind, DSN: s.DSN, Table: fqn, Columns: t.Names()})
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", fqn, err)
	}
	defer repo.Close()

	if s.AutoCreateTable {
		if err := EnsureTable(ctx, s.Kind, repo, fqn, t); err != nil {
			return 0, fmt.Errorf("create %s: %w", fqn, err)
		}
	}
	n, err := WriteTable(ctx, repo, t, s.Options)
	if err != nil {
		return n, fmt.Errorf("%s: %w", fqn, err)
	}
	log.Printf("storage: kind=%s table=%s rows=%d cols=%d", s.Kind, fqn, n, t.NumCols())
	return n, nil
}
