package storage

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CopyFn is a backend's bulk insert: it appends rows aligned to columns and
// returns how many the backend reports as written.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// loadStats is what one drain of the row channel achieved.
type loadStats struct {
	rows    int64
	batches int64
}

// loadBatches drains in, hands copyFn one batch per batchSize rows plus a
// final short batch, and stops at the first copy error or when ctx is done.
// Rows from a failed batch still count when copyFn reports them.
func loadBatches(ctx context.Context, columns []string, in <-chan []any, batchSize int, copyFn CopyFn) (loadStats, error) {
	var st loadStats
	if batchSize <= 0 {
		return st, fmt.Errorf("loader: batch size %d must be positive", batchSize)
	}
	if copyFn == nil {
		return st, fmt.Errorf("loader: nil copy function")
	}

	start := time.Now()
	batch := make([][]any, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		t0 := time.Now()
		n, err := copyFn(ctx, columns, batch)
		st.rows += n
		batch = batch[:0]
		if err != nil {
			log.Printf("loader: batch=%d copy failed rows=%d err=%v", st.batches+1, n, err)
			return err
		}
		st.batches++
		d := time.Since(t0)
		rps := 0.0
		if d > 0 {
			rps = float64(n) / d.Seconds()
		}
		log.Printf("loader: batch=%d rows=%d total=%d rps=%.0f elapsed=%s",
			st.batches, n, st.rows, rps, time.Since(start).Truncate(time.Millisecond))
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case row, ok := <-in:
			if !ok {
				return st, flush()
			}
			batch = append(batch, row)
			if len(batch) == batchSize {
				if err := flush(); err != nil {
					return st, err
				}
			}
		}
	}
}
