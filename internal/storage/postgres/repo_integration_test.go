//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"flowprep/internal/storage"
	"flowprep/internal/table"
)

// TestSinkIntegration writes a small table into a real Postgres. It needs
// POSTGRES_TEST_DSN.
func TestSinkIntegration(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set; skipping Postgres integration tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tb := table.MustNew(
		table.NewNumeric("Dst Port", []uint16{80, 443}),
		table.NewNumeric("Flow IAT Mean", []float32{0.5, 1}),
		table.NewText("Label", []string{"Benign", "DoS"}),
	)
	name := "flowprep_it_" + time.Now().Format("150405")
	sink := storage.Sink{Kind: "postgres", DSN: dsn, AutoCreateTable: true}
	n, err := sink.Write(ctx, name, tb)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 2 {
		t.Fatalf("written=%d; want 2", n)
	}

	r, closeFn, err := NewRepository(ctx, Config{DSN: dsn, Table: name})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer closeFn()
	if err := r.Exec(ctx, "DROP TABLE "+Dialect.QuoteFQN(name)); err != nil {
		t.Fatalf("drop: %v", err)
	}
}
