//go:build integration

package mssql

import (
	"context"
	"os"
	"testing"
	"time"

	"flowprep/internal/storage"
	"flowprep/internal/table"
)

// getTestDSN reads the MSSQL_TEST_DSN environment variable.
func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("MSSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MSSQL_TEST_DSN not set; skipping MSSQL integration tests")
	}
	return dsn
}

func TestSinkIntegration(t *testing.T) {
	dsn := getTestDSN(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tb := table.MustNew(
		table.NewNumeric("Protocol", []uint8{6, 17}),
		table.NewText("Label", []string{"Benign", "DoS"}),
	)
	name := "dbo.flowprep_it_" + time.Now().Format("150405")
	n, err := storage.Sink{Kind: "mssql", DSN: dsn, AutoCreateTable: true}.Write(ctx, name, tb)
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
