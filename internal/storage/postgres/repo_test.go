package postgres

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"flowprep/internal/storage"
	"flowprep/internal/table"

	"github.com/jackc/pgx/v5"
)

func TestSplitFQN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want pgx.Identifier
	}{
		{"x_train", pgx.Identifier{"x_train"}},
		{"public.x_train", pgx.Identifier{"public", "x_train"}},
		{".public..x.", pgx.Identifier{"public", "x"}},
	}
	for _, tt := range tests {
		if got := splitFQN(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitFQN(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMapType(t *testing.T) {
	t.Parallel()

	tests := map[table.Kind]string{
		table.Int8:    "SMALLINT",
		table.Uint8:   "SMALLINT",
		table.Uint16:  "INTEGER",
		table.Int32:   "INTEGER",
		table.Uint32:  "BIGINT",
		table.Int64:   "BIGINT",
		table.Uint64:  "NUMERIC(20)",
		table.Float32: "REAL",
		table.Float64: "DOUBLE PRECISION",
		table.String:  "TEXT",
	}
	for k, want := range tests {
		if got := MapType(k); got != want {
			t.Errorf("MapType(%v) = %q, want %q", k, got, want)
		}
	}
}

// fakeRepository records Exec calls.
type fakeRepository struct {
	storage.Repository
	lastSQL string
}

func (f *fakeRepository) Exec(ctx context.Context, sql string) error {
	f.lastSQL = sql
	return nil
}

func TestEnsureTable(t *testing.T) {
	t.Parallel()

	tb := table.MustNew(
		table.NewNumeric("Dst Port", []uint16{80}),
		table.NewText("Label", []string{"Benign"}),
	)
	var repo fakeRepository
	if err := EnsureTable(context.Background(), &repo, "public.reduced", tb); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS \"public\".\"reduced\" (\n  \"Dst Port\" INTEGER NOT NULL,\n  \"Label\" TEXT NOT NULL\n);"
	if repo.lastSQL != want {
		t.Fatalf("SQL mismatch\n got: %q\nwant: %q", repo.lastSQL, want)
	}
}

func TestEnsureTable_BuildError(t *testing.T) {
	t.Parallel()

	var repo fakeRepository
	err := EnsureTable(context.Background(), &repo, "", table.MustNew(table.NewText("a", []string{"x"})))
	if err == nil || !strings.Contains(err.Error(), "postgres ddl") {
		t.Fatalf("err=%v; want postgres ddl error", err)
	}
	if repo.lastSQL != "" {
		t.Fatalf("Exec called with %q", repo.lastSQL)
	}
}

func TestRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotCfg Config
	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{
		Kind:  "postgres",
		DSN:   "postgresql://u:p@localhost:5432/db",
		Table: "public.x_train",
	})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if gotCfg.Table != "public.x_train" || !strings.HasPrefix(gotCfg.DSN, "postgresql://") {
		t.Fatalf("hook cfg = %+v", gotCfg)
	}
	repo.Close()
	if !closed {
		t.Fatal("Close did not call cleanup")
	}
}
