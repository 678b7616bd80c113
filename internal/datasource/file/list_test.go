package file

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestReadList_Basic(t *testing.T) {
	t.Parallel()

	content := `
# CIC-IDS2018 daily exports
Wednesday-14-02-2018.csv
   # indented comment
Thursday-15-02-2018.csv

   /data/Friday-16-02-2018.csv
`
	path := writeTempFile(t, content)

	got, err := ReadList(path)
	if err != nil {
		t.Fatalf("ReadList error: %v", err)
	}
	want := []string{
		"Wednesday-14-02-2018.csv",
		"Thursday-15-02-2018.csv",
		"/data/Friday-16-02-2018.csv",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadList(%q) = %#v, want %#v", path, got, want)
	}
}

func TestReadList_EmptyFile(t *testing.T) {
	t.Parallel()

	got, err := ReadList(writeTempFile(t, ""))
	if err != nil {
		t.Fatalf("ReadList error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}

func TestReadList_FileNotFound(t *testing.T) {
	t.Parallel()

	if _, err := ReadList("does-not-exist-12345.txt"); err == nil {
		t.Fatalf("expected error for missing file, got nil")
	}
}

/*
TestResolve covers the two source shapes: a single path passes through, and
a list file expands to its entries with relative entries anchored at the
list's directory and URLs left alone.
*/
func TestResolve(t *testing.T) {
	t.Parallel()

	list := writeTempFile(t, "a.csv\n/abs/b.csv\nhttps://example.com/c.csv\n")
	dir := filepath.Dir(list)

	tests := []struct {
		name    string
		path    string
		list    string
		want    []string
		wantErr string
	}{
		{name: "single path", path: "x.csv", want: []string{"x.csv"}},
		{name: "list", list: list, want: []string{filepath.Join(dir, "a.csv"), "/abs/b.csv", "https://example.com/c.csv"}},
		{name: "both set", path: "x.csv", list: list, wantErr: "both"},
		{name: "neither set", wantErr: "neither"},
		{name: "empty list", list: writeTempFile(t, "# nothing\n"), wantErr: "no entries"},
		{name: "missing list", list: filepath.Join(dir, "nope.txt"), wantErr: "nope.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.path, tt.list)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err=%v; want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Resolve = %q; want %q", got, tt.want)
			}
		})
	}
}
