// Package file contains local filesystem data sources: single export files
// and list files naming one export per line.
package file

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadList reads a text file line by line and returns a slice of strings
// containing non-empty, non-comment lines.
//
// Lines that are empty or start with '#' (after trimming leading/trailing
// whitespace) are skipped. The order of lines is preserved.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Resolve expands one configured source into paths. Exactly one of path and
// list must be set. Relative entries of a list file are resolved against the
// list file's directory; URL entries are returned as-is.
func Resolve(path, list string) ([]string, error) {
	switch {
	case path != "" && list != "":
		return nil, fmt.Errorf("source: both path and list set")
	case path != "":
		return []string{path}, nil
	case list == "":
		return nil, fmt.Errorf("source: neither path nor list set")
	}

	entries, err := ReadList(list)
	if err != nil {
		return nil, fmt.Errorf("source list %s: %w", list, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("source list %s: no entries", list)
	}
	base := filepath.Dir(list)
	for i, e := range entries {
		if !filepath.IsAbs(e) && !strings.Contains(e, "://") {
			entries[i] = filepath.Join(base, e)
		}
	}
	return entries, nil
}
