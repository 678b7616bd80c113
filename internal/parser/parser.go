// Package parser defines the contract between raw source bytes and the
// reduction stages.
package parser

import (
	"io"

	"flowprep/internal/table"
)

// Parser turns one source stream into a raw table of Text columns. It also
// reports how many malformed rows were skipped.
type Parser interface {
	Parse(r io.Reader) (*table.Table, int, error)
}
