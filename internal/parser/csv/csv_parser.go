// Package csv reads delimited flow exports into raw tables: one Text column
// per header field, every cell kept as its original string. Typing is left to
// the coercer.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"unicode"

	"flowprep/internal/table"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Options configures the CSV parser behavior. All fields are optional.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing whitespace from each cell.
	TrimSpace bool

	// LazyQuotes relaxes quote handling for malformed exports.
	LazyQuotes bool

	// HeaderMap renames normalized header names to canonical ones, e.g.
	// {"Dst Port ": "Dst Port"} from exports with stray spaces.
	HeaderMap map[string]string

	// ExpectedFields, when positive, is the required header width.
	ExpectedFields int
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs but not for concurrent use.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// skipLogLimit caps per-row skip messages.
const skipLogLimit = 400

// Parse reads the header and every body row from r and returns a table of
// Text columns along with the number of rows that were skipped due to parse
// errors or field-count mismatches.
func (p *Parser) Parse(r io.Reader) (*table.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("read csv header: empty input")
		}
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers := NormalizeHeaders(h, p.opt.HeaderMap)
	if n := p.opt.ExpectedFields; n > 0 && len(headers) != n {
		return nil, 0, fmt.Errorf("read csv header: %d fields, expected %d", len(headers), n)
	}

	cells := make([][]string, len(headers))
	skipped := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < skipLogLimit {
				log.Printf("csv: skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}
		if len(row) != len(headers) {
			if skipped < skipLogLimit {
				log.Printf("csv: skipping row %d: incorrect number of fields (expected %d, got %d)", line, len(headers), len(row))
			}
			skipped++
			continue
		}
		for i, v := range row {
			if p.opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			cells[i] = append(cells[i], v)
		}
	}

	cols := make([]table.Column, len(headers))
	for i, name := range headers {
		vals := cells[i]
		if vals == nil {
			vals = []string{}
		}
		cols[i] = table.NewText(name, vals)
	}
	t, err := table.New(cols...)
	if err != nil {
		return nil, skipped, fmt.Errorf("csv: %w", err)
	}
	return t, skipped, nil
}

// headerCleaner replaces no-break spaces and composes accents.
var headerCleaner = transform.Chain(
	runes.Map(func(r rune) rune {
		if r == '\u00a0' {
			return ' '
		}
		return r
	}),
	norm.NFC,
)

// NormalizeHeaders produces canonical header names: the UTF-8 BOM is dropped
// from the first cell, no-break spaces become spaces, surrounding whitespace
// is trimmed and the text is put in NFC form. HeaderMap renames are applied
// last. Repeated names get a ".N" suffix in order of appearance, so a
// second "Fwd Header Len" becomes "Fwd Header Len.1".
func NormalizeHeaders(h []string, headerMap map[string]string) []string {
	res := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, col := range h {
		if i == 0 {
			col = strings.TrimPrefix(col, utf8BOM)
		}
		c, _, err := transform.String(headerCleaner, col)
		if err != nil {
			c = col
		}
		c = strings.TrimFunc(c, unicode.IsSpace)
		if m, ok := headerMap[c]; ok {
			c = m
		}
		if c == "" {
			c = "col_" + strconv.Itoa(i)
		}
		if _, dup := seen[c]; dup {
			base := c
			for n := seen[base] + 1; ; n++ {
				cand := base + "." + strconv.Itoa(n)
				if _, taken := seen[cand]; !taken {
					seen[base] = n
					c = cand
					break
				}
			}
			log.Printf("csv: duplicate header %q renamed to %q", base, c)
		}
		seen[c] = 0
		res[i] = c
	}
	return res
}
