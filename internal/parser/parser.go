// Package parser turns one tabular source into origin-tagged typed records.
//
// Two formats are supported, chosen by the source name's extension:
// delimited text (encoding/csv) and Excel workbooks (first sheet, via
// excelize). Both follow the same row rules:
//
//   - the first non-blank row is the header and is mandatory
//   - blank rows are skipped, never treated as records
//   - short rows leave the trailing columns absent
//   - extra trailing cells are ignored when blank and rejected otherwise
//
// Malformed rows are collected and the whole source fails with the first
// one; partial results are never returned.
package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"path/filepath"
	"strings"

	"eda/internal/dataset"
	"eda/internal/datasource"
)

// Format identifies a source encoding.
type Format int

const (
	FormatCSV Format = iota
	FormatXLSX
)

func (f Format) String() string {
	if f == FormatXLSX {
		return "xlsx"
	}
	return "csv"
}

// FormatFor picks the format from a source name. Anything that is not an
// .xlsx workbook is read as delimited text.
func FormatFor(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Options configures parsing. The zero value reads comma-separated text.
type Options struct {
	// Comma is the CSV field delimiter. When zero, ',' is used.
	Comma rune

	// HeaderMap maps normalized source header names to canonical column
	// names, e.g. {"Passenger Id": "PassengerId"}.
	HeaderMap map[string]string
}

func (o Options) comma() rune {
	if o.Comma == 0 {
		return ','
	}
	return o.Comma
}

// ParseSource reads src, aligns rows to its header, coerces every row with
// coercer and tags it with origin. Records keep source row order.
//
// A nil src is ErrMissingInput. A source that cannot be read or contains a
// malformed row fails with a *dataset.ParseError naming it. A source with
// no data rows (or no content at all) yields an empty slice.
func ParseSource(ctx context.Context, src datasource.Source, origin dataset.Origin, coercer *dataset.Coercer, opt Options) ([]*dataset.Record, error) {
	if src == nil {
		return nil, fmt.Errorf("parser: %s source: %w", origin, dataset.ErrMissingInput)
	}
	name := src.Name()

	rc, err := src.Open(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("parser: %s: %w: %w", name, dataset.ErrMissingInput, err)
		}
		return nil, &dataset.ParseError{Source: name, Message: "unreadable: " + err.Error(), Count: 1, Err: err}
	}
	defer rc.Close()

	raws, err := ReadRaw(name, rc, opt)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recs := make([]*dataset.Record, len(raws))
	for i, raw := range raws {
		recs[i] = coercer.Coerce(raw, origin)
	}
	log.Printf("parser: source=%s origin=%s format=%s rows=%d", name, origin, FormatFor(name), len(recs))
	return recs, nil
}

// ReadRaw parses r as the format implied by name and returns header-keyed
// raw rows without coercion.
func ReadRaw(name string, r io.Reader, opt Options) ([]dataset.RawRecord, error) {
	switch FormatFor(name) {
	case FormatXLSX:
		return readXLSX(name, r, opt)
	default:
		return readCSV(name, r, opt)
	}
}

// collector keeps the first row error of a source and counts the rest.
type collector struct {
	source string
	first  *dataset.ParseError
}

func (c *collector) add(line int, msg string, err error) {
	if c.first == nil {
		c.first = &dataset.ParseError{Source: c.source, Line: line, Message: msg, Err: err}
	}
	c.first.Count++
}

func (c *collector) err() error {
	if c.first == nil {
		return nil
	}
	return c.first
}

// table aligns data rows to a normalized header.
type table struct {
	header []string
	errs   *collector
	rows   []dataset.RawRecord
}

func (t *table) add(line int, cells []string) {
	n := len(cells)
	if n > len(t.header) {
		for _, extra := range cells[len(t.header):] {
			if strings.TrimSpace(extra) != "" {
				t.errs.add(line, fmt.Sprintf("too many fields: got %d, header has %d", n, len(t.header)), nil)
				return
			}
		}
		n = len(t.header)
	}
	rec := make(dataset.RawRecord, n)
	for i := 0; i < n; i++ {
		rec[i] = dataset.RawField{Name: t.header[i], Value: cells[i]}
	}
	t.rows = append(t.rows, rec)
}
