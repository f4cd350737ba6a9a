package parser

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"eda/internal/dataset"
)

// readCSV reads delimited text with a mandatory header row. Quoting follows
// RFC 4180; a bare or unterminated quote is a row error. Only lines that
// are empty after trimming are skipped; a line of bare delimiters is a row
// of blank cells.
func readCSV(name string, r io.Reader, opt Options) ([]dataset.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = opt.comma()
	cr.FieldsPerRecord = -1

	errs := &collector{source: name}
	var t *table

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, &dataset.ParseError{Source: name, Message: err.Error(), Count: 1, Err: err}
			}
			if t == nil {
				return nil, &dataset.ParseError{Source: name, Line: pe.StartLine, Message: "header: " + pe.Err.Error(), Count: 1, Err: err}
			}
			errs.add(pe.StartLine, pe.Err.Error(), err)
			continue
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		line, _ := cr.FieldPos(0)

		if t == nil {
			header, err := normalizeHeader(row, opt)
			if err != nil {
				return nil, &dataset.ParseError{Source: name, Line: line, Message: err.Error(), Count: 1}
			}
			t = &table{header: header, errs: errs}
			continue
		}
		t.add(line, row)
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	return t.rows, nil
}
