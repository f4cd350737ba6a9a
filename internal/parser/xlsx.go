package parser

import (
	"io"

	"github.com/xuri/excelize/v2"

	"eda/internal/dataset"
)

// readXLSX reads the first sheet of a workbook. Cell values are taken raw,
// without number formats, so numbers keep their stored precision. Rows
// whose cells are all blank are skipped.
func readXLSX(name string, r io.Reader, opt Options) ([]dataset.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &dataset.ParseError{Source: name, Message: "open workbook: " + err.Error(), Count: 1, Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &dataset.ParseError{Source: name, Message: "read sheet " + sheets[0] + ": " + err.Error(), Count: 1, Err: err}
	}

	errs := &collector{source: name}
	var t *table
	for i, row := range rows {
		line := i + 1
		if blankRow(row) {
			continue
		}
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
