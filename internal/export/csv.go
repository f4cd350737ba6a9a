package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"eda/internal/dataset"
)

// WriteCSV writes ds as comma-separated text with every field quoted. The
// header is the column inventory; missing and absent fields are written as
// empty quoted fields, never as "null".
func WriteCSV(w io.Writer, ds *dataset.Dataset) error {
	bw := bufio.NewWriter(w)
	cols := ds.Columns()

	if err := writeQuotedRow(bw, len(cols), func(i int) string { return cols[i] }); err != nil {
		return fmt.Errorf("export: csv header: %w", err)
	}
	for n, r := range ds.Records() {
		err := writeQuotedRow(bw, len(cols), func(i int) string {
			v, ok := r.Get(cols[i])
			if !ok {
				return ""
			}
			return v.String()
		})
		if err != nil {
			return fmt.Errorf("export: csv record %d: %w", n, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export: csv flush: %w", err)
	}
	return nil
}

func writeQuotedRow(w *bufio.Writer, n int, field func(int) string) error {
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quote(field(i))); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
