package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"eda/internal/analysis"
	"eda/internal/config"
	"eda/internal/dataset"
)

// WriteWorkbook writes an XLSX report with one plain table per view:
// Overview, Missing, Numeric, Distribution (color feature) and Target.
func WriteWorkbook(w io.Writer, ds *dataset.Dataset, schema config.Schema, meta Meta) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sum := BuildSummary(ds, schema, meta)
	sheets := []struct {
		name string
		rows [][]any
	}{
		{"Overview", overviewRows(sum)},
		{"Missing", missingRows(ds)},
		{"Numeric", numericRows(ds, schema)},
		{"Distribution", distributionRows(ds, schema)},
		{"Target", targetRows(ds, schema)},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("export: workbook: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("export: workbook: new sheet %s: %w", s.name, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return fmt.Errorf("export: workbook: %w", err)
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return fmt.Errorf("export: workbook: %s row %d: %w", s.name, r+1, err)
			}
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: workbook: write: %w", err)
	}
	return nil
}

func overviewRows(s Summary) [][]any {
	rows := [][]any{
		{"Generated at", s.GeneratedAt},
		{"Load ID", s.LoadID},
		{"Fingerprint", s.Fingerprint},
		{"Total records", s.Records.Total},
		{"Train records", s.Records.Train},
		{"Test records", s.Records.Test},
		{},
		{"Column"},
	}
	for _, c := range s.Columns {
		rows = append(rows, []any{c})
	}
	return rows
}

func missingRows(ds *dataset.Dataset) [][]any {
	rows := [][]any{{"Column", "Missing", "Percent"}}
	for _, m := range analysis.MissingCensus(ds) {
		rows = append(rows, []any{m.Column, m.Count, m.Percent})
	}
	return rows
}

func numericRows(ds *dataset.Dataset, schema config.Schema) [][]any {
	rows := [][]any{{"Feature", "Count", "Mean", "Min", "Max"}}
	for _, n := range analysis.NumericSummary(ds, schema) {
		rows = append(rows, []any{n.Feature, n.Count, measureCell(n.Mean), measureCell(n.Min), measureCell(n.Max)})
	}
	return rows
}

func distributionRows(ds *dataset.Dataset, schema config.Schema) [][]any {
	d, err := analysis.CategoricalDistribution(ds, schema, "")
	if err != nil {
		return [][]any{{"No data for " + strconv.Quote(schema.ColorFeature)}}
	}
	rows := [][]any{{d.Feature, "Count"}}
	for _, b := range d.Buckets {
		rows = append(rows, []any{b.Value, b.Count})
	}
	return append(rows, []any{"(missing)", d.Missing})
}

func targetRows(ds *dataset.Dataset, schema config.Schema) [][]any {
	td := analysis.TargetDistributionOf(ds, schema)
	if !td.Available {
		return [][]any{{td.Field, analysis.NotApplicable}}
	}
	rows := [][]any{{td.Field, "Count"}}
	for _, b := range td.Buckets() {
		rows = append(rows, []any{b.Value, b.Count})
	}
	return append(rows, []any{"Positive rate %", measureCell(td.Rate)})
}

// measureCell writes numbers as numbers and not-applicable as text.
func measureCell(m analysis.Measure) any {
	if !m.Valid {
		return analysis.NotApplicable
	}
	return m.Rounded()
}
