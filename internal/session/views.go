package session

import (
	"fmt"
	"io"
	"time"

	"eda/internal/analysis"
	"eda/internal/export"
	"eda/internal/metrics"
)

// Every view reads the current dataset and fails with ErrNotLoaded, doing
// no work, before the first successful load.

func (s *Session) Overview() (analysis.Overview, error) {
	l, err := s.Current()
	if err != nil {
		return analysis.Overview{}, err
	}
	return analysis.Inventory(l.Dataset), nil
}

func (s *Session) Missing() ([]analysis.MissingRow, error) {
	l, err := s.Current()
	if err != nil {
		return nil, err
	}
	return analysis.MissingCensus(l.Dataset), nil
}

func (s *Session) Numeric() ([]analysis.NumericRow, error) {
	l, err := s.Current()
	if err != nil {
		return nil, err
	}
	return analysis.NumericSummary(l.Dataset, s.schema), nil
}

// Distribution returns the frequency table of feature; an empty feature
// selects the schema's color feature.
func (s *Session) Distribution(feature string) (analysis.Distribution, error) {
	l, err := s.Current()
	if err != nil {
		return analysis.Distribution{}, err
	}
	return analysis.CategoricalDistribution(l.Dataset, s.schema, feature)
}

func (s *Session) Target() (analysis.TargetDistribution, error) {
	l, err := s.Current()
	if err != nil {
		return analysis.TargetDistribution{}, err
	}
	return analysis.TargetDistributionOf(l.Dataset, s.schema), nil
}

func (s *Session) TargetRate(feature string) ([]analysis.RateRow, error) {
	l, err := s.Current()
	if err != nil {
		return nil, err
	}
	return analysis.TargetRate(l.Dataset, s.schema, feature)
}

// ExportCSV writes the merged dataset as fully quoted CSV.
func (s *Session) ExportCSV(w io.Writer) error {
	return s.export("export_csv", w, func(l *Loaded, w io.Writer) error {
		return export.WriteCSV(w, l.Dataset)
	})
}

// ExportSummary writes the JSON summary, stamped with the current time.
func (s *Session) ExportSummary(w io.Writer) error {
	return s.export("export_summary", w, func(l *Loaded, w io.Writer) error {
		return export.WriteSummary(w, l.Dataset, s.schema, s.meta(l))
	})
}

// ExportWorkbook writes the XLSX report.
func (s *Session) ExportWorkbook(w io.Writer) error {
	return s.export("export_xlsx", w, func(l *Loaded, w io.Writer) error {
		return export.WriteWorkbook(w, l.Dataset, s.schema, s.meta(l))
	})
}

func (s *Session) export(step string, w io.Writer, fn func(*Loaded, io.Writer) error) error {
	l, err := s.Current()
	if err != nil {
		return err
	}
	start := time.Now()
	err = fn(l, w)
	metrics.RecordStep(s.opt.Job, step, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("session: %s: %w", step, err)
	}
	return nil
}

func (s *Session) meta(l *Loaded) export.Meta {
	return export.Meta{LoadID: l.LoadID, GeneratedAt: s.now()}
}
