package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"eda/internal/config"
	"eda/internal/dataset"
)

// Meta identifies the load an artifact was generated from.
type Meta struct {
	LoadID      string
	GeneratedAt time.Time
}

// Counts are the record totals of a summary.
type Counts struct {
	Total int `json:"total"`
	Train int `json:"train"`
	Test  int `json:"test"`
}

// Summary is the structured description of a merged dataset.
type Summary struct {
	GeneratedAt         string   `json:"generated_at"`
	LoadID              string   `json:"load_id,omitempty"`
	Fingerprint         string   `json:"fingerprint"`
	Records             Counts   `json:"records"`
	Columns             []string `json:"columns"`
	NumericFeatures     []string `json:"numeric_features"`
	CategoricalFeatures []string `json:"categorical_features"`
	TargetField         string   `json:"target_field"`
	IdentifierField     string   `json:"identifier_field"`
}

// BuildSummary derives the summary of ds. The timestamp is RFC 3339 in UTC;
// a zero GeneratedAt means now.
func BuildSummary(ds *dataset.Dataset, schema config.Schema, meta Meta) Summary {
	at := meta.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}
	return Summary{
		GeneratedAt:         at.UTC().Format(time.RFC3339),
		LoadID:              meta.LoadID,
		Fingerprint:         ds.Fingerprint(),
		Records:             Counts{Total: ds.Len(), Train: ds.TrainCount(), Test: ds.TestCount()},
		Columns:             nonNil(ds.Columns()),
		NumericFeatures:     nonNil(schema.NumericFeatures),
		CategoricalFeatures: nonNil(schema.CategoricalFeatures),
		TargetField:         schema.TargetField,
		IdentifierField:     schema.IdentifierField,
	}
}

// WriteSummary writes the summary of ds as indented JSON.
func WriteSummary(w io.Writer, ds *dataset.Dataset, schema config.Schema, meta Meta) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(BuildSummary(ds, schema, meta)); err != nil {
		return fmt.Errorf("export: summary: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
