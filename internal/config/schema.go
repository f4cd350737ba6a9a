// Package config defines the schema and application configuration for the
// EDA tool.
//
// The schema (which columns are numeric, categorical, identifier, or target)
// is fixed, externally supplied data. It is decoded from JSON with the
// standard library, the same way pipeline files are, or from YAML when the
// file extension asks for it. Application settings come from flags with
// environment fallbacks (see LoadFromArgs).
//
// Example schema (JSON):
//
//	{
//	  "numeric_features":     ["Age", "Fare", "SibSp", "Parch"],
//	  "categorical_features": ["Pclass", "Sex", "Embarked"],
//	  "categorical_codes":    ["Pclass"],
//	  "target_field":         "Survived",
//	  "identifier_field":     "PassengerId",
//	  "color_feature":        "Pclass",
//	  "origin_field":         "dataset",
//	  "distribution_sort":    "auto"
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultOriginField is the column that carries the train/test tag in the
// merged dataset and its exports.
const DefaultOriginField = "dataset"

// Distribution sort policies. "auto" sorts by ascending numeric key when every
// key parses as an integer and keeps insertion order otherwise.
const (
	SortAuto      = "auto"
	SortInsertion = "insertion"
	SortNumeric   = "numeric"
	SortAlpha     = "alpha"
	SortCount     = "count"
)

// Schema is the immutable column-role configuration shared by coercion,
// aggregation and export. Treat values as read-only after construction.
type Schema struct {
	// NumericFeatures are coerced to number-or-null and summarized.
	NumericFeatures []string `json:"numeric_features" yaml:"numeric_features"`

	// CategoricalFeatures are grouped by their canonical string value.
	CategoricalFeatures []string `json:"categorical_features" yaml:"categorical_features"`

	// CategoricalCodes lists categorical features whose values are short
	// numeric codes (e.g. a passenger class). They are canonicalized to a
	// string form so "2", " 2" and 2.0 key the same bucket.
	CategoricalCodes []string `json:"categorical_codes" yaml:"categorical_codes"`

	// TargetField is the label column, present only in train rows.
	TargetField string `json:"target_field" yaml:"target_field"`

	// IdentifierField is the row identifier column, coerced to a number.
	IdentifierField string `json:"identifier_field" yaml:"identifier_field"`

	// ColorFeature is the categorical feature used for the illustrative
	// distribution (and conventionally for chart color mapping).
	ColorFeature string `json:"color_feature" yaml:"color_feature"`

	// OriginField names the merge-origin tag column. Defaults to "dataset".
	OriginField string `json:"origin_field" yaml:"origin_field"`

	// DistributionSort selects bucket ordering for distributions.
	DistributionSort string `json:"distribution_sort" yaml:"distribution_sort"`
}

// DefaultSchema returns the Titanic passenger schema.
func DefaultSchema() Schema {
	return Schema{
		NumericFeatures:     []string{"Age", "Fare", "SibSp", "Parch"},
		CategoricalFeatures: []string{"Pclass", "Sex", "Embarked"},
		CategoricalCodes:    []string{"Pclass"},
		TargetField:         "Survived",
		IdentifierField:     "PassengerId",
		ColorFeature:        "Pclass",
		OriginField:         DefaultOriginField,
		DistributionSort:    SortAuto,
	}
}

// LoadSchema reads a schema file. Files ending in .yaml or .yml are decoded
// as YAML; everything else as JSON. Unset optional fields receive defaults.
// An empty path returns DefaultSchema.
func LoadSchema(path string) (Schema, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultSchema(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("config: read schema: %w", err)
	}
	var s Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		s, err = DecodeSchemaYAML(b)
	default:
		s, err = DecodeSchemaJSON(b)
	}
	if err != nil {
		return Schema{}, fmt.Errorf("config: decode schema %s: %w", path, err)
	}
	return s, nil
}

// DecodeSchemaJSON decodes a JSON schema document, rejecting unknown keys.
func DecodeSchemaJSON(b []byte) (Schema, error) {
	var s Schema
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Schema{}, err
	}
	return s.withDefaults(), nil
}

// DecodeSchemaYAML decodes a YAML schema document, rejecting unknown keys.
func DecodeSchemaYAML(b []byte) (Schema, error) {
	var s Schema
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Schema{}, err
	}
	return s.withDefaults(), nil
}

func (s Schema) withDefaults() Schema {
	if strings.TrimSpace(s.OriginField) == "" {
		s.OriginField = DefaultOriginField
	}
	if strings.TrimSpace(s.DistributionSort) == "" {
		s.DistributionSort = SortAuto
	}
	return s
}

// Role classifies a column for coercion.
type Role int

const (
	// RolePassthrough columns keep their raw text.
	RolePassthrough Role = iota
	RoleNumeric
	RoleIdentifier
	RoleTarget
	RoleCategoricalCode
	RoleCategorical
)

// Roles returns a column → role lookup. Numeric coercion wins over the
// categorical roles if a name is listed twice; ValidateSchema reports that.
func (s Schema) Roles() map[string]Role {
	m := make(map[string]Role, len(s.NumericFeatures)+len(s.CategoricalFeatures)+2)
	for _, c := range s.CategoricalFeatures {
		m[c] = RoleCategorical
	}
	for _, c := range s.CategoricalCodes {
		m[c] = RoleCategoricalCode
	}
	for _, c := range s.NumericFeatures {
		m[c] = RoleNumeric
	}
	if s.IdentifierField != "" {
		m[s.IdentifierField] = RoleIdentifier
	}
	if s.TargetField != "" {
		m[s.TargetField] = RoleTarget
	}
	return m
}

// IsNumericColumn reports whether values of col are coerced to numbers
// (numeric features, identifier and target).
func (s Schema) IsNumericColumn(col string) bool {
	switch s.Roles()[col] {
	case RoleNumeric, RoleIdentifier, RoleTarget:
		return true
	}
	return false
}
