package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced to users
	// but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "target_field",
// "numeric_features[2]"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateSchema performs static validation of a Schema. It does not mutate
// the schema; callers decide whether warnings are fatal.
func ValidateSchema(s Schema) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.TargetField) == "" {
		issues = append(issues, Issue{SeverityError, "target_field", "target_field must not be empty"})
	}
	if strings.TrimSpace(s.IdentifierField) == "" {
		issues = append(issues, Issue{SeverityError, "identifier_field", "identifier_field must not be empty"})
	}
	if strings.TrimSpace(s.OriginField) == "" {
		issues = append(issues, Issue{SeverityError, "origin_field", "origin_field must not be empty"})
	}
	if len(s.NumericFeatures) == 0 {
		issues = append(issues, Issue{SeverityWarning, "numeric_features", "no numeric features; numeric summary will be empty"})
	}

	// Every named column must have exactly one role, and none may shadow the
	// origin tag.
	seen := map[string]string{}
	claim := func(path, name string) {
		if strings.TrimSpace(name) == "" {
			issues = append(issues, Issue{SeverityError, path, "column name must not be empty"})
			return
		}
		if name == s.OriginField {
			issues = append(issues, Issue{SeverityError, path,
				fmt.Sprintf("%q collides with origin_field", name)})
		}
		if prev, ok := seen[name]; ok {
			issues = append(issues, Issue{SeverityError, path,
				fmt.Sprintf("%q already declared at %s", name, prev)})
			return
		}
		seen[name] = path
	}
	for i, n := range s.NumericFeatures {
		claim(fmt.Sprintf("numeric_features[%d]", i), n)
	}
	for i, n := range s.CategoricalFeatures {
		claim(fmt.Sprintf("categorical_features[%d]", i), n)
	}
	if s.TargetField != "" {
		claim("target_field", s.TargetField)
	}
	if s.IdentifierField != "" {
		claim("identifier_field", s.IdentifierField)
	}

	cats := make(map[string]struct{}, len(s.CategoricalFeatures))
	for _, c := range s.CategoricalFeatures {
		cats[c] = struct{}{}
	}
	for i, c := range s.CategoricalCodes {
		if _, ok := cats[c]; !ok {
			issues = append(issues, Issue{SeverityError, fmt.Sprintf("categorical_codes[%d]", i),
				fmt.Sprintf("%q is not a categorical feature", c)})
		}
	}
	if s.ColorFeature != "" {
		if _, ok := cats[s.ColorFeature]; !ok {
			issues = append(issues, Issue{SeverityWarning, "color_feature",
				fmt.Sprintf("%q is not a categorical feature", s.ColorFeature)})
		}
	}

	switch s.DistributionSort {
	case "", SortAuto, SortInsertion, SortNumeric, SortAlpha, SortCount:
	default:
		issues = append(issues, Issue{SeverityError, "distribution_sort",
			fmt.Sprintf("unknown sort policy %q (want auto, insertion, numeric, alpha or count)", s.DistributionSort)})
	}

	return issues
}
