// Package analysis is the aggregation engine: read-only views computed from
// scratch over a merged dataset on every call.
//
// Every function is pure and deterministic. Missing means absent, null, or
// text that is empty after trimming, for every view.
package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrUnknownColumn is returned when a view names a column no record has.
var ErrUnknownColumn = errors.New("unknown column")

// NotApplicable is the display marker for a statistic with no data.
const NotApplicable = "N/A"

// Measure is a statistic computed at full precision that may be not
// applicable (no data). It renders rounded to 2 decimals, or as N/A.
type Measure struct {
	Value float64
	Valid bool
}

func some(v float64) Measure { return Measure{Value: v, Valid: true} }

// Rounded returns the value rounded to 2 decimals.
func (m Measure) Rounded() float64 { return round2(m.Value) }

func (m Measure) String() string {
	if !m.Valid {
		return NotApplicable
	}
	return strconv.FormatFloat(round2(m.Value), 'f', 2, 64)
}

// MarshalJSON writes the 2-decimal value, or null when not applicable.
func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(round2(m.Value))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// percent returns part/total*100 rounded to 2 decimals. A nonzero part
// never rounds down to 0, so a reported 0 always means none.
func percent(part, total int) float64 {
	if total <= 0 || part <= 0 {
		return 0
	}
	p := round2(float64(part) / float64(total) * 100)
	if p == 0 {
		p = 0.01
	}
	return p
}

func unknownColumn(name string) error {
	return fmt.Errorf("analysis: %w %q", ErrUnknownColumn, name)
}
