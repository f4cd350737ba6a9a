// Package dataset holds the typed record model and the two pure pipeline
// steps that build it: type coercion (raw text → typed values, per schema
// role) and the train/test merge.
//
// A field can be absent (never set on the record), null (set, but missing or
// unparseable), a finite number, or text. Aggregation treats absent, null and
// blank text alike as missing, but the distinction is kept structurally.
package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Kind tags the variant stored in a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindText
)

// Value is a single typed cell. The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Null returns the explicit missing marker.
func Null() Value { return Value{} }

// Number returns a numeric value. NaN and ±Inf are stored as null so no
// non-finite number is ever visible downstream.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, str: s} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the number and whether v holds one.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// IsMissing reports null, or text that is empty after trimming.
func (v Value) IsMissing() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return strings.TrimSpace(v.str) == ""
	}
	return false
}

// String renders the canonical text form: "" for null, the shortest exact
// decimal for numbers ("22", "7.25"), the raw text otherwise.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.str
	}
	return ""
}
