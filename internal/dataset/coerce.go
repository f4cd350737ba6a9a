package dataset

import (
	"math"
	"strconv"
	"strings"

	"eda/internal/config"
)

// CoerceNumeric converts raw text to a number, or null when the text is
// blank, unparseable or not finite. It never fails: a missing marker is
// better than a wrong number.
//
// Accepted syntax is Go's decimal float grammar (leading sign, decimal point,
// exponent), independent of locale. Words such as "NaN", "Inf" and "NA"
// yield null. Hex and underscore forms are rejected.
func CoerceNumeric(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" || !isDecimal(s) {
		return Null()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Number(f)
}

// isDecimal reports whether s uses only decimal-number characters, so
// ParseFloat's extras ("0x1p3", "1_000", "inf", "nan") never slip through.
func isDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
		case c == '.', c == '+', c == '-', c == 'e', c == 'E':
		default:
			return false
		}
	}
	return true
}

// CoerceCategoricalCode converts a code value to its canonical string form
// so grouping is always by string equality. Numbers and numeric-looking text
// render the same way (2, "2", " 2 ", "2.0" → "2"); other text is trimmed.
// Missing input stays null.
func CoerceCategoricalCode(v Value) Value {
	switch v.Kind() {
	case KindNumber:
		return Text(v.String())
	case KindText:
		s := strings.TrimSpace(v.String())
		if s == "" {
			return Null()
		}
		if n := CoerceNumeric(s); !n.IsNull() {
			return Text(n.String())
		}
		return Text(s)
	}
	return Null()
}

// Coercer applies the schema's coercion rules to raw records. Build one per
// schema and reuse it; it is safe for concurrent use.
type Coercer struct {
	roles       map[string]config.Role
	originField string
}

// NewCoercer precomputes the role lookup for schema.
func NewCoercer(schema config.Schema) *Coercer {
	origin := schema.OriginField
	if origin == "" {
		origin = config.DefaultOriginField
	}
	return &Coercer{roles: schema.Roles(), originField: origin}
}

// Coerce turns one raw row into a typed record tagged with origin.
//
//   - numeric features and the identifier → CoerceNumeric
//   - the target → CoerceNumeric for train rows; dropped for test rows
//   - categorical code features → CoerceCategoricalCode
//   - everything else keeps its raw text
//
// The origin tag is then written to the schema's origin field ("dataset" by
// default) as text, replacing any source column of that name.
func (c *Coercer) Coerce(raw RawRecord, origin Origin) *Record {
	rec := &Record{
		Origin: origin,
		keys:   make([]string, 0, len(raw)),
		fields: make(map[string]Value, len(raw)),
	}
	for _, f := range raw {
		switch c.roles[f.Name] {
		case config.RoleNumeric, config.RoleIdentifier:
			rec.Set(f.Name, CoerceNumeric(f.Value))
		case config.RoleTarget:
			if origin != Train {
				continue // the target is never carried on test rows
			}
			rec.Set(f.Name, CoerceNumeric(f.Value))
		case config.RoleCategoricalCode:
			rec.Set(f.Name, CoerceCategoricalCode(Text(f.Value)))
		default:
			rec.Set(f.Name, Text(f.Value))
		}
	}
	rec.Set(c.originField, Text(origin.String()))
	return rec
}
