package dataset

import "fmt"

// Origin identifies which source produced a record.
type Origin uint8

const (
	Train Origin = iota + 1
	Test
)

func (o Origin) String() string {
	switch o {
	case Train:
		return "train"
	case Test:
		return "test"
	}
	return fmt.Sprintf("origin(%d)", uint8(o))
}

// ParseOrigin maps "train"/"test" to an Origin.
func ParseOrigin(s string) (Origin, error) {
	switch s {
	case "train":
		return Train, nil
	case "test":
		return Test, nil
	}
	return 0, fmt.Errorf("dataset: unknown origin %q", s)
}

// RawField is one header-keyed cell as read from a source, before coercion.
type RawField struct {
	Name  string
	Value string
}

// RawRecord is one parsed source row in header order. Columns the row did
// not reach (short rows) are simply not listed, i.e. absent.
type RawRecord []RawField

// Record is a typed row tagged with its origin. Keys keep first-set order so
// the column inventory can follow source order.
type Record struct {
	Origin Origin

	keys   []string
	fields map[string]Value
}

// NewRecord returns an empty record for origin.
func NewRecord(origin Origin) *Record {
	return &Record{Origin: origin, fields: make(map[string]Value)}
}

// Set stores v under name, appending name to the key order on first use.
func (r *Record) Set(name string, v Value) {
	if r.fields == nil {
		r.fields = make(map[string]Value)
	}
	if _, ok := r.fields[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.fields[name] = v
}

// Get returns the value for name and whether the field is present. An
// absent field reports (Null(), false).
func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Keys returns the field names in first-set order. The slice must not be
// modified.
func (r *Record) Keys() []string { return r.keys }

// Len returns the number of present fields.
func (r *Record) Len() int { return len(r.keys) }
