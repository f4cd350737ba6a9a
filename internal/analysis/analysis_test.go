package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"eda/internal/config"
	"eda/internal/dataset"
)

// build coerces rows (name/value pairs) and merges them.
func build(t *testing.T, schema config.Schema, train, test []dataset.RawRecord) *dataset.Dataset {
	t.Helper()
	c := dataset.NewCoercer(schema)
	var tr, te []*dataset.Record
	for _, r := range train {
		tr = append(tr, c.Coerce(r, dataset.Train))
	}
	for _, r := range test {
		te = append(te, c.Coerce(r, dataset.Test))
	}
	ds, err := dataset.Merge(tr, te)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	return ds
}

func scenarioA(t *testing.T) *dataset.Dataset {
	t.Helper()
	return build(t, config.DefaultSchema(),
		[]dataset.RawRecord{
			{{Name: "PassengerId", Value: "1"}, {Name: "Survived", Value: "0"}, {Name: "Pclass", Value: "3"}, {Name: "Age", Value: "22"}},
			{{Name: "PassengerId", Value: "2"}, {Name: "Survived", Value: "1"}, {Name: "Pclass", Value: "1"}, {Name: "Age", Value: ""}},
			{{Name: "PassengerId", Value: "3"}, {Name: "Survived", Value: "1"}, {Name: "Pclass", Value: "3"}, {Name: "Age", Value: "38"}},
		},
		[]dataset.RawRecord{
			{{Name: "PassengerId", Value: "892"}, {Name: "Pclass", Value: "3"}, {Name: "Age", Value: "NA"}},
		},
	)
}

func TestScenarioA(t *testing.T) {
	t.Parallel()
	schema := config.DefaultSchema()
	ds := scenarioA(t)

	ov := Inventory(ds)
	if ov.Total != 4 || ov.Train != 3 || ov.Test != 1 {
		t.Fatalf("overview counts = %d/%d/%d want 4/3/1", ov.Total, ov.Train, ov.Test)
	}
	wantCols := []string{"PassengerId", "Survived", "Pclass", "Age", "dataset"}
	if !reflect.DeepEqual(ov.Columns, wantCols) {
		t.Fatalf("columns = %v want %v", ov.Columns, wantCols)
	}

	var age MissingRow
	for _, r := range MissingCensus(ds) {
		if r.Column == "Age" {
			age = r
		}
	}
	if age.Count != 2 || age.Percent != 50 {
		t.Fatalf("Age missing = %+v want count 2, 50%%", age)
	}

	num := NumericSummary(ds, schema)
	if num[0].Feature != "Age" {
		t.Fatalf("first numeric feature = %q", num[0].Feature)
	}
	a := num[0]
	if a.Count != 2 || a.Mean.String() != "30.00" || a.Min.String() != "22.00" || a.Max.String() != "38.00" {
		t.Fatalf("Age summary = count %d mean %s min %s max %s", a.Count, a.Mean, a.Min, a.Max)
	}

	td := TargetDistributionOf(ds, schema)
	if !td.Available || td.Negative != 1 || td.Positive != 2 || td.Total != 3 {
		t.Fatalf("target = %+v want {0:1, 1:2}", td)
	}
	if td.Rate.String() != "66.67" {
		t.Fatalf("rate = %s want 66.67", td.Rate)
	}
}

func TestMissingCensus_AbsentNullBlank(t *testing.T) {
	t.Parallel()
	ds := build(t, config.DefaultSchema(),
		[]dataset.RawRecord{
			{{Name: "Cabin", Value: "C85"}, {Name: "Embarked", Value: "S"}},
			{{Name: "Cabin", Value: "   "}, {Name: "Embarked", Value: "Q"}},
			{{Name: "Embarked", Value: "C"}},
		},
		nil,
	)
	got := map[string]MissingRow{}
	for _, r := range MissingCensus(ds) {
		got[r.Column] = r
	}
	if c := got["Cabin"]; c.Count != 2 || c.Percent != 66.67 || c.Complete() {
		t.Fatalf("Cabin = %+v want 2, 66.67", c)
	}
	if e := got["Embarked"]; e.Count != 0 || e.Percent != 0 || !e.Complete() {
		t.Fatalf("Embarked = %+v want complete", e)
	}
}

func TestMissingPercentProperty(t *testing.T) {
	t.Parallel()
	for _, total := range []int{1, 3, 7, 10001, 250000} {
		for _, part := range []int{0, 1, total / 2, total - 1, total} {
			if part < 0 || part > total {
				continue
			}
			p := percent(part, total)
			if p < 0 || p > 100 {
				t.Fatalf("percent(%d,%d)=%v out of range", part, total, p)
			}
			if (p == 0) != (part == 0) {
				t.Fatalf("percent(%d,%d)=%v; zero iff part is zero", part, total, p)
			}
		}
	}
}

func TestNumericSummary_NotApplicable(t *testing.T) {
	t.Parallel()
	ds := build(t, config.DefaultSchema(),
		[]dataset.RawRecord{{{Name: "Fare", Value: "abc"}}},
		[]dataset.RawRecord{{{Name: "Fare", Value: ""}}},
	)
	for _, r := range NumericSummary(ds, config.DefaultSchema()) {
		if r.Count != 0 || r.Mean.Valid || r.Min.Valid || r.Max.Valid {
			t.Fatalf("%s = %+v want count 0 and N/A", r.Feature, r)
		}
		if r.Mean.String() != NotApplicable {
			t.Fatalf("%s mean renders %q want N/A", r.Feature, r.Mean)
		}
	}

	b, err := json.Marshal(NumericRow{Feature: "Age"})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"feature":"Age","count":0,"mean":null,"min":null,"max":null}` {
		t.Fatalf("json = %s", b)
	}
}

func TestNumericSummary_Bounds(t *testing.T) {
	t.Parallel()
	sets := [][]string{
		{"0.1", "0.1", "0.1"},
		{"1e308", "1e308", "1e308"},
		{"-5", "7.25", "3.333333"},
		{"42"},
	}
	for _, vals := range sets {
		var rows []dataset.RawRecord
		for _, v := range vals {
			rows = append(rows, dataset.RawRecord{{Name: "Fare", Value: v}})
		}
		ds := build(t, config.DefaultSchema(), rows, nil)
		var fare NumericRow
		for _, r := range NumericSummary(ds, config.DefaultSchema()) {
			if r.Feature == "Fare" {
				fare = r
			}
		}
		if fare.Count != len(vals) {
			t.Fatalf("%v: count=%d", vals, fare.Count)
		}
		if !(fare.Min.Value <= fare.Mean.Value && fare.Mean.Value <= fare.Max.Value) {
			t.Fatalf("%v: min %v mean %v max %v violates bounds", vals, fare.Min.Value, fare.Mean.Value, fare.Max.Value)
		}
	}
}

func TestNumericSummary_MeanIsSumOverCount(t *testing.T) {
	t.Parallel()
	sumOver := func(xs ...float64) float64 {
		var s float64
		for _, x := range xs {
			s += x
		}
		return s / float64(len(xs))
	}
	cases := []struct {
		vals []string
		want float64
	}{
		{[]string{"0.1", "0.2", "0.4"}, sumOver(0.1, 0.2, 0.4)},
		{[]string{"2.675", "2.675", "2.675", "2.685"}, sumOver(2.675, 2.675, 2.675, 2.685)},
		{[]string{"1e308", "1e308"}, 1e308},
	}
	for _, tc := range cases {
		var rows []dataset.RawRecord
		for _, v := range tc.vals {
			rows = append(rows, dataset.RawRecord{{Name: "Age", Value: v}})
		}
		got := NumericSummary(build(t, config.DefaultSchema(), rows, nil), config.DefaultSchema())[0]
		if got.Feature != "Age" || !got.Mean.Valid || got.Mean.Value != tc.want {
			t.Fatalf("%v: mean=%v want %v", tc.vals, got.Mean.Value, tc.want)
		}
	}
}

// Scenario D: a number and numeric-looking text share one bucket.
func TestCategoricalDistribution_CanonicalBuckets(t *testing.T) {
	t.Parallel()

	schema := config.DefaultSchema()
	c := dataset.NewCoercer(schema)
	numeric := c.Coerce(dataset.RawRecord{{Name: "Pclass", Value: "2"}}, dataset.Train)
	numeric.Set("Pclass", dataset.Number(2))
	text := c.Coerce(dataset.RawRecord{{Name: "Pclass", Value: "2"}}, dataset.Test)
	other := c.Coerce(dataset.RawRecord{{Name: "Pclass", Value: "1"}}, dataset.Test)
	blank := c.Coerce(dataset.RawRecord{{Name: "Pclass", Value: " "}}, dataset.Test)

	ds, err := dataset.Merge([]*dataset.Record{numeric}, []*dataset.Record{text, other, blank})
	if err != nil {
		t.Fatal(err)
	}
	d, err := CategoricalDistribution(ds, schema, "")
	if err != nil {
		t.Fatalf("CategoricalDistribution: %v", err)
	}
	want := []Bucket{{Value: "1", Count: 1}, {Value: "2", Count: 2}}
	if d.Feature != "Pclass" || !reflect.DeepEqual(d.Buckets, want) || d.Missing != 1 || d.Total != 4 {
		t.Fatalf("distribution = %+v want buckets %v missing 1", d, want)
	}
}

// Only code features are canonicalized; other categorical text keeps its
// raw spelling apart from surrounding space.
func TestCategoricalDistribution_RawTextBuckets(t *testing.T) {
	t.Parallel()

	schema := config.DefaultSchema()
	schema.CategoricalFeatures = append(schema.CategoricalFeatures, "Ticket")
	schema.DistributionSort = config.SortInsertion

	ds := build(t, schema,
		[]dataset.RawRecord{
			{{Name: "Survived", Value: "1"}, {Name: "Ticket", Value: "007"}},
			{{Name: "Survived", Value: "0"}, {Name: "Ticket", Value: "7"}},
			{{Name: "Survived", Value: "1"}, {Name: "Ticket", Value: " 7 "}},
			{{Name: "Survived", Value: "1"}, {Name: "Ticket", Value: "1e3"}},
		},
		[]dataset.RawRecord{
			{{Name: "Ticket", Value: "007"}},
			{{Name: "Ticket", Value: "A/5 21171"}},
		})

	d, err := CategoricalDistribution(ds, schema, "Ticket")
	if err != nil {
		t.Fatalf("CategoricalDistribution: %v", err)
	}
	want := []Bucket{{Value: "007", Count: 2}, {Value: "7", Count: 2}, {Value: "1e3", Count: 1}, {Value: "A/5 21171", Count: 1}}
	if !reflect.DeepEqual(d.Buckets, want) {
		t.Fatalf("buckets = %v want %v", d.Buckets, want)
	}

	rates, err := TargetRate(ds, schema, "Ticket")
	if err != nil {
		t.Fatalf("TargetRate: %v", err)
	}
	var values []string
	for _, r := range rates {
		values = append(values, r.Value)
	}
	if got := fmt.Sprint(values); got != "[007 7 1e3]" {
		t.Fatalf("rate rows = %s want [007 7 1e3]", got)
	}
	if rates[1].Count != 2 || rates[1].Positives != 1 {
		t.Fatalf("rate row 7 = %+v want count 2 positives 1", rates[1])
	}
}

func TestCategoricalDistribution_UnknownColumn(t *testing.T) {
	t.Parallel()
	_, err := CategoricalDistribution(scenarioA(t), config.DefaultSchema(), "Deck")
	if !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("err=%v want ErrUnknownColumn", err)
	}
}

func TestSortBuckets(t *testing.T) {
	t.Parallel()

	mk := func(pairs ...any) []Bucket {
		var out []Bucket
		for i := 0; i < len(pairs); i += 2 {
			out = append(out, Bucket{Value: pairs[i].(string), Count: pairs[i+1].(int)})
		}
		return out
	}
	values := func(b []Bucket) string {
		s := ""
		for _, x := range b {
			s += x.Value + " "
		}
		return s
	}

	cases := []struct {
		policy string
		in     []Bucket
		want   string
	}{
		{config.SortAuto, mk("3", 5, "1", 2, "10", 1, "2", 4), "1 2 3 10 "},
		{config.SortAuto, mk("S", 5, "C", 2, "Q", 1), "S C Q "},
		{config.SortAuto, mk("1", 1, "2.5", 1, "0", 1), "1 2.5 0 "},
		{config.SortInsertion, mk("3", 1, "1", 1), "3 1 "},
		{config.SortNumeric, mk("x", 1, "2.5", 1, "-1", 1, "a", 1), "-1 2.5 x a "},
		{config.SortAlpha, mk("male", 1, "female", 1), "female male "},
		{config.SortCount, mk("S", 2, "C", 5, "Q", 2), "C S Q "},
		{"bogus", mk("2", 1, "1", 1), "1 2 "},
	}
	for i, c := range cases {
		SortBuckets(c.in, c.policy)
		if got := values(c.in); got != c.want {
			t.Fatalf("case %d (%s): got %q want %q", i, c.policy, got, c.want)
		}
	}
}

func TestTargetDistribution_NoTrainTarget(t *testing.T) {
	t.Parallel()
	ds := build(t, config.DefaultSchema(), nil,
		[]dataset.RawRecord{{{Name: "PassengerId", Value: "892"}, {Name: "Survived", Value: "1"}}},
	)
	td := TargetDistributionOf(ds, config.DefaultSchema())
	if td.Available || td.Total != 0 || td.Rate.Valid {
		t.Fatalf("target = %+v want unavailable", td)
	}
}

func TestTargetDistribution_FlagsOtherValues(t *testing.T) {
	t.Parallel()
	ds := build(t, config.DefaultSchema(),
		[]dataset.RawRecord{
			{{Name: "Survived", Value: "1"}},
			{{Name: "Survived", Value: "2"}},
			{{Name: "Survived", Value: ""}},
		}, nil)
	td := TargetDistributionOf(ds, config.DefaultSchema())
	if td.Positive != 1 || td.Negative != 0 || td.Other != 1 || td.Total != 1 {
		t.Fatalf("target = %+v", td)
	}
	if fmt.Sprint(td.Buckets()) != "[{0 0} {1 1}]" {
		t.Fatalf("buckets = %v", td.Buckets())
	}
}

func TestTargetRate(t *testing.T) {
	t.Parallel()
	rows, err := TargetRate(scenarioA(t), config.DefaultSchema(), "Pclass")
	if err != nil {
		t.Fatalf("TargetRate: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %+v want 2", rows)
	}
	if r := rows[0]; r.Value != "1" || r.Count != 1 || r.Positives != 1 || r.Rate.String() != "100.00" {
		t.Fatalf("class 1 = %+v", r)
	}
	// The test row (class 3) is excluded.
	if r := rows[1]; r.Value != "3" || r.Count != 2 || r.Positives != 1 || r.Rate.String() != "50.00" {
		t.Fatalf("class 3 = %+v", r)
	}

	if _, err := TargetRate(scenarioA(t), config.DefaultSchema(), "Deck"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("err=%v want ErrUnknownColumn", err)
	}
}
