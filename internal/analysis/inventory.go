package analysis

import "eda/internal/dataset"

// Overview is the structural summary of the merged dataset.
type Overview struct {
	Columns []string `json:"columns"`
	Total   int      `json:"total_records"`
	Train   int      `json:"train_records"`
	Test    int      `json:"test_records"`
}

// Inventory lists the distinct columns in first-seen order with the record
// counts per origin.
func Inventory(ds *dataset.Dataset) Overview {
	return Overview{
		Columns: ds.Columns(),
		Total:   ds.Len(),
		Train:   ds.TrainCount(),
		Test:    ds.TestCount(),
	}
}
