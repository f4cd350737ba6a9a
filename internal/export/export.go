// Package export renders a merged dataset into downloadable artifacts: a
// fully quoted CSV file, a JSON summary and an optional XLSX report. Each
// writer is a pure function of its inputs; callers own file mechanics.
package export

// Artifact file names for a given prefix, e.g. "titanic_merged_data.csv".
func CSVFileName(prefix string) string      { return prefix + "_merged_data.csv" }
func SummaryFileName(prefix string) string  { return prefix + "_data_summary.json" }
func WorkbookFileName(prefix string) string { return prefix + "_report.xlsx" }
