// Package source loads the baseline and candidate tables of a job.
//
// A Spec from the job file picks one of four backends:
//
//   - csv: a local CSV file with a header row.
//   - xlsx: a local workbook, first or named sheet (excelize).
//   - sql: a raw query or a whole table read through gorm.
//   - object: a CSV or XLSX object fetched from the configured bucket.
//
// Text cells are converted according to the Spec.Types mapping. Untyped
// columns stay strings and empty cells are null. LoadPair loads both sides
// of a job concurrently.
package source
