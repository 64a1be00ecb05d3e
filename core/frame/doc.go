// Package frame provides the in-memory keyed table the reconciliation engine
// operates on.
//
// A Table holds named columns (labels may repeat) and one identity Key per
// row. Keys have one or more dimensions and never repeat within a table.
// Every operation returns a new table; callers never observe mutation.
//
// # Values
//
// Cells are plain Go values: nil (null), integer and float numbers (NaN is
// null), string, bool and time.Time. Numbers compare by value across integer
// and float types, both for equality and for key identity.
//
// # Operations
//
//   - Column / Lookup: column selection, falling back to key dimensions
//   - KeyDifference / KeyIntersection / SelectKeys: identity set operations
//   - Filter, SortBy, Tail: row selection
//   - MatchColumns / IntersectNames: regex column dispatch helpers
//
// # Usage
//
//	t, err := frame.New(
//	    []frame.Column{frame.NewColumn("date", "2024-01-01", "2024-01-02")},
//	    frame.NewColumn("price", 1.5, 2.0),
//	)
//	price, err := t.Column("price")
package frame
