package reconcile_test

import (
	"testing"
	"time"

	"datarec/core/frame"

	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func dateKey(days ...int) []frame.Column {
	vals := make([]any, len(days))
	for i, d := range days {
		vals[i] = day(d)
	}
	return []frame.Column{frame.NewColumn("date", vals...)}
}

func table(t *testing.T, key []frame.Column, cols ...frame.Column) *frame.Table {
	t.Helper()
	tbl, err := frame.New(key, cols...)
	require.NoError(t, err)
	return tbl
}

func series(t *testing.T, tbl *frame.Table, name string) *frame.Series {
	t.Helper()
	s, err := tbl.Column(name)
	require.NoError(t, err)
	return s
}

func keyStrings(tbl *frame.Table) []string {
	keys := tbl.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

func columnValues(t *testing.T, tbl *frame.Table, name string) []any {
	t.Helper()
	return series(t, tbl, name).Values()
}

// diffFrames differ in column B on 2024-01-02 only.
func diffFrames(t *testing.T) (*frame.Table, *frame.Table) {
	b := table(t, dateKey(1, 2), frame.NewColumn("A", 1, 2), frame.NewColumn("B", 3, 4))
	c := table(t, dateKey(1, 2), frame.NewColumn("A", 1, 2), frame.NewColumn("B", 3, 5))
	return b, c
}

// datedFrames: the candidate runs one day further and differs on 2024-01-02.
func datedFrames(t *testing.T) (*frame.Table, *frame.Table) {
	b := table(t, dateKey(1, 2), frame.NewColumn("value", 10, 11))
	c := table(t, dateKey(1, 2, 3), frame.NewColumn("value", 10, 12, 13))
	return b, c
}

// absTolFrames: B differs by 1 on the first day and by 6 on the second.
func absTolFrames(t *testing.T) (*frame.Table, *frame.Table) {
	b := table(t, dateKey(1, 2), frame.NewColumn("A", 1, 2), frame.NewColumn("B", 3.0, 4.0))
	c := table(t, dateKey(1, 2), frame.NewColumn("A", 1, 2), frame.NewColumn("B", 2.0, 10.0))
	return b, c
}
