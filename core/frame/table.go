package frame

import (
	"fmt"
	"regexp"
	"slices"

	"datarec/core/errors"
)

// RowDimension names the positional key used when a table is built without
// key columns.
const RowDimension = "row"

// Column is a named slice of values used to build a table.
type Column struct {
	Name   string
	Values []any
}

// NewColumn creates a column from its values.
func NewColumn(name string, values ...any) Column {
	return Column{Name: name, Values: values}
}

type index struct {
	names []string
	keys  []Key
	pos   map[string]int
}

func newIndex(names []string, keys []Key) (*index, error) {
	pos := make(map[string]int, len(keys))
	for i, k := range keys {
		if _, dup := pos[k.ID()]; dup {
			return nil, errors.NewShapeError("identity key", fmt.Sprintf("duplicate key %s", k))
		}
		pos[k.ID()] = i
	}
	return &index{names: names, keys: keys, pos: pos}, nil
}

func (ix *index) take(rows []int) *index {
	keys := make([]Key, len(rows))
	pos := make(map[string]int, len(rows))
	for i, r := range rows {
		keys[i] = ix.keys[r]
		pos[keys[i].ID()] = i
	}
	return &index{names: ix.names, keys: keys, pos: pos}
}

func (ix *index) sameKeys(other *index) bool {
	if ix == other {
		return true
	}
	if len(ix.keys) != len(other.keys) {
		return false
	}
	for i := range ix.keys {
		if ix.keys[i].ID() != other.keys[i].ID() {
			return false
		}
	}
	return true
}

// Table is an immutable set of named columns sharing one identity key per
// row. Column labels may repeat; identity keys may not.
type Table struct {
	ix    *index
	names []string
	cols  [][]any
}

// New builds a table. The key columns form the identity key, one dimension
// per column; with no key columns rows are keyed by position. Duplicate keys
// and ragged columns are rejected.
func New(key []Column, columns ...Column) (*Table, error) {
	n := -1
	for _, c := range append(slices.Clone(key), columns...) {
		if n >= 0 && len(c.Values) != n {
			return nil, errors.NewShapeError(fmt.Sprintf("column %q", c.Name),
				fmt.Sprintf("has %d values, expected %d", len(c.Values), n))
		}
		n = len(c.Values)
	}
	if n < 0 {
		n = 0
	}

	var names []string
	keys := make([]Key, n)
	if len(key) == 0 {
		names = []string{RowDimension}
		for i := range keys {
			keys[i] = NewKey(int64(i))
		}
	} else {
		names = make([]string, len(key))
		for d, c := range key {
			names[d] = c.Name
		}
		parts := make([]any, len(key))
		for i := range keys {
			for d, c := range key {
				parts[d] = c.Values[i]
			}
			keys[i] = NewKey(parts...)
		}
	}

	ix, err := newIndex(names, keys)
	if err != nil {
		return nil, err
	}

	t := &Table{ix: ix, names: make([]string, len(columns)), cols: make([][]any, len(columns))}
	for i, c := range columns {
		t.names[i] = c.Name
		t.cols[i] = slices.Clone(c.Values)
		if t.cols[i] == nil {
			t.cols[i] = []any{}
		}
	}
	return t, nil
}

// FromRecords builds a table from a header and row records, promoting the
// named key columns to the identity key.
func FromRecords(header []string, records [][]any, key ...string) (*Table, error) {
	cols := make([]Column, len(header))
	for j, h := range header {
		cols[j] = Column{Name: h, Values: make([]any, len(records))}
	}
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, errors.NewShapeError(fmt.Sprintf("record %d", i),
				fmt.Sprintf("has %d fields, header has %d", len(rec), len(header)))
		}
		for j, v := range rec {
			cols[j].Values[i] = v
		}
	}

	keyCols := make([]Column, 0, len(key))
	for _, k := range key {
		at := -1
		for j, h := range header {
			if h != k {
				continue
			}
			if at >= 0 {
				return nil, errors.NewShapeError(fmt.Sprintf("key column %q", k), "label is not unique")
			}
			at = j
		}
		if at < 0 {
			return nil, errors.NewNotFoundError("key column", k)
		}
		keyCols = append(keyCols, cols[at])
	}

	data := make([]Column, 0, len(cols))
	for _, c := range cols {
		if !slices.Contains(key, c.Name) {
			data = append(data, c)
		}
	}
	return New(keyCols, data...)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.ix.keys) }

// NumCols returns the number of data columns, key dimensions excluded.
func (t *Table) NumCols() int { return len(t.names) }

// ColumnNames returns the data column labels in order.
func (t *Table) ColumnNames() []string { return slices.Clone(t.names) }

// KeyNames returns the identity key dimension names.
func (t *Table) KeyNames() []string { return slices.Clone(t.ix.names) }

// Keys returns the identity keys in row order.
func (t *Table) Keys() []Key { return slices.Clone(t.ix.keys) }

// HasKey reports whether k identifies a row of t.
func (t *Table) HasKey(k Key) bool {
	_, ok := t.ix.pos[k.ID()]
	return ok
}

// Column returns the column labelled name. A label that resolves to more than
// one column is a shape error.
func (t *Table) Column(name string) (*Series, error) {
	at := -1
	count := 0
	for i, n := range t.names {
		if n == name {
			if at < 0 {
				at = i
			}
			count++
		}
	}
	switch {
	case count == 0:
		return nil, errors.NewNotFoundError("column", name)
	case count > 1:
		return nil, errors.NewShapeError(fmt.Sprintf("column %q", name),
			fmt.Sprintf("label resolves to %d columns", count))
	}
	return &Series{name: name, ix: t.ix, values: t.cols[at]}, nil
}

// Lookup returns the column labelled name or, when no column has that label,
// the key dimension with that name.
func (t *Table) Lookup(name string) (*Series, error) {
	s, err := t.Column(name)
	if err == nil || !errors.Is(err, errors.ErrNotFound) {
		return s, err
	}
	for d, n := range t.ix.names {
		if n != name {
			continue
		}
		values := make([]any, len(t.ix.keys))
		for i, k := range t.ix.keys {
			values[i] = k.Part(d)
		}
		return &Series{name: name, ix: t.ix, values: values}, nil
	}
	return nil, errors.NewNotFoundError("column or key dimension", name)
}

// KeyDifference returns the keys of t absent from other, in t's row order.
func (t *Table) KeyDifference(other *Table) []Key {
	var out []Key
	for _, k := range t.ix.keys {
		if !other.HasKey(k) {
			out = append(out, k)
		}
	}
	return out
}

// KeyIntersection returns the keys of t also present in other, in t's row
// order.
func (t *Table) KeyIntersection(other *Table) []Key {
	out := make([]Key, 0, len(t.ix.keys))
	for _, k := range t.ix.keys {
		if other.HasKey(k) {
			out = append(out, k)
		}
	}
	return out
}

// SelectKeys returns the rows identified by keys, in the order given.
func (t *Table) SelectKeys(keys []Key) (*Table, error) {
	rows := make([]int, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for i, k := range keys {
		r, ok := t.ix.pos[k.ID()]
		if !ok {
			return nil, errors.NewNotFoundError("key", k.String())
		}
		if _, dup := seen[k.ID()]; dup {
			return nil, errors.NewShapeError("identity key", fmt.Sprintf("duplicate key %s", k))
		}
		seen[k.ID()] = struct{}{}
		rows[i] = r
	}
	return t.take(rows), nil
}

// Filter returns the rows where mask is true.
func (t *Table) Filter(mask []bool) (*Table, error) {
	if len(mask) != t.NumRows() {
		return nil, errors.NewShapeError("mask", fmt.Sprintf("has %d entries, table has %d rows", len(mask), t.NumRows()))
	}
	rows := make([]int, 0, len(mask))
	for i, keep := range mask {
		if keep {
			rows = append(rows, i)
		}
	}
	return t.take(rows), nil
}

// MatchColumns returns the distinct column labels the pattern finds a match
// in, in column order.
func (t *Table) MatchColumns(re *regexp.Regexp) []string {
	var out []string
	for _, n := range t.names {
		if re.MatchString(n) && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// SortBy orders rows by a column. The sort is stable and nulls always come
// last, whichever the direction.
func (t *Table) SortBy(column string, descending bool) (*Table, error) {
	s, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	rows := make([]int, t.NumRows())
	for i := range rows {
		rows[i] = i
	}

	var cmpErr error
	slices.SortStableFunc(rows, func(i, j int) int {
		a, b := s.values[i], s.values[j]
		an, bn := IsNull(a), IsNull(b)
		switch {
		case an && bn:
			return 0
		case an:
			return 1
		case bn:
			return -1
		}
		c, err := Compare(a, b)
		if err != nil {
			if cmpErr == nil {
				cmpErr = err
			}
			return 0
		}
		if descending {
			return -c
		}
		return c
	})
	if cmpErr != nil {
		return nil, cmpErr
	}
	return t.take(rows), nil
}

// Tail returns the last n rows.
func (t *Table) Tail(n int) *Table {
	total := t.NumRows()
	if n >= total {
		return t
	}
	if n < 0 {
		n = 0
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = total - n + i
	}
	return t.take(rows)
}

// Header returns the key dimension names followed by the column labels.
func (t *Table) Header() []string {
	return append(t.KeyNames(), t.names...)
}

// Records returns each row as its key parts followed by its column values.
func (t *Table) Records() [][]any {
	out := make([][]any, t.NumRows())
	for i, k := range t.ix.keys {
		rec := k.Parts()
		for _, c := range t.cols {
			rec = append(rec, c[i])
		}
		out[i] = rec
	}
	return out
}

func (t *Table) take(rows []int) *Table {
	out := &Table{ix: t.ix.take(rows), names: t.names, cols: make([][]any, len(t.cols))}
	for j, c := range t.cols {
		vals := make([]any, len(rows))
		for i, r := range rows {
			vals[i] = c[r]
		}
		out.cols[j] = vals
	}
	return out
}

// IntersectNames returns the names of a also present in b, in a's order.
func IntersectNames(a, b []string) []string {
	var out []string
	for _, n := range a {
		if slices.Contains(b, n) && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
