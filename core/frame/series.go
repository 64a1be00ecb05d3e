package frame

import (
	"fmt"
	"slices"

	"datarec/core/errors"
)

// Series is a column bound to the identity keys of the table it came from.
type Series struct {
	name   string
	ix     *index
	values []any
}

// Name returns the series label.
func (s *Series) Name() string { return s.name }

// Len returns the number of values.
func (s *Series) Len() int { return len(s.values) }

// Value returns the value at row i.
func (s *Series) Value(i int) any { return s.values[i] }

// Values returns a copy of the values.
func (s *Series) Values() []any { return slices.Clone(s.values) }

// Key returns the identity key of row i.
func (s *Series) Key(i int) Key { return s.ix.keys[i] }

// KeyNames returns the identity key dimension names.
func (s *Series) KeyNames() []string { return slices.Clone(s.ix.names) }

// Rename returns the same values under another label.
func (s *Series) Rename(name string) *Series {
	return &Series{name: name, ix: s.ix, values: s.values}
}

// Derive returns a series sharing s's keys with new values.
func (s *Series) Derive(name string, values []any) (*Series, error) {
	if len(values) != len(s.values) {
		return nil, errors.NewShapeError(fmt.Sprintf("series %q", name),
			fmt.Sprintf("has %d values, expected %d", len(values), len(s.values)))
	}
	return &Series{name: name, ix: s.ix, values: slices.Clone(values)}, nil
}

// AlignedWith reports whether both series share the same ordered key
// sequence.
func (s *Series) AlignedWith(other *Series) bool {
	return s.ix.sameKeys(other.ix)
}

// IsNull returns the elementwise null mask.
func (s *Series) IsNull() []bool {
	out := make([]bool, len(s.values))
	for i, v := range s.values {
		out[i] = IsNull(v)
	}
	return out
}

// EqualTo returns the elementwise equality mask against an aligned series.
// Null against anything is false.
func (s *Series) EqualTo(other *Series) ([]bool, error) {
	if !s.AlignedWith(other) {
		return nil, errors.NewShapeError("series", fmt.Sprintf("%q and %q are not aligned", s.name, other.name))
	}
	out := make([]bool, len(s.values))
	for i := range s.values {
		out[i] = Equal(s.values[i], other.values[i])
	}
	return out, nil
}

// Max returns the largest non-null value and whether one exists.
func (s *Series) Max() (any, bool, error) {
	var best any
	found := false
	for _, v := range s.values {
		if IsNull(v) {
			continue
		}
		if !found {
			best, found = v, true
			continue
		}
		c, err := Compare(v, best)
		if err != nil {
			return nil, false, err
		}
		if c > 0 {
			best = v
		}
	}
	return best, found, nil
}

// FromSeries assembles a table from aligned series, one column each, keyed
// like the first series.
func FromSeries(series ...*Series) (*Table, error) {
	if len(series) == 0 {
		return New(nil)
	}
	first := series[0]
	t := &Table{ix: first.ix, names: make([]string, len(series)), cols: make([][]any, len(series))}
	for i, s := range series {
		if !first.AlignedWith(s) {
			return nil, errors.NewShapeError("series", fmt.Sprintf("%q and %q are not aligned", first.name, s.name))
		}
		t.names[i] = s.name
		t.cols[i] = s.values
	}
	return t, nil
}
