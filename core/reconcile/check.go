package reconcile

import (
	"fmt"
	"math"
	"regexp"

	"datarec/core/errors"
	"datarec/core/frame"
)

// Diagnostic column names of a failing-rows table.
const (
	BaselineColumn  = "baseline"
	CandidateColumn = "candidate"
	AbsErrorColumn  = "abs_error"
	RelErrorColumn  = "rel_error"
)

// Stabiliser replaces a zero denominator in the relative error.
const Stabiliser = 1e-10

// SortOrder orders the failing rows of a tolerance check by their error.
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (s SortOrder) validate() error {
	switch s {
	case SortNone, SortAsc, SortDesc:
		return nil
	default:
		return errors.NewArgumentError("sort", string(s), "must be asc or desc")
	}
}

// Param is one named check parameter, shown in report signatures only.
type Param struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

// ColumnCheck compares two aligned columns and returns the failing rows.
//
// Evaluate receives series sharing the same ordered identity keys and must
// not modify them. The returned table is keyed by the failing keys and holds
// at least the baseline and candidate columns; zero rows is a pass.
type ColumnCheck interface {
	// Name is the check name used in reports.
	Name() string
	// Params are the parameters rendered in the report signature.
	Params() []Param
	// Regex reports whether the column selector is a pattern.
	Regex() bool
	// Evaluate runs the comparison.
	Evaluate(baseline, candidate *frame.Series) (*frame.Table, error)
}

// Tolerance is a check that passes rows within a numeric tolerance.
type Tolerance interface {
	ColumnCheck
	Tol() float64
	Sort() SortOrder
}

// CheckOption configures a built-in check.
type CheckOption func(*checkConfig)

type checkConfig struct {
	regex bool
	sort  SortOrder
}

// WithRegex treats the column selector as a regular expression.
func WithRegex() CheckOption {
	return func(c *checkConfig) { c.regex = true }
}

// WithSort orders failing rows of a tolerance check by their error column.
// NewAbsTol and NewRelTol reject an unknown order.
func WithSort(order SortOrder) CheckOption {
	return func(c *checkConfig) { c.sort = order }
}

func newConfig(opts []CheckOption) checkConfig {
	var c checkConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Equal passes a row when both values are equal or both are null.
type Equal struct {
	cfg checkConfig
}

// NewEqual creates an equality check.
func NewEqual(opts ...CheckOption) *Equal {
	return &Equal{cfg: newConfig(opts)}
}

func (e *Equal) Name() string    { return "EqualCheck" }
func (e *Equal) Params() []Param { return nil }
func (e *Equal) Regex() bool     { return e.cfg.regex }

func (e *Equal) Evaluate(baseline, candidate *frame.Series) (*frame.Table, error) {
	eq, err := baseline.EqualTo(candidate)
	if err != nil {
		return nil, err
	}
	bNull, cNull := baseline.IsNull(), candidate.IsNull()

	mask := make([]bool, len(eq))
	for i := range eq {
		mask[i] = !eq[i] && !(bNull[i] && cNull[i])
	}

	out, err := frame.FromSeries(baseline.Rename(BaselineColumn), candidate.Rename(CandidateColumn))
	if err != nil {
		return nil, err
	}
	return out.Filter(mask)
}

// tolerance is shared by the absolute and relative checks; only the error
// function and the diagnostic column differ.
type tolerance struct {
	name   string
	column string
	tol    float64
	cfg    checkConfig
	errFn  func(b, c float64) float64
}

func (t *tolerance) Name() string    { return t.name }
func (t *tolerance) Params() []Param { return []Param{{Name: "tol", Value: t.tol}} }
func (t *tolerance) Regex() bool     { return t.cfg.regex }

// Tol returns the configured tolerance.
func (t *tolerance) Tol() float64 { return t.tol }

// Sort returns the configured failing-row order.
func (t *tolerance) Sort() SortOrder { return t.cfg.sort }

// Validate rejects a negative or NaN tolerance and an unknown sort order.
func (t *tolerance) Validate() error {
	if math.IsNaN(t.tol) || t.tol < 0 {
		return errors.NewArgumentError("tol", t.tol, "must be a non-negative number")
	}
	return t.cfg.sort.validate()
}

func (t *tolerance) Evaluate(baseline, candidate *frame.Series) (*frame.Table, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if !baseline.AlignedWith(candidate) {
		return nil, errors.NewShapeError("series", fmt.Sprintf("%q and %q are not aligned", baseline.Name(), candidate.Name()))
	}

	n := baseline.Len()
	errs := make([]any, n)
	mask := make([]bool, n)
	for i := 0; i < n; i++ {
		bv, cv := baseline.Value(i), candidate.Value(i)
		bNull, cNull := frame.IsNull(bv), frame.IsNull(cv)
		if bNull || cNull {
			// Both null passes, one-sided null fails with no error value.
			mask[i] = bNull != cNull
			continue
		}
		bf, err := numeric(bv, "baseline", baseline, i)
		if err != nil {
			return nil, err
		}
		cf, err := numeric(cv, "candidate", candidate, i)
		if err != nil {
			return nil, err
		}
		e := t.errFn(bf, cf)
		errs[i] = e
		mask[i] = !(e <= t.tol)
	}

	errSeries, err := baseline.Derive(t.column, errs)
	if err != nil {
		return nil, err
	}
	out, err := frame.FromSeries(baseline.Rename(BaselineColumn), candidate.Rename(CandidateColumn), errSeries)
	if err != nil {
		return nil, err
	}
	if out, err = out.Filter(mask); err != nil {
		return nil, err
	}
	if t.cfg.sort == SortNone {
		return out, nil
	}
	return out.SortBy(t.column, t.cfg.sort == SortDesc)
}

func numeric(v any, side string, s *frame.Series, row int) (float64, error) {
	f, ok := frame.ToFloat(v)
	if !ok {
		return 0, errors.NewShapeError(fmt.Sprintf("column %q", s.Name()),
			fmt.Sprintf("non-numeric %s value %v (%T) at key %s", side, v, v, s.Key(row)))
	}
	return f, nil
}

// AbsTol passes a row when |baseline - candidate| <= tol or both are null.
type AbsTol struct {
	tolerance
}

// NewAbsTol creates an absolute tolerance check. A negative or NaN tolerance
// and an unknown sort order are rejected here.
func NewAbsTol(tol float64, opts ...CheckOption) (*AbsTol, error) {
	c := &AbsTol{tolerance{
		name:   "AbsTolCheck",
		column: AbsErrorColumn,
		tol:    tol,
		cfg:    newConfig(opts),
		errFn: func(b, c float64) float64 {
			return math.Abs(b - c)
		},
	}}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustAbsTol is like NewAbsTol but panics on a bad argument.
func MustAbsTol(tol float64, opts ...CheckOption) *AbsTol {
	return must(NewAbsTol(tol, opts...))
}

// RelTol passes a row when |baseline - candidate| / |candidate| <= tol or both
// are null. A zero candidate is replaced by Stabiliser in the denominator.
type RelTol struct {
	tolerance
}

// NewRelTol creates a relative tolerance check. Arguments are checked as in
// NewAbsTol.
func NewRelTol(tol float64, opts ...CheckOption) (*RelTol, error) {
	c := &RelTol{tolerance{
		name:   "RelTolCheck",
		column: RelErrorColumn,
		tol:    tol,
		cfg:    newConfig(opts),
		errFn: func(b, c float64) float64 {
			d := math.Abs(c)
			if d == 0 {
				d = Stabiliser
			}
			return math.Abs(b-c) / d
		},
	}}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustRelTol is like NewRelTol but panics on a bad argument.
func MustRelTol(tol float64, opts ...CheckOption) *RelTol {
	return must(NewRelTol(tol, opts...))
}

func must[T any](c T, err error) T {
	if err != nil {
		panic(err)
	}
	return c
}

// CheckFunc adapts a function into a ColumnCheck.
type CheckFunc struct {
	CheckName string
	Args      []Param
	Pattern   bool
	Fn        func(baseline, candidate *frame.Series) (*frame.Table, error)
}

func (f CheckFunc) Name() string    { return f.CheckName }
func (f CheckFunc) Params() []Param { return f.Args }
func (f CheckFunc) Regex() bool     { return f.Pattern }

func (f CheckFunc) Evaluate(baseline, candidate *frame.Series) (*frame.Table, error) {
	return f.Fn(baseline, candidate)
}

// Run applies check to the named column, or in regex mode to every column
// whose name matches on both sides. Each checked column yields one result;
// a pattern matching nothing yields none.
func Run(check ColumnCheck, baseline, candidate *frame.Table, column string) ([]CheckResult, error) {
	if v, ok := check.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	names := []string{column}
	if check.Regex() {
		re, err := regexp.Compile(column)
		if err != nil {
			return nil, errors.NewArgumentError("pattern", column, err.Error())
		}
		names = frame.IntersectNames(baseline.MatchColumns(re), candidate.MatchColumns(re))
	}

	results := make([]CheckResult, 0, len(names))
	for _, name := range names {
		b, err := baseline.Column(name)
		if err != nil {
			return nil, fmt.Errorf("baseline: %w", err)
		}
		c, err := candidate.Column(name)
		if err != nil {
			return nil, fmt.Errorf("candidate: %w", err)
		}
		failed, err := check.Evaluate(b, c)
		if err != nil {
			return nil, fmt.Errorf("%s on column %q: %w", check.Name(), name, err)
		}
		results = append(results, CheckResult{
			Failed:      failed,
			Check:       check.Name(),
			Column:      name,
			TotalRows:   baseline.NumRows(),
			Params:      check.Params(),
			DisplayRows: DefaultDisplayRows,
		})
	}
	return results, nil
}
