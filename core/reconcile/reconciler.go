package reconcile

import (
	"fmt"
	"slices"

	"datarec/core/frame"

	"go.uber.org/zap"
)

// Rule assigns a check to a column name, or to a pattern when the check is in
// regex mode. A nil Check marks the column as skipped.
type Rule struct {
	Column string
	Check  ColumnCheck
}

// Skip returns a rule that excludes column from every check, the default
// check included.
func Skip(column string) Rule {
	return Rule{Column: column}
}

// Skipped reports whether the rule is a skip marker.
func (r Rule) Skipped() bool { return r.Check == nil }

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithOrderBy clips both tables to their common range of the named column or
// key dimension before any check runs.
func WithOrderBy(column string) Option {
	return func(r *Reconciler) { r.orderBy = column }
}

// WithDefaultCheck toggles the Equal check on columns no rule covers.
func WithDefaultCheck(enabled bool) Option {
	return func(r *Reconciler) { r.checkAll = enabled }
}

// WithMissingCheck toggles the missing-keys presence check.
func WithMissingCheck(enabled bool) Option {
	return func(r *Reconciler) { r.missing = enabled }
}

// WithExtraCheck toggles the extra-keys presence check.
func WithExtraCheck(enabled bool) Option {
	return func(r *Reconciler) { r.extra = enabled }
}

// WithDisplayRows sets how many failing rows each result renders.
func WithDisplayRows(n int) Option {
	return func(r *Reconciler) { r.displayRows = n }
}

// WithLogger sets the logger used for run progress.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reconciler) { r.logger = l }
}

// Reconciler holds a reconciliation configuration and runs it against pairs
// of tables. It keeps no state between runs.
type Reconciler struct {
	rules       []Rule
	orderBy     string
	checkAll    bool
	missing     bool
	extra       bool
	displayRows int
	logger      *zap.Logger
}

// New creates a Reconciler. Rules are applied in the order given. By default
// both presence checks run and uncovered columns get an Equal check.
func New(rules []Rule, opts ...Option) *Reconciler {
	r := &Reconciler{
		rules:       slices.Clone(rules),
		checkAll:    true,
		missing:     true,
		extra:       true,
		displayRows: DefaultDisplayRows,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rules returns the configured rules in order.
func (r *Reconciler) Rules() []Rule { return slices.Clone(r.rules) }

// RunOption configures a single run.
type RunOption func(*runConfig)

type runConfig struct {
	raise bool
}

// RaiseOnFailure makes Run return a *errors.FailedError alongside the result
// when any check fails.
func RaiseOnFailure() RunOption {
	return func(c *runConfig) { c.raise = true }
}

// Run reconciles candidate against baseline:
//
//  1. clip both tables when an ordering column is configured
//  2. presence checks, missing then extra
//  3. align both tables on their common identity keys
//  4. configured rules in order; skipped and matched columns become covered
//  5. the default Equal check on uncovered baseline columns, in column order
//
// The result references the tables as given. Failed checks are data: the
// error is nil unless RaiseOnFailure was passed, in which case the complete
// result is still returned with the error.
func (r *Reconciler) Run(baseline, candidate *frame.Table, opts ...RunOption) (*Result, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	b, c := baseline, candidate
	if r.orderBy != "" {
		var err error
		if b, c, err = Clip(b, c, r.orderBy); err != nil {
			return nil, fmt.Errorf("clip on %q: %w", r.orderBy, err)
		}
		r.logger.Debug("Clipped tables",
			zap.String("order_by", r.orderBy),
			zap.Int("baseline_rows", b.NumRows()),
			zap.Int("candidate_rows", c.NumRows()),
		)
	}

	var results []CheckResult
	for _, dir := range r.directions() {
		res, err := PresenceCheck(dir, b, c)
		if err != nil {
			return nil, err
		}
		results = append(results, r.withDisplay(res))
	}

	keys := b.KeyIntersection(c)
	alignedB, err := b.SelectKeys(keys)
	if err != nil {
		return nil, fmt.Errorf("align baseline: %w", err)
	}
	alignedC, err := c.SelectKeys(keys)
	if err != nil {
		return nil, fmt.Errorf("align candidate: %w", err)
	}
	r.logger.Debug("Aligned tables", zap.Int("rows", len(keys)))

	covered := make(map[string]struct{})
	for _, rule := range r.rules {
		if rule.Skipped() {
			covered[rule.Column] = struct{}{}
			continue
		}
		res, err := Run(rule.Check, alignedB, alignedC, rule.Column)
		if err != nil {
			return nil, err
		}
		for _, cr := range res {
			covered[cr.Column] = struct{}{}
			results = append(results, r.withDisplay(cr))
		}
		r.logger.Debug("Ran check",
			zap.String("check", rule.Check.Name()),
			zap.String("column", rule.Column),
			zap.Int("matched", len(res)),
		)
	}

	if r.checkAll {
		def := NewEqual()
		var seen []string
		for _, name := range alignedB.ColumnNames() {
			if _, ok := covered[name]; ok || slices.Contains(seen, name) {
				continue
			}
			seen = append(seen, name)
			res, err := Run(def, alignedB, alignedC, name)
			if err != nil {
				return nil, err
			}
			for _, cr := range res {
				results = append(results, r.withDisplay(cr))
			}
		}
	}

	result := &Result{Checks: results, Baseline: baseline, Candidate: candidate}
	r.logger.Debug("Reconciliation finished",
		zap.Int("checks", len(results)),
		zap.Int("failures", len(result.Failures())),
	)
	if cfg.raise {
		if err := result.Err(); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (r *Reconciler) directions() []Direction {
	var dirs []Direction
	if r.missing {
		dirs = append(dirs, Missing)
	}
	if r.extra {
		dirs = append(dirs, Extra)
	}
	return dirs
}

func (r *Reconciler) withDisplay(res CheckResult) CheckResult {
	res.DisplayRows = r.displayRows
	return res
}
