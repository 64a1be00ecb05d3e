package reconcile

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"datarec/core/frame"

	"go.uber.org/zap"
)

const summaryTitle = "Reconciliation Summary"

// Sink receives summary lines one at a time.
type Sink interface {
	Info(line string)
	Error(line string)
}

type writerSink struct {
	w   io.Writer
	err error
}

func (s *writerSink) Info(line string) {
	if s.err == nil {
		_, s.err = fmt.Fprintln(s.w, line)
	}
}

func (s *writerSink) Error(line string) { s.Info(line) }

type zapSink struct {
	l *zap.Logger
}

func (s zapSink) Info(line string)  { s.l.Info(line) }
func (s zapSink) Error(line string) { s.l.Error(line) }

// WriteSummary renders the summary to w.
func (r *Result) WriteSummary(w io.Writer) error {
	sink := &writerSink{w: w}
	if err := r.Summary(sink); err != nil {
		return err
	}
	return sink.err
}

// LogSummary emits the summary through l, one entry per line. The failure
// count line is logged at error level.
func (r *Result) LogSummary(l *zap.Logger) error {
	return r.Summary(zapSink{l: l})
}

// Summary renders the banner, the input table sizes, one line per check and,
// when checks failed, the failing rows of each failed check.
func (r *Result) Summary(sink Sink) error {
	lines := make([]string, len(r.Checks))
	width := 0
	for i, c := range r.Checks {
		line, err := c.OneLiner(0)
		if err != nil {
			return err
		}
		lines[i] = line
		width = max(width, utf8.RuneCountInString(line))
	}
	if len(r.Checks) == 0 {
		width = utf8.RuneCountInString(summaryTitle)
	}

	rule := strings.Repeat("─", width)
	sink.Info(rule)
	sink.Info(center(summaryTitle, width))
	sink.Info(rule)
	sink.Info(tableStats("Baseline", r.Baseline))
	sink.Info(tableStats("Candidate", r.Candidate))
	sink.Info("")

	failures := r.Failures()
	if len(failures) > 0 {
		sink.Error(fmt.Sprintf("%d check(s) FAILED", len(failures)))
	}

	for _, c := range r.Checks {
		line, err := c.OneLiner(width)
		if err != nil {
			return err
		}
		sink.Info(line)
	}

	if len(failures) == 0 {
		return nil
	}
	sink.Info("")
	sink.Info("Failing rows:")
	sink.Info("")
	for _, f := range failures {
		block, err := f.FailuresString()
		if err != nil {
			return err
		}
		for _, line := range strings.Split(strings.TrimSuffix(block, "\n"), "\n") {
			sink.Info(line)
		}
		sink.Info("")
	}
	return nil
}

func tableStats(label string, t *frame.Table) string {
	rows, cols := 0, 0
	if t != nil {
		rows, cols = t.NumRows(), t.NumCols()
	}
	return printer.Sprintf("%s: rows=%d cols=%d", label, rows, cols)
}

// center pads s with spaces to width, putting the odd space on the left when
// both the margin and the width are odd.
func center(s string, width int) string {
	marg := width - utf8.RuneCountInString(s)
	if marg <= 0 {
		return s
	}
	left := marg/2 + (marg & width & 1)
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", marg-left)
}

// Report is the machine-readable form of a Result.
type Report struct {
	Passed    bool          `json:"passed" yaml:"passed"`
	Failures  int           `json:"failures" yaml:"failures"`
	Baseline  TableStats    `json:"baseline" yaml:"baseline"`
	Candidate TableStats    `json:"candidate" yaml:"candidate"`
	Checks    []CheckReport `json:"checks" yaml:"checks"`
}

// TableStats are the dimensions of an input table.
type TableStats struct {
	Rows int `json:"rows" yaml:"rows"`
	Cols int `json:"cols" yaml:"cols"`
}

// CheckReport describes one check result. Rows holds at most DisplayRows of
// the failing rows, the last ones.
type CheckReport struct {
	Check      string           `json:"check" yaml:"check"`
	Column     string           `json:"column,omitempty" yaml:"column,omitempty"`
	Signature  string           `json:"signature" yaml:"signature"`
	Params     []Param          `json:"params,omitempty" yaml:"params,omitempty"`
	Passed     bool             `json:"passed" yaml:"passed"`
	Outcome    string           `json:"outcome" yaml:"outcome"`
	FailedRows int              `json:"failed_rows" yaml:"failed_rows"`
	TotalRows  int              `json:"total_rows" yaml:"total_rows"`
	Rows       []map[string]any `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// Report converts the result into its machine-readable form.
func (r *Result) Report() Report {
	rep := Report{
		Passed:   r.Passed(),
		Failures: len(r.Failures()),
		Checks:   make([]CheckReport, len(r.Checks)),
	}
	if r.Baseline != nil {
		rep.Baseline = TableStats{Rows: r.Baseline.NumRows(), Cols: r.Baseline.NumCols()}
	}
	if r.Candidate != nil {
		rep.Candidate = TableStats{Rows: r.Candidate.NumRows(), Cols: r.Candidate.NumCols()}
	}

	for i, c := range r.Checks {
		cr := CheckReport{
			Check:      c.Check,
			Column:     c.Column,
			Signature:  c.Signature(),
			Params:     c.Params,
			Passed:     c.Passed(),
			Outcome:    c.Outcome(),
			FailedRows: c.FailedCount(),
			TotalRows:  c.TotalRows,
		}
		if !c.Passed() {
			n := c.DisplayRows
			if n <= 0 {
				n = DefaultDisplayRows
			}
			tail := c.Failed.Tail(n)
			header := tail.Header()
			for _, rec := range tail.Records() {
				row := make(map[string]any, len(header))
				for j, h := range header {
					row[h] = reportValue(rec[j])
				}
				cr.Rows = append(cr.Rows, row)
			}
		}
		rep.Checks[i] = cr
	}
	return rep
}

func reportValue(v any) any {
	if frame.IsNull(v) {
		return nil
	}
	if t, ok := v.(time.Time); ok {
		return frame.Format(t)
	}
	return v
}
