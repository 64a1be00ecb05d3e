package reconcile

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"datarec/core/errors"
	"datarec/core/frame"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// DefaultDisplayRows is the number of failing rows shown per check.
	DefaultDisplayRows = 10
	// MinDots is the minimum dot padding of a one-line summary.
	MinDots = 5

	framePrefix = " │   "
)

var printer = message.NewPrinter(language.English)

// CheckResult is the outcome of one check on one column, or on the whole
// table for presence checks (Column is empty).
type CheckResult struct {
	// Failed holds the failing rows; zero rows means the check passed.
	Failed *frame.Table
	// Check is the check name.
	Check string
	// Column is the checked column, empty for presence checks.
	Column string
	// TotalRows is the number of rows evaluated, after alignment.
	TotalRows int
	// Params are the check parameters shown in the signature.
	Params []Param
	// DisplayRows caps the failing rows rendered by FailuresString.
	DisplayRows int
}

// Passed reports whether no row failed.
func (r CheckResult) Passed() bool { return r.FailedCount() == 0 }

// FailedCount returns the number of failing rows.
func (r CheckResult) FailedCount() int {
	if r.Failed == nil {
		return 0
	}
	return r.Failed.NumRows()
}

// Signature renders the check name, its parameters and the column.
func (r CheckResult) Signature() string {
	sig := r.Check
	if len(r.Params) > 0 {
		args := make([]string, len(r.Params))
		for i, p := range r.Params {
			args[i] = p.Name + "=" + frame.Format(p.Value)
		}
		sig += "(" + strings.Join(args, ", ") + ")"
	}
	if r.Column != "" {
		return fmt.Sprintf("Column '%s' with %s", r.Column, sig)
	}
	return sig
}

// MiniSignature names the column, or the check when there is none.
func (r CheckResult) MiniSignature() string {
	if r.Column != "" {
		return fmt.Sprintf("Column '%s'", r.Column)
	}
	return r.Check
}

// Outcome is "PASSED" or "[count/total (pct%)] FAILED".
func (r CheckResult) Outcome() string {
	if r.Passed() {
		return "PASSED"
	}
	count := r.FailedCount()
	pct := 0.0
	if r.TotalRows > 0 {
		pct = float64(count) / float64(r.TotalRows)
	}
	return printer.Sprintf("[%d/%d (%s%%)] FAILED", count, r.TotalRows, fmt.Sprintf("%.2f", pct*100))
}

// OneLiner renders "<signature> <dots> <outcome>" padded with dots to width.
// A zero width uses the minimum padding; a width below the minimum required
// is rejected.
func (r CheckResult) OneLiner(width int) (string, error) {
	sig, outcome := r.Signature(), r.Outcome()
	minWidth := utf8.RuneCountInString(sig) + utf8.RuneCountInString(outcome) + MinDots + 2

	dots := MinDots
	if width != 0 {
		if width < minWidth {
			return "", errors.NewArgumentError("width", width, fmt.Sprintf("must be at least %d", minWidth))
		}
		dots = max(MinDots, width-minWidth+MinDots)
	}
	return sig + " " + strings.Repeat(".", dots) + " " + outcome, nil
}

// FailuresString renders the last DisplayRows failing rows inside a framed
// block titled with the mini signature.
func (r CheckResult) FailuresString() (string, error) {
	n := r.DisplayRows
	if n <= 0 {
		n = DefaultDisplayRows
	}

	var rendered string
	if r.Failed != nil {
		var buf strings.Builder
		if err := renderTable(&buf, r.Failed.Tail(n)); err != nil {
			return "", err
		}
		rendered = strings.TrimRight(buf.String(), "\n")
	}

	body := fmt.Sprintf("\nShowing up to %d rows\n\n%s\n", n, rendered)
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = framePrefix + line
	}
	return r.MiniSignature() + ":\n" + strings.Join(lines, "\n") + "\n", nil
}

func renderTable(w io.Writer, t *frame.Table) error {
	table := tablewriter.NewTable(w)

	header := t.Header()
	headers := make([]any, len(header))
	for i, h := range header {
		headers[i] = h
	}
	table.Header(headers...)

	for _, rec := range t.Records() {
		row := make([]any, len(rec))
		for i, v := range rec {
			row[i] = frame.Format(v)
		}
		if err := table.Append(row...); err != nil {
			return err
		}
	}
	return table.Render()
}

// Result is the ordered outcome of one reconciliation run: presence checks,
// configured checks, then default checks. Baseline and Candidate are the
// caller's tables as given, before clipping and alignment.
type Result struct {
	Checks    []CheckResult
	Baseline  *frame.Table
	Candidate *frame.Table
}

// Len returns the number of check results.
func (r *Result) Len() int { return len(r.Checks) }

// Passed reports whether every check passed.
func (r *Result) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed() {
			return false
		}
	}
	return true
}

// Failures returns the failing check results in run order.
func (r *Result) Failures() []CheckResult {
	var out []CheckResult
	for _, c := range r.Checks {
		if !c.Passed() {
			out = append(out, c)
		}
	}
	return out
}

// Err returns a *errors.FailedError when any check failed, nil otherwise.
func (r *Result) Err() error {
	failures := r.Failures()
	if len(failures) == 0 {
		return nil
	}
	names := make([]string, len(failures))
	for i, f := range failures {
		names[i] = f.Signature()
	}
	return &errors.FailedError{Failures: len(failures), Checks: names}
}
