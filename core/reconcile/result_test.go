package reconcile_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"datarec/core/errors"
	"datarec/core/frame"
	"datarec/core/reconcile"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func failingResult(t *testing.T, failed, total int) reconcile.CheckResult {
	t.Helper()
	keys := make([]any, failed)
	vals := make([]any, failed)
	for i := range keys {
		keys[i] = fmt.Sprintf("k%02d", i)
		vals[i] = i
	}
	tbl := table(t, []frame.Column{frame.NewColumn("id", keys...)},
		frame.NewColumn(reconcile.BaselineColumn, vals...),
		frame.NewColumn(reconcile.CandidateColumn, vals...),
	)
	return reconcile.CheckResult{
		Failed:      tbl,
		Check:       "EqualCheck",
		Column:      "B",
		TotalRows:   total,
		DisplayRows: reconcile.DefaultDisplayRows,
	}
}

func TestCheckResultSignature(t *testing.T) {
	tests := []struct {
		name string
		res  reconcile.CheckResult
		sig  string
		mini string
	}{
		{
			"Presence",
			reconcile.CheckResult{Check: reconcile.MissingCheckName},
			"missing_keys_check",
			"missing_keys_check",
		},
		{
			"EqualOnColumn",
			reconcile.CheckResult{Check: "EqualCheck", Column: "B"},
			"Column 'B' with EqualCheck",
			"Column 'B'",
		},
		{
			"ToleranceParams",
			reconcile.CheckResult{Check: "AbsTolCheck", Column: "B", Params: []reconcile.Param{{Name: "tol", Value: 0.1}}},
			"Column 'B' with AbsTolCheck(tol=0.1)",
			"Column 'B'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.sig, tt.res.Signature())
			assert.Equal(t, tt.mini, tt.res.MiniSignature())
		})
	}
}

func TestCheckResultOutcome(t *testing.T) {
	assert.Equal(t, "PASSED", reconcile.CheckResult{Check: "EqualCheck"}.Outcome())
	assert.Equal(t, "[1/2 (50.00%)] FAILED", failingResult(t, 1, 2).Outcome())
	assert.Equal(t, "[1,234/5,000 (24.68%)] FAILED", failingResult(t, 1234, 5000).Outcome())
	assert.Equal(t, "[1/0 (0.00%)] FAILED", failingResult(t, 1, 0).Outcome())
}

func TestCheckResultOneLiner(t *testing.T) {
	res := reconcile.CheckResult{Check: "EqualCheck", Column: "A"}

	line, err := res.OneLiner(0)
	require.NoError(t, err)
	assert.Equal(t, "Column 'A' with EqualCheck ..... PASSED", line)

	line, err = res.OneLiner(45)
	require.NoError(t, err)
	assert.Equal(t, "Column 'A' with EqualCheck ........... PASSED", line)
	assert.Len(t, line, 45)

	_, err = res.OneLiner(38)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestCheckResultFailuresString(t *testing.T) {
	res := failingResult(t, 15, 20)
	res.DisplayRows = 3

	out, err := res.FailuresString()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Equal(t, "Column 'B':", lines[0])
	assert.Equal(t, " │   ", lines[1])
	assert.Equal(t, " │   Showing up to 3 rows", lines[2])
	for _, l := range lines[1:] {
		assert.True(t, strings.HasPrefix(l, " │   "), l)
	}
	assert.Contains(t, out, "k14")
	assert.Contains(t, out, "k12")
	assert.NotContains(t, out, "k11")
}

func TestLargeSortedFailures(t *testing.T) {
	const n = 1000
	dates := make([]any, n)
	bv := make([]any, n)
	cv := make([]any, n)
	for i := 0; i < n; i++ {
		dates[i] = int64(i)
		bv[i] = float64(i)
		cv[i] = float64(n - 1 - i)
	}
	b := table(t, []frame.Column{frame.NewColumn("day", dates...)}, frame.NewColumn("v", bv...))
	c := table(t, []frame.Column{frame.NewColumn("day", dates...)}, frame.NewColumn("v", cv...))

	res, err := reconcile.New([]reconcile.Rule{
		{Column: "v", Check: reconcile.MustAbsTol(0, reconcile.WithSort(reconcile.SortDesc))},
	}).Run(b, c)
	require.NoError(t, err)

	failures := res.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "[1,000/1,000 (100.00%)] FAILED", failures[0].Outcome())

	errs := columnValues(t, failures[0].Failed, reconcile.AbsErrorColumn)
	for i := 1; i < len(errs); i++ {
		assert.GreaterOrEqual(t, errs[i-1].(float64), errs[i].(float64))
	}
}

func TestResultSummaryGolden(t *testing.T) {
	b, _ := diffFrames(t)
	res, err := reconcile.New(nil).Run(b, b)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.WriteSummary(&buf))

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "summary_passed", buf.Bytes())
}

func TestResultSummaryFailures(t *testing.T) {
	b, c := diffFrames(t)
	res, err := reconcile.New([]reconcile.Rule{
		{Column: "B", Check: reconcile.MustAbsTol(0.5, reconcile.WithSort(reconcile.SortDesc))},
	}).Run(b, c)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.WriteSummary(&buf))
	out := buf.String()

	assert.Contains(t, out, "Reconciliation Summary")
	assert.Contains(t, out, "Baseline: rows=2 cols=2")
	assert.Contains(t, out, "Candidate: rows=2 cols=2")
	assert.Contains(t, out, "1 check(s) FAILED")
	assert.Contains(t, out, "Column 'B' with AbsTolCheck(tol=0.5)")
	assert.Contains(t, out, "[1/2 (50.00%)] FAILED")
	assert.Contains(t, out, "Failing rows:")
	assert.Contains(t, out, " │   Showing up to 10 rows")
	assert.Contains(t, out, "abs_error")

	// One-liners share the same width.
	var widths []int
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, " ..... ") || strings.HasSuffix(l, "PASSED") || strings.HasSuffix(l, "] FAILED") {
			widths = append(widths, len([]rune(l)))
		}
	}
	require.Len(t, widths, 4)
	for _, w := range widths {
		assert.Equal(t, widths[0], w)
	}
}

func TestResultLogSummary(t *testing.T) {
	b, c := diffFrames(t)
	res, err := reconcile.New(nil).Run(b, c)
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	require.NoError(t, res.LogSummary(zap.New(core)))

	errorsLogged := logs.FilterLevelExact(zap.ErrorLevel).All()
	require.Len(t, errorsLogged, 1)
	assert.Equal(t, "1 check(s) FAILED", errorsLogged[0].Message)
	assert.NotEmpty(t, logs.FilterMessage("Failing rows:").All())
}

func TestResultReport(t *testing.T) {
	b, c := diffFrames(t)
	res, err := reconcile.New(nil).Run(b, c)
	require.NoError(t, err)

	rep := res.Report()
	assert.False(t, rep.Passed)
	assert.Equal(t, 1, rep.Failures)
	assert.Equal(t, reconcile.TableStats{Rows: 2, Cols: 2}, rep.Baseline)
	require.Len(t, rep.Checks, 4)

	bCheck := rep.Checks[3]
	assert.Equal(t, "B", bCheck.Column)
	assert.Equal(t, 1, bCheck.FailedRows)
	require.Len(t, bCheck.Rows, 1)
	assert.Equal(t, "2024-01-02", bCheck.Rows[0]["date"])
	assert.Equal(t, 4, bCheck.Rows[0][reconcile.BaselineColumn])

	raw, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"failed_rows":1`)
}
