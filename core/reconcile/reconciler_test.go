package reconcile_test

import (
	"testing"

	"datarec/core/errors"
	"datarec/core/frame"
	"datarec/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func checkNames(res *reconcile.Result) []string {
	out := make([]string, len(res.Checks))
	for i, c := range res.Checks {
		out[i] = c.MiniSignature()
	}
	return out
}

func TestReconcilerRun(t *testing.T) {
	t.Run("EndToEndDiff", func(t *testing.T) {
		b, c := diffFrames(t)
		rec := reconcile.New([]reconcile.Rule{
			{Column: "B", Check: reconcile.NewEqual()},
		}, reconcile.WithOrderBy("date"))

		res, err := rec.Run(b, c)
		require.NoError(t, err)
		assert.False(t, res.Passed())

		failures := res.Failures()
		require.Len(t, failures, 1)
		assert.Equal(t, "B", failures[0].Column)
		assert.Equal(t, []string{"2024-01-02"}, keyStrings(failures[0].Failed))
	})

	t.Run("FixedOrder", func(t *testing.T) {
		b := table(t, dateKey(1), frame.NewColumn("A", 1), frame.NewColumn("B", 1), frame.NewColumn("C", 1))
		rec := reconcile.New([]reconcile.Rule{
			{Column: "C", Check: reconcile.MustAbsTol(0.1)},
			{Column: "A", Check: reconcile.NewEqual()},
		})

		res, err := rec.Run(b, b)
		require.NoError(t, err)
		assert.True(t, res.Passed())
		assert.Equal(t, []string{
			reconcile.MissingCheckName,
			reconcile.ExtraCheckName,
			"Column 'C'",
			"Column 'A'",
			"Column 'B'",
		}, checkNames(res))
	})

	t.Run("ClippingHidesCandidateTail", func(t *testing.T) {
		b, c := datedFrames(t)
		res, err := reconcile.New(nil, reconcile.WithOrderBy("date")).Run(b, c)
		require.NoError(t, err)

		for _, cr := range res.Checks {
			assert.NotContains(t, keyStrings(cr.Failed), "2024-01-03", cr.Signature())
		}
		failures := res.Failures()
		require.Len(t, failures, 1)
		assert.Equal(t, "value", failures[0].Column)
		assert.Equal(t, 2, failures[0].TotalRows)

		assert.Equal(t, 3, res.Candidate.NumRows(), "result keeps the unclipped input")
	})

	t.Run("WithoutClippingExtraRowsReported", func(t *testing.T) {
		b, c := datedFrames(t)
		res, err := reconcile.New(nil).Run(b, c)
		require.NoError(t, err)

		require.Len(t, res.Checks, 3)
		extra := res.Checks[1]
		assert.Equal(t, reconcile.ExtraCheckName, extra.Check)
		assert.Equal(t, []string{"2024-01-03"}, keyStrings(extra.Failed))
		assert.Equal(t, 3, extra.TotalRows)

		value := res.Checks[2]
		assert.Equal(t, 2, value.TotalRows)
		assert.Equal(t, []string{"2024-01-02"}, keyStrings(value.Failed))
	})

	t.Run("SkipWinsOverDefault", func(t *testing.T) {
		b, c := diffFrames(t)
		res, err := reconcile.New([]reconcile.Rule{reconcile.Skip("B")}).Run(b, c)
		require.NoError(t, err)
		assert.True(t, res.Passed())
		for _, cr := range res.Checks {
			assert.NotEqual(t, "B", cr.Column)
		}
	})

	t.Run("DefaultCheckDisabled", func(t *testing.T) {
		b, c := diffFrames(t)
		res, err := reconcile.New(nil, reconcile.WithDefaultCheck(false)).Run(b, c)
		require.NoError(t, err)
		assert.Equal(t, []string{reconcile.MissingCheckName, reconcile.ExtraCheckName}, checkNames(res))
		assert.True(t, res.Passed())
	})

	t.Run("PresenceChecksDisabled", func(t *testing.T) {
		b, c := datedFrames(t)
		res, err := reconcile.New(nil,
			reconcile.WithMissingCheck(false),
			reconcile.WithExtraCheck(false),
		).Run(b, c)
		require.NoError(t, err)
		assert.Equal(t, []string{"Column 'value'"}, checkNames(res))
	})

	t.Run("RegexCoversMatchedColumns", func(t *testing.T) {
		b := table(t, dateKey(1, 2), frame.NewColumn("px_open", 1.0, 2.0), frame.NewColumn("px_close", 1.0, 2.0), frame.NewColumn("vol", 1, 2))
		c := table(t, dateKey(1, 2), frame.NewColumn("px_open", 1.05, 2.0), frame.NewColumn("px_close", 1.0, 2.5), frame.NewColumn("vol", 1, 2))
		rec := reconcile.New([]reconcile.Rule{
			{Column: "^px_", Check: reconcile.MustAbsTol(0.1, reconcile.WithRegex())},
		})

		res, err := rec.Run(b, c)
		require.NoError(t, err)
		assert.Equal(t, []string{
			reconcile.MissingCheckName,
			reconcile.ExtraCheckName,
			"Column 'px_open'",
			"Column 'px_close'",
			"Column 'vol'",
		}, checkNames(res))
		require.Len(t, res.Failures(), 1)
		assert.Equal(t, "px_close", res.Failures()[0].Column)
	})

	t.Run("CompositeKeys", func(t *testing.T) {
		key := func(series ...any) []frame.Column {
			n := len(series)
			vintage := make([]any, n)
			dates := make([]any, n)
			for i := range series {
				vintage[i] = day(1)
				dates[i] = day(i + 1)
			}
			return []frame.Column{
				frame.NewColumn("vintage_date", vintage...),
				frame.NewColumn("date", dates...),
				frame.NewColumn("series_id", series...),
			}
		}
		b := table(t, key("a", "b"), frame.NewColumn("v", 1, 2))
		c := table(t, key("a", "c"), frame.NewColumn("v", 1, 2))

		res, err := reconcile.New(nil, reconcile.WithOrderBy("date")).Run(b, c)
		require.NoError(t, err)
		require.Len(t, res.Failures(), 2)
		assert.Equal(t, []string{"(2024-01-01, 2024-01-02, b)"}, keyStrings(res.Checks[0].Failed))
		assert.Equal(t, []string{"(2024-01-01, 2024-01-02, c)"}, keyStrings(res.Checks[1].Failed))
		assert.True(t, res.Checks[2].Passed())
	})

	t.Run("LargeIntegersCompareExactly", func(t *testing.T) {
		b := table(t, dateKey(1), frame.NewColumn("id", int64(9007199254740993)))
		c := table(t, dateKey(1), frame.NewColumn("id", int64(9007199254740992)))
		res, err := reconcile.New(nil).Run(b, c)
		require.NoError(t, err)
		assert.False(t, res.Passed())
		require.Len(t, res.Failures(), 1)
		assert.Equal(t, "id", res.Failures()[0].Column)
	})

	t.Run("InputsUntouched", func(t *testing.T) {
		b, c := datedFrames(t)
		before := c.Records()
		_, err := reconcile.New(nil, reconcile.WithOrderBy("date")).Run(b, c)
		require.NoError(t, err)
		assert.Equal(t, before, c.Records())
	})

	t.Run("DisplayRowsApplied", func(t *testing.T) {
		b, c := diffFrames(t)
		res, err := reconcile.New(nil, reconcile.WithDisplayRows(3), reconcile.WithLogger(zap.NewNop())).Run(b, c)
		require.NoError(t, err)
		for _, cr := range res.Checks {
			assert.Equal(t, 3, cr.DisplayRows)
		}
	})
}

func TestReconcilerRaiseOnFailure(t *testing.T) {
	b, c := diffFrames(t)

	t.Run("RaisesWithResult", func(t *testing.T) {
		res, err := reconcile.New(nil).Run(b, c, reconcile.RaiseOnFailure())
		assert.ErrorIs(t, err, errors.ErrReconciliationFailed)
		require.NotNil(t, res)
		assert.Len(t, res.Failures(), 1)

		var failed *errors.FailedError
		require.ErrorAs(t, err, &failed)
		assert.Equal(t, 1, failed.Failures)
		assert.Equal(t, []string{"Column 'B' with EqualCheck"}, failed.Checks)
	})

	t.Run("DefaultNeverRaises", func(t *testing.T) {
		res, err := reconcile.New(nil).Run(b, c)
		require.NoError(t, err)
		assert.False(t, res.Passed())
		assert.ErrorIs(t, res.Err(), errors.ErrReconciliationFailed)
	})

	t.Run("PassingRunDoesNotRaise", func(t *testing.T) {
		res, err := reconcile.New(nil).Run(b, b, reconcile.RaiseOnFailure())
		require.NoError(t, err)
		assert.True(t, res.Passed())
		assert.NoError(t, res.Err())
	})
}

func TestReconcilerErrors(t *testing.T) {
	t.Run("UnknownOrderColumn", func(t *testing.T) {
		b, c := diffFrames(t)
		_, err := reconcile.New(nil, reconcile.WithOrderBy("when")).Run(b, c)
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("DuplicateLabelInDefaultCheck", func(t *testing.T) {
		dup := table(t, dateKey(1), frame.NewColumn("B", 1), frame.NewColumn("B", 2))
		_, err := reconcile.New(nil).Run(dup, dup)
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("CheckErrorPropagates", func(t *testing.T) {
		b, c := diffFrames(t)
		broken := reconcile.CheckFunc{
			CheckName: "Broken",
			Fn: func(_, _ *frame.Series) (*frame.Table, error) {
				return nil, errors.NewArgumentError("limit", -1, "must be positive")
			},
		}
		_, err := reconcile.New([]reconcile.Rule{{Column: "B", Check: broken}}).Run(b, c)
		assert.ErrorIs(t, err, errors.ErrInvalidArgument)
	})

	t.Run("EmptyTables", func(t *testing.T) {
		empty := table(t, dateKey(), frame.NewColumn("v"))
		res, err := reconcile.New(nil).Run(empty, empty)
		require.NoError(t, err)
		assert.True(t, res.Passed())
		assert.Len(t, res.Checks, 3)
	})
}
