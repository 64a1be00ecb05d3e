// Package reconcile compares a candidate table against a baseline table and
// reports, per column, the rows that disagree.
//
// # Architecture
//
// The package consists of four parts:
//
// 1. Checks: ColumnCheck implementations comparing two aligned columns
// (Equal, AbsTol, RelTol, or any CheckFunc). Run dispatches a check to one
// column or, in regex mode, to every column both tables share that matches.
//
// 2. Presence: PresenceCheck reports identity keys found on one side only.
//
// 3. Reconciler: clips both tables to a common range (optional), runs the
// presence checks, aligns both tables on their shared keys, runs the
// configured rules in order and finally an Equal check on every column no
// rule covered.
//
// 4. Result: the ordered CheckResults with pass/fail, a fixed-width text
// summary written to an explicit sink, and a JSON/YAML friendly Report.
//
// Failed checks are data, not errors. Run only returns an error for invalid
// configuration, invalid input, or when RaiseOnFailure was requested.
//
// # Usage Example
//
//	rec := reconcile.New([]reconcile.Rule{
//	    {Column: "price", Check: reconcile.MustAbsTol(0.01, reconcile.WithSort(reconcile.SortDesc))},
//	    {Column: "^vol_", Check: reconcile.MustRelTol(1e-6, reconcile.WithRegex())},
//	    reconcile.Skip("updated_at"),
//	}, reconcile.WithOrderBy("date"))
//
//	result, err := rec.Run(baseline, candidate)
//	if err != nil {
//	    return err
//	}
//	_ = result.WriteSummary(os.Stdout)
package reconcile
