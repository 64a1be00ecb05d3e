package cmd

import (
	"fmt"
	"strings"

	"datarec/core/reconcile"
	"datarec/feature/job"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// validateCmd checks a job file without loading any data.
var validateCmd = &cobra.Command{
	Use:   "validate <job.yaml>",
	Short: "Validate a job file",
	Long:  `Parses a job file, validates both source specs and compiles the column rules.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := job.Load(args[0])
		if err != nil {
			return err
		}
		rec, err := j.Reconciler(zap.NewNop())
		if err != nil {
			return err
		}
		rules := rec.Rules()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "job %q is valid\n", j.Name)
		fmt.Fprintf(out, "  baseline:  %s\n", j.Baseline.Type)
		fmt.Fprintf(out, "  candidate: %s\n", j.Candidate.Type)
		for _, r := range rules {
			if r.Skipped() {
				fmt.Fprintf(out, "  %s: skip\n", r.Column)
				continue
			}
			fmt.Fprintf(out, "  %s: %s\n", r.Column, describeCheck(r.Check))
		}
		return nil
	},
}

// describeCheck renders a check with its tolerance, sort order and regex mode.
func describeCheck(check reconcile.ColumnCheck) string {
	parts := []string{check.Name()}
	if tc, ok := check.(reconcile.Tolerance); ok {
		parts = append(parts, fmt.Sprintf("tol=%g", tc.Tol()))
		if tc.Sort() != reconcile.SortNone {
			parts = append(parts, "sort="+string(tc.Sort()))
		}
	}
	if check.Regex() {
		parts = append(parts, "regex")
	}
	return strings.Join(parts, " ")
}

func init() {
	RootCmd.AddCommand(validateCmd)
}
