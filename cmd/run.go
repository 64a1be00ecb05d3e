package cmd

import (
	"encoding/json"
	"fmt"

	"datarec/core/config"
	"datarec/core/errors"
	"datarec/core/logger"
	"datarec/feature/job"
	"datarec/feature/recon"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	raiseOnFailure bool
	outputFormat   string
	uploadReport   bool
)

// runCmd runs a single job file.
var runCmd = &cobra.Command{
	Use:   "run <job.yaml>",
	Short: "Run a reconciliation job",
	Long: `Loads the baseline and candidate of a job, runs every configured check and
prints the summary.

Examples:
  # Human readable summary
  datarec run jobs/eod-prices.yaml

  # JSON report, exit status 1 when a check fails
  datarec run jobs/eod-prices.yaml --format json --raise-on-failure

  # Keep the report in the report bucket
  datarec run jobs/eod-prices.yaml --upload`,
	Args: cobra.ExactArgs(1),
	RunE: runJob,
}

func init() {
	runCmd.Flags().BoolVar(&raiseOnFailure, "raise-on-failure", false, "Exit with an error when any check fails")
	runCmd.Flags().StringVar(&outputFormat, "format", "text", "Output format: text, json or yaml")
	runCmd.Flags().BoolVar(&uploadReport, "upload", false, "Upload the JSON report to the report bucket")
	RootCmd.AddCommand(runCmd)
}

func runJob(cmd *cobra.Command, args []string) error {
	switch outputFormat {
	case "text", "json", "yaml":
	default:
		return errors.NewArgumentError("format", outputFormat, "must be text, json or yaml")
	}

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	j, err := job.Load(args[0])
	if err != nil {
		return err
	}
	l = logger.WithJob(l, j.Name)

	withDB, withStore := needs(j)
	env, err := sourceEnv(cfg, withDB, withStore || uploadReport)
	if err != nil {
		return err
	}
	defer closeDB(env, l)

	svc := recon.NewService(reconConfig(cfg, env), l)
	ctx := cmd.Context()
	res, err := svc.Run(ctx, j, l)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rep := res.Report()
	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(rep)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Fprint(out, string(data))
	default:
		if err := res.WriteSummary(out); err != nil {
			return err
		}
	}

	if uploadReport {
		key, err := svc.UploadReport(ctx, j.Name, rep)
		if err != nil {
			return err
		}
		l.Info("Report stored", zap.String("key", key))
	}

	if raiseOnFailure || j.RaiseOnFailure {
		return res.Err()
	}
	return nil
}
