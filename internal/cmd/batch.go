package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/picoyplaca/picoyplaca/internal/core"
	"github.com/picoyplaca/picoyplaca/internal/core/restriction"
	"github.com/picoyplaca/picoyplaca/internal/metrics"
	"github.com/picoyplaca/picoyplaca/internal/observability"
	"github.com/picoyplaca/picoyplaca/internal/output"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Check many plates from a file",
	Long: `Read plate,date,time lines from a file ("-" for stdin) and check each.
Blank lines and lines starting with # are ignored.

Example file:
  # plate,date,time
  HGF-121,2016-08-10,12:00
  PBA-9910,2016-08-12,08:15`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("output", "", "Output format: table, json, markdown, yaml, text (default from config)")
	batchCmd.Flags().Bool("restricted-only", false, "Only show queries whose car may not be on the road")
	batchCmd.Flags().Bool("strict", false, "Exit non-zero when any query fails to evaluate")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()

	formatValue, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(formatValue, output.Format(cfg.Output.Format))
	if err != nil {
		return withExitCode(foundry.ExitConfigInvalid, err)
	}
	restrictedOnly, err := cmd.Flags().GetBool("restricted-only")
	if err != nil {
		return err
	}
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return err
	}

	queries, err := readQueriesFile(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	startedAt := time.Now()
	result := core.EvaluateBatch(restriction.DefaultSchedule(), queries)
	metrics.RecordBatchSize("batch", result.Total)
	for _, entry := range result.Entries {
		metrics.RecordEvaluation("batch", string(entry.Outcome))
	}

	if logger := observability.CLILogger; logger != nil {
		logger.Debug("Batch evaluated",
			zap.Int("total", result.Total),
			zap.Int("failed", result.Failed),
			zap.Duration("elapsed", time.Since(startedAt)))
	}

	shown := result
	if restrictedOnly {
		shown = filterRestricted(result)
	}

	formatter := output.NewFormatter(format, cfg.Output.Color && !color.NoColor)
	rendered, err := formatter.FormatBatch(shown)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), rendered); err != nil {
		return err
	}

	if strict && result.Failed > 0 {
		return fmt.Errorf("%d of %d queries could not be evaluated", result.Failed, result.Total)
	}
	return nil
}

// filterRestricted keeps the restricted entries and re-tallies them.
func filterRestricted(result *core.BatchResult) *core.BatchResult {
	var kept []core.BatchEntry
	for _, entry := range result.Entries {
		if entry.Outcome == core.OutcomeRestricted {
			kept = append(kept, entry)
		}
	}
	filtered := core.Summarize(kept)
	filtered.CompletedAt = result.CompletedAt
	return filtered
}
