package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
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

// Prompts shown for arguments missing from the command line.
const (
	promptPlate = "Enter car plate: "
	promptDate  = "Enter date (yyyy-mm-dd): "
	promptTime  = "Enter time (hh:mm): "
)

var checkCmd = &cobra.Command{
	Use:   "check [plate] [date] [time]",
	Short: "Check whether a car may be on the road",
	Long: `Check whether a car with the given plate may be on the road at a date
(yyyy-mm-dd) and time (hh:mm). Missing arguments are prompted for.

Examples:
  picoyplaca check PBA-9910 2016-08-12 08:15
  picoyplaca check HGF-121 --now
  picoyplaca check --output json`,
	Args: cobra.MaximumNArgs(3),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Bool("now", false, "Use the current date and time in the configured timezone")
	checkCmd.Flags().String("output", "", "Output format: text, table, json, markdown, yaml (default text)")
	checkCmd.Flags().Bool("no-color", false, "Disable colored verdicts")
}

func runCheck(cmd *cobra.Command, args []string) error {
	now, err := cmd.Flags().GetBool("now")
	if err != nil {
		return err
	}
	formatValue, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(formatValue, output.FormatText)
	if err != nil {
		return withExitCode(foundry.ExitConfigInvalid, err)
	}
	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return err
	}

	cfg := currentConfig()

	query := queryFromArgs(args)
	if now {
		if len(args) > 1 {
			return fmt.Errorf("--now takes at most a plate argument, got %d arguments", len(args))
		}
		loc, err := cfg.Clock.Location()
		if err != nil {
			return withExitCode(foundry.ExitConfigInvalid, err)
		}
		query = withClock(query, time.Now().In(loc))
	}

	query, err = promptQuery(cmd.InOrStdin(), cmd.OutOrStdout(), query, len(args))
	if err != nil {
		return err
	}

	entry, evalErr := core.Evaluate(restriction.DefaultSchedule(), query)
	metrics.RecordEvaluation("cli", string(entry.Outcome))

	if logger := observability.CLILogger; logger != nil {
		logger.Debug("Evaluated query",
			zap.String("plate", query.Plate),
			zap.String("date", query.Date),
			zap.String("time", query.Time),
			zap.String("outcome", string(entry.Outcome)))
	}

	if evalErr != nil {
		return evalErr
	}

	formatter := output.NewFormatter(format, cfg.Output.Color && !noColor && !color.NoColor)
	if text, ok := formatter.(*output.TextFormatter); ok {
		text.Bare = true
	}
	rendered, err := formatter.FormatBatch(core.Summarize([]core.BatchEntry{entry}))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func queryFromArgs(args []string) restriction.Query {
	values := make([]string, 3)
	copy(values, args)
	return restriction.Query{
		Plate: strings.TrimSpace(values[0]),
		Date:  strings.TrimSpace(values[1]),
		Time:  strings.TrimSpace(values[2]),
	}
}

// withClock fills the date and time of q from now.
func withClock(q restriction.Query, now time.Time) restriction.Query {
	q.Date = now.Format("2006-01-02")
	q.Time = now.Format("15:04")
	return q
}

// promptQuery asks on out, and reads from in, every field of q that is
// still empty, in plate, date, time order. The first given fields came from
// the command line and are never prompted for, even when empty, so an empty
// plate argument fails evaluation instead of asking again.
func promptQuery(in io.Reader, out io.Writer, q restriction.Query, given int) (restriction.Query, error) {
	reader := bufio.NewReader(in)
	fields := []struct {
		prompt string
		name   string
		value  *string
	}{
		{promptPlate, "plate", &q.Plate},
		{promptDate, "date", &q.Date},
		{promptTime, "time", &q.Time},
	}

	for i, f := range fields {
		if i < given || *f.value != "" {
			continue
		}
		if _, err := fmt.Fprint(out, f.prompt); err != nil {
			return q, err
		}
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return q, fmt.Errorf("reading %s: %w", f.name, err)
		}
		*f.value = strings.TrimSpace(line)
	}
	return q, nil
}
