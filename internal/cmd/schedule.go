package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/picoyplaca/picoyplaca/internal/core/restriction"
	"github.com/picoyplaca/picoyplaca/internal/output"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print the restriction schedule",
	Long:  "Print the restricted hours and the last digits restricted on each weekday.",
	Args:  cobra.NoArgs,
	RunE:  runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().String("output", "", "Output format: table, json, markdown, yaml, text (default from config)")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()

	formatValue, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(formatValue, output.Format(cfg.Output.Format))
	if err != nil {
		return withExitCode(foundry.ExitConfigInvalid, err)
	}

	schedule := restriction.DefaultSchedule()
	if err := schedule.Validate(); err != nil {
		return err
	}

	rendered, err := output.NewFormatter(format, false).FormatSchedule(output.NewScheduleView(schedule))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
