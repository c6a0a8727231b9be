package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/picoyplaca/picoyplaca/internal/core"
	"github.com/picoyplaca/picoyplaca/internal/core/restriction"
	errwrap "github.com/picoyplaca/picoyplaca/internal/errors"
	"github.com/picoyplaca/picoyplaca/internal/observability"
)

// selfCheck is one step of the health command.
type selfCheck struct {
	name string
	run  func() error
}

func selfChecks() []selfCheck {
	return []selfCheck{
		{"version information", func() error {
			if versionInfo.Version == "" {
				return errwrap.NewConfigInvalidError("version information missing")
			}
			return nil
		}},
		{"configuration", func() error {
			return currentConfig().Validate()
		}},
		{"restriction schedule", func() error {
			return restriction.DefaultSchedule().Validate()
		}},
		{"reference evaluation", func() error {
			// PBA-9910 on Friday 2016-08-12 at 08:15 must be restricted.
			entry, err := core.Evaluate(restriction.DefaultSchedule(), restriction.Query{
				Plate: "PBA-9910", Date: "2016-08-12", Time: "08:15",
			})
			if err != nil {
				return err
			}
			if entry.Outcome != core.OutcomeRestricted {
				return fmt.Errorf("reference query evaluated as %s", entry.Outcome)
			}
			return nil
		}},
	}
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long:  "Verify that configuration loads, the schedule is valid, and a reference query evaluates correctly.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger := observability.CLILogger
		if logger == nil {
			ExitWithCodeStderr(foundry.ExitConfigInvalid, "Logger not initialized", errwrap.NewConfigInvalidError("logger not initialized"))
			return
		}

		logger.Info("Running health check...")
		for _, check := range selfChecks() {
			if err := check.run(); err != nil {
				logger.Error("❌ FAIL: "+check.name, zap.Error(err))
				ExitWithCode(logger, foundry.ExitConfigInvalid, "Health check failed: "+check.name, err)
				return
			}
			logger.Info("✅ " + check.name)
		}
		logger.Info("✅ All health checks passed")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
