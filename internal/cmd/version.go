package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picoyplaca/picoyplaca/internal/server/handlers"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for build, Go, and gofulmen/crucible versions, or --json for the /version payload.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		extended, err := cmd.Flags().GetBool("extended")
		if err != nil {
			return err
		}
		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}

		handlers.SetAppIdentity(GetAppIdentity())
		info := handlers.NewVersionResponse()
		out := cmd.OutOrStdout()

		switch {
		case asJSON:
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		case extended:
			fmt.Fprintf(out, "%s %s\n", info.App.Name, info.App.Version)
			fmt.Fprintf(out, "Commit: %s\n", info.App.Commit)
			fmt.Fprintf(out, "Built: %s\n", info.App.BuildDate)
			fmt.Fprintf(out, "Go: %s\n\n", info.App.GoVersion)
			fmt.Fprintf(out, "Gofulmen: %s\n", info.Dependencies.Gofulmen)
			fmt.Fprintf(out, "Crucible: %s\n", info.Dependencies.Crucible)
		default:
			fmt.Fprintf(out, "%s %s\n", info.App.Name, info.App.Version)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("extended", "e", false, "show extended version information")
	versionCmd.Flags().Bool("json", false, "print version information as JSON")
}
