// Package cli builds the pardotctl command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pardotkit/pardotctl/internal/appctx"
	"github.com/pardotkit/pardotctl/internal/commands"
	"github.com/pardotkit/pardotctl/internal/config"
	"github.com/pardotkit/pardotctl/internal/output"
	"github.com/pardotkit/pardotctl/internal/version"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	var flags appctx.GlobalFlags

	cmd := &cobra.Command{
		Use:   "pardotctl",
		Short: "Authenticate against Pardot and query prospects",
		Long: "pardotctl demonstrates the two Pardot authentication schemes, a Pardot-only " +
			"user and a Salesforce SSO user, and uses the resulting sessions to query prospects.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip setup for help and version commands
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}

			path := flags.Config
			if path == "" {
				path = config.DefaultPath()
			}
			store, err := config.Load(path)
			if err != nil {
				return err
			}

			app := appctx.NewApp(store, flags)
			cmd.SetContext(appctx.WithApp(cmd.Context(), app))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app := appctx.FromContext(cmd.Context())
			if app == nil || !app.Flags.Stats {
				return
			}
			s := app.Collector.Summary()
			fmt.Fprintf(os.Stderr, "session: %d operations (%d failed), %d requests, %s total latency\n",
				s.TotalOperations, s.FailedOps, s.TotalRequests, s.TotalLatency)
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.Config, "config", "c", "", "Credential file path (default $HOME/"+config.DefaultFileName+")")
	cmd.PersistentFlags().BoolVarP(&flags.JSON, "json", "j", false, "Output as JSON")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Output data only, no envelope")
	cmd.PersistentFlags().CountVarP(&flags.Verbose, "verbose", "v", "Verbose output (-v for ops, -vv for requests)")
	cmd.PersistentFlags().BoolVar(&flags.Stats, "stats", false, "Show session statistics")

	cmd.AddCommand(
		commands.NewDemoCmd(),
		commands.NewQueryCmd(),
		commands.NewAuthCmd(),
		commands.NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command and exits with the mapped code on failure.
func Execute() {
	cmd := NewRootCmd()
	executed, err := cmd.ExecuteC()
	if err == nil {
		return
	}

	// The App carries the writer configured from the global flags. When the
	// failure happened before setup (bad config path, flag errors) fall back
	// to reading the persistent flags directly.
	if app := appctx.FromContext(executed.Context()); app != nil {
		os.Exit(app.Output.Err(err))
	}
	os.Exit(output.New(errorFormat(cmd)).Err(err))
}

func errorFormat(cmd *cobra.Command) output.Format {
	pf := cmd.PersistentFlags()
	if quiet, _ := pf.GetBool("quiet"); quiet {
		return output.FormatQuiet
	}
	if jsonFlag, _ := pf.GetBool("json"); jsonFlag {
		return output.FormatJSON
	}
	return output.FormatText
}
