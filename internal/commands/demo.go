// Package commands implements the CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/pardotkit/pardotctl/internal/appctx"
	"github.com/pardotkit/pardotctl/internal/demo"
)

// NewDemoCmd creates the demo command.
func NewDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the Pardot authentication demo",
		Long: "Run all demonstrated access patterns against the configured credential file: " +
			"a Pardot-only user via the high-level client, a Salesforce SSO user via raw " +
			"token and query requests, and the same SSO user via the high-level client.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			orch := demo.New(app.Store,
				demo.WithHooks(app.Hooks),
				demo.WithTraceWriter(app.Trace),
				demo.WithHTTPClient(app.HTTPClient),
			)
			return orch.Run(cmd.Context())
		},
	}
}
