package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pardotkit/pardotctl/internal/appctx"
	"github.com/pardotkit/pardotctl/internal/auth"
	"github.com/pardotkit/pardotctl/internal/output"
)

// NewAuthCmd creates the auth command group.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect authentication material",
		Long:  "Inspect the configured auth handlers and exchange SSO credentials for a bearer token.",
	}

	cmd.AddCommand(
		newAuthTokenCmd(),
		newAuthCheckCmd(),
	)

	return cmd
}

func newAuthTokenCmd() *cobra.Command {
	var section string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Acquire and print a bearer token",
		Long:  "Perform the OAuth2 password-grant exchange for an SSO section and print the resulting token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			handler, err := auth.BuildHandler(app.Store, section)
			if err != nil {
				return err
			}
			sso, ok := handler.(auth.SSOHandler)
			if !ok {
				return output.ErrUsageHint(
					fmt.Sprintf("section %q holds %s credentials", section, handler.Kind()),
					"Token acquisition needs an SSO section (kind = sso)",
				)
			}

			acquirer := auth.NewTokenAcquirer(app.HTTPClient, app.Hooks)
			token, err := acquirer.AcquireToken(cmd.Context(), sso)
			if err != nil {
				return err
			}

			return app.OK(map[string]string{
				"access_token":     token.Bearer,
				"instance_url":     token.InstanceURL,
				"business_unit_id": token.BusinessUnitID,
			}, output.WithSummary("Acquired token for business unit "+token.BusinessUnitID))
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", "salesforce", "Config section holding SSO credentials")

	return cmd
}

func newAuthCheckCmd() *cobra.Command {
	var section string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a config section",
		Long:  "Build the auth handler for a section and report its resolved kind without any network traffic.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())

			handler, err := auth.BuildHandler(app.Store, section)
			if err != nil {
				return err
			}

			return app.OK(map[string]string{
				"section":  section,
				"kind":     string(handler.Kind()),
				"username": handler.Username(),
			}, output.WithSummary(fmt.Sprintf("Section %q resolves to %s credentials for %s",
				section, handler.Kind(), handler.Username())))
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", "pardot", "Config section to validate")

	return cmd
}
