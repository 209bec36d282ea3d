package commands

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/pardotkit/pardotctl/internal/api"
	"github.com/pardotkit/pardotctl/internal/appctx"
	"github.com/pardotkit/pardotctl/internal/auth"
	"github.com/pardotkit/pardotctl/internal/output"
)

// NewQueryCmd creates the query command for low-level prospect access.
func NewQueryCmd() *cobra.Command {
	var (
		section      string
		createdAfter string
		idLessThan   int64
		jqExpr       string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query prospects via raw bearer-token requests",
		Long: "Acquire an access token for an SSO section and query the prospect endpoint " +
			"directly, bypassing the high-level client.",
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
					"Raw queries need an SSO section (kind = sso)",
				)
			}

			acquirer := auth.NewTokenAcquirer(app.HTTPClient, app.Hooks)
			token, err := acquirer.AcquireToken(cmd.Context(), sso)
			if err != nil {
				return err
			}

			raw := api.NewRawClient(app.HTTPClient, app.Hooks)
			prospects, err := raw.QueryProspects(cmd.Context(), token, api.Filter{
				CreatedAfter: createdAfter,
				IDLessThan:   idLessThan,
			})
			if err != nil {
				return err
			}

			data := any(prospects)
			if jqExpr != "" {
				data, err = applyJQ(jqExpr, prospects)
				if err != nil {
					return err
				}
			}

			return app.OK(data, output.WithSummary(fmt.Sprintf("%d prospects", len(prospects))))
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", "salesforce", "Config section holding SSO credentials")
	cmd.Flags().StringVar(&createdAfter, "created-after", "", "Filter: prospects created after this ISO date")
	cmd.Flags().Int64Var(&idLessThan, "id-less-than", 0, "Filter: prospects with an id below this value")
	cmd.Flags().StringVar(&jqExpr, "jq", "", "Filter the result with a jq expression")

	return cmd
}

// applyJQ runs a jq expression over the result. The value is round-tripped
// through encoding/json because gojq operates on untyped values.
func applyJQ(expr string, v any) (any, error) {
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, output.ErrUsageHint("invalid jq expression", err.Error())
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var input any
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, err
	}

	var results []any
	iter := q.Run(input)
	for {
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := out.(error); isErr {
			return nil, output.ErrUsageHint("jq evaluation failed", err.Error())
		}
		results = append(results, out)
	}

	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}
