// Package demo sequences the three Pardot access patterns the tool
// demonstrates: a traditional Pardot-only user through the high-level
// client, a Salesforce SSO user through raw token and query requests, and
// the same SSO user through the high-level client.
package demo

import (
	"context"
	"net/http"
	"time"

	"github.com/pardotkit/pardotctl/internal/api"
	"github.com/pardotkit/pardotctl/internal/auth"
	"github.com/pardotkit/pardotctl/internal/config"
	"github.com/pardotkit/pardotctl/internal/observability"
)

// Orchestrator runs the access patterns against one credential file.
// Patterns are independent: a failure in one is reported and the next still
// runs.
type Orchestrator struct {
	store      *config.Store
	hooks      observability.Hooks
	trace      *observability.TraceWriter
	httpClient *http.Client

	idpBaseURL      string
	providerBaseURL string
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithHooks injects observability hooks.
func WithHooks(h observability.Hooks) Option {
	return func(o *Orchestrator) { o.hooks = h }
}

// WithTraceWriter replaces the progress trace destination.
func WithTraceWriter(t *observability.TraceWriter) Option {
	return func(o *Orchestrator) { o.trace = t }
}

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *Orchestrator) { o.httpClient = hc }
}

// WithIdPBaseURL points the token exchange at a non-production host.
func WithIdPBaseURL(u string) Option {
	return func(o *Orchestrator) { o.idpBaseURL = u }
}

// WithProviderBaseURL points the Pardot calls at a non-production host.
func WithProviderBaseURL(u string) Option {
	return func(o *Orchestrator) { o.providerBaseURL = u }
}

// New creates an Orchestrator over the given credential store.
func New(store *config.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:           store,
		hooks:           observability.NopHooks{},
		trace:           observability.NewTraceWriter(),
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		idpBaseURL:      auth.DefaultIdPBaseURL,
		providerBaseURL: api.DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes every access pattern in order. It returns the first error
// encountered, after all patterns have had their turn.
func (o *Orchestrator) Run(ctx context.Context) error {
	patterns := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"Access Pardot via high-level client using Pardot-only user", o.runTraditional},
		{"Access Pardot sandbox via high-level client using Pardot-only user", o.runTraditionalSandbox},
		{"Access Pardot via SF SSO using raw requests", o.runRawSSO},
		{"Access Pardot via SF SSO using high-level client", o.runSSO},
	}

	var firstErr error
	for _, p := range patterns {
		o.trace.WriteNote("%s", p.name)
		if err := p.fn(ctx); err != nil {
			o.trace.WriteNote("  ...failed: %v", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
	}
	return firstErr
}

func (o *Orchestrator) runTraditional(ctx context.Context) error {
	return o.runHighLevel(ctx, "pardot")
}

func (o *Orchestrator) runTraditionalSandbox(ctx context.Context) error {
	return o.runHighLevel(ctx, "pardot_sandbox")
}

func (o *Orchestrator) runSSO(ctx context.Context) error {
	return o.runHighLevel(ctx, "salesforce")
}

// runHighLevel is access patterns (a) and (c): hand the handler to the
// high-level client and let it authenticate per its scheme.
func (o *Orchestrator) runHighLevel(ctx context.Context, section string) error {
	if !o.requireSections("test_data", section) {
		return nil
	}

	handler, err := auth.BuildHandler(o.store, section)
	if err != nil {
		return err
	}

	client := api.NewClient(handler,
		api.WithBaseURL(o.providerBaseURL),
		api.WithHTTPClient(o.httpClient),
		api.WithHooks(o.hooks),
		api.WithTokenAcquirer(auth.NewTokenAcquirerFor(o.idpBaseURL, o.httpClient, o.hooks)),
	)
	if err := client.Authenticate(ctx); err != nil {
		return err
	}
	if err := o.queryProspects(ctx, client, section); err != nil {
		return err
	}

	o.trace.WriteNote("  ...success")
	return nil
}

// runRawSSO is access pattern (b): acquire a token explicitly, then drive
// the low-level query endpoint with it.
func (o *Orchestrator) runRawSSO(ctx context.Context) error {
	if !o.requireSections("test_data", "salesforce") {
		return nil
	}

	handler, err := auth.BuildHandler(o.store, "salesforce")
	if err != nil {
		return err
	}
	sso, ok := handler.(auth.SSOHandler)
	if !ok {
		// salesforce sections always map to SSO; a mismatch means the
		// section carries an explicit conflicting kind.
		return o.queryKindMismatch("salesforce", handler)
	}

	acquirer := auth.NewTokenAcquirerFor(o.idpBaseURL, o.httpClient, o.hooks)
	token, err := acquirer.AcquireToken(ctx, sso)
	if err != nil {
		return err
	}

	raw := api.NewRawClientFor(o.providerBaseURL, o.httpClient, o.hooks)
	filter := api.Filter{CreatedAfter: o.store.GetDefault("test_data", "prospect_date_filter", "")}
	prospects, err := raw.QueryProspects(ctx, token, filter)
	if err != nil {
		return err
	}

	o.trace.WriteNote("  found %d prospects via raw requests", len(prospects))
	o.trace.WriteNote("  ...success")
	return nil
}

// queryProspects exercises both resource operations: a point lookup by
// email, then a filtered listing.
func (o *Orchestrator) queryProspects(ctx context.Context, client *api.Client, section string) error {
	email, err := o.store.Get("test_data", "prospect_email")
	if err != nil {
		return err
	}

	prospect, err := client.Prospects().ReadByEmail(ctx, email)
	if err != nil {
		return err
	}
	o.trace.WriteNote("  found prospect in %s: %s %s for email %s",
		section, prospect.FirstName, prospect.LastName, prospect.Email)

	dateFilter := o.store.GetDefault("test_data", "prospect_date_filter", api.DefaultCreatedAfter)
	prospects, err := client.Prospects().Query(ctx, dateFilter)
	if err != nil {
		return err
	}
	o.trace.WriteNote("  found %d prospects in %s created after %s", len(prospects), section, dateFilter)
	for _, p := range prospects {
		o.trace.WriteNote("    %s: %s %s <%s>", p.CreatedAt, p.FirstName, p.LastName, p.Email)
	}
	return nil
}

func (o *Orchestrator) requireSections(names ...string) bool {
	if missing := o.store.MissingSections(names...); len(missing) > 0 {
		o.trace.WriteNote("  ...skip, missing sections %v from config file %s", missing, o.store.Path())
		return false
	}
	return true
}

func (o *Orchestrator) queryKindMismatch(section string, h auth.Handler) error {
	o.trace.WriteNote("  ...skip, section %s resolved to %s credentials; raw SSO needs kind = sso", section, h.Kind())
	return nil
}
