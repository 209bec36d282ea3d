// Package appctx provides application context helpers.
package appctx

import (
	"context"
	"net/http"
	"time"

	"github.com/pardotkit/pardotctl/internal/config"
	"github.com/pardotkit/pardotctl/internal/observability"
	"github.com/pardotkit/pardotctl/internal/output"
)

// contextKey is a private type for context keys.
type contextKey string

const appKey contextKey = "app"

// App holds the shared application context for all commands.
type App struct {
	Store      *config.Store
	HTTPClient *http.Client
	Output     *output.Writer

	// Observability
	Collector *observability.SessionCollector
	Trace     *observability.TraceWriter
	Hooks     *observability.CLIHooks

	// Flags holds the global flag values
	Flags GlobalFlags
}

// GlobalFlags holds values for global CLI flags.
type GlobalFlags struct {
	Config string // credential file path
	JSON   bool
	Quiet  bool

	Verbose int // 0=off, 1=operations, 2=operations+requests
	Stats   bool
}

// NewApp creates a new App over the given credential store.
func NewApp(store *config.Store, flags GlobalFlags) *App {
	// Collector always runs to gather stats; hooks control trace verbosity.
	collector := observability.NewSessionCollector()
	trace := observability.NewTraceWriter()
	hooks := observability.NewCLIHooks(flags.Verbose, collector, trace)

	format := output.FormatText
	switch {
	case flags.Quiet:
		format = output.FormatQuiet
	case flags.JSON:
		format = output.FormatJSON
	}

	return &App{
		Store:      store,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Output:     output.New(format),
		Collector:  collector,
		Trace:      trace,
		Hooks:      hooks,
		Flags:      flags,
	}
}

// OK writes a success response through the configured output writer.
func (a *App) OK(data any, opts ...output.ResponseOption) error {
	return a.Output.OK(data, opts...)
}

// WithApp stores the App in a context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// FromContext retrieves the App from a context, or nil.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey).(*App)
	return app
}
