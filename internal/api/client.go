package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pardotkit/pardotctl/internal/auth"
	"github.com/pardotkit/pardotctl/internal/models"
	"github.com/pardotkit/pardotctl/internal/observability"
	"github.com/pardotkit/pardotctl/internal/output"
)

const (
	readByEmailPath = "/api/prospect/version/4/do/read/email/"
	highQueryPath   = "/api/prospect/version/4/do/query"
)

// Client is the high-level Pardot client. It is built from an auth handler,
// authenticates once, and then exposes resource services.
type Client struct {
	handler    auth.Handler
	baseURL    string
	httpClient *http.Client
	hooks      observability.Hooks
	acquirer   *auth.TokenAcquirer

	// Session state populated by Authenticate.
	authenticated bool
	token         auth.AccessToken // SSO sessions
	apiKey        string           // traditional sessions
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a non-production Pardot host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHooks injects observability hooks.
func WithHooks(h observability.Hooks) Option {
	return func(c *Client) { c.hooks = h }
}

// WithTokenAcquirer replaces the token acquirer used for SSO handlers.
func WithTokenAcquirer(a *auth.TokenAcquirer) Option {
	return func(c *Client) { c.acquirer = a }
}

// NewClient creates a Client for the given handler.
func NewClient(h auth.Handler, opts ...Option) *Client {
	c := &Client{
		handler:    h,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		hooks:      observability.NopHooks{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.acquirer == nil {
		c.acquirer = auth.NewTokenAcquirer(c.httpClient, c.hooks)
	}
	return c
}

// Authenticate establishes the session for the handler's scheme. For a
// traditional handler this validates the credential triple and adopts the
// user key as the session API key; for an SSO handler it performs the token
// exchange.
func (c *Client) Authenticate(ctx context.Context) error {
	op := observability.OperationInfo{Component: "Client", Operation: "Authenticate"}
	ctx = c.hooks.OnOperationStart(ctx, op)
	start := time.Now()

	err := c.authenticate(ctx)
	c.hooks.OnOperationEnd(ctx, op, err, time.Since(start))
	return err
}

func (c *Client) authenticate(ctx context.Context) error {
	switch h := c.handler.(type) {
	case auth.TraditionalHandler:
		if h.User == "" || h.Password == "" || h.UserKey == "" {
			return output.ErrAuthentication("incomplete traditional credentials", nil)
		}
		c.apiKey = h.UserKey
		c.authenticated = true
		return nil
	case auth.SSOHandler:
		token, err := c.acquirer.AcquireToken(ctx, h)
		if err != nil {
			return err
		}
		c.token = token
		c.authenticated = true
		return nil
	default:
		return output.ErrAuthentication("unsupported handler kind", nil)
	}
}

// Prospects returns the prospect resource service.
func (c *Client) Prospects() *ProspectService {
	return &ProspectService{client: c}
}

// ProspectService provides prospect resource operations.
type ProspectService struct {
	client *Client
}

// ReadByEmail is a point lookup for a single prospect, issued as a POST.
func (s *ProspectService) ReadByEmail(ctx context.Context, email string) (models.Prospect, error) {
	c := s.client
	op := observability.OperationInfo{Component: "Prospects", Operation: "ReadByEmail"}
	ctx = c.hooks.OnOperationStart(ctx, op)
	start := time.Now()

	endpoint := c.baseURL + readByEmailPath + url.PathEscape(email)
	body, err := c.do(ctx, http.MethodPost, endpoint, url.Values{"format": {"json"}})
	if err != nil {
		c.hooks.OnOperationEnd(ctx, op, err, time.Since(start))
		return models.Prospect{}, err
	}

	var resp struct {
		Prospect models.Prospect `json:"prospect"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		err = output.ErrCorruptedResponse()
		c.hooks.OnOperationEnd(ctx, op, err, time.Since(start))
		return models.Prospect{}, err
	}

	c.hooks.OnOperationEnd(ctx, op, nil, time.Since(start))
	return resp.Prospect, nil
}

// Query is a filtered listing of prospects created after the given ISO
// date, issued with GET semantics. An empty createdAfter falls back to
// DefaultCreatedAfter. Row order is preserved.
func (s *ProspectService) Query(ctx context.Context, createdAfter string) ([]models.Prospect, error) {
	c := s.client
	op := observability.OperationInfo{Component: "Prospects", Operation: "Query"}
	ctx = c.hooks.OnOperationStart(ctx, op)
	start := time.Now()

	if createdAfter == "" {
		createdAfter = DefaultCreatedAfter
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("created_after", createdAfter)

	body, err := c.do(ctx, http.MethodGet, c.baseURL+highQueryPath, q)
	if err != nil {
		c.hooks.OnOperationEnd(ctx, op, err, time.Since(start))
		return nil, err
	}

	var resp struct {
		Prospect json.RawMessage `json:"prospect"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		err = output.ErrCorruptedResponse()
		c.hooks.OnOperationEnd(ctx, op, err, time.Since(start))
		return nil, err
	}

	prospects, err := decodeProspects(resp.Prospect)
	c.hooks.OnOperationEnd(ctx, op, err, time.Since(start))
	return prospects, err
}

// do issues an authenticated request and returns the response body. The
// session material decides the scheme: bearer headers for SSO, key params
// for traditional.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values) ([]byte, error) {
	if !c.authenticated {
		return nil, output.ErrAuthentication("not authenticated: call Authenticate first", nil)
	}

	if c.handler.Kind() == auth.KindTraditional {
		h := c.handler.(auth.TraditionalHandler)
		params.Set("user_key", h.UserKey)
		params.Set("api_key", c.apiKey)
	}

	fullURL := endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.handler.Kind() == auth.KindSSO {
		req.Header.Set("Authorization", "Bearer "+c.token.Bearer)
		req.Header.Set("Pardot-Business-Unit-Id", c.token.BusinessUnitID)
	}

	reqInfo := observability.RequestInfo{Method: method, URL: fullURL}
	ctx = c.hooks.OnRequestStart(ctx, reqInfo)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.hooks.OnRequestEnd(ctx, reqInfo, observability.RequestResult{Error: err, Duration: time.Since(start)})
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	c.hooks.OnRequestEnd(ctx, reqInfo, observability.RequestResult{
		StatusCode: resp.StatusCode,
		Duration:   time.Since(start),
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, output.ErrNetwork(err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, output.ErrAuthentication("Pardot rejected the session credentials", nil)
	default:
		return nil, output.ErrAPI(resp.StatusCode, "request failed (HTTP "+resp.Status+")")
	}
}
