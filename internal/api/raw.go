// Package api provides HTTP clients for the Pardot API: a low-level client
// driven by a previously acquired bearer token, and a high-level client
// driven by an auth handler.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pardotkit/pardotctl/internal/auth"
	"github.com/pardotkit/pardotctl/internal/models"
	"github.com/pardotkit/pardotctl/internal/observability"
	"github.com/pardotkit/pardotctl/internal/output"
)

const (
	// DefaultBaseURL is the production Pardot API host.
	DefaultBaseURL = "https://pi.pardot.com"

	queryPath = "/api/prospect/version/4/do/query"

	// DefaultCreatedAfter is the listing filter used when none is
	// configured.
	DefaultCreatedAfter = "2021-01-01"
)

// Filter selects prospects for a query. At most one field may be set; an
// empty Filter falls back to CreatedAfter = DefaultCreatedAfter.
type Filter struct {
	CreatedAfter string // ISO date, e.g. "2021-01-01"
	IDLessThan   int64
}

func (f Filter) apply(q url.Values) error {
	if f.CreatedAfter != "" && f.IDLessThan > 0 {
		return output.ErrUsage("at most one query filter may be set")
	}
	switch {
	case f.IDLessThan > 0:
		q.Set("id_less_than", strconv.FormatInt(f.IDLessThan, 10))
	case f.CreatedAfter != "":
		q.Set("created_after", f.CreatedAfter)
	default:
		q.Set("created_after", DefaultCreatedAfter)
	}
	return nil
}

// RawClient issues bearer-authenticated requests against the Pardot query
// endpoint without going through an auth handler. The caller supplies the
// token and business unit directly.
type RawClient struct {
	baseURL    string
	httpClient *http.Client
	hooks      observability.Hooks
}

// NewRawClient creates a RawClient for the production Pardot host.
func NewRawClient(httpClient *http.Client, hooks observability.Hooks) *RawClient {
	return NewRawClientFor(DefaultBaseURL, httpClient, hooks)
}

// NewRawClientFor creates a RawClient for a specific Pardot host.
func NewRawClientFor(baseURL string, httpClient *http.Client, hooks observability.Hooks) *RawClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if hooks == nil {
		hooks = observability.NopHooks{}
	}
	return &RawClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		hooks:      hooks,
	}
}

// QueryProspects fetches the prospects matching filter, in the order Pardot
// returns them.
func (c *RawClient) QueryProspects(ctx context.Context, token auth.AccessToken, filter Filter) ([]models.Prospect, error) {
	op := observability.OperationInfo{Component: "RawClient", Operation: "QueryProspects"}
	ctx = c.hooks.OnOperationStart(ctx, op)
	start := time.Now()

	prospects, err := c.query(ctx, token, filter)
	c.hooks.OnOperationEnd(ctx, op, err, time.Since(start))
	return prospects, err
}

func (c *RawClient) query(ctx context.Context, token auth.AccessToken, filter Filter) ([]models.Prospect, error) {
	q := url.Values{}
	q.Set("format", "json")
	if err := filter.apply(q); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + queryPath + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.Bearer)
	req.Header.Set("Pardot-Business-Unit-Id", token.BusinessUnitID)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	reqInfo := observability.RequestInfo{Method: http.MethodPost, URL: endpoint}
	ctx = c.hooks.OnRequestStart(ctx, reqInfo)
	reqStart := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.hooks.OnRequestEnd(ctx, reqInfo, observability.RequestResult{Error: err, Duration: time.Since(reqStart)})
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	c.hooks.OnRequestEnd(ctx, reqInfo, observability.RequestResult{
		StatusCode: resp.StatusCode,
		Duration:   time.Since(reqStart),
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, output.ErrNetwork(err)
	}

	return parseQueryEnvelope(body)
}

// queryEnvelope is the wire shape of the query endpoint:
// {"@attributes": {"stat": ...}, "result": {"prospect": ...}}
type queryEnvelope struct {
	Attributes map[string]json.RawMessage `json:"@attributes"`
	Result     struct {
		Prospect json.RawMessage `json:"prospect"`
	} `json:"result"`
}

// parseQueryEnvelope validates the envelope and extracts the prospect rows.
// A missing stat field is a corrupted response; a present, non-ok stat is a
// provider failure carrying the reported status.
func parseQueryEnvelope(body []byte) ([]models.Prospect, error) {
	var env queryEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, output.ErrCorruptedResponse()
	}

	raw, ok := env.Attributes["stat"]
	if !ok {
		return nil, output.ErrCorruptedResponse()
	}
	var stat string
	if err := json.Unmarshal(raw, &stat); err != nil {
		return nil, output.ErrCorruptedResponse()
	}
	if stat != "ok" {
		return nil, output.ErrProviderRequest(stat)
	}

	return decodeProspects(env.Result.Prospect)
}

// decodeProspects normalizes the prospect payload. Pardot returns a JSON
// array for multiple rows but a bare object when exactly one row matches.
func decodeProspects(raw json.RawMessage) ([]models.Prospect, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var prospects []models.Prospect
		if err := json.Unmarshal(trimmed, &prospects); err != nil {
			return nil, output.ErrCorruptedResponse()
		}
		return prospects, nil
	}

	var one models.Prospect
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, output.ErrCorruptedResponse()
	}
	return []models.Prospect{one}, nil
}
