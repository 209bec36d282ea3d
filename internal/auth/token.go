package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pardotkit/pardotctl/internal/models"
	"github.com/pardotkit/pardotctl/internal/observability"
	"github.com/pardotkit/pardotctl/internal/output"
)

// DefaultIdPBaseURL is the production Salesforce login host.
const DefaultIdPBaseURL = "https://login.salesforce.com"

const tokenPath = "/services/oauth2/token"

// AccessToken is the short-lived bearer credential returned by the identity
// provider, plus the routing metadata Pardot needs alongside it. It is never
// persisted; every access pattern acquires a fresh one.
type AccessToken struct {
	Bearer         string
	InstanceURL    string
	BusinessUnitID string
}

// TokenAcquirer performs the OAuth2 resource-owner-password-credentials
// exchange with Salesforce.
type TokenAcquirer struct {
	baseURL    string
	httpClient *http.Client
	hooks      observability.Hooks
}

// NewTokenAcquirer creates a TokenAcquirer against the production IdP.
func NewTokenAcquirer(httpClient *http.Client, hooks observability.Hooks) *TokenAcquirer {
	return NewTokenAcquirerFor(DefaultIdPBaseURL, httpClient, hooks)
}

// NewTokenAcquirerFor creates a TokenAcquirer against a specific IdP host.
func NewTokenAcquirerFor(baseURL string, httpClient *http.Client, hooks observability.Hooks) *TokenAcquirer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if hooks == nil {
		hooks = observability.NopHooks{}
	}
	return &TokenAcquirer{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		hooks:      hooks,
	}
}

// AcquireToken exchanges the handler's credentials for a bearer token scoped
// to the handler's business unit. One round trip, no retry; a transport
// failure or a token-less response is an auth_failed error.
func (a *TokenAcquirer) AcquireToken(ctx context.Context, h SSOHandler) (AccessToken, error) {
	op := observability.OperationInfo{Component: "TokenAcquirer", Operation: "AcquireToken"}
	ctx = a.hooks.OnOperationStart(ctx, op)
	start := time.Now()

	token, err := a.acquire(ctx, h)
	a.hooks.OnOperationEnd(ctx, op, err, time.Since(start))
	return token, err
}

func (a *TokenAcquirer) acquire(ctx context.Context, h SSOHandler) (AccessToken, error) {
	data := url.Values{}
	data.Set("grant_type", "password")
	data.Set("client_id", h.ConsumerKey)
	data.Set("client_secret", h.ConsumerSecret)
	data.Set("username", h.User)
	data.Set("password", h.IdPPassword())

	endpoint := a.baseURL + tokenPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return AccessToken{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	reqInfo := observability.RequestInfo{Method: http.MethodPost, URL: endpoint}
	ctx = a.hooks.OnRequestStart(ctx, reqInfo)
	start := time.Now()

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.hooks.OnRequestEnd(ctx, reqInfo, observability.RequestResult{Error: err, Duration: time.Since(start)})
		return AccessToken{}, output.ErrAuthentication("token exchange failed", err)
	}
	defer resp.Body.Close()

	a.hooks.OnRequestEnd(ctx, reqInfo, observability.RequestResult{
		StatusCode: resp.StatusCode,
		Duration:   time.Since(start),
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return AccessToken{}, output.ErrAuthentication("cannot read token response", err)
	}

	var tokenResp models.TokenResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(body, &tokenResp) == nil && tokenResp.Error != "" {
			return AccessToken{}, output.ErrAuthentication(
				"token exchange rejected: "+tokenResp.Error+": "+tokenResp.ErrorDesc, nil)
		}
		return AccessToken{}, output.ErrAuthentication(
			"token exchange failed with HTTP "+resp.Status, nil)
	}

	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return AccessToken{}, output.ErrAuthentication("cannot parse token response", err)
	}

	// A 2xx body without an access token is treated as a failure rather
	// than passed through as an empty bearer value.
	if tokenResp.AccessToken == "" {
		return AccessToken{}, output.ErrAuthentication("token endpoint returned no access_token", nil)
	}

	return AccessToken{
		Bearer:         tokenResp.AccessToken,
		InstanceURL:    tokenResp.InstanceURL,
		BusinessUnitID: h.BusinessUnitID,
	}, nil
}
