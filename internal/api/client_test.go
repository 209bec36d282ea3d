package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pardotkit/pardotctl/internal/auth"
	"github.com/pardotkit/pardotctl/internal/output"
)

var (
	traditionalHandler = auth.TraditionalHandler{
		User:     "pd@example.com",
		Password: "hunter2",
		UserKey:  "abc123",
	}
	ssoHandler = auth.SSOHandler{
		User:           "eb@x.com",
		Password:       "p",
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		BusinessUnitID: "BU1",
		Token:          "t",
	}
)

// newSSOClient wires a Client whose token acquirer hits a stub IdP that
// always issues "ABC".
func newSSOClient(t *testing.T, provider *httptest.Server) *Client {
	t.Helper()
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token": "ABC", "instance_url": "https://na1.example.com"}`))
	}))
	t.Cleanup(idp.Close)

	return NewClient(ssoHandler,
		WithBaseURL(provider.URL),
		WithHTTPClient(provider.Client()),
		WithTokenAcquirer(auth.NewTokenAcquirerFor(idp.URL, idp.Client(), nil)),
	)
}

func TestAuthenticateTraditional(t *testing.T) {
	client := NewClient(traditionalHandler)
	require.NoError(t, client.Authenticate(context.Background()))
}

func TestAuthenticateTraditionalIncomplete(t *testing.T) {
	client := NewClient(auth.TraditionalHandler{User: "pd@example.com"})
	err := client.Authenticate(context.Background())
	require.Error(t, err)

	var e *output.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, output.CodeAuth, e.Code)
}

func TestAuthenticateSSO(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer provider.Close()

	client := newSSOClient(t, provider)
	require.NoError(t, client.Authenticate(context.Background()))
}

func TestAuthenticateSSOFailurePropagates(t *testing.T) {
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer idp.Close()

	client := NewClient(ssoHandler,
		WithTokenAcquirer(auth.NewTokenAcquirerFor(idp.URL, idp.Client(), nil)),
	)
	err := client.Authenticate(context.Background())
	require.Error(t, err)

	var e *output.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, output.CodeAuth, e.Code)
}

func TestResourceOpBeforeAuthenticate(t *testing.T) {
	client := NewClient(traditionalHandler)
	_, err := client.Prospects().ReadByEmail(context.Background(), "a@x.com")
	require.Error(t, err)

	var e *output.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, output.CodeAuth, e.Code)
}

func TestReadByEmailSSO(t *testing.T) {
	var gotReq *http.Request
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Write([]byte(`{"prospect": {"first_name": "Ada", "last_name": "Lovelace", "email": "ada@x.com", "created_at": "2021-02-03 04:05:06"}}`))
	}))
	defer provider.Close()

	client := newSSOClient(t, provider)
	require.NoError(t, client.Authenticate(context.Background()))

	prospect, err := client.Prospects().ReadByEmail(context.Background(), "ada@x.com")
	require.NoError(t, err)

	// Point lookups go out as POSTs with the bearer session headers.
	assert.Equal(t, http.MethodPost, gotReq.Method)
	assert.Equal(t, "/api/prospect/version/4/do/read/email/ada@x.com", gotReq.URL.Path)
	assert.Equal(t, "Bearer ABC", gotReq.Header.Get("Authorization"))
	assert.Equal(t, "BU1", gotReq.Header.Get("Pardot-Business-Unit-Id"))

	assert.Equal(t, "Ada", prospect.FirstName)
	assert.Equal(t, "Lovelace", prospect.LastName)
	assert.Equal(t, "ada@x.com", prospect.Email)
}

func TestReadByEmailTraditional(t *testing.T) {
	var gotReq *http.Request
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Write([]byte(`{"prospect": {"first_name": "Ada", "email": "ada@x.com"}}`))
	}))
	defer provider.Close()

	client := NewClient(traditionalHandler,
		WithBaseURL(provider.URL),
		WithHTTPClient(provider.Client()),
	)
	require.NoError(t, client.Authenticate(context.Background()))

	_, err := client.Prospects().ReadByEmail(context.Background(), "ada@x.com")
	require.NoError(t, err)

	// Traditional sessions authenticate through key params, not headers.
	assert.Empty(t, gotReq.Header.Get("Authorization"))
	assert.Equal(t, "abc123", gotReq.URL.Query().Get("user_key"))
	assert.Equal(t, "abc123", gotReq.URL.Query().Get("api_key"))
}

func TestQueryDefaultsCreatedAfter(t *testing.T) {
	var gotReq *http.Request
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Write([]byte(`{"prospect": []}`))
	}))
	defer provider.Close()

	client := newSSOClient(t, provider)
	require.NoError(t, client.Authenticate(context.Background()))

	prospects, err := client.Prospects().Query(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, prospects)

	// Listings use GET semantics and fall back to the fixed default date.
	assert.Equal(t, http.MethodGet, gotReq.Method)
	assert.Equal(t, "/api/prospect/version/4/do/query", gotReq.URL.Path)
	assert.Equal(t, DefaultCreatedAfter, gotReq.URL.Query().Get("created_after"))
	assert.Equal(t, "json", gotReq.URL.Query().Get("format"))
}

func TestQueryOrderPreserved(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prospect": [
			{"email": "c@x.com"}, {"email": "a@x.com"}, {"email": "b@x.com"}
		]}`))
	}))
	defer provider.Close()

	client := newSSOClient(t, provider)
	require.NoError(t, client.Authenticate(context.Background()))

	prospects, err := client.Prospects().Query(context.Background(), "2021-06-01")
	require.NoError(t, err)

	require.Len(t, prospects, 3)
	assert.Equal(t, "c@x.com", prospects[0].Email)
	assert.Equal(t, "a@x.com", prospects[1].Email)
	assert.Equal(t, "b@x.com", prospects[2].Email)
}

func TestQuerySingleObjectNormalized(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prospect": {"email": "only@x.com"}}`))
	}))
	defer provider.Close()

	client := newSSOClient(t, provider)
	require.NoError(t, client.Authenticate(context.Background()))

	prospects, err := client.Prospects().Query(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, prospects, 1)
	assert.Equal(t, "only@x.com", prospects[0].Email)
}

func TestSessionRejected(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer provider.Close()

	client := newSSOClient(t, provider)
	require.NoError(t, client.Authenticate(context.Background()))

	_, err := client.Prospects().ReadByEmail(context.Background(), "a@x.com")
	require.Error(t, err)

	var e *output.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, output.CodeAuth, e.Code)
}
