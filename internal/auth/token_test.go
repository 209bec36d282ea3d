package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pardotkit/pardotctl/internal/output"
)

var testSSOHandler = SSOHandler{
	User:           "eb@x.com",
	Password:       "p",
	ConsumerKey:    "ck",
	ConsumerSecret: "cs",
	BusinessUnitID: "BU1",
	Token:          "t",
}

func TestAcquireToken(t *testing.T) {
	var gotPath string
	var gotForm map[string]string

	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"grant_type":    r.PostFormValue("grant_type"),
			"client_id":     r.PostFormValue("client_id"),
			"client_secret": r.PostFormValue("client_secret"),
			"username":      r.PostFormValue("username"),
			"password":      r.PostFormValue("password"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "ABC", "instance_url": "https://na1.example.com"}`))
	}))
	defer idp.Close()

	acquirer := NewTokenAcquirerFor(idp.URL, idp.Client(), nil)
	token, err := acquirer.AcquireToken(context.Background(), testSSOHandler)
	require.NoError(t, err)

	assert.Equal(t, "/services/oauth2/token", gotPath)
	assert.Equal(t, map[string]string{
		"grant_type":    "password",
		"client_id":     "ck",
		"client_secret": "cs",
		"username":      "eb@x.com",
		"password":      "pt", // password + security token, no separator
	}, gotForm)

	assert.Equal(t, "ABC", token.Bearer)
	assert.Equal(t, "https://na1.example.com", token.InstanceURL)
	assert.Equal(t, "BU1", token.BusinessUnitID)
}

func TestAcquireTokenTransportError(t *testing.T) {
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	idp.Close() // connection refused from here on

	acquirer := NewTokenAcquirerFor(idp.URL, nil, nil)
	_, err := acquirer.AcquireToken(context.Background(), testSSOHandler)
	require.Error(t, err)

	var e *output.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, output.CodeAuth, e.Code)
	assert.NotNil(t, e.Cause, "transport error should be carried as the cause")
}

func TestAcquireTokenRejected(t *testing.T) {
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid_grant", "error_description": "authentication failure"}`))
	}))
	defer idp.Close()

	acquirer := NewTokenAcquirerFor(idp.URL, idp.Client(), nil)
	_, err := acquirer.AcquireToken(context.Background(), testSSOHandler)
	require.Error(t, err)

	var e *output.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, output.CodeAuth, e.Code)
	assert.Contains(t, e.Message, "invalid_grant")
}

func TestAcquireTokenRejectedUnparseableBody(t *testing.T) {
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer idp.Close()

	acquirer := NewTokenAcquirerFor(idp.URL, idp.Client(), nil)
	_, err := acquirer.AcquireToken(context.Background(), testSSOHandler)
	require.Error(t, err)

	var e *output.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, output.CodeAuth, e.Code)
}

func TestAcquireTokenMissingAccessToken(t *testing.T) {
	// A 2xx body without an access_token fails fast rather than producing
	// an empty bearer value.
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"instance_url": "https://na1.example.com"}`))
	}))
	defer idp.Close()

	acquirer := NewTokenAcquirerFor(idp.URL, idp.Client(), nil)
	_, err := acquirer.AcquireToken(context.Background(), testSSOHandler)
	require.Error(t, err)

	var e *output.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, output.CodeAuth, e.Code)
	assert.Contains(t, e.Message, "access_token")
}
