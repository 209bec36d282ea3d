package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pardotkit/pardotctl/internal/appctx"
	"github.com/pardotkit/pardotctl/internal/models"
)

func TestQueryPrintsJQResult(t *testing.T) {
	srv := stubPlatform(t)
	var out bytes.Buffer

	cmd := NewQueryCmd()
	cmd.SetContext(appctx.WithApp(context.Background(), testApp(t, srv, &out)))
	cmd.SetArgs([]string{"--jq", ".[].email"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "2 prospects")
	assert.Contains(t, out.String(), "ada@x.com", "default format must include the jq result")
	assert.Contains(t, out.String(), "alan@x.com")
}

func TestQueryPrintsProspects(t *testing.T) {
	srv := stubPlatform(t)
	var out bytes.Buffer

	cmd := NewQueryCmd()
	cmd.SetContext(appctx.WithApp(context.Background(), testApp(t, srv, &out)))
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "2 prospects")
	assert.Contains(t, out.String(), `"email": "ada@x.com"`)
}

func TestApplyJQ(t *testing.T) {
	prospects := []models.Prospect{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com"},
		{FirstName: "Alan", LastName: "Turing", Email: "alan@x.com"},
	}

	out, err := applyJQ(".[].email", prospects)
	require.NoError(t, err)
	assert.Equal(t, []any{"ada@x.com", "alan@x.com"}, out)

	out, err = applyJQ("length", prospects)
	require.NoError(t, err)
	assert.Equal(t, 2, out)
}

func TestApplyJQSingleResultUnwrapped(t *testing.T) {
	out, err := applyJQ(".[0].first_name", []models.Prospect{{FirstName: "Ada"}})
	require.NoError(t, err)
	assert.Equal(t, "Ada", out)
}

func TestApplyJQInvalidExpression(t *testing.T) {
	_, err := applyJQ(".[", []models.Prospect{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid jq expression")
}
