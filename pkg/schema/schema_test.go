package schema_test

import (
	"reflect"
	"testing"

	"github.com/effective-security/agenttools/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchRequest struct {
	Query string `json:"query" jsonschema:"title=Query,description=The search query."`
	Limit int    `json:"limit,omitempty" jsonschema:"title=Limit,description=Maximum results."`
}

func Test_New(t *testing.T) {
	sc, err := schema.New(reflect.TypeOf(searchRequest{}))
	require.NoError(t, err)
	require.NotNil(t, sc.Parameters)

	exp := `{
	"properties": {
		"query": {
			"type": "string",
			"title": "Query",
			"description": "The search query."
		},
		"limit": {
			"type": "integer",
			"title": "Limit",
			"description": "Maximum results."
		}
	},
	"type": "object",
	"required": [
		"query"
	]
}`
	assert.Equal(t, exp, sc.String())

	// cached on second reflection
	sc2, err := schema.New(reflect.TypeOf(searchRequest{}))
	require.NoError(t, err)
	assert.Same(t, sc, sc2)
}

func Test_ToFunctionParameters(t *testing.T) {
	sc, err := schema.New(reflect.TypeOf(searchRequest{}))
	require.NoError(t, err)

	params, err := schema.ToFunctionParameters(sc.Parameters)
	require.NoError(t, err)
	assert.Equal(t, "object", params["type"])
	assert.Contains(t, params, "properties")
}

func Test_FromAny(t *testing.T) {
	sc, err := schema.FromAny(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "object", sc.Type)

	assert.NotPanics(t, func() {
		schema.MustFromAny(map[string]any{"type": "object"})
	})
}
