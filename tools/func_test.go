package tools_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agenttools/chatmodel"
	"github.com/effective-security/agenttools/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Message string `json:"message" validate:"required" jsonschema:"title=Message,description=Text to echo."`
	Count   int    `json:"count,omitempty" validate:"gte=0" jsonschema:"title=Count,description=Number of repeats."`
}

type echoResult struct {
	Echo string `json:"echo"`
}

func runEcho(_ context.Context, req *echoRequest) (*echoResult, error) {
	return &echoResult{Echo: req.Message}, nil
}

func Test_Func(t *testing.T) {
	tool, err := tools.NewFunc("echo", "Echo the message back.", runEcho)
	require.NoError(t, err)

	assert.Equal(t, "echo", tool.Name())
	assert.Equal(t, "Echo the message back.", tool.Description())
	require.NotNil(t, tool.Parameters())

	ctx := context.Background()

	out, err := tool.Call(ctx, `{"message": "hello"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"echo": "hello"}`, out)

	// fenced input from a chatty model
	out, err = tool.Call(ctx, "```json\n{\"message\": \"hello\"}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"echo": "hello"}`, out)

	res, err := tool.Run(ctx, &echoRequest{Message: "typed"})
	require.NoError(t, err)
	assert.Equal(t, "typed", res.Echo)
}

func Test_Func_InvalidInput(t *testing.T) {
	tool := tools.MustFunc("echo", "Echo the message back.", runEcho)
	ctx := context.Background()

	_, err := tool.Call(ctx, "this is not JSON")
	require.Error(t, err)
	assert.True(t, errors.Is(err, chatmodel.ErrFailedUnmarshalInput))

	// missing required field
	_, err = tool.Call(ctx, `{"count": 2}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request")
}
