package tools_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agenttools/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failRequest struct {
	Message string `json:"message" validate:"required"`
}

type recordingCallback struct {
	started int
	ended   int
	failed  int
}

func (c *recordingCallback) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	c.started++
}

func (c *recordingCallback) OnToolEnd(ctx context.Context, tool tools.ITool, input string, output string) {
	c.ended++
}

func (c *recordingCallback) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	c.failed++
}

func Test_CallJSON(t *testing.T) {
	ctx := context.Background()
	cb := &recordingCallback{}

	echo := tools.MustFunc("echo", "Echo the message back.", runEcho)
	out := tools.CallJSON(ctx, echo, `{"message": "hi"}`, cb)
	assert.JSONEq(t, `{"echo": "hi"}`, out)
	assert.Equal(t, 1, cb.started)
	assert.Equal(t, 1, cb.ended)
	assert.Equal(t, 0, cb.failed)

	fail := tools.MustFunc("fail", "Always fails.",
		func(_ context.Context, req *failRequest) (*echoResult, error) {
			return nil, errors.New("boom")
		})
	out = tools.CallJSON(ctx, fail, `{"message": "hi"}`, cb)
	assert.JSONEq(t, `{"error": "boom"}`, out)
	assert.Equal(t, 2, cb.started)
	assert.Equal(t, 1, cb.ended)
	assert.Equal(t, 1, cb.failed)

	// invalid input becomes an error payload, not a hard failure
	out = tools.CallJSON(ctx, echo, "not json")
	require.Contains(t, out, "error")
}

func Test_GetDescriptions(t *testing.T) {
	echo := tools.MustFunc("echo", "Echo the message back.", runEcho)
	desc := tools.GetDescriptions(echo)
	assert.Contains(t, desc, "```json")
	assert.Contains(t, desc, `"Name": "echo"`)
	assert.Contains(t, desc, `"Description": "Echo the message back."`)
}
