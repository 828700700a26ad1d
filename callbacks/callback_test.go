package callbacks_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agenttools/callbacks"
	"github.com/effective-security/agenttools/tools"
	"github.com/effective-security/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nameRequest struct {
	Name string `json:"name"`
}

type nameResult struct {
	Name string `json:"name"`
}

func newTool(t *testing.T) tools.ITool {
	t.Helper()
	return tools.MustFunc("greet", "Greets by name.",
		func(_ context.Context, req *nameRequest) (*nameResult, error) {
			return &nameResult{Name: req.Name}, nil
		})
}

func Test_Printer(t *testing.T) {
	ctx := context.Background()
	tool := newTool(t)

	var buf bytes.Buffer
	p := callbacks.NewPrinter(&buf, callbacks.ModeDefault)

	p.OnToolStart(ctx, tool, `{"name":"a"}`)
	p.OnToolEnd(ctx, tool, `{"name":"a"}`, `{"name":"a"}`)
	p.OnToolError(ctx, tool, `{"name":"a"}`, errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "Tool Start: greet")
	assert.Contains(t, out, "Tool End: greet")
	assert.Contains(t, out, "Tool Error: greet: boom")
	assert.NotContains(t, out, "Output:")

	buf.Reset()
	v := callbacks.NewPrinter(&buf, callbacks.ModeVerbose)
	v.OnToolEnd(ctx, tool, `{"name":"a"}`, `{"name":"a"}`)
	assert.Contains(t, buf.String(), `Output: {"name":"a"}`)
}

func Test_PackageLogger(t *testing.T) {
	var buf bytes.Buffer
	xlog.SetFormatter(xlog.NewStringFormatter(&buf))

	logger := xlog.NewPackageLogger("github.com/effective-security/agenttools", "callbacks_test")
	xlog.SetGlobalLogLevel(xlog.DEBUG)
	l := callbacks.NewPackageLogger(logger)

	ctx := context.Background()
	tool := newTool(t)
	l.OnToolStart(ctx, tool, `{"name":"a"}`)
	l.OnToolEnd(ctx, tool, `{"name":"a"}`, `{"name":"a"}`)
	l.OnToolError(ctx, tool, `{"name":"a"}`, errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "tool_start")
	assert.Contains(t, out, "tool_end")
	assert.Contains(t, out, "tool_error")
	assert.Contains(t, out, "greet")
	assert.Contains(t, out, "boom")
}

func Test_Fanout(t *testing.T) {
	ctx := context.Background()
	tool := newTool(t)

	var first, second bytes.Buffer
	f := callbacks.NewFanout(
		callbacks.NewPrinter(&first, callbacks.ModeDefault),
		callbacks.NewNoop(),
	)
	f.Add(callbacks.NewPrinter(&second, callbacks.ModeDefault))

	f.OnToolStart(ctx, tool, "{}")
	f.OnToolEnd(ctx, tool, "{}", "{}")
	f.OnToolError(ctx, tool, "{}", errors.New("boom"))

	require.Contains(t, first.String(), "Tool Start: greet")
	require.Contains(t, second.String(), "Tool Start: greet")
	assert.Equal(t, first.String(), second.String())
}
