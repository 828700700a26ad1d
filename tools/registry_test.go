package tools_test

import (
	"testing"

	"github.com/effective-security/agenttools/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Registry(t *testing.T) {
	r := tools.NewRegistry()

	echo := tools.MustFunc("echo", "Echo the message back.", runEcho)
	require.NoError(t, r.RegisterPlugin("demo", echo))
	require.NoError(t, r.RegisterPlugin("aux", echo))

	err := r.RegisterPlugin("demo", echo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	err = r.RegisterPlugin("", echo)
	require.Error(t, err)

	got, ok := r.Get("demo.echo")
	require.True(t, ok)
	assert.Equal(t, "echo", got.Name())

	_, ok = r.Get("demo.missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"demo.echo", "aux.echo"}, r.Names())
	assert.Equal(t, []string{"aux", "demo"}, r.Plugins())
	assert.Len(t, r.List(), 2)

	desc := r.Describe()
	assert.Contains(t, desc, "demo.echo: Echo the message back.")
	assert.Contains(t, desc, "aux.echo: Echo the message back.")
}
