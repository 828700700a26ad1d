package llmfactory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/effective-security/agenttools/llmfactory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
providers:
  - name: openai
    token: sk-test
    default_model: gpt-4o-mini
    available_models:
      - gpt-4o-mini
      - gpt-4o
    open_ai:
      base_url: http://localhost:8080/v1
  - name: local
    default_model: llama3
    open_ai:
      base_url: http://localhost:11434/v1
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agenttools.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))
	return path
}

func Test_LoadConfig(t *testing.T) {
	cfg, err := llmfactory.LoadConfig(writeConfig(t))
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 2)

	p := cfg.Providers[0]
	assert.Equal(t, "openai", p.Name)
	assert.Equal(t, "sk-test", p.Token)
	assert.Equal(t, "gpt-4o-mini", p.DefaultModel)
	assert.Equal(t, "http://localhost:8080/v1", p.OpenAI.BaseURL)

	cfg, err = llmfactory.LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Providers)

	_, err = llmfactory.LoadConfig("/no/such/file.yaml")
	require.Error(t, err)
}

func Test_Factory(t *testing.T) {
	cfg, err := llmfactory.LoadConfig(writeConfig(t))
	require.NoError(t, err)

	f := llmfactory.New(cfg)

	p, err := f.Provider("")
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name)

	p, err = f.Provider("local")
	require.NoError(t, err)
	assert.Equal(t, "llama3", p.DefaultModel)

	_, err = f.Provider("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai, local")

	client, p, err := f.NewClient("local")
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "local", p.Name)

	empty := llmfactory.New(&llmfactory.Config{})
	_, err = empty.Provider("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no providers configured")
}
