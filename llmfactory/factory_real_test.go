package llmfactory_test

import (
	"context"
	"os"
	"testing"

	"github.com/effective-security/agenttools/llmfactory"
	"github.com/effective-security/xlog"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
	"github.com/stretchr/testify/require"
)

func loadConfigOrSkipRealTest(t *testing.T) *llmfactory.Config {
	// comment to run Real Tests
	t.Skip("skipping real test")

	// Uncomment to see logs, or change to DEBUG
	xlog.SetFormatter(xlog.NewStringFormatter(os.Stdout))
	xlog.SetGlobalLogLevel(xlog.DEBUG)

	cfg, err := llmfactory.LoadConfig("testdata/agenttools.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Providers)

	return cfg
}

func Test_Real_Completion(t *testing.T) {
	cfg := loadConfigOrSkipRealTest(t)

	f := llmfactory.New(cfg)
	client, prov, err := f.NewClient("")
	require.NoError(t, err)

	resp, err := client.Chat.Completions.New(context.Background(), openai.ChatCompletionNewParams{
		Model: shared.ChatModel(prov.DefaultModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("Reply with one word."),
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Choices)
	t.Log(resp.Choices[0].Message.Content)
}
