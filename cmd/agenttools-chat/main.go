// Command agenttools-chat runs an interactive chat loop against an
// OpenAI-compatible API, with the file, spreadsheet and shell tools
// registered for function calling. Files are written into a per-run
// sandbox directory.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agenttools/callbacks"
	"github.com/effective-security/agenttools/llmfactory"
	"github.com/effective-security/agenttools/pkg/schema"
	"github.com/effective-security/agenttools/tools"
	"github.com/effective-security/agenttools/tools/excel"
	"github.com/effective-security/agenttools/tools/fileio"
	"github.com/effective-security/agenttools/tools/shell"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agenttools", "agenttools-chat")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgFile := flag.String("cfg", "agenttools.yaml", "path to the provider config file")
	provider := flag.String("provider", "", "provider name, defaults to the first configured")
	sandboxRoot := flag.String("sandbox", os.TempDir(), "root directory for per-run sandboxes")
	verbose := flag.Bool("verbose", false, "print tool outputs")
	flag.Parse()

	xlog.SetGlobalLogLevel(xlog.ERROR)

	cfg, err := llmfactory.LoadConfig(*cfgFile)
	if err != nil {
		return errors.WithMessage(err, "failed to load config")
	}
	client, prov, err := llmfactory.New(cfg).NewClient(*provider)
	if err != nil {
		return err
	}
	if prov.DefaultModel == "" {
		return errors.Errorf("provider %q has no default_model configured", prov.Name)
	}

	registry := tools.NewRegistry()
	if err := registry.RegisterPlugin(fileio.PluginName, fileio.New()...); err != nil {
		return err
	}
	if err := registry.RegisterPlugin(excel.PluginName, excel.New()...); err != nil {
		return err
	}
	shellTool, err := shell.New()
	if err != nil {
		return err
	}
	if err := registry.RegisterPlugin(shell.PluginName, shellTool); err != nil {
		return err
	}

	baseDir := filepath.Join(*sandboxRoot, "sandbox"+strings.ReplaceAll(uuid.NewString(), "-", ""))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create sandbox directory")
	}
	fmt.Printf("Sandbox directory: %s\n", baseDir)

	systemPrompt := "You are a helpful AI assistant.\n" +
		"You have these tools available:\n" + registry.Describe() +
		"Use this base_dir for all file reads/writes: " + baseDir + "\n" +
		"Do not write outside base_dir. Always call the correct tool instead of guessing."

	// Qualified names use '.', which function-call APIs do not allow,
	// so the wire name swaps it for '-'.
	toolParams, apiNames, err := functionTools(registry)
	if err != nil {
		return err
	}

	mode := callbacks.ModeDefault
	if *verbose {
		mode = callbacks.ModeVerbose
	}
	cb := callbacks.NewFanout(
		callbacks.NewPrinter(os.Stdout, mode),
		callbacks.NewPackageLogger(logger),
	)

	ctx := context.Background()
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") {
			break
		}
		messages = append(messages, openai.UserMessage(input))

		for {
			resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
				Model:       shared.ChatModel(prov.DefaultModel),
				Messages:    messages,
				Tools:       toolParams,
				MaxTokens:   openai.Int(1000),
				Temperature: openai.Float(0.7),
			})
			if err != nil {
				return errors.Wrap(err, "chat completion failed")
			}
			if len(resp.Choices) == 0 {
				return errors.New("chat completion returned no choices")
			}

			msg := resp.Choices[0].Message
			messages = append(messages, msg.ToParam())

			if len(msg.ToolCalls) == 0 {
				fmt.Printf("Agent: %s\n\n", msg.Content)
				break
			}

			for _, tc := range msg.ToolCalls {
				name := apiNames[tc.Function.Name]
				tool, ok := registry.Get(name)
				var output string
				if !ok {
					output = fmt.Sprintf(`{"error":"unknown tool %s"}`, tc.Function.Name)
				} else {
					output = tools.CallJSON(ctx, tool, tc.Function.Arguments, cb)
				}
				messages = append(messages, openai.ToolMessage(output, tc.ID))
			}
		}
	}
	return errors.Wrap(scanner.Err(), "failed to read input")
}

// functionTools builds the chat API tool definitions and the mapping
// from wire names back to the registry's qualified names.
func functionTools(registry *tools.Registry) ([]openai.ChatCompletionToolUnionParam, map[string]string, error) {
	var params []openai.ChatCompletionToolUnionParam
	apiNames := make(map[string]string)

	for _, name := range registry.Names() {
		tool, _ := registry.Get(name)
		apiName := strings.ReplaceAll(name, ".", "-")
		apiNames[apiName] = name

		fnParams, err := schema.ToFunctionParameters(tool.Parameters())
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "failed to build parameters for %s", name)
		}
		params = append(params, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        apiName,
			Description: openai.String(tool.Description()),
			Parameters:  shared.FunctionParameters(fnParams),
		}))
	}
	return params, apiNames, nil
}
