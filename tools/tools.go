package tools

import (
	"context"

	"github.com/effective-security/agenttools/pkg/llmutils"
)

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// GetDescriptions returns a JSON block describing the tools,
// suitable for inclusion in a prompt.
func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}

type errorResult struct {
	Error string `json:"error"`
}

// CallJSON invokes the tool and returns its output, mapping any failure
// into an `{"error": "..."}` payload. This is the single seam where tool
// errors become content the model can read, so individual tools return
// plain errors and never format their own failure payloads.
func CallJSON(ctx context.Context, tool ITool, input string, callbacks ...Callback) string {
	for _, cb := range callbacks {
		cb.OnToolStart(ctx, tool, input)
	}
	out, err := tool.Call(ctx, input)
	if err != nil {
		for _, cb := range callbacks {
			cb.OnToolError(ctx, tool, input, err)
		}
		return llmutils.ToJSON(errorResult{Error: err.Error()})
	}
	for _, cb := range callbacks {
		cb.OnToolEnd(ctx, tool, input, out)
	}
	return out
}
