// Package shell provides a command execution tool with a small
// deny-list policy check before spawning a subprocess.
package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agenttools/chatmodel"
	"github.com/effective-security/agenttools/pkg/llmutils"
	"github.com/effective-security/agenttools/pkg/schema"
	"github.com/effective-security/agenttools/tools"
)

// PluginName is the namespace the tool is registered under.
const PluginName = "shell"

const ToolName = "run_shell"

// DefaultTimeout applies when the request does not set timeout_sec.
const DefaultTimeout = 600 * time.Second

// DefaultDenyPatterns are substrings that block a command before it is run.
var DefaultDenyPatterns = []string{
	"remove-item -recurse",
	"rm -rf",
	"rd /s",
}

type RunRequest struct {
	Command    string `json:"command" validate:"required" jsonschema:"title=Command,description=The shell command to run."`
	TimeoutSec int    `json:"timeout_sec,omitempty" validate:"gte=0" jsonschema:"title=Timeout Seconds,description=Maximum seconds to wait for the command. Default is 600."`
	Cwd        string `json:"cwd,omitempty" jsonschema:"title=Working Directory,description=Optional working directory for the command."`
}

type RunResult struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	Cwd      string `json:"cwd"`
}

// Tool runs a shell command and returns exit code, stdout and stderr.
// A non-zero exit code is a result, not an error.
type Tool struct {
	name        string
	description string
	funcParams  any

	denyPatterns []string
}

var _ tools.Tool[RunRequest, RunResult] = (*Tool)(nil)

func New() (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(RunRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	t := &Tool{
		name:         ToolName,
		description:  "Run a shell command (with a small disallow list) and return JSON {exit_code, stdout, stderr}. Optionally run in a given working directory (cwd).",
		funcParams:   sc.Parameters,
		denyPatterns: DefaultDenyPatterns,
	}
	return t, nil
}

// WithDenyPatterns replaces the deny-list.
func (t *Tool) WithDenyPatterns(patterns []string) *Tool {
	t.denyPatterns = patterns
	return t
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() any {
	return t.funcParams
}

func (t *Tool) Run(ctx context.Context, req *RunRequest) (*RunResult, error) {
	if err := tools.ValidateInput(req); err != nil {
		return nil, err
	}

	cmdLower := strings.ToLower(strings.TrimSpace(req.Command))
	for _, pattern := range t.denyPatterns {
		if strings.Contains(cmdLower, pattern) {
			return nil, errors.Errorf("command blocked by safety policy: matches disallowed destructive pattern %q", pattern)
		}
	}

	timeout := DefaultTimeout
	if req.TimeoutSec > 0 {
		timeout = time.Duration(req.TimeoutSec) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", "-c", req.Command)
	cmd.Dir = req.Cwd

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Errorf("command timed out after %s", timeout)
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, errors.Wrap(err, "failed to run command")
		}
	}

	return &RunResult{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Cwd:      req.Cwd,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req RunRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	bs, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal output")
	}
	return string(bs), nil
}
