// Package fileio provides filesystem tools for reading, writing, and
// managing files and directories.
package fileio

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agenttools/tools"
)

// PluginName is the namespace the tools are registered under.
const PluginName = "file_io"

// DefaultMaxBytes caps read_file when max_bytes is not provided.
const DefaultMaxBytes = 500000

type EnsureDirRequest struct {
	Path string `json:"path" validate:"required" jsonschema:"title=Path,description=Directory path to create if missing."`
}

type WriteFileRequest struct {
	Path    string `json:"path" validate:"required" jsonschema:"title=Path,description=Path of the file to write."`
	Content string `json:"content" jsonschema:"title=Content,description=Text content to write (UTF-8)."`
}

type ReadFileRequest struct {
	Path     string `json:"path" validate:"required" jsonschema:"title=Path,description=Path of the file to read."`
	MaxBytes int    `json:"max_bytes,omitempty" validate:"gte=0" jsonschema:"title=Max Bytes,description=Maximum number of bytes to read. Default is 500000."`
}

type Result struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

type ReadResult struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// New returns the file I/O tool set.
func New() []tools.ITool {
	return []tools.ITool{
		tools.MustFunc("ensure_dir",
			"Ensure a directory exists; create it if missing.",
			runEnsureDir),
		tools.MustFunc("write_file",
			"Write text content to a file (UTF-8). Creates parent dirs if needed.",
			runWriteFile),
		tools.MustFunc("append_file",
			"Append text to a file (UTF-8). Creates file and parent dirs if needed.",
			runAppendFile),
		tools.MustFunc("read_file",
			"Read up to max_bytes of a text file (UTF-8).",
			runReadFile),
	}
}

func runEnsureDir(_ context.Context, req *EnsureDirRequest) (*Result, error) {
	if err := os.MkdirAll(req.Path, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create directory")
	}
	return okResult(req.Path), nil
}

func runWriteFile(_ context.Context, req *WriteFileRequest) (*Result, error) {
	if err := ensureParent(req.Path); err != nil {
		return nil, err
	}
	if err := os.WriteFile(req.Path, []byte(req.Content), 0o644); err != nil {
		return nil, errors.Wrap(err, "failed to write file")
	}
	return okResult(req.Path), nil
}

func runAppendFile(_ context.Context, req *WriteFileRequest) (*Result, error) {
	if err := ensureParent(req.Path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(req.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer f.Close()

	if _, err := f.WriteString(req.Content); err != nil {
		return nil, errors.Wrap(err, "failed to append to file")
	}
	return okResult(req.Path), nil
}

func runReadFile(_ context.Context, req *ReadFileRequest) (*ReadResult, error) {
	f, err := os.Open(req.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer f.Close()

	maxBytes := req.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	buf := make([]byte, maxBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, errors.Wrap(err, "failed to read file")
	}
	return &ReadResult{
		Status: "ok",
		Path:   absPath(req.Path),
		// invalid UTF-8 is replaced, not rejected
		Content: strings.ToValidUTF8(string(buf[:n]), "�"),
	}, nil
}

func ensureParent(path string) error {
	parent := filepath.Dir(path)
	if parent != "" && parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return errors.Wrap(err, "failed to create parent directory")
		}
	}
	return nil
}

func okResult(path string) *Result {
	return &Result{
		Status: "ok",
		Path:   absPath(path),
	}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
