package fileio_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/effective-security/agenttools/tools"
	"github.com/effective-security/agenttools/tools/fileio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findTool(t *testing.T, list []tools.ITool, name string) tools.ITool {
	t.Helper()
	for _, tool := range list {
		if tool.Name() == name {
			return tool
		}
	}
	t.Fatalf("tool not found: %s", name)
	return nil
}

func callTool(t *testing.T, tool tools.ITool, input string, out any) {
	t.Helper()
	res, err := tool.Call(context.Background(), input)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(res), out))
}

func Test_FileIO(t *testing.T) {
	list := fileio.New()
	require.Len(t, list, 4)

	tmp := t.TempDir()
	dir := filepath.Join(tmp, "nested", "dir")

	var res fileio.Result
	callTool(t, findTool(t, list, "ensure_dir"),
		`{"path": "`+dir+`"}`, &res)
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, dir, res.Path)
	assert.DirExists(t, dir)

	file := filepath.Join(dir, "notes.txt")
	callTool(t, findTool(t, list, "write_file"),
		`{"path": "`+file+`", "content": "hello"}`, &res)
	assert.Equal(t, "ok", res.Status)

	callTool(t, findTool(t, list, "append_file"),
		`{"path": "`+file+`", "content": " world"}`, &res)
	assert.Equal(t, "ok", res.Status)

	var read fileio.ReadResult
	callTool(t, findTool(t, list, "read_file"),
		`{"path": "`+file+`"}`, &read)
	assert.Equal(t, "hello world", read.Content)

	// truncated read
	callTool(t, findTool(t, list, "read_file"),
		`{"path": "`+file+`", "max_bytes": 5}`, &read)
	assert.Equal(t, "hello", read.Content)

	// invalid UTF-8 bytes are replaced
	binFile := filepath.Join(tmp, "raw.bin")
	require.NoError(t, os.WriteFile(binFile, []byte{'o', 'k', 0xff, '!'}, 0o644))
	callTool(t, findTool(t, list, "read_file"),
		`{"path": "`+binFile+`"}`, &read)
	assert.Equal(t, "ok�!", read.Content)
}

func Test_FileIO_Errors(t *testing.T) {
	list := fileio.New()
	ctx := context.Background()

	readFile := findTool(t, list, "read_file")
	_, err := readFile.Call(ctx, `{"path": "/no/such/file.txt"}`)
	require.Error(t, err)

	_, err = readFile.Call(ctx, `{}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request")
}
