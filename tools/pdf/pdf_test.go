package pdf_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/effective-security/agenttools/tools"
	"github.com/effective-security/agenttools/tools/pdf"
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

func createPDF(t *testing.T, list []tools.ITool, path, text string) {
	t.Helper()
	var res pdf.Result
	callTool(t, findTool(t, list, "create_pdf"),
		`{"path": "`+path+`", "text": "`+text+`"}`, &res)
	require.Equal(t, "ok", res.Status)
}

func Test_CreateAndInfo(t *testing.T) {
	list := pdf.New()
	require.Len(t, list, 7)

	path := filepath.Join(t.TempDir(), "doc.pdf")
	createPDF(t, list, path, "Hello PDF")

	var info pdf.InfoResult
	callTool(t, findTool(t, list, "get_pdf_info"),
		`{"path": "`+path+`"}`, &info)
	assert.Equal(t, 1, info.PageCount)
	assert.Positive(t, info.SizeBytes)
	assert.NotEmpty(t, info.Version)
	require.NotEmpty(t, info.Metadata)
	assert.Contains(t, info.Metadata["producer"], "FPDF")
	assert.NotEmpty(t, info.Metadata["creation_date"])

	var text pdf.TextResult
	callTool(t, findTool(t, list, "extract_pdf_text"),
		`{"path": "`+path+`"}`, &text)
	assert.Equal(t, 1, text.PageCount)
	assert.Contains(t, text.Text, "Hello")
}

func Test_MergeSplitExtract(t *testing.T) {
	list := pdf.New()
	tmp := t.TempDir()

	first := filepath.Join(tmp, "first.pdf")
	second := filepath.Join(tmp, "second.pdf")
	createPDF(t, list, first, "page one")
	createPDF(t, list, second, "page two")

	merged := filepath.Join(tmp, "merged.pdf")
	var mergeRes pdf.MergeResult
	callTool(t, findTool(t, list, "merge_pdfs"),
		`{"output_path": "`+merged+`", "input_paths": "`+first+`, `+second+`"}`, &mergeRes)
	assert.Equal(t, 2, mergeRes.InputCount)

	var info pdf.InfoResult
	callTool(t, findTool(t, list, "get_pdf_info"),
		`{"path": "`+merged+`"}`, &info)
	assert.Equal(t, 2, info.PageCount)

	splitDir := filepath.Join(tmp, "pages")
	var splitRes pdf.SplitResult
	callTool(t, findTool(t, list, "split_pdf"),
		`{"path": "`+merged+`", "output_dir": "`+splitDir+`"}`, &splitRes)
	assert.Equal(t, 2, splitRes.PageCount)
	assert.DirExists(t, splitDir)

	page := filepath.Join(tmp, "page2.pdf")
	var pageRes pdf.PageResult
	callTool(t, findTool(t, list, "extract_pdf_page"),
		`{"path": "`+merged+`", "page_number": 2, "output_path": "`+page+`"}`, &pageRes)
	assert.Equal(t, 2, pageRes.PageNumber)

	callTool(t, findTool(t, list, "get_pdf_info"),
		`{"path": "`+page+`"}`, &info)
	assert.Equal(t, 1, info.PageCount)

	_, err := findTool(t, list, "extract_pdf_page").Call(context.Background(),
		`{"path": "`+merged+`", "page_number": 9, "output_path": "`+page+`"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func Test_Rotate(t *testing.T) {
	list := pdf.New()
	tmp := t.TempDir()

	src := filepath.Join(tmp, "src.pdf")
	createPDF(t, list, src, "rotate me")

	rotated := filepath.Join(tmp, "rotated.pdf")
	var res pdf.RotateResult
	callTool(t, findTool(t, list, "rotate_pdf_pages"),
		`{"path": "`+src+`", "output_path": "`+rotated+`", "degrees": 90}`, &res)
	assert.Equal(t, 90, res.Degrees)
	assert.FileExists(t, rotated)

	// only quarter turns are allowed
	_, err := findTool(t, list, "rotate_pdf_pages").Call(context.Background(),
		`{"path": "`+src+`", "output_path": "`+rotated+`", "degrees": 45}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request")
}
