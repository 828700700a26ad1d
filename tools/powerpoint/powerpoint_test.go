package powerpoint_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/effective-security/agenttools/tools"
	"github.com/effective-security/agenttools/tools/powerpoint"
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

func Test_Presentation(t *testing.T) {
	list := powerpoint.New()
	require.Len(t, list, 7)

	path := filepath.Join(t.TempDir(), "deck.pptx")

	var res powerpoint.Result
	callTool(t, findTool(t, list, "create_presentation"),
		`{"path": "`+path+`"}`, &res)
	assert.Equal(t, "ok", res.Status)

	var slide powerpoint.SlideResult
	callTool(t, findTool(t, list, "add_title_slide"),
		`{"path": "`+path+`", "title": "Launch Plan", "subtitle": "Q3 2026"}`, &slide)
	assert.Equal(t, 0, slide.SlideIndex)

	var content powerpoint.ContentSlideResult
	callTool(t, findTool(t, list, "add_content_slide"),
		`{"path": "`+path+`", "title": "Goals", "content": "Ship, Measure, Iterate"}`, &content)
	assert.Equal(t, 1, content.SlideIndex)
	assert.Equal(t, 3, content.BulletCount)

	callTool(t, findTool(t, list, "add_blank_slide"),
		`{"path": "`+path+`"}`, &slide)
	assert.Equal(t, 2, slide.SlideIndex)

	callTool(t, findTool(t, list, "add_text_box"),
		`{"path": "`+path+`", "slide_index": 2, "text": "Notes", "left": 2, "top": 3}`, &slide)

	var count powerpoint.SlideCountResult
	callTool(t, findTool(t, list, "get_slide_count"),
		`{"path": "`+path+`"}`, &count)
	assert.Equal(t, 3, count.SlideCount)

	var text powerpoint.SlideTextResult
	callTool(t, findTool(t, list, "read_slide_text"),
		`{"path": "`+path+`", "slide_index": 0}`, &text)
	assert.Contains(t, text.Text, "Launch Plan")
	assert.Contains(t, text.Text, "Q3 2026")

	callTool(t, findTool(t, list, "read_slide_text"),
		`{"path": "`+path+`", "slide_index": 1}`, &text)
	assert.Contains(t, text.Text, "• Ship")
	assert.Contains(t, text.Text, "• Iterate")

	callTool(t, findTool(t, list, "read_slide_text"),
		`{"path": "`+path+`", "slide_index": 2}`, &text)
	assert.Equal(t, "Notes", text.Text)
}

func Test_SlideOutOfRange(t *testing.T) {
	list := powerpoint.New()
	path := filepath.Join(t.TempDir(), "empty.pptx")

	var res powerpoint.Result
	callTool(t, findTool(t, list, "create_presentation"),
		`{"path": "`+path+`"}`, &res)

	_, err := findTool(t, list, "read_slide_text").Call(context.Background(),
		`{"path": "`+path+`", "slide_index": 0}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
