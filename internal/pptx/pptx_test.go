package pptx_test

import (
	"path/filepath"
	"testing"

	"github.com/effective-security/agenttools/internal/pptx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")

	p := pptx.New()
	assert.Equal(t, 0, p.SlideCount())

	slide := p.AddSlide()
	slide.AddTextBox(pptx.TextBox{
		Text:   "Launch Plan",
		Left:   0.75,
		Top:    2,
		Width:  12,
		Height: 1.5,
		FontPt: 44,
	})
	slide.AddTextBox(pptx.TextBox{
		Text:   "line one\nline two",
		Left:   1,
		Top:    4,
		Width:  10,
		Height: 2,
	})
	p.AddSlide()

	require.NoError(t, p.SaveAs(path))

	got, err := pptx.Open(path)
	require.NoError(t, err)
	require.Equal(t, 2, got.SlideCount())

	boxes := got.Slides[0].Boxes
	require.Len(t, boxes, 2)
	assert.Equal(t, "Launch Plan", boxes[0].Text)
	assert.Equal(t, 44, boxes[0].FontPt)
	assert.InDelta(t, 0.75, boxes[0].Left, 0.001)
	assert.InDelta(t, 12, boxes[0].Width, 0.001)
	assert.Equal(t, "line one\nline two", boxes[1].Text)

	assert.Equal(t, []string{"Launch Plan", "line one\nline two"}, got.Slides[0].Text())
	assert.Empty(t, got.Slides[1].Boxes)
}

func Test_OpenMissing(t *testing.T) {
	_, err := pptx.Open("/no/such/deck.pptx")
	require.Error(t, err)
}
