// Package powerpoint provides presentation tools for creating and
// editing PowerPoint (.pptx) files.
package powerpoint

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agenttools/internal/pptx"
	"github.com/effective-security/agenttools/tools"
)

// PluginName is the namespace the tools are registered under.
const PluginName = "powerpoint"

type PathRequest struct {
	Path string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the presentation file (.pptx)."`
}

type AddTitleSlideRequest struct {
	Path     string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the presentation file (.pptx)."`
	Title    string `json:"title" validate:"required" jsonschema:"title=Title,description=Slide title text."`
	Subtitle string `json:"subtitle,omitempty" jsonschema:"title=Subtitle,description=Slide subtitle text."`
}

type AddContentSlideRequest struct {
	Path    string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the presentation file (.pptx)."`
	Title   string `json:"title" validate:"required" jsonschema:"title=Title,description=Slide title text."`
	Content string `json:"content" validate:"required" jsonschema:"title=Content,description=Comma-separated bullet points."`
}

type AddTextBoxRequest struct {
	Path       string  `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the presentation file (.pptx)."`
	SlideIndex int     `json:"slide_index" validate:"gte=0" jsonschema:"title=Slide Index,description=Index of the slide (0-based)."`
	Text       string  `json:"text" validate:"required" jsonschema:"title=Text,description=Text content for the text box."`
	Left       float64 `json:"left,omitempty" validate:"gte=0" jsonschema:"title=Left,description=Left position in inches. Default is 1."`
	Top        float64 `json:"top,omitempty" validate:"gte=0" jsonschema:"title=Top,description=Top position in inches. Default is 1."`
	Width      float64 `json:"width,omitempty" validate:"gte=0" jsonschema:"title=Width,description=Width in inches. Default is 5."`
	Height     float64 `json:"height,omitempty" validate:"gte=0" jsonschema:"title=Height,description=Height in inches. Default is 1."`
}

type SlideIndexRequest struct {
	Path       string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the presentation file (.pptx)."`
	SlideIndex int    `json:"slide_index" validate:"gte=0" jsonschema:"title=Slide Index,description=Index of the slide (0-based)."`
}

type Result struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

type SlideResult struct {
	Status     string `json:"status"`
	Path       string `json:"path"`
	SlideIndex int    `json:"slide_index"`
}

type ContentSlideResult struct {
	Status      string `json:"status"`
	Path        string `json:"path"`
	SlideIndex  int    `json:"slide_index"`
	BulletCount int    `json:"bullet_count"`
}

type SlideCountResult struct {
	Status     string `json:"status"`
	Path       string `json:"path"`
	SlideCount int    `json:"slide_count"`
}

type SlideTextResult struct {
	Status     string `json:"status"`
	Path       string `json:"path"`
	SlideIndex int    `json:"slide_index"`
	Text       string `json:"text"`
}

// New returns the presentation tool set.
func New() []tools.ITool {
	return []tools.ITool{
		tools.MustFunc("create_presentation",
			"Create a new blank PowerPoint presentation at the specified path.",
			runCreatePresentation),
		tools.MustFunc("add_title_slide",
			"Add a title slide with a title and optional subtitle.",
			runAddTitleSlide),
		tools.MustFunc("add_content_slide",
			"Add a content slide with a title and comma-separated bullet points.",
			runAddContentSlide),
		tools.MustFunc("add_blank_slide",
			"Add a blank slide to a presentation.",
			runAddBlankSlide),
		tools.MustFunc("add_text_box",
			"Add a text box to a specific slide at the given position (inches).",
			runAddTextBox),
		tools.MustFunc("get_slide_count",
			"Get the number of slides in a presentation.",
			runSlideCount),
		tools.MustFunc("read_slide_text",
			"Read all text from a specific slide.",
			runReadSlideText),
	}
}

func runCreatePresentation(_ context.Context, req *PathRequest) (*Result, error) {
	if err := ensureParent(req.Path); err != nil {
		return nil, err
	}
	p := pptx.New()
	if err := p.SaveAs(req.Path); err != nil {
		return nil, err
	}
	return &Result{Status: "ok", Path: absPath(req.Path)}, nil
}

func runAddTitleSlide(_ context.Context, req *AddTitleSlideRequest) (*SlideResult, error) {
	p, err := pptx.Open(req.Path)
	if err != nil {
		return nil, err
	}

	slide := p.AddSlide()
	slide.AddTextBox(pptx.TextBox{
		Text:   req.Title,
		Left:   0.75,
		Top:    2.0,
		Width:  12.0,
		Height: 1.5,
		FontPt: 44,
	})
	if req.Subtitle != "" {
		slide.AddTextBox(pptx.TextBox{
			Text:   req.Subtitle,
			Left:   0.75,
			Top:    3.75,
			Width:  12.0,
			Height: 1.0,
			FontPt: 24,
		})
	}

	if err := p.SaveAs(req.Path); err != nil {
		return nil, err
	}
	return &SlideResult{
		Status:     "ok",
		Path:       absPath(req.Path),
		SlideIndex: p.SlideCount() - 1,
	}, nil
}

func runAddContentSlide(_ context.Context, req *AddContentSlideRequest) (*ContentSlideResult, error) {
	p, err := pptx.Open(req.Path)
	if err != nil {
		return nil, err
	}

	var bullets []string
	for _, item := range strings.Split(req.Content, ",") {
		if item = strings.TrimSpace(item); item != "" {
			bullets = append(bullets, "• "+item)
		}
	}

	slide := p.AddSlide()
	slide.AddTextBox(pptx.TextBox{
		Text:   req.Title,
		Left:   0.75,
		Top:    0.5,
		Width:  12.0,
		Height: 1.0,
		FontPt: 36,
	})
	slide.AddTextBox(pptx.TextBox{
		Text:   strings.Join(bullets, "\n"),
		Left:   1.0,
		Top:    1.75,
		Width:  11.5,
		Height: 5.0,
		FontPt: 20,
	})

	if err := p.SaveAs(req.Path); err != nil {
		return nil, err
	}
	return &ContentSlideResult{
		Status:      "ok",
		Path:        absPath(req.Path),
		SlideIndex:  p.SlideCount() - 1,
		BulletCount: len(bullets),
	}, nil
}

func runAddBlankSlide(_ context.Context, req *PathRequest) (*SlideResult, error) {
	p, err := pptx.Open(req.Path)
	if err != nil {
		return nil, err
	}
	p.AddSlide()
	if err := p.SaveAs(req.Path); err != nil {
		return nil, err
	}
	return &SlideResult{
		Status:     "ok",
		Path:       absPath(req.Path),
		SlideIndex: p.SlideCount() - 1,
	}, nil
}

func runAddTextBox(_ context.Context, req *AddTextBoxRequest) (*SlideResult, error) {
	p, err := pptx.Open(req.Path)
	if err != nil {
		return nil, err
	}
	if req.SlideIndex >= p.SlideCount() {
		return nil, slideOutOfRange(req.SlideIndex, p.SlideCount())
	}

	box := pptx.TextBox{
		Text:   req.Text,
		Left:   defaultDim(req.Left, 1.0),
		Top:    defaultDim(req.Top, 1.0),
		Width:  defaultDim(req.Width, 5.0),
		Height: defaultDim(req.Height, 1.0),
	}
	p.Slides[req.SlideIndex].AddTextBox(box)

	if err := p.SaveAs(req.Path); err != nil {
		return nil, err
	}
	return &SlideResult{
		Status:     "ok",
		Path:       absPath(req.Path),
		SlideIndex: req.SlideIndex,
	}, nil
}

func runSlideCount(_ context.Context, req *PathRequest) (*SlideCountResult, error) {
	p, err := pptx.Open(req.Path)
	if err != nil {
		return nil, err
	}
	return &SlideCountResult{
		Status:     "ok",
		Path:       absPath(req.Path),
		SlideCount: p.SlideCount(),
	}, nil
}

func runReadSlideText(_ context.Context, req *SlideIndexRequest) (*SlideTextResult, error) {
	p, err := pptx.Open(req.Path)
	if err != nil {
		return nil, err
	}
	if req.SlideIndex >= p.SlideCount() {
		return nil, slideOutOfRange(req.SlideIndex, p.SlideCount())
	}
	return &SlideTextResult{
		Status:     "ok",
		Path:       absPath(req.Path),
		SlideIndex: req.SlideIndex,
		Text:       strings.Join(p.Slides[req.SlideIndex].Text(), "\n"),
	}, nil
}

func slideOutOfRange(index, count int) error {
	return errors.Errorf("slide index %d out of range, presentation has %d slides", index, count)
}

func defaultDim(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
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

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
