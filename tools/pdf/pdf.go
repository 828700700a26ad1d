// Package pdf provides tools for creating and manipulating PDF files.
package pdf

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agenttools/tools"
	"github.com/go-pdf/fpdf"
	pdfreader "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PluginName is the namespace the tools are registered under.
const PluginName = "pdf"

type CreateRequest struct {
	Path string `json:"path" validate:"required" jsonschema:"title=Path,description=Path where the PDF will be created."`
	Text string `json:"text" validate:"required" jsonschema:"title=Text,description=Text content for the PDF. Newlines start new lines."`
}

type PathRequest struct {
	Path string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the PDF file."`
}

type MergeRequest struct {
	OutputPath string `json:"output_path" validate:"required" jsonschema:"title=Output Path,description=Path where the merged PDF will be saved."`
	InputPaths string `json:"input_paths" validate:"required" jsonschema:"title=Input Paths,description=Comma-separated paths of PDFs to merge."`
}

type SplitRequest struct {
	Path      string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the PDF file to split."`
	OutputDir string `json:"output_dir" validate:"required" jsonschema:"title=Output Dir,description=Directory where individual pages will be saved."`
}

type ExtractPageRequest struct {
	Path       string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the PDF file."`
	PageNumber int    `json:"page_number" validate:"required,gt=0" jsonschema:"title=Page Number,description=Page number to extract (1-based)."`
	OutputPath string `json:"output_path" validate:"required" jsonschema:"title=Output Path,description=Path where the extracted page will be saved."`
}

type RotateRequest struct {
	Path       string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the PDF file."`
	OutputPath string `json:"output_path" validate:"required" jsonschema:"title=Output Path,description=Path where the rotated PDF will be saved."`
	Degrees    int    `json:"degrees" validate:"required,oneof=90 180 270" jsonschema:"title=Degrees,description=Degrees to rotate clockwise: 90 180 or 270."`
}

type Result struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

type TextResult struct {
	Status    string `json:"status"`
	Path      string `json:"path"`
	PageCount int    `json:"page_count"`
	Text      string `json:"text"`
}

type MergeResult struct {
	Status     string `json:"status"`
	Path       string `json:"path"`
	InputCount int    `json:"input_count"`
}

type SplitResult struct {
	Status    string `json:"status"`
	Path      string `json:"path"`
	OutputDir string `json:"output_dir"`
	PageCount int    `json:"page_count"`
}

type InfoResult struct {
	Status    string            `json:"status"`
	Path      string            `json:"path"`
	PageCount int               `json:"page_count"`
	SizeBytes int64             `json:"size_bytes"`
	Version   string            `json:"version,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type PageResult struct {
	Status     string `json:"status"`
	Path       string `json:"path"`
	PageNumber int    `json:"page_number"`
}

type RotateResult struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	Degrees int    `json:"degrees"`
}

// New returns the PDF tool set.
func New() []tools.ITool {
	return []tools.ITool{
		tools.MustFunc("create_pdf",
			"Create a simple PDF document with text content.",
			runCreate),
		tools.MustFunc("extract_pdf_text",
			"Extract all text from a PDF file.",
			runExtractText),
		tools.MustFunc("merge_pdfs",
			"Merge multiple PDF files into a single PDF. Input paths are comma-separated.",
			runMerge),
		tools.MustFunc("split_pdf",
			"Split a PDF into individual single-page PDFs in a directory.",
			runSplit),
		tools.MustFunc("get_pdf_info",
			"Get information about a PDF file: page count, size and document metadata.",
			runInfo),
		tools.MustFunc("extract_pdf_page",
			"Extract a specific page (1-based) from a PDF to a new file.",
			runExtractPage),
		tools.MustFunc("rotate_pdf_pages",
			"Rotate all pages in a PDF by 90, 180 or 270 degrees.",
			runRotate),
	}
}

func runCreate(_ context.Context, req *CreateRequest) (*Result, error) {
	if err := ensureParent(req.Path); err != nil {
		return nil, err
	}

	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetFont("Helvetica", "", 12)
	doc.SetMargins(50, 50, 50)
	doc.SetAutoPageBreak(true, 50)
	doc.AddPage()
	for _, line := range strings.Split(req.Text, "\n") {
		doc.MultiCell(0, 15, line, "", "L", false)
	}

	if err := doc.OutputFileAndClose(req.Path); err != nil {
		return nil, errors.Wrap(err, "failed to create PDF")
	}
	return &Result{Status: "ok", Path: absPath(req.Path)}, nil
}

func runExtractText(_ context.Context, req *PathRequest) (*TextResult, error) {
	f, r, err := pdfreader.Open(req.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF")
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to extract text from page %d", i)
		}
		pages = append(pages, text)
	}

	return &TextResult{
		Status:    "ok",
		Path:      absPath(req.Path),
		PageCount: r.NumPage(),
		Text:      strings.Join(pages, "\n\n"),
	}, nil
}

func runMerge(_ context.Context, req *MergeRequest) (*MergeResult, error) {
	var inputs []string
	for _, p := range strings.Split(req.InputPaths, ",") {
		if p = strings.TrimSpace(p); p != "" {
			inputs = append(inputs, p)
		}
	}
	if len(inputs) == 0 {
		return nil, errors.New("input_paths must list at least one PDF")
	}
	if err := ensureParent(req.OutputPath); err != nil {
		return nil, err
	}

	if err := api.MergeCreateFile(inputs, req.OutputPath, false, nil); err != nil {
		return nil, errors.Wrap(err, "failed to merge PDFs")
	}
	return &MergeResult{
		Status:     "ok",
		Path:       absPath(req.OutputPath),
		InputCount: len(inputs),
	}, nil
}

func runSplit(_ context.Context, req *SplitRequest) (*SplitResult, error) {
	pageCount, err := api.PageCountFile(req.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read PDF")
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	if err := api.SplitFile(req.Path, req.OutputDir, 1, nil); err != nil {
		return nil, errors.Wrap(err, "failed to split PDF")
	}
	return &SplitResult{
		Status:    "ok",
		Path:      absPath(req.Path),
		OutputDir: absPath(req.OutputDir),
		PageCount: pageCount,
	}, nil
}

func runInfo(_ context.Context, req *PathRequest) (*InfoResult, error) {
	f, err := os.Open(req.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF")
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat PDF")
	}
	info, err := api.PDFInfo(f, req.Path, nil, false, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read PDF")
	}

	meta := map[string]string{
		"title":             info.Title,
		"author":            info.Author,
		"subject":           info.Subject,
		"creator":           info.Creator,
		"producer":          info.Producer,
		"creation_date":     info.CreationDate,
		"modification_date": info.ModificationDate,
	}
	for k, v := range meta {
		if v == "" {
			delete(meta, k)
		}
	}
	for k, v := range info.Properties {
		meta[k] = v
	}

	return &InfoResult{
		Status:    "ok",
		Path:      absPath(req.Path),
		PageCount: info.PageCount,
		SizeBytes: stat.Size(),
		Version:   info.Version,
		Metadata:  meta,
	}, nil
}

func runExtractPage(_ context.Context, req *ExtractPageRequest) (*PageResult, error) {
	pageCount, err := api.PageCountFile(req.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read PDF")
	}
	if req.PageNumber > pageCount {
		return nil, errors.Errorf("page number %d out of range (1-%d)", req.PageNumber, pageCount)
	}
	if err := ensureParent(req.OutputPath); err != nil {
		return nil, err
	}

	pages := []string{strconv.Itoa(req.PageNumber)}
	if err := api.TrimFile(req.Path, req.OutputPath, pages, nil); err != nil {
		return nil, errors.Wrapf(err, "failed to extract page %d", req.PageNumber)
	}
	return &PageResult{
		Status:     "ok",
		Path:       absPath(req.OutputPath),
		PageNumber: req.PageNumber,
	}, nil
}

func runRotate(_ context.Context, req *RotateRequest) (*RotateResult, error) {
	if err := ensureParent(req.OutputPath); err != nil {
		return nil, err
	}
	if err := api.RotateFile(req.Path, req.OutputPath, req.Degrees, nil, nil); err != nil {
		return nil, errors.Wrap(err, "failed to rotate PDF")
	}
	return &RotateResult{
		Status:  "ok",
		Path:    absPath(req.OutputPath),
		Degrees: req.Degrees,
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

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
