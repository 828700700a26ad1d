// Package word provides document tools for creating and editing
// Word (.docx) files.
package word

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agenttools/tools"
	"github.com/fumiama/go-docx"
)

// PluginName is the namespace the tools are registered under.
const PluginName = "word"

type PathRequest struct {
	Path string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the Word document (.docx)."`
}

type AddHeadingRequest struct {
	Path  string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the Word document (.docx)."`
	Text  string `json:"text" validate:"required" jsonschema:"title=Text,description=Heading text to add."`
	Level *int   `json:"level,omitempty" validate:"omitempty,gte=0,lte=9" jsonschema:"title=Level,description=Heading level (0-9 where 0 is the title). Defaults to 1."`
}

type AddParagraphRequest struct {
	Path string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the Word document (.docx)."`
	Text string `json:"text" jsonschema:"title=Text,description=Paragraph text to add."`
}

type AddTableRequest struct {
	Path string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the Word document (.docx)."`
	Rows int    `json:"rows" validate:"required,gt=0" jsonschema:"title=Rows,description=Number of rows."`
	Cols int    `json:"cols" validate:"required,gt=0" jsonschema:"title=Columns,description=Number of columns."`
}

type SetTableCellRequest struct {
	Path       string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the Word document (.docx)."`
	TableIndex int    `json:"table_index" validate:"gte=0" jsonschema:"title=Table Index,description=Index of the table (0-based)."`
	Row        int    `json:"row" validate:"gte=0" jsonschema:"title=Row,description=Row index (0-based)."`
	Col        int    `json:"col" validate:"gte=0" jsonschema:"title=Column,description=Column index (0-based)."`
	Text       string `json:"text" jsonschema:"title=Text,description=Text to set in the cell."`
}

type AddBulletListRequest struct {
	Path  string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the Word document (.docx)."`
	Items string `json:"items" validate:"required" jsonschema:"title=Items,description=Comma-separated list items."`
}

type Result struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

type TableResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
}

type BulletListResult struct {
	Status    string `json:"status"`
	Path      string `json:"path"`
	ItemCount int    `json:"item_count"`
}

type ReadResult struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// New returns the Word document tool set.
func New() []tools.ITool {
	return []tools.ITool{
		tools.MustFunc("create_word_document",
			"Create a new blank Word document at the specified path.",
			runCreateDocument),
		tools.MustFunc("add_heading",
			"Add a heading to a Word document. Level 0 is the title, 1-9 are heading levels.",
			runAddHeading),
		tools.MustFunc("add_paragraph",
			"Add a paragraph to a Word document.",
			runAddParagraph),
		tools.MustFunc("add_table",
			"Add a table to a Word document with the specified rows and columns.",
			runAddTable),
		tools.MustFunc("set_table_cell",
			"Set text in a specific table cell. Table, row and column indexes are 0-based.",
			runSetTableCell),
		tools.MustFunc("add_page_break",
			"Add a page break to a Word document.",
			runAddPageBreak),
		tools.MustFunc("read_word_document",
			"Read all text content from a Word document.",
			runReadDocument),
		tools.MustFunc("add_bullet_list",
			"Add a bulleted list to a Word document from comma-separated items.",
			runAddBulletList),
	}
}

func runCreateDocument(_ context.Context, req *PathRequest) (*Result, error) {
	if err := ensureParent(req.Path); err != nil {
		return nil, err
	}
	doc := docx.New().WithDefaultTheme()
	if err := saveDocument(doc, req.Path); err != nil {
		return nil, err
	}
	return okResult(req.Path), nil
}

func runAddHeading(_ context.Context, req *AddHeadingRequest) (*Result, error) {
	doc, err := openDocument(req.Path)
	if err != nil {
		return nil, err
	}
	level := 1
	if req.Level != nil {
		level = *req.Level
	}
	if level == 0 {
		doc.AddParagraph().Style("Title").AddText(req.Text)
	} else {
		doc.AddParagraph().Style(fmt.Sprintf("Heading%d", level)).AddText(req.Text)
	}
	if err := saveDocument(doc, req.Path); err != nil {
		return nil, err
	}
	return okResult(req.Path), nil
}

func runAddParagraph(_ context.Context, req *AddParagraphRequest) (*Result, error) {
	doc, err := openDocument(req.Path)
	if err != nil {
		return nil, err
	}
	doc.AddParagraph().AddText(req.Text)
	if err := saveDocument(doc, req.Path); err != nil {
		return nil, err
	}
	return okResult(req.Path), nil
}

func runAddTable(_ context.Context, req *AddTableRequest) (*TableResult, error) {
	doc, err := openDocument(req.Path)
	if err != nil {
		return nil, err
	}
	doc.AddTable(req.Rows, req.Cols, 0, nil)
	if err := saveDocument(doc, req.Path); err != nil {
		return nil, err
	}
	return &TableResult{
		Status: "ok",
		Path:   absPath(req.Path),
		Rows:   req.Rows,
		Cols:   req.Cols,
	}, nil
}

func runSetTableCell(_ context.Context, req *SetTableCellRequest) (*Result, error) {
	doc, err := openDocument(req.Path)
	if err != nil {
		return nil, err
	}

	tables := documentTables(doc)
	if req.TableIndex >= len(tables) {
		return nil, errors.Errorf("table index %d out of range, document has %d tables",
			req.TableIndex, len(tables))
	}
	table := tables[req.TableIndex]
	if req.Row >= len(table.TableRows) {
		return nil, errors.Errorf("cell position (%d, %d) out of range", req.Row, req.Col)
	}
	row := table.TableRows[req.Row]
	if req.Col >= len(row.TableCells) {
		return nil, errors.Errorf("cell position (%d, %d) out of range", req.Row, req.Col)
	}
	row.TableCells[req.Col].AddParagraph().AddText(req.Text)

	if err := saveDocument(doc, req.Path); err != nil {
		return nil, err
	}
	return okResult(req.Path), nil
}

func runAddPageBreak(_ context.Context, req *PathRequest) (*Result, error) {
	doc, err := openDocument(req.Path)
	if err != nil {
		return nil, err
	}
	doc.AddParagraph().AddPageBreaks()
	if err := saveDocument(doc, req.Path); err != nil {
		return nil, err
	}
	return okResult(req.Path), nil
}

func runReadDocument(_ context.Context, req *PathRequest) (*ReadResult, error) {
	doc, err := openDocument(req.Path)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, item := range doc.Document.Body.Items {
		if para, ok := item.(*docx.Paragraph); ok {
			lines = append(lines, paragraphText(para))
		}
	}
	return &ReadResult{
		Status:  "ok",
		Path:    absPath(req.Path),
		Content: strings.Join(lines, "\n"),
	}, nil
}

func runAddBulletList(_ context.Context, req *AddBulletListRequest) (*BulletListResult, error) {
	doc, err := openDocument(req.Path)
	if err != nil {
		return nil, err
	}

	count := 0
	for _, item := range strings.Split(req.Items, ",") {
		if item = strings.TrimSpace(item); item == "" {
			continue
		}
		doc.AddParagraph().Style("ListBullet").AddText(item)
		count++
	}

	if err := saveDocument(doc, req.Path); err != nil {
		return nil, err
	}
	return &BulletListResult{
		Status:    "ok",
		Path:      absPath(req.Path),
		ItemCount: count,
	}, nil
}

func openDocument(path string) (*docx.Docx, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open document")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat document")
	}
	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse document")
	}
	return doc, nil
}

func saveDocument(doc *docx.Docx, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create document file")
	}
	defer f.Close()

	if _, err := doc.WriteTo(f); err != nil {
		return errors.Wrap(err, "failed to write document")
	}
	return nil
}

func documentTables(doc *docx.Docx) []*docx.Table {
	var tables []*docx.Table
	for _, item := range doc.Document.Body.Items {
		if table, ok := item.(*docx.Table); ok {
			tables = append(tables, table)
		}
	}
	return tables
}

func paragraphText(para *docx.Paragraph) string {
	var sb strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if text, ok := rc.(*docx.Text); ok {
				sb.WriteString(text.Text)
			}
		}
	}
	return sb.String()
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
