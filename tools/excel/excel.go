// Package excel provides spreadsheet tools for reading, writing, and
// manipulating workbooks.
package excel

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agenttools/tools"
	"github.com/xuri/excelize/v2"
)

// PluginName is the namespace the tools are registered under.
const PluginName = "excel"

// DefaultMaxRows caps read_sheet when max_rows is not provided.
const DefaultMaxRows = 1000

// DefaultMaxResults caps search_value when max_results is not provided.
const DefaultMaxResults = 100

type CreateWorkbookRequest struct {
	Path       string `json:"path" validate:"required" jsonschema:"title=Path,description=Path where the workbook will be saved (.xlsx)."`
	SheetNames string `json:"sheet_names,omitempty" jsonschema:"title=Sheet Names,description=Comma-separated list of sheet names. Default creates 'Sheet1'."`
}

type PathRequest struct {
	Path string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the workbook file."`
}

type ReadSheetRequest struct {
	Path      string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the workbook file."`
	SheetName string `json:"sheet_name,omitempty" jsonschema:"title=Sheet Name,description=Name of the sheet to read. Defaults to the first sheet."`
	CellRange string `json:"cell_range,omitempty" jsonschema:"title=Cell Range,description=Cell range to read like 'A1:D10'. Reads all rows if not specified."`
	MaxRows   int    `json:"max_rows,omitempty" validate:"gte=0" jsonschema:"title=Max Rows,description=Maximum number of rows to read. Default is 1000."`
}

type CellRequest struct {
	Path      string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the workbook file."`
	Cell      string `json:"cell" validate:"required" jsonschema:"title=Cell,description=Cell reference like 'A1' or 'B2'."`
	SheetName string `json:"sheet_name,omitempty" jsonschema:"title=Sheet Name,description=Name of the sheet. Defaults to the first sheet."`
}

type WriteCellRequest struct {
	Path      string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the workbook file."`
	Cell      string `json:"cell" validate:"required" jsonschema:"title=Cell,description=Cell reference like 'A1' or 'B2'."`
	Value     string `json:"value" jsonschema:"title=Value,description=Value to write. Numeric-looking values are stored as numbers."`
	SheetName string `json:"sheet_name,omitempty" jsonschema:"title=Sheet Name,description=Name of the sheet. Created if missing. Defaults to the first sheet."`
}

type WriteRowsRequest struct {
	Path      string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the workbook file."`
	DataJSON  string `json:"data_json" validate:"required" jsonschema:"title=Data,description=JSON string of a 2D array like '[[\"Name\"\\,\"Age\"]\\,[\"Alice\"\\,30]]'."`
	StartCell string `json:"start_cell,omitempty" jsonschema:"title=Start Cell,description=Starting cell for the data. Default is 'A1'."`
	SheetName string `json:"sheet_name,omitempty" jsonschema:"title=Sheet Name,description=Name of the sheet. Created if missing. Defaults to the first sheet."`
}

type SheetRequest struct {
	Path      string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the workbook file."`
	SheetName string `json:"sheet_name" validate:"required" jsonschema:"title=Sheet Name,description=Name of the sheet."`
}

type ClearRangeRequest struct {
	Path      string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the workbook file."`
	CellRange string `json:"cell_range" validate:"required" jsonschema:"title=Cell Range,description=Range to clear like 'A1:D10'."`
	SheetName string `json:"sheet_name,omitempty" jsonschema:"title=Sheet Name,description=Name of the sheet. Defaults to the first sheet."`
}

type SearchRequest struct {
	Path       string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the workbook file."`
	SearchTerm string `json:"search_term" validate:"required" jsonschema:"title=Search Term,description=Value to search for (case-insensitive partial match)."`
	SheetName  string `json:"sheet_name,omitempty" jsonschema:"title=Sheet Name,description=Name of the sheet. Defaults to the first sheet."`
	MaxResults int    `json:"max_results,omitempty" validate:"gte=0" jsonschema:"title=Max Results,description=Maximum number of results to return. Default is 100."`
}

type WorkbookResult struct {
	Status string   `json:"status"`
	Path   string   `json:"path"`
	Sheets []string `json:"sheets"`
}

type SheetDataResult struct {
	Status   string     `json:"status"`
	Path     string     `json:"path"`
	Sheet    string     `json:"sheet"`
	RowCount int        `json:"row_count"`
	Data     [][]string `json:"data"`
}

type CellResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	Sheet  string `json:"sheet"`
	Cell   string `json:"cell"`
	Value  string `json:"value"`
}

type WriteRowsResult struct {
	Status      string `json:"status"`
	Path        string `json:"path"`
	Sheet       string `json:"sheet"`
	RowsWritten int    `json:"rows_written"`
	StartCell   string `json:"start_cell"`
}

type SheetInfo struct {
	Name       string `json:"name"`
	Dimensions string `json:"dimensions"`
	MaxRow     int    `json:"max_row"`
	MaxColumn  int    `json:"max_column"`
}

type WorkbookInfoResult struct {
	Status string      `json:"status"`
	Path   string      `json:"path"`
	Sheets []SheetInfo `json:"sheets"`
}

type ClearRangeResult struct {
	Status       string `json:"status"`
	Path         string `json:"path"`
	Sheet        string `json:"sheet"`
	Range        string `json:"range"`
	CellsCleared int    `json:"cells_cleared"`
}

type Match struct {
	Cell  string `json:"cell"`
	Value string `json:"value"`
}

type SearchResult struct {
	Status     string  `json:"status"`
	Path       string  `json:"path"`
	Sheet      string  `json:"sheet"`
	SearchTerm string  `json:"search_term"`
	MatchCount int     `json:"match_count"`
	Matches    []Match `json:"matches"`
}

// New returns the spreadsheet tool set.
func New() []tools.ITool {
	return []tools.ITool{
		tools.MustFunc("create_workbook",
			"Create a new workbook with optional sheet names. Returns the path to the created file.",
			runCreateWorkbook),
		tools.MustFunc("list_sheets",
			"List all sheet names in a workbook.",
			runListSheets),
		tools.MustFunc("read_sheet",
			"Read data from a sheet. Returns cell data as a 2D list. Specify sheet name or uses first sheet. Optionally specify a range like 'A1:D10'.",
			runReadSheet),
		tools.MustFunc("read_cell",
			"Read a specific cell value from a sheet.",
			runReadCell),
		tools.MustFunc("write_cell",
			"Write a value to a specific cell in a sheet. Cell should be like 'A1', 'B2', etc.",
			runWriteCell),
		tools.MustFunc("write_rows",
			"Write multiple rows of data to a sheet starting at a specific cell. Data should be a JSON array of arrays.",
			runWriteRows),
		tools.MustFunc("add_sheet",
			"Add a new sheet to an existing workbook.",
			runAddSheet),
		tools.MustFunc("delete_sheet",
			"Delete a sheet from a workbook.",
			runDeleteSheet),
		tools.MustFunc("get_workbook_info",
			"Get information about a workbook: sheet names, dimensions, and row/column counts.",
			runWorkbookInfo),
		tools.MustFunc("clear_range",
			"Clear contents of a range of cells in a sheet. Range should be like 'A1:D10'.",
			runClearRange),
		tools.MustFunc("search_value",
			"Search for a value in a sheet and return matching cell locations.",
			runSearchValue),
	}
}

func runCreateWorkbook(_ context.Context, req *CreateWorkbookRequest) (*WorkbookResult, error) {
	if err := ensureParent(req.Path); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close()

	if names := splitTrim(req.SheetNames); len(names) > 0 {
		// rename the default sheet, then add the rest
		if err := f.SetSheetName(f.GetSheetList()[0], names[0]); err != nil {
			return nil, errors.Wrap(err, "failed to rename sheet")
		}
		for _, name := range names[1:] {
			if _, err := f.NewSheet(name); err != nil {
				return nil, errors.Wrapf(err, "failed to create sheet %q", name)
			}
		}
	}

	if err := f.SaveAs(req.Path); err != nil {
		return nil, errors.Wrap(err, "failed to save workbook")
	}
	return &WorkbookResult{
		Status: "ok",
		Path:   absPath(req.Path),
		Sheets: f.GetSheetList(),
	}, nil
}

func runListSheets(_ context.Context, req *PathRequest) (*WorkbookResult, error) {
	f, err := excelize.OpenFile(req.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer f.Close()

	return &WorkbookResult{
		Status: "ok",
		Path:   absPath(req.Path),
		Sheets: f.GetSheetList(),
	}, nil
}

func runReadSheet(_ context.Context, req *ReadSheetRequest) (*SheetDataResult, error) {
	f, err := excelize.OpenFile(req.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer f.Close()

	sheet, err := resolveSheet(f, req.SheetName)
	if err != nil {
		return nil, err
	}

	var data [][]string
	if req.CellRange != "" {
		data, err = readRange(f, sheet, req.CellRange)
		if err != nil {
			return nil, err
		}
	} else {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read sheet")
		}
		maxRows := req.MaxRows
		if maxRows <= 0 {
			maxRows = DefaultMaxRows
		}
		if len(rows) > maxRows {
			rows = rows[:maxRows]
		}
		data = rows
	}

	return &SheetDataResult{
		Status:   "ok",
		Path:     absPath(req.Path),
		Sheet:    sheet,
		RowCount: len(data),
		Data:     data,
	}, nil
}

func runReadCell(_ context.Context, req *CellRequest) (*CellResult, error) {
	f, err := excelize.OpenFile(req.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer f.Close()

	sheet, err := resolveSheet(f, req.SheetName)
	if err != nil {
		return nil, err
	}
	value, err := f.GetCellValue(sheet, req.Cell)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read cell %s", req.Cell)
	}
	return &CellResult{
		Status: "ok",
		Path:   absPath(req.Path),
		Sheet:  sheet,
		Cell:   req.Cell,
		Value:  value,
	}, nil
}

func runWriteCell(_ context.Context, req *WriteCellRequest) (*CellResult, error) {
	f, created, err := openOrCreate(req.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet, err := resolveOrCreateSheet(f, req.SheetName)
	if err != nil {
		return nil, err
	}

	if err := f.SetCellValue(sheet, req.Cell, coerceValue(req.Value)); err != nil {
		return nil, errors.Wrapf(err, "failed to write cell %s", req.Cell)
	}
	if err := saveWorkbook(f, req.Path, created); err != nil {
		return nil, err
	}
	return &CellResult{
		Status: "ok",
		Path:   absPath(req.Path),
		Sheet:  sheet,
		Cell:   req.Cell,
		Value:  req.Value,
	}, nil
}

func runWriteRows(_ context.Context, req *WriteRowsRequest) (*WriteRowsResult, error) {
	var data [][]any
	if err := json.Unmarshal([]byte(req.DataJSON), &data); err != nil {
		return nil, errors.WithMessage(err, "data_json must be a JSON array of arrays")
	}

	f, created, err := openOrCreate(req.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet, err := resolveOrCreateSheet(f, req.SheetName)
	if err != nil {
		return nil, err
	}

	startCell := req.StartCell
	if startCell == "" {
		startCell = "A1"
	}
	startCol, startRow, err := excelize.CellNameToCoordinates(startCell)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid start cell %q", startCell)
	}

	rowsWritten := 0
	for rowIdx, rowData := range data {
		for colIdx, value := range rowData {
			cell, err := excelize.CoordinatesToCellName(startCol+colIdx, startRow+rowIdx)
			if err != nil {
				return nil, errors.Wrap(err, "invalid cell coordinates")
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, errors.Wrapf(err, "failed to write cell %s", cell)
			}
		}
		rowsWritten++
	}

	if err := saveWorkbook(f, req.Path, created); err != nil {
		return nil, err
	}
	return &WriteRowsResult{
		Status:      "ok",
		Path:        absPath(req.Path),
		Sheet:       sheet,
		RowsWritten: rowsWritten,
		StartCell:   startCell,
	}, nil
}

func runAddSheet(_ context.Context, req *SheetRequest) (*WorkbookResult, error) {
	f, err := excelize.OpenFile(req.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer f.Close()

	if hasSheet(f, req.SheetName) {
		return nil, errors.Errorf("sheet %q already exists; existing sheets: %s",
			req.SheetName, strings.Join(f.GetSheetList(), ", "))
	}
	if _, err := f.NewSheet(req.SheetName); err != nil {
		return nil, errors.Wrapf(err, "failed to create sheet %q", req.SheetName)
	}
	if err := f.Save(); err != nil {
		return nil, errors.Wrap(err, "failed to save workbook")
	}
	return &WorkbookResult{
		Status: "ok",
		Path:   absPath(req.Path),
		Sheets: f.GetSheetList(),
	}, nil
}

func runDeleteSheet(_ context.Context, req *SheetRequest) (*WorkbookResult, error) {
	f, err := excelize.OpenFile(req.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer f.Close()

	if !hasSheet(f, req.SheetName) {
		return nil, sheetNotFound(f, req.SheetName)
	}
	if err := f.DeleteSheet(req.SheetName); err != nil {
		return nil, errors.Wrapf(err, "failed to delete sheet %q", req.SheetName)
	}
	if err := f.Save(); err != nil {
		return nil, errors.Wrap(err, "failed to save workbook")
	}
	return &WorkbookResult{
		Status: "ok",
		Path:   absPath(req.Path),
		Sheets: f.GetSheetList(),
	}, nil
}

func runWorkbookInfo(_ context.Context, req *PathRequest) (*WorkbookInfoResult, error) {
	f, err := excelize.OpenFile(req.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer f.Close()

	res := &WorkbookInfoResult{
		Status: "ok",
		Path:   absPath(req.Path),
	}
	for _, sheet := range f.GetSheetList() {
		dimensions, err := f.GetSheetDimension(sheet)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get dimensions of sheet %q", sheet)
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read sheet %q", sheet)
		}
		maxCol := 0
		for _, row := range rows {
			if len(row) > maxCol {
				maxCol = len(row)
			}
		}
		res.Sheets = append(res.Sheets, SheetInfo{
			Name:       sheet,
			Dimensions: dimensions,
			MaxRow:     len(rows),
			MaxColumn:  maxCol,
		})
	}
	return res, nil
}

func runClearRange(_ context.Context, req *ClearRangeRequest) (*ClearRangeResult, error) {
	f, err := excelize.OpenFile(req.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer f.Close()

	sheet, err := resolveSheet(f, req.SheetName)
	if err != nil {
		return nil, err
	}

	startCol, startRow, endCol, endRow, err := parseRange(req.CellRange)
	if err != nil {
		return nil, err
	}

	cleared := 0
	for row := startRow; row <= endRow; row++ {
		for col := startCol; col <= endCol; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return nil, errors.Wrap(err, "invalid cell coordinates")
			}
			if err := f.SetCellValue(sheet, cell, nil); err != nil {
				return nil, errors.Wrapf(err, "failed to clear cell %s", cell)
			}
			cleared++
		}
	}

	if err := f.Save(); err != nil {
		return nil, errors.Wrap(err, "failed to save workbook")
	}
	return &ClearRangeResult{
		Status:       "ok",
		Path:         absPath(req.Path),
		Sheet:        sheet,
		Range:        req.CellRange,
		CellsCleared: cleared,
	}, nil
}

func runSearchValue(_ context.Context, req *SearchRequest) (*SearchResult, error) {
	f, err := excelize.OpenFile(req.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer f.Close()

	sheet, err := resolveSheet(f, req.SheetName)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read sheet")
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	searchLower := strings.ToLower(req.SearchTerm)

	var matches []Match
scan:
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			if value == "" || !strings.Contains(strings.ToLower(value), searchLower) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, errors.Wrap(err, "invalid cell coordinates")
			}
			matches = append(matches, Match{Cell: cell, Value: value})
			if len(matches) >= maxResults {
				break scan
			}
		}
	}

	return &SearchResult{
		Status:     "ok",
		Path:       absPath(req.Path),
		Sheet:      sheet,
		SearchTerm: req.SearchTerm,
		MatchCount: len(matches),
		Matches:    matches,
	}, nil
}

func hasSheet(f *excelize.File, name string) bool {
	for _, s := range f.GetSheetList() {
		if s == name {
			return true
		}
	}
	return false
}

func sheetNotFound(f *excelize.File, name string) error {
	return errors.Errorf("sheet %q not found; available sheets: %s",
		name, strings.Join(f.GetSheetList(), ", "))
}

func resolveSheet(f *excelize.File, name string) (string, error) {
	if name == "" {
		return f.GetSheetList()[0], nil
	}
	if !hasSheet(f, name) {
		return "", sheetNotFound(f, name)
	}
	return name, nil
}

func resolveOrCreateSheet(f *excelize.File, name string) (string, error) {
	if name == "" {
		return f.GetSheetList()[0], nil
	}
	if !hasSheet(f, name) {
		if _, err := f.NewSheet(name); err != nil {
			return "", errors.Wrapf(err, "failed to create sheet %q", name)
		}
	}
	return name, nil
}

func openOrCreate(path string) (f *excelize.File, created bool, err error) {
	if err := ensureParent(path); err != nil {
		return nil, false, err
	}
	f, err = excelize.OpenFile(path)
	if err == nil {
		return f, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, errors.Wrap(err, "failed to open workbook")
	}
	return excelize.NewFile(), true, nil
}

func saveWorkbook(f *excelize.File, path string, created bool) error {
	var err error
	if created {
		err = f.SaveAs(path)
	} else {
		err = f.Save()
	}
	return errors.Wrap(err, "failed to save workbook")
}

func readRange(f *excelize.File, sheet, cellRange string) ([][]string, error) {
	startCol, startRow, endCol, endRow, err := parseRange(cellRange)
	if err != nil {
		return nil, err
	}
	var data [][]string
	for row := startRow; row <= endRow; row++ {
		var rowData []string
		for col := startCol; col <= endCol; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return nil, errors.Wrap(err, "invalid cell coordinates")
			}
			value, err := f.GetCellValue(sheet, cell)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to read cell %s", cell)
			}
			rowData = append(rowData, value)
		}
		data = append(data, rowData)
	}
	return data, nil
}

func parseRange(cellRange string) (startCol, startRow, endCol, endRow int, err error) {
	start, end, ok := strings.Cut(cellRange, ":")
	if !ok {
		return 0, 0, 0, 0, errors.Errorf("invalid cell range %q, expected a range like 'A1:D10'", cellRange)
	}
	startCol, startRow, err = excelize.CellNameToCoordinates(start)
	if err != nil {
		return 0, 0, 0, 0, errors.Wrapf(err, "invalid cell range %q", cellRange)
	}
	endCol, endRow, err = excelize.CellNameToCoordinates(end)
	if err != nil {
		return 0, 0, 0, 0, errors.Wrapf(err, "invalid cell range %q", cellRange)
	}
	if endCol < startCol || endRow < startRow {
		return 0, 0, 0, 0, errors.Errorf("invalid cell range %q, end before start", cellRange)
	}
	return startCol, startRow, endCol, endRow, nil
}

// coerceValue stores numeric-looking strings as numbers,
// so sheets written by the model are not full of text cells.
func coerceValue(value string) any {
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

func splitTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
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
