// Package csvkit provides tabular data tools for reading, filtering,
// sorting and converting CSV files.
package csvkit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agenttools/tools"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// PluginName is the namespace the tools are registered under.
const PluginName = "csv"

// DefaultMaxRows caps read_csv when max_rows is not provided.
const DefaultMaxRows = 100

type ReadRequest struct {
	Path    string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the CSV file."`
	MaxRows int    `json:"max_rows,omitempty" validate:"gte=0" jsonschema:"title=Max Rows,description=Maximum number of rows to return. Default is 100."`
}

type PathRequest struct {
	Path string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the CSV file."`
}

type FilterRequest struct {
	Path       string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the CSV file."`
	Column     string `json:"column" validate:"required" jsonschema:"title=Column,description=Column name to filter on."`
	Value      string `json:"value" validate:"required" jsonschema:"title=Value,description=Value to filter for (exact match)."`
	OutputPath string `json:"output_path" validate:"required" jsonschema:"title=Output Path,description=Path where the filtered CSV will be saved."`
}

type SortRequest struct {
	Path       string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the CSV file."`
	Column     string `json:"column" validate:"required" jsonschema:"title=Column,description=Column name to sort by."`
	OutputPath string `json:"output_path" validate:"required" jsonschema:"title=Output Path,description=Path where the sorted CSV will be saved."`
	Descending bool   `json:"descending,omitempty" jsonschema:"title=Descending,description=Sort in descending order. Default is ascending."`
}

type ColumnStatsRequest struct {
	Path   string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the CSV file."`
	Column string `json:"column" validate:"required" jsonschema:"title=Column,description=Column name to analyze."`
}

type MergeRequest struct {
	OutputPath string `json:"output_path" validate:"required" jsonschema:"title=Output Path,description=Path where the merged CSV will be saved."`
	InputPaths string `json:"input_paths" validate:"required" jsonschema:"title=Input Paths,description=Comma-separated paths of CSV files with the same columns."`
}

type SelectColumnsRequest struct {
	Path       string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the CSV file."`
	Columns    string `json:"columns" validate:"required" jsonschema:"title=Columns,description=Comma-separated column names to select."`
	OutputPath string `json:"output_path" validate:"required" jsonschema:"title=Output Path,description=Path where the selected columns will be saved."`
}

type ConvertRequest struct {
	Path       string `json:"path" validate:"required" jsonschema:"title=Path,description=Path to the CSV file."`
	OutputPath string `json:"output_path" validate:"required" jsonschema:"title=Output Path,description=Path where the JSON file will be saved."`
}

type ReadResult struct {
	Status   string `json:"status"`
	Path     string `json:"path"`
	RowCount int    `json:"row_count"`
	Content  string `json:"content"`
}

type InfoResult struct {
	Status      string            `json:"status"`
	Path        string            `json:"path"`
	RowCount    int               `json:"row_count"`
	ColumnCount int               `json:"column_count"`
	Columns     []string          `json:"columns"`
	Types       map[string]string `json:"types"`
}

type WriteResult struct {
	Status   string `json:"status"`
	Path     string `json:"path"`
	RowCount int    `json:"row_count"`
}

type StatsResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	Column string `json:"column"`
	Stats  string `json:"stats"`
}

type MergeResult struct {
	Status     string `json:"status"`
	Path       string `json:"path"`
	InputCount int    `json:"input_count"`
	RowCount   int    `json:"row_count"`
}

// New returns the CSV tool set.
func New() []tools.ITool {
	return []tools.ITool{
		tools.MustFunc("read_csv",
			"Read a CSV file and return its contents as a formatted table.",
			runRead),
		tools.MustFunc("get_csv_info",
			"Get information about a CSV file: columns, row count and column types.",
			runInfo),
		tools.MustFunc("filter_csv",
			"Filter CSV rows where a column equals a value and save to a new file.",
			runFilter),
		tools.MustFunc("sort_csv",
			"Sort a CSV by a column and save to a new file.",
			runSort),
		tools.MustFunc("get_column_stats",
			"Get a statistical summary of a column in a CSV.",
			runColumnStats),
		tools.MustFunc("merge_csv_files",
			"Merge multiple CSV files with the same columns into one.",
			runMerge),
		tools.MustFunc("select_csv_columns",
			"Select specific columns from a CSV and save to a new file.",
			runSelectColumns),
		tools.MustFunc("convert_csv_to_json",
			"Convert a CSV file to a JSON array of records.",
			runConvertToJSON),
	}
}

func runRead(_ context.Context, req *ReadRequest) (*ReadResult, error) {
	df, err := readCSV(req.Path)
	if err != nil {
		return nil, err
	}

	maxRows := req.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	if df.Nrow() > maxRows {
		indices := make([]int, maxRows)
		for i := range indices {
			indices[i] = i
		}
		df = df.Subset(indices)
	}

	return &ReadResult{
		Status:   "ok",
		Path:     absPath(req.Path),
		RowCount: df.Nrow(),
		Content:  df.String(),
	}, nil
}

func runInfo(_ context.Context, req *PathRequest) (*InfoResult, error) {
	df, err := readCSV(req.Path)
	if err != nil {
		return nil, err
	}

	names := df.Names()
	types := df.Types()
	typeMap := make(map[string]string, len(names))
	for i, name := range names {
		typeMap[name] = string(types[i])
	}

	return &InfoResult{
		Status:      "ok",
		Path:        absPath(req.Path),
		RowCount:    df.Nrow(),
		ColumnCount: df.Ncol(),
		Columns:     names,
		Types:       typeMap,
	}, nil
}

func runFilter(_ context.Context, req *FilterRequest) (*WriteResult, error) {
	df, err := readCSV(req.Path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(df, req.Column); err != nil {
		return nil, err
	}

	filtered := df.Filter(dataframe.F{
		Colname:    req.Column,
		Comparator: series.Eq,
		Comparando: req.Value,
	})
	if filtered.Err != nil {
		return nil, errors.Wrap(filtered.Err, "failed to filter CSV")
	}

	if err := writeCSV(filtered, req.OutputPath); err != nil {
		return nil, err
	}
	return &WriteResult{
		Status:   "ok",
		Path:     absPath(req.OutputPath),
		RowCount: filtered.Nrow(),
	}, nil
}

func runSort(_ context.Context, req *SortRequest) (*WriteResult, error) {
	df, err := readCSV(req.Path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(df, req.Column); err != nil {
		return nil, err
	}

	order := dataframe.Sort(req.Column)
	if req.Descending {
		order = dataframe.RevSort(req.Column)
	}
	sorted := df.Arrange(order)
	if sorted.Err != nil {
		return nil, errors.Wrap(sorted.Err, "failed to sort CSV")
	}

	if err := writeCSV(sorted, req.OutputPath); err != nil {
		return nil, err
	}
	return &WriteResult{
		Status:   "ok",
		Path:     absPath(req.OutputPath),
		RowCount: sorted.Nrow(),
	}, nil
}

func runColumnStats(_ context.Context, req *ColumnStatsRequest) (*StatsResult, error) {
	df, err := readCSV(req.Path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(df, req.Column); err != nil {
		return nil, err
	}

	stats := df.Select(req.Column).Describe()
	if stats.Err != nil {
		return nil, errors.Wrap(stats.Err, "failed to describe column")
	}
	return &StatsResult{
		Status: "ok",
		Path:   absPath(req.Path),
		Column: req.Column,
		Stats:  stats.String(),
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
		return nil, errors.New("input_paths must list at least one CSV")
	}

	merged, err := readCSV(inputs[0])
	if err != nil {
		return nil, err
	}
	for _, path := range inputs[1:] {
		df, err := readCSV(path)
		if err != nil {
			return nil, err
		}
		merged = merged.RBind(df)
		if merged.Err != nil {
			return nil, errors.Wrapf(merged.Err, "failed to merge %s", path)
		}
	}

	if err := writeCSV(merged, req.OutputPath); err != nil {
		return nil, err
	}
	return &MergeResult{
		Status:     "ok",
		Path:       absPath(req.OutputPath),
		InputCount: len(inputs),
		RowCount:   merged.Nrow(),
	}, nil
}

func runSelectColumns(_ context.Context, req *SelectColumnsRequest) (*WriteResult, error) {
	df, err := readCSV(req.Path)
	if err != nil {
		return nil, err
	}

	var columns []string
	for _, c := range strings.Split(req.Columns, ",") {
		if c = strings.TrimSpace(c); c != "" {
			columns = append(columns, c)
		}
	}
	if err := requireColumns(df, columns...); err != nil {
		return nil, err
	}

	selected := df.Select(columns)
	if selected.Err != nil {
		return nil, errors.Wrap(selected.Err, "failed to select columns")
	}

	if err := writeCSV(selected, req.OutputPath); err != nil {
		return nil, err
	}
	return &WriteResult{
		Status:   "ok",
		Path:     absPath(req.OutputPath),
		RowCount: selected.Nrow(),
	}, nil
}

func runConvertToJSON(_ context.Context, req *ConvertRequest) (*WriteResult, error) {
	df, err := readCSV(req.Path)
	if err != nil {
		return nil, err
	}
	if err := ensureParent(req.OutputPath); err != nil {
		return nil, err
	}

	f, err := os.Create(req.OutputPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create JSON file")
	}
	defer f.Close()

	if err := df.WriteJSON(f); err != nil {
		return nil, errors.Wrap(err, "failed to write JSON")
	}
	return &WriteResult{
		Status:   "ok",
		Path:     absPath(req.OutputPath),
		RowCount: df.Nrow(),
	}, nil
}

func readCSV(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrap(err, "failed to open CSV")
	}
	defer f.Close()

	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(df.Err, "failed to parse CSV")
	}
	return df, nil
}

func writeCSV(df dataframe.DataFrame, path string) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create CSV file")
	}
	defer f.Close()

	return errors.Wrap(df.WriteCSV(f), "failed to write CSV")
}

func requireColumns(df dataframe.DataFrame, columns ...string) error {
	names := df.Names()
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	var missing []string
	for _, c := range columns {
		if !have[c] {
			missing = append(missing, fmt.Sprintf("%q", c))
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("columns not found: %s", strings.Join(missing, ", "))
	}
	return nil
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
