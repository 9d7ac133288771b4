package dataset

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ColumnType is the inferred type of every non-null cell in a column
type ColumnType string

const (
	TypeInteger  ColumnType = "integer"
	TypeFloat    ColumnType = "float"
	TypeBoolean  ColumnType = "boolean"
	TypeDatetime ColumnType = "datetime"
	TypeString   ColumnType = "string"
)

// IsNumeric reports whether the column holds integers or floats
func (t ColumnType) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// Format identifies the file format a table was parsed from
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Source records where a table came from
type Source string

const (
	SourceUpload   Source = "upload"
	SourceFallback Source = "fallback"
)

// DetectFormat maps a filename suffix to a supported format
func DetectFormat(filename string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, true
	case ".xlsx":
		return FormatXLSX, true
	default:
		return "", false
	}
}

// Column describes a single named column
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Cell is a typed value. Value is nil for empty cells, otherwise one of
// int64, float64, bool, time.Time or string matching the column type.
type Cell struct {
	Value interface{}
	Raw   string
}

// NullCell returns an empty cell
func NullCell() Cell {
	return Cell{}
}

// IsNull reports whether the cell is empty
func (c Cell) IsNull() bool {
	return c.Value == nil
}

// Float64 returns the numeric value of integer and float cells
func (c Cell) Float64() (float64, bool) {
	switch v := c.Value.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// String renders the cell for display and prompts
func (c Cell) String() string {
	switch v := c.Value.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02 15:04:05")
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ParseIssue records a row that was skipped or a cell that could not be typed
type ParseIssue struct {
	Row     int    `json:"row"` // 1-based record number in the source file, header is row 1
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

func (p ParseIssue) String() string {
	if p.Column != "" {
		return fmt.Sprintf("row %d, column %q: %s", p.Row, p.Column, p.Message)
	}
	return fmt.Sprintf("row %d: %s", p.Row, p.Message)
}

// Table is an immutable in-memory dataset loaded from one file
type Table struct {
	Name    string       `json:"name"`
	Format  Format       `json:"format"`
	Source  Source       `json:"source"`
	Sheet   string       `json:"sheet,omitempty"`
	Columns []Column     `json:"columns"`
	Rows    [][]Cell     `json:"-"`
	Issues  []ParseIssue `json:"issues,omitempty"`
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnNames returns the header in column order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the index of the named column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// NumericValues returns the non-null values of a numeric column
func (t *Table) NumericValues(col int) []float64 {
	if col < 0 || col >= len(t.Columns) || !t.Columns[col].Type.IsNumeric() {
		return nil
	}
	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v, ok := row[col].Float64(); ok {
			values = append(values, v)
		}
	}
	return values
}

// NullCount returns the number of empty cells in a column
func (t *Table) NullCount(col int) int {
	count := 0
	for _, row := range t.Rows {
		if col < len(row) && row[col].IsNull() {
			count++
		}
	}
	return count
}

// StringRows renders up to limit rows as strings; limit <= 0 means all rows
func (t *Table) StringRows(limit int) [][]string {
	n := len(t.Rows)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(t.Rows[i]))
		for j, cell := range t.Rows[i] {
			row[j] = cell.String()
		}
		out[i] = row
	}
	return out
}

// Upload is one file received from the user, before parsing
type Upload struct {
	Filename string
	Content  []byte
}

// Size returns the content length in bytes
func (u Upload) Size() int64 {
	return int64(len(u.Content))
}

// FileError reports an upload that could not be turned into a table
type FileError struct {
	Filename string `json:"filename"`
	Err      error  `json:"-"`
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// IngestResult is the output of one ingest pass in upload order
type IngestResult struct {
	Tables       []*Table
	FileErrors   []FileError
	UsedFallback bool
}

// IssueCount returns the total number of row issues across tables
func (r *IngestResult) IssueCount() int {
	n := 0
	for _, t := range r.Tables {
		n += len(t.Issues)
	}
	return n
}
