package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	stderrors "errors"

	"contractbot/domain/dataset"
	"contractbot/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader turns CSV and XLSX content into typed tables
type DataReader struct {
	config  ReaderConfig
	coercer *TypeCoercer
}

// NewDataReader creates a reader with the given configuration
func NewDataReader(config ReaderConfig) *DataReader {
	if config.CSVMode == "" {
		config.CSVMode = ModeStrict
	}
	if config.XLSXMode == "" {
		config.XLSXMode = ModeLenient
	}
	return &DataReader{config: config, coercer: NewTypeCoercer()}
}

// Read parses one upload, dispatching on its filename suffix
func (r *DataReader) Read(upload dataset.Upload) (*dataset.Table, error) {
	format, ok := dataset.DetectFormat(upload.Filename)
	if !ok {
		return nil, errors.UnsupportedFile(upload.Filename)
	}

	switch format {
	case dataset.FormatCSV:
		return r.ReadCSV(upload.Filename, bytes.NewReader(upload.Content))
	default:
		return r.ReadXLSX(upload.Filename, bytes.NewReader(upload.Content))
	}
}

// ReadFile parses a spreadsheet from disk
func (r *DataReader) ReadFile(path string) (*dataset.Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.Read(dataset.Upload{Filename: filepath.Base(path), Content: content})
}

// ReadCSV parses CSV content. The first record is the header.
func (r *DataReader) ReadCSV(name string, src io.Reader) (*dataset.Table, error) {
	startTime := time.Now()

	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.ParseError(fmt.Sprintf("%s is empty", name), nil)
	}
	if err != nil {
		return nil, errors.ParseError(fmt.Sprintf("failed to read header of %s", name), err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	raw := &rawSheet{header: normalizeHeader(header)}
	var issues []dataset.ParseIssue
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			if stderrors.Is(err, csv.ErrFieldCount) {
				issues = append(issues, dataset.ParseIssue{
					Row:     line,
					Message: fmt.Sprintf("expected %d fields, found %d", len(raw.header), len(record)),
				})
				continue
			}
			return nil, errors.ParseError(fmt.Sprintf("failed to read %s", name), err)
		}
		if r.config.MaxRows > 0 && len(raw.records) >= r.config.MaxRows {
			log.Printf("[DataReader] %s truncated at %d rows", name, r.config.MaxRows)
			break
		}
		raw.records = append(raw.records, record)
		raw.lines = append(raw.lines, line)
	}

	if len(raw.records) == 0 {
		return nil, errors.ParseError(fmt.Sprintf("%s has a header but no data rows", name), nil)
	}

	log.Printf("[DataReader] CSV %s read in %.2fms (%d rows, %d skipped)",
		name, float64(time.Since(startTime).Nanoseconds())/1e6, len(raw.records), len(issues))

	table := r.buildTable(name, dataset.FormatCSV, raw, r.config.CSVMode)
	table.Issues = mergeIssues(issues, table.Issues)
	return table, nil
}

// ReadXLSX parses workbook content, reading the configured sheet or the first one
func (r *DataReader) ReadXLSX(name string, src io.Reader) (*dataset.Table, error) {
	startTime := time.Now()

	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.ParseError(fmt.Sprintf("failed to open workbook %s", name), err)
	}
	defer f.Close()
	log.Printf("[DataReader] Workbook %s opened in %.2fms", name, float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.ParseError(fmt.Sprintf("%s contains no sheets", name), nil)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.ParseError(fmt.Sprintf("failed to read sheet %s of %s", sheet, name), err)
	}

	// leading blank rows are not a header
	start := 0
	for start < len(rows) && isBlank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, errors.ParseError(fmt.Sprintf("sheet %s of %s is empty", sheet, name), nil)
	}

	raw := &rawSheet{sheet: sheet, header: rows[start]}
	for i := start + 1; i < len(rows); i++ {
		if isBlank(rows[i]) {
			continue
		}
		if r.config.MaxRows > 0 && len(raw.records) >= r.config.MaxRows {
			log.Printf("[DataReader] %s truncated at %d rows", name, r.config.MaxRows)
			break
		}
		raw.records = append(raw.records, rows[i])
		raw.lines = append(raw.lines, i+1)
	}

	if len(raw.records) == 0 {
		return nil, errors.ParseError(fmt.Sprintf("sheet %s of %s has a header but no data rows", sheet, name), nil)
	}

	// rows wider than the header get generated column names
	width := len(raw.header)
	for _, rec := range raw.records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	for len(raw.header) < width {
		raw.header = append(raw.header, "")
	}
	raw.header = normalizeHeader(raw.header)

	log.Printf("[DataReader] Sheet %s of %s read in %.2fms (%d rows)",
		sheet, name, float64(time.Since(startTime).Nanoseconds())/1e6, len(raw.records))

	return r.buildTable(name, dataset.FormatXLSX, raw, r.config.XLSXMode), nil
}

// buildTable infers column types and converts records into typed rows
func (r *DataReader) buildTable(name string, format dataset.Format, raw *rawSheet, mode CoercionMode) *dataset.Table {
	width := len(raw.header)
	columns := make([]dataset.Column, width)
	for col := 0; col < width; col++ {
		values := columnValues(raw.records, col)
		typ := r.coercer.InferColumn(values)
		if mode == ModeLenient && typ != dataset.TypeString && !r.coercer.Conforms(values, typ) {
			typ = dataset.TypeString
		}
		columns[col] = dataset.Column{Name: raw.header[col], Type: typ}
	}

	table := &dataset.Table{
		Name:    name,
		Format:  format,
		Source:  dataset.SourceUpload,
		Sheet:   raw.sheet,
		Columns: columns,
		Rows:    make([][]dataset.Cell, 0, len(raw.records)),
	}

	for i, rec := range raw.records {
		row := make([]dataset.Cell, width)
		valid := true
		for col := 0; col < width; col++ {
			value := ""
			if col < len(rec) {
				value = rec[col]
			}
			cell, err := r.coercer.Coerce(value, columns[col].Type)
			if err != nil {
				table.Issues = append(table.Issues, dataset.ParseIssue{
					Row:     raw.lines[i],
					Column:  columns[col].Name,
					Message: err.Error(),
				})
				valid = false
				break
			}
			row[col] = cell
		}
		if valid {
			table.Rows = append(table.Rows, row)
		}
	}

	log.Printf("[DataReader] %s typed (%d columns, %d rows, %d issues)",
		name, len(columns), len(table.Rows), len(table.Issues))

	return table
}

// normalizeHeader trims names, fills blanks with column_N and suffixes duplicates
func normalizeHeader(cells []string) []string {
	headers := make([]string, len(cells))
	seen := make(map[string]int, len(cells))
	for i, cell := range cells {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		base := name
		for seen[name] > 0 {
			seen[base]++
			name = fmt.Sprintf("%s_%d", base, seen[base])
		}
		seen[name]++
		headers[i] = name
	}
	return headers
}

func columnValues(records [][]string, col int) []string {
	values := make([]string, len(records))
	for i, rec := range records {
		if col < len(rec) {
			values[i] = rec[col]
		}
	}
	return values
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func mergeIssues(a, b []dataset.ParseIssue) []dataset.ParseIssue {
	if len(a) == 0 {
		return b
	}
	merged := append(append([]dataset.ParseIssue{}, a...), b...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Row < merged[j].Row })
	return merged
}
