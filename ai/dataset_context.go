package ai

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"contractbot/domain/dataset"

	"github.com/montanaflynn/stats"
)

// ContextOptions bounds how much of each table goes into the prompt
type ContextOptions struct {
	MaxRows int // rows serialized per table, <= 0 means all
}

// ColumnSummary is the numeric profile of one column
type ColumnSummary struct {
	Min    float64
	Max    float64
	Mean   float64
	Median float64
}

// SummarizeColumn computes min/max/mean/median for a numeric column. ok is
// false for non-numeric or entirely null columns.
func SummarizeColumn(table *dataset.Table, col int) (ColumnSummary, bool) {
	data := stats.Float64Data(table.NumericValues(col))
	if len(data) == 0 {
		return ColumnSummary{}, false
	}

	var summary ColumnSummary
	var err error
	if summary.Min, err = data.Min(); err != nil {
		return ColumnSummary{}, false
	}
	if summary.Max, err = data.Max(); err != nil {
		return ColumnSummary{}, false
	}
	if summary.Mean, err = data.Mean(); err != nil {
		return ColumnSummary{}, false
	}
	if summary.Median, err = data.Median(); err != nil {
		return ColumnSummary{}, false
	}
	return summary, true
}

// CompileDatasetContext renders the tables as prompt text: schema, numeric
// summaries, null counts and the rows themselves as CSV
func CompileDatasetContext(tables []*dataset.Table, opts ContextOptions) string {
	var b strings.Builder

	for i, table := range tables {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("TABLE %d: %q (%d rows", i+1, table.Name, table.RowCount()))
		if table.Sheet != "" {
			b.WriteString(fmt.Sprintf(", sheet %q", table.Sheet))
		}
		b.WriteString(")\n")

		b.WriteString("COLUMNS:\n")
		for col, c := range table.Columns {
			b.WriteString(fmt.Sprintf("- %q %s", c.Name, c.Type))
			if nulls := table.NullCount(col); nulls > 0 {
				b.WriteString(fmt.Sprintf(", %d null", nulls))
			}
			if s, ok := SummarizeColumn(table, col); ok {
				b.WriteString(fmt.Sprintf(", min=%s max=%s mean=%s median=%s",
					formatStat(s.Min), formatStat(s.Max), formatStat(s.Mean), formatStat(s.Median)))
			}
			b.WriteString("\n")
		}

		rows := table.StringRows(opts.MaxRows)
		if len(rows) < table.RowCount() {
			b.WriteString(fmt.Sprintf("DATA (first %d of %d rows, CSV):\n", len(rows), table.RowCount()))
		} else {
			b.WriteString("DATA (CSV):\n")
		}
		b.WriteString(tableCSV(table.ColumnNames(), rows))
	}

	return b.String()
}

func tableCSV(header []string, rows [][]string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	_ = w.WriteAll(rows)
	return buf.String()
}

func formatStat(v float64) string {
	rounded, err := stats.Round(v, 4)
	if err != nil {
		rounded = v
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
