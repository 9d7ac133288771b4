package ai

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"contractbot/domain/query"

	"github.com/tidwall/gjson"
)

// ParseAnswer turns a model reply into an answer. A reply that is not a JSON
// answer envelope becomes a text answer holding the reply itself.
func ParseAnswer(reply string) *query.Answer {
	raw := strings.TrimSpace(reply)
	content := cleanJSONContent(raw)

	if !gjson.Valid(content) || !gjson.Parse(content).IsObject() {
		log.Printf("[AnswerParser] Reply is not a JSON envelope, using it as text (%d bytes)", len(raw))
		return &query.Answer{Kind: query.KindText, Text: raw, Raw: reply}
	}

	envelope := gjson.Parse(content)
	value := envelope.Get("value")
	answer := &query.Answer{
		Raw:         reply,
		Explanation: strings.TrimSpace(envelope.Get("explanation").String()),
	}

	switch strings.ToLower(envelope.Get("type").String()) {
	case "number":
		answer.Kind = query.KindNumber
		answer.Text = numberText(value)
	case "table":
		table := parseTable(envelope)
		if table == nil {
			log.Printf("[AnswerParser] Table envelope without rows, using it as text")
			answer.Kind = query.KindText
			answer.Text = fallbackText(envelope, raw)
			return answer
		}
		answer.Kind = query.KindTable
		answer.Table = table
		answer.Text = answer.Explanation
	default:
		answer.Kind = query.KindText
		answer.Text = fallbackText(envelope, raw)
	}

	return answer
}

func fallbackText(envelope gjson.Result, raw string) string {
	if v := envelope.Get("value"); v.Exists() && v.Type != gjson.Null {
		if v.Type == gjson.String {
			return v.String()
		}
		return v.Raw
	}
	return raw
}

func numberText(v gjson.Result) string {
	switch v.Type {
	case gjson.Number:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case gjson.String:
		return strings.TrimSpace(v.String())
	case gjson.Null:
		return ""
	default:
		return v.Raw
	}
}

// parseTable reads columns and rows. Rows may be arrays, or objects keyed by
// column name.
func parseTable(envelope gjson.Result) *query.AnswerTable {
	rows := envelope.Get("rows")
	if !rows.IsArray() || len(rows.Array()) == 0 {
		return nil
	}

	table := &query.AnswerTable{}
	for _, c := range envelope.Get("columns").Array() {
		table.Columns = append(table.Columns, c.String())
	}

	first := rows.Array()[0]
	if len(table.Columns) == 0 && first.IsObject() {
		first.ForEach(func(key, _ gjson.Result) bool {
			table.Columns = append(table.Columns, key.String())
			return true
		})
	}

	for _, row := range rows.Array() {
		var cells []string
		switch {
		case row.IsObject():
			fields := row.Map()
			for _, name := range table.Columns {
				cells = append(cells, cellText(fields[name]))
			}
		case row.IsArray():
			for _, cell := range row.Array() {
				cells = append(cells, cellText(cell))
			}
		default:
			cells = []string{cellText(row)}
		}
		table.Rows = append(table.Rows, cells)
	}

	width := len(table.Columns)
	for _, row := range table.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i := len(table.Columns); i < width; i++ {
		table.Columns = append(table.Columns, fmt.Sprintf("column_%d", i+1))
	}
	for i, row := range table.Rows {
		for len(row) < width {
			row = append(row, "")
		}
		table.Rows[i] = row
	}

	return table
}

func cellText(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.Number:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case gjson.String, gjson.True, gjson.False:
		return v.String()
	default:
		return v.Raw
	}
}

// cleanJSONContent strips markdown fences and chatter around a JSON object
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	originalLength := len(content)

	if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") && len(content) >= 6 {
		content = strings.TrimSuffix(strings.TrimPrefix(content, "```"), "```")
		content = strings.TrimPrefix(content, "json")
		content = strings.TrimSpace(content)
	}

	// prose before or after the object
	if !strings.HasPrefix(content, "{") {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start >= 0 && end > start && gjson.Valid(content[start:end+1]) {
			content = content[start : end+1]
		}
	} else if end := strings.LastIndex(content, "}"); end >= 0 && end < len(content)-1 && gjson.Valid(content[:end+1]) {
		content = content[:end+1]
	}

	if finalLength := len(content); originalLength != finalLength {
		log.Printf("[AnswerParser] Content cleaning reduced size: %d -> %d bytes", originalLength, finalLength)
	}

	return content
}
