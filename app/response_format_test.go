package app

import (
	"strings"
	"testing"

	"contractbot/domain/query"
	"contractbot/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponseFormatter(t *testing.T) {
	f, err := NewResponseFormatter(query.FormatText)
	require.NoError(t, err)
	assert.Equal(t, query.FormatText, f.Name())

	f, err = NewResponseFormatter("")
	require.NoError(t, err)
	assert.Equal(t, query.FormatMarkdown, f.Name())

	_, err = NewResponseFormatter("streamlit")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func tableAnswer() *query.Answer {
	return &query.Answer{
		Kind:        query.KindTable,
		Explanation: "Top vendors.",
		Table: &query.AnswerTable{
			Columns: []string{"vendor", "total"},
			Rows:    [][]string{{"Acme", "10"}, {"Globex|Ltd", "250"}},
		},
	}
}

func TestTextFormatterFlattensTable(t *testing.T) {
	answer := TextFormatter{}.Format(tableAnswer())

	assert.Equal(t, "Top vendors.\n\nvendor      total\nAcme        10\nGlobex|Ltd  250", answer.Text)
	assert.Empty(t, answer.HTML)
}

func TestTextFormatterLeavesTextAlone(t *testing.T) {
	answer := TextFormatter{}.Format(&query.Answer{Kind: query.KindText, Text: "**as is**"})
	assert.Equal(t, "**as is**", answer.Text)
}

func TestMarkdownFormatterTable(t *testing.T) {
	answer := MarkdownFormatter{}.Format(tableAnswer())

	assert.Contains(t, answer.HTML, "<table>")
	assert.Contains(t, answer.HTML, "<td>Globex|Ltd</td>")
	assert.Contains(t, answer.HTML, "<p>Top vendors.</p>")
	assert.True(t, strings.HasPrefix(answer.Text, "Top vendors.\n\n|"), answer.Text)
	assert.Contains(t, answer.Text, "Acme")
}

func TestMarkdownFormatterSkipsRawHTML(t *testing.T) {
	answer := MarkdownFormatter{}.Format(&query.Answer{
		Kind: query.KindText,
		Text: "Total is <script>alert(1)</script> *high*",
	})

	assert.NotContains(t, answer.HTML, "<script>")
	assert.Contains(t, answer.HTML, "<em>high</em>")
}

func TestMarkdownFormatterDropsScriptLinks(t *testing.T) {
	answer := MarkdownFormatter{}.Format(&query.Answer{
		Kind: query.KindText,
		Text: "See [the total](javascript:alert(document.cookie)) or [the docs](https://example.com/docs)",
	})

	assert.NotContains(t, answer.HTML, "javascript:")
	assert.Contains(t, answer.HTML, "the total")
	assert.Contains(t, answer.HTML, `href="https://example.com/docs"`)
	assert.Contains(t, answer.HTML, "nofollow")
}

func TestMarkdownFormatterNumber(t *testing.T) {
	answer := MarkdownFormatter{}.Format(&query.Answer{Kind: query.KindNumber, Text: "350", Explanation: "Sum of value."})

	assert.Contains(t, answer.HTML, "<strong>350</strong>")
	assert.Contains(t, answer.HTML, "Sum of value.")
}
