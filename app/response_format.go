package app

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"contractbot/domain/query"
	"contractbot/internal/errors"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ResponseFormatter post-processes an answer for display
type ResponseFormatter interface {
	Name() query.ResponseFormat
	Format(answer *query.Answer) *query.Answer
}

// NewResponseFormatter selects the formatting strategy by name
func NewResponseFormatter(format query.ResponseFormat) (ResponseFormatter, error) {
	switch format {
	case query.FormatText:
		return TextFormatter{}, nil
	case query.FormatMarkdown, "":
		return MarkdownFormatter{}, nil
	default:
		return nil, errors.ConfigInvalid("unsupported response format: " + string(format))
	}
}

// TextFormatter leaves text untouched and flattens tables into aligned text
type TextFormatter struct{}

func (TextFormatter) Name() query.ResponseFormat { return query.FormatText }

func (TextFormatter) Format(answer *query.Answer) *query.Answer {
	if answer.Kind == query.KindTable && answer.Table != nil {
		text := tableText(answer.Table)
		if answer.Explanation != "" {
			text = answer.Explanation + "\n\n" + text
		}
		answer.Text = text
	}
	return answer
}

// MarkdownFormatter renders answer text to HTML. Raw HTML in model output is
// dropped and only safe link schemes survive. Table answers keep their
// markdown source in Text.
type MarkdownFormatter struct{}

func (MarkdownFormatter) Name() query.ResponseFormat { return query.FormatMarkdown }

func (MarkdownFormatter) Format(answer *query.Answer) *query.Answer {
	var md strings.Builder
	switch answer.Kind {
	case query.KindTable:
		if answer.Explanation != "" {
			md.WriteString(answer.Explanation + "\n\n")
		}
		if answer.Table != nil {
			md.WriteString(tableMarkdown(answer.Table))
			answer.Text = md.String()
		}
	case query.KindNumber:
		md.WriteString("**" + answer.Text + "**")
		if answer.Explanation != "" {
			md.WriteString("\n\n" + answer.Explanation)
		}
	default:
		md.WriteString(answer.Text)
	}

	answer.HTML = renderMarkdown(md.String())
	return answer
}

func renderMarkdown(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML | html.Safelink | html.NofollowLinks,
	})
	return string(markdown.ToHTML([]byte(md), p, renderer))
}

func tableMarkdown(table *query.AnswerTable) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(escapeCells(table.Columns), " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(table.Columns)) + "\n")
	for _, row := range table.Rows {
		b.WriteString("| " + strings.Join(escapeCells(row), " | ") + " |\n")
	}
	return b.String()
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "\n", " ")
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

func tableText(table *query.AnswerTable) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
	return strings.TrimRight(buf.String(), "\n")
}
