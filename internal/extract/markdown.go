package extract

import (
	"bytes"
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor renders markdown to plain text: markup is dropped, every
// block ends with a line break and table rows become "a | b" lines.
type MarkdownExtractor struct {
	parser goldmark.Markdown
}

// NewMarkdownExtractor creates a markdown extractor with GFM tables enabled.
func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Extract implements Extractor.
func (m *MarkdownExtractor) Extract(_ context.Context, _ string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	doc := m.parser.Parser().Parse(text.NewReader(data))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			switch n.(type) {
			case *ast.Heading, *ast.Paragraph, *ast.TextBlock, *ast.ThematicBreak:
				ensureNewline(&buf)
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(data))
			if node.HardLineBreak() {
				buf.WriteByte('\n')
			} else if node.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.AutoLink:
			buf.Write(node.Label(data))
		case *ast.ListItem:
			ensureNewline(&buf)
			buf.WriteString("- ")
		case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock:
			ensureNewline(&buf)
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(data))
			}
			ensureNewline(&buf)
			return ast.WalkSkipChildren, nil
		case *east.TableHeader, *east.TableRow:
			ensureNewline(&buf)
			buf.WriteString(tableRowText(node, data))
			buf.WriteByte('\n')
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(buf.String()), nil
}

// tableRowText joins the cells of a table row with pipe separators.
func tableRowText(row ast.Node, source []byte) string {
	var cells []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*east.TableCell); ok {
			cells = append(cells, strings.TrimSpace(inlineText(c, source)))
		}
	}
	return strings.Join(cells, " | ")
}

// inlineText collects the text content below n.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(source))
		case *ast.String:
			sb.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

func ensureNewline(buf *bytes.Buffer) {
	if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}
}
