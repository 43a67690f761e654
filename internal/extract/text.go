package extract

import (
	"context"
	"strings"
)

const utf8BOM = "\ufeff"

// PlainTextExtractor returns the file content as text. Invalid UTF-8 is replaced.
type PlainTextExtractor struct{}

// Extract implements Extractor.
func (PlainTextExtractor) Extract(_ context.Context, _ string, data []byte) (string, error) {
	text := strings.ToValidUTF8(string(data), "\uFFFD")
	text = strings.TrimPrefix(text, utf8BOM)
	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}
