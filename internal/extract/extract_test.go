package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(context.Context, string, []byte) (string, error) {
	return s.text, s.err
}

func TestDispatcher_Extract(t *testing.T) {
	d := New(Config{})

	text, err := d.Extract(context.Background(), "notes.TXT", []byte("Clause 1.\r\nClause 2."))
	require.NoError(t, err)
	assert.Equal(t, "Clause 1.\nClause 2.", text)

	_, err = d.Extract(context.Background(), "scan.png", []byte{0x89, 'P', 'N', 'G'})
	assert.True(t, errors.Is(err, ErrUnsupportedType), "images need OCR")

	_, err = d.Extract(context.Background(), "archive.zip", nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.EqualError(t, err, `unsupported file type ".zip" (supported: .markdown, .md, .pdf, .text, .txt)`)
}

func TestDispatcher_Supported(t *testing.T) {
	withoutOCR := New(Config{})
	withOCR := New(Config{OCRURL: "http://ocr.local"})

	tests := []struct {
		filename string
		want     bool
		wantOCR  bool
	}{
		{filename: "lease.pdf", want: true, wantOCR: true},
		{filename: "README.md", want: true, wantOCR: true},
		{filename: "notes.txt", want: true, wantOCR: true},
		{filename: "scan.JPG", want: false, wantOCR: true},
		{filename: "data.csv", want: false, wantOCR: false},
		{filename: "noext", want: false, wantOCR: false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, withoutOCR.Supported(tt.filename))
			assert.Equal(t, tt.wantOCR, withOCR.Supported(tt.filename))
		})
	}
}

func TestDispatcher_Register(t *testing.T) {
	d := New(Config{})
	d.Register(".CSV", stubExtractor{text: "a,b"})

	text, err := d.Extract(context.Background(), "data.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, "a,b", text)
	assert.Contains(t, d.Extensions(), ".csv")
}

func TestCountNonSpace(t *testing.T) {
	assert.Equal(t, 0, countNonSpace(" \n\t "))
	assert.Equal(t, 6, countNonSpace(" a b\nc d e f "))
	assert.Equal(t, 2, countNonSpace("§ é"))
}

func TestPlainTextExtractor(t *testing.T) {
	text, err := PlainTextExtractor{}.Extract(context.Background(), "a.txt", []byte("\ufeffHello\xffWorld"))
	require.NoError(t, err)
	assert.Equal(t, "Hello\uFFFDWorld", text)
}
