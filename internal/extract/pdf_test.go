package extract

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalrag/internal/apperr"
)

// fakeRunner checks that pdftotext gets a readable file and returns canned output.
type fakeRunner struct {
	t      *testing.T
	out    string
	err    error
	called bool
	args   []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.called = true
	f.args = append([]string{name}, args...)
	path := args[len(args)-2]
	data, err := os.ReadFile(path)
	require.NoError(f.t, err)
	assert.Equal(f.t, "%PDF-1.4", string(data))
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.out), nil
}

func TestPDFExtractor_TextLayer(t *testing.T) {
	runner := &fakeRunner{t: t, out: strings.Repeat("The lessee shall pay rent. ", 3)}
	ocr := &countingOCR{text: "should not be used"}
	p := NewPDFExtractor("/usr/bin/pdftotext", runner, ocr)

	text, err := p.Extract(context.Background(), "lease.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, runner.out, text)
	assert.Equal(t, 0, ocr.calls)
	assert.Equal(t, []string{"/usr/bin/pdftotext", "-layout", "-enc", "UTF-8"}, runner.args[:4])
	assert.Equal(t, "-", runner.args[len(runner.args)-1])

	_, statErr := os.Stat(runner.args[4])
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed")
}

func TestPDFExtractor_SparseTextFallsBackToOCR(t *testing.T) {
	tests := []struct {
		name     string
		ocr      *countingOCR
		wantText string
	}{
		{name: "ocr text appended", ocr: &countingOCR{text: "Scanned clause."}, wantText: "Page 1\nScanned clause."},
		{name: "ocr failure keeps text layer", ocr: &countingOCR{err: errors.New("timeout")}, wantText: "Page 1"},
		{name: "empty ocr keeps text layer", ocr: &countingOCR{text: "  "}, wantText: "Page 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPDFExtractor("", &fakeRunner{t: t, out: "Page 1"}, tt.ocr)

			text, err := p.Extract(context.Background(), "scan.pdf", []byte("%PDF-1.4"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, 1, tt.ocr.calls)
		})
	}
}

func TestPDFExtractor_SparseTextWithoutOCR(t *testing.T) {
	p := NewPDFExtractor("", &fakeRunner{t: t, out: "tiny"}, nil)

	text, err := p.Extract(context.Background(), "scan.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "tiny", text)
}

func TestPDFExtractor_CommandFails(t *testing.T) {
	boom := errors.New("exit status 1")

	t.Run("without ocr", func(t *testing.T) {
		var ocr *OCRClient
		p := NewPDFExtractor("", &fakeRunner{t: t, err: boom}, ocr)

		_, err := p.Extract(context.Background(), "broken.pdf", []byte("%PDF-1.4"))
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrExternalService)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("raw bytes go to ocr", func(t *testing.T) {
		ocr := &countingOCR{text: "image text"}
		p := NewPDFExtractor("", &fakeRunner{t: t, err: boom}, ocr)

		text, err := p.Extract(context.Background(), "photo.pdf", []byte("%PDF-1.4"))
		require.NoError(t, err)
		assert.Equal(t, "image text", text)
	})

	t.Run("ocr fails too", func(t *testing.T) {
		p := NewPDFExtractor("", &fakeRunner{t: t, err: boom}, &countingOCR{err: errors.New("down")})

		_, err := p.Extract(context.Background(), "photo.pdf", []byte("%PDF-1.4"))
		assert.ErrorIs(t, err, apperr.ErrExternalService)
	})
}

type countingOCR struct {
	text  string
	err   error
	calls int
}

func (c *countingOCR) Extract(context.Context, string, []byte) (string, error) {
	c.calls++
	return c.text, c.err
}
