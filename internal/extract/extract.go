// Package extract turns uploaded files into plain text for ingestion.
package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// MinStructuredChars is the number of non-whitespace characters below which
// structured PDF text is considered a scan and OCR is attempted.
const MinStructuredChars = 50

// ErrUnsupportedType is returned for files no extractor is registered for.
var ErrUnsupportedType = errors.New("unsupported file type")

// Extractor turns the raw bytes of a named file into plain text.
type Extractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// Config configures the default set of extractors.
type Config struct {
	// PDFToTextPath is the pdftotext binary. Defaults to "pdftotext".
	PDFToTextPath string
	// OCRURL is the base URL of the OCR service. Empty disables OCR.
	OCRURL string
	// HTTPClient is used for OCR calls. Defaults to a client with a 2 minute timeout.
	HTTPClient *http.Client
	// Runner runs external commands. Defaults to os/exec.
	Runner CommandRunner
}

// Dispatcher picks an Extractor by file extension.
type Dispatcher struct {
	byExt map[string]Extractor
}

// New returns a Dispatcher for PDF, markdown and plain text files, and for
// images when an OCR service is configured.
func New(cfg Config) *Dispatcher {
	var ocr *OCRClient
	if cfg.OCRURL != "" {
		ocr = NewOCRClient(cfg.OCRURL, cfg.HTTPClient)
	}

	d := &Dispatcher{byExt: make(map[string]Extractor)}

	pdf := NewPDFExtractor(cfg.PDFToTextPath, cfg.Runner, ocr)
	d.Register(".pdf", pdf)

	md := NewMarkdownExtractor()
	d.Register(".md", md)
	d.Register(".markdown", md)

	txt := PlainTextExtractor{}
	d.Register(".txt", txt)
	d.Register(".text", txt)

	if ocr != nil {
		for _, ext := range []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp"} {
			d.Register(ext, ocr)
		}
	}
	return d
}

// Register sets the extractor for ext, e.g. ".pdf". Not safe for use concurrently with Extract.
func (d *Dispatcher) Register(ext string, e Extractor) {
	d.byExt[strings.ToLower(ext)] = e
}

// Supported reports whether filename has a registered extension.
func (d *Dispatcher) Supported(filename string) bool {
	_, ok := d.byExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Extensions returns the registered extensions in sorted order.
func (d *Dispatcher) Extensions() []string {
	exts := make([]string, 0, len(d.byExt))
	for ext := range d.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract dispatches to the extractor registered for filename's extension.
func (d *Dispatcher) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	e, ok := d.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedType, ext, strings.Join(d.Extensions(), ", "))
	}
	return e.Extract(ctx, filename, data)
}

// countNonSpace counts the runes in s that are not whitespace.
func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
