package extract

import (
	"context"
	"fmt"
	"os"

	"legalrag/internal/apperr"
	"legalrag/internal/contextutil"
)

// PDFExtractor extracts text with pdftotext and falls back to OCR for scans.
type PDFExtractor struct {
	binPath string
	runner  CommandRunner
	ocr     Extractor
}

// NewPDFExtractor creates a PDF extractor. ocr may be nil to disable the fallback.
func NewPDFExtractor(binPath string, runner CommandRunner, ocr Extractor) *PDFExtractor {
	if binPath == "" {
		binPath = "pdftotext"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	p := &PDFExtractor{binPath: binPath, runner: runner}
	// Avoid storing a typed nil pointer in the interface.
	if o, ok := ocr.(*OCRClient); !ok || o != nil {
		p.ocr = ocr
	}
	return p
}

// Extract returns the text layer of the PDF. When it has fewer than
// MinStructuredChars non-whitespace characters the OCR text is appended.
// If pdftotext cannot read the file at all, the bytes go to OCR as is.
func (p *PDFExtractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	text, err := p.structuredText(ctx, data)
	if err != nil {
		if p.ocr == nil {
			return "", apperr.ExternalService("extract pdf", err)
		}
		logger.WarnContext(ctx, "pdf text extraction failed, treating file as image", "filename", filename, "error", err)
		ocrText, ocrErr := p.ocr.Extract(ctx, filename, data)
		if ocrErr != nil {
			return "", apperr.ExternalService("extract pdf", fmt.Errorf("%w; ocr: %w", err, ocrErr))
		}
		return ocrText, nil
	}

	if countNonSpace(text) >= MinStructuredChars || p.ocr == nil {
		logger.DebugContext(ctx, "pdf text extracted", "filename", filename, "chars", len(text))
		return text, nil
	}

	logger.InfoContext(ctx, "pdf text layer is sparse, attempting OCR", "filename", filename, "chars", countNonSpace(text))
	ocrText, err := p.ocr.Extract(ctx, filename, data)
	if err != nil {
		// The sparse text layer is still usable.
		logger.WarnContext(ctx, "ocr fallback failed", "filename", filename, "error", err)
		return text, nil
	}
	if countNonSpace(ocrText) > 0 {
		text += "\n" + ocrText
	}
	return text, nil
}

func (p *PDFExtractor) structuredText(ctx context.Context, data []byte) (string, error) {
	f, err := os.CreateTemp("", "legalrag-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	out, err := p.runner.Run(ctx, p.binPath, "-layout", "-enc", "UTF-8", f.Name(), "-")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
