// Package ocr turns registry certificates into text and, where the backend
// preserves layout, tables for the table extraction backend.
package ocr

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jeonse-risk/internal/config"
	"github.com/sells-group/jeonse-risk/internal/extract"
)

// Document is the recognized content of one certificate.
type Document struct {
	Text   string
	Tables []extract.Table
}

// Extractor recognizes a PDF certificate.
type Extractor interface {
	Extract(ctx context.Context, pdfPath string) (*Document, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.OCRConfig) (Extractor, error) {
	switch cfg.Provider {
	case "local", "":
		return NewPdfToText(cfg.PdfToTextPath), nil
	case "mistral":
		if cfg.MistralKey == "" {
			return nil, eris.New("ocr: mistral provider requires mistral_api_key")
		}
		return NewMistralOCR(cfg.MistralKey, cfg.MistralModel), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}

// ReadDocument loads a certificate from path. Text and markdown files are
// read directly, with markdown tables parsed; anything else goes through
// the extractor.
func ReadDocument(ctx context.Context, ext Extractor, path string) (*Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "ocr: read %s", path)
		}
		return FromMarkdown(string(data)), nil
	}
	if ext == nil {
		return nil, eris.Errorf("ocr: no extractor configured for %s", path)
	}
	return ext.Extract(ctx, path)
}

// FromMarkdown builds a Document from markdown text. Tables are parsed and
// flattened into plain lines in Text.
func FromMarkdown(md string) *Document {
	return &Document{Text: FlattenTables(md), Tables: ParseTables(md)}
}
