// Package ocr provides the text-extraction fallback path: pull text out
// of a screenshot region and fuzzy-match it against the entity catalog.
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// TextExtractor is the external OCR engine boundary. Implementations own
// their own timeout/retry policy; this core does not duplicate one.
type TextExtractor interface {
	ExtractText(img image.Image) (string, error)
	Close() error
}

// TesseractExtractor extracts text with Tesseract via gosseract.
type TesseractExtractor struct {
	client *gosseract.Client
}

// NewTesseractExtractor creates an extractor tuned for game UI text.
func NewTesseractExtractor() (*TesseractExtractor, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Entity names are short title-cased phrases; a sparse-text page
	// segmentation mode reads isolated tooltips far better than the
	// default block mode.
	_ = client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT)

	return &TesseractExtractor{client: client}, nil
}

// ExtractText preprocesses and runs OCR over the image, returning the
// raw text.
func (e *TesseractExtractor) ExtractText(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, PrepareRegion(img)); err != nil {
		return "", fmt.Errorf("failed to encode OCR input: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set OCR image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// Close releases the Tesseract client.
func (e *TesseractExtractor) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
