package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmptyFile       = errors.New("empty file")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrOCRUnavailable  = errors.New("image text recognition is not configured")
	ErrNoText          = errors.New("no text found in file")
)

// OCR reads text out of an image.
type OCR interface {
	Recognize(ctx context.Context, mimeType string, data []byte) (string, error)
}

// Extractor turns uploaded files into plain text. Line breaks are kept
// because the local fallback uses the first line as its root.
type Extractor struct {
	ocr OCR
}

func New(ocr OCR) *Extractor {
	return &Extractor{ocr: ocr}
}

// Extract sniffs data first and trusts filename and contentType second.
func (e *Extractor) Extract(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%s: %w", filename, ErrEmptyFile)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	mt := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	var (
		text string
		err  error
	)
	switch {
	case isPDF(data):
		text, err = PDF(data)
	case isZip(data) && (ext == ".docx" || mt == docxMIME || hasDocxBody(data)):
		text, err = DOCX(data)
	case strings.HasPrefix(mt, "image/") || imageMIME(data) != "":
		text, err = e.image(ctx, mt, data)
	case ext == ".txt" || strings.HasPrefix(mt, "text/") || isProbablyText(data):
		text = normalizeNewlines(string(bytes.TrimPrefix(data, utf8BOM)))
	case ext == ".pdf" || mt == "application/pdf":
		return "", fmt.Errorf("%s claims pdf but has no %%PDF header: %w", filename, ErrUnsupportedType)
	default:
		return "", fmt.Errorf("%s (%s): %w", filename, contentType, ErrUnsupportedType)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filename, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%s: %w", filename, ErrNoText)
	}
	return text, nil
}

func (e *Extractor) image(ctx context.Context, mt string, data []byte) (string, error) {
	if e.ocr == nil {
		return "", ErrOCRUnavailable
	}
	if sniffed := imageMIME(data); sniffed != "" {
		mt = sniffed
	}
	return e.ocr.Recognize(ctx, mt, data)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isZip(b []byte) bool {
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4
}

func imageMIME(b []byte) string {
	switch {
	case len(b) >= 8 && string(b[:8]) == "\x89PNG\r\n\x1a\n":
		return "image/png"
	case len(b) >= 3 && b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF:
		return "image/jpeg"
	case len(b) >= 6 && (string(b[:6]) == "GIF87a" || string(b[:6]) == "GIF89a"):
		return "image/gif"
	case len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP":
		return "image/webp"
	}
	return ""
}

// isProbablyText accepts valid UTF-8 without NUL bytes in the first 4 KiB.
func isProbablyText(b []byte) bool {
	sample := b[:min(len(b), 4096)]
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}
	// a multi-byte rune may be cut at the sample edge
	for i := 0; i < utf8.UTFMax && len(sample) > 0; i++ {
		if utf8.Valid(sample) {
			return true
		}
		sample = sample[:len(sample)-1]
	}
	return false
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
