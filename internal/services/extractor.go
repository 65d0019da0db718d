package services

import (
	"bytes"
	"fmt"
	"mime"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/unicode"
)

const (
	MediaTypePDF         = "application/pdf"
	mediaTypeOctetStream = "application/octet-stream"
)

var pdfMagic = []byte("%PDF-")

// TextExtractor turns an uploaded document into plain UTF-8 text.
type TextExtractor interface {
	Extract(data []byte, mediaType string) (string, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// Extract implements TextExtractor. PDFs are read page by page; anything else
// is decoded as UTF-8 with invalid sequences replaced. An empty result is valid.
func (e *textExtractor) Extract(data []byte, mediaType string) (string, error) {
	if IsPDF(data, mediaType) {
		return extractPDFText(data)
	}

	return decodeUTF8(data), nil
}

// IsPDF reports whether the declared media type names a PDF. An empty or
// generic binary type falls back to the file signature.
func IsPDF(data []byte, mediaType string) bool {
	switch normalizeMediaType(mediaType) {
	case MediaTypePDF:
		return true
	case "", mediaTypeOctetStream:
		return bytes.HasPrefix(data, pdfMagic)
	default:
		return false
	}
}

func normalizeMediaType(mediaType string) string {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return strings.ToLower(mediaType)
	}
	return parsed
}

func extractPDFText(data []byte) (text string, err error) {
	// The pdf package panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read PDF page %d: %w", pageIndex, err)
		}

		if textBuilder.Len() > 0 {
			textBuilder.WriteString("\n\n")
		}
		textBuilder.WriteString(pageText)
	}

	return textBuilder.String(), nil
}

func decodeUTF8(data []byte) string {
	decoded, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(decoded)
}
