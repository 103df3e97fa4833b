// Package pdf provides resume text extraction from uploaded PDF documents.
//
// We use the ledongthuc/pdf library for text extraction.
// It's a pure Go implementation — no CGO or external dependencies required.
// This makes deployment simpler (just a single binary).
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PlaceholderText replaces the extracted text when a document has no
// extractable text at all (scanned or image-only resumes).
const PlaceholderText = "⚠️ Could not extract text from this PDF. It might be scanned or image-based."

var (
	// ErrNoDocument is returned when there is nothing to extract from.
	ErrNoDocument = errors.New("no document uploaded")

	// ErrUnreadablePDF is returned when the bytes can't be parsed as a PDF.
	ErrUnreadablePDF = errors.New("unreadable PDF")
)

// ExtractionResult holds the output from a PDF text extraction.
type ExtractionResult struct {
	Text        string `json:"-"`           // Extracted text content (or PlaceholderText)
	PageCount   int    `json:"page_count"`  // Number of pages
	WordCount   int    `json:"word_count"`  // Word count of the real extracted text
	Placeholder bool   `json:"placeholder"` // True when Text was substituted
}

// Extractor is the default Extract implementation as a value, so it can be
// injected wherever an extraction dependency is expected.
type Extractor struct{}

// Extract implements the extraction dependency by calling the package function.
func (Extractor) Extract(data []byte) (*ExtractionResult, error) {
	return Extract(data)
}

// Extract reads a PDF and returns the concatenated text of every page.
//
// Pages are concatenated in order with no separator. If nothing but
// whitespace comes out of the document, Text is set to PlaceholderText so
// callers always have something to send along.
func Extract(data []byte) (*ExtractionResult, error) {
	pages, err := ExtractPages(data)
	if err != nil {
		return nil, err
	}

	var allText strings.Builder
	for _, text := range pages {
		allText.WriteString(text)
	}

	extractedText := allText.String()
	if strings.TrimSpace(extractedText) == "" {
		return &ExtractionResult{
			Text:        PlaceholderText,
			PageCount:   len(pages),
			Placeholder: true,
		}, nil
	}

	return &ExtractionResult{
		Text:      extractedText,
		PageCount: len(pages),
		WordCount: countWords(extractedText),
	}, nil
}

// ExtractPages returns the plain text of each page, in page order.
// A page that yields no text (image-only, empty, or failing extraction)
// is returned as an empty string rather than an error.
func ExtractPages(data []byte) (pages []string, err error) {
	if len(data) == 0 {
		return nil, ErrNoDocument
	}

	// The pdf library panics on some malformed structures instead of
	// returning an error.
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("%w: malformed PDF structure: %v", ErrUnreadablePDF, rec)
		}
	}()

	// Go Pattern: The pdf library requires io.ReaderAt for random access to
	// the PDF structure, so the in-memory upload is wrapped in a bytes.Reader.
	reader := bytes.NewReader(data)

	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}

	pageCount := pdfReader.NumPage()
	pages = make([]string, 0, pageCount)

	for i := 1; i <= pageCount; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Some pages only carry images; they contribute nothing
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}

// countWords counts the number of words in a text string.
func countWords(text string) int {
	words := strings.Fields(text)
	return len(words)
}

// ValidatePDF checks if the data looks like a valid PDF by checking the magic bytes.
func ValidatePDF(data []byte) bool {
	// PDF files start with "%PDF-"
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}
