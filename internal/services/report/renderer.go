// Package report lays AI responses out as downloadable PDF reports.
//
// The layout is deliberately plain: a bold title on the first page and the
// body drawn line by line on US Letter pages. Lines are never wrapped; a
// line wider than the page simply runs off the right edge.
//
// Go Pattern: Layout is a pure function that returns positioned lines, and
// Render only draws what Layout decided. Pagination can be tested without
// parsing a PDF.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// ContentType is the MIME type of every rendered report.
const ContentType = "application/pdf"

// Page geometry in points, measured from the top-left corner of a US Letter page.
const (
	PageWidth  = 612.0
	PageHeight = 792.0

	Margin        = 50.0                // left, top and bottom margin
	TitleY        = Margin              // title baseline on page one
	BodyStartY    = 80.0                // first body baseline on page one
	LineHeight    = 15.0                // cursor advance per body line
	BottomLimitY  = PageHeight - Margin // cursor past this starts a new page
	TitleFontSize = 16.0
	BodyFontSize  = 11.0
)

const (
	titleFont = "Helvetica"
	bodyFont  = "Helvetica"
	creator   = "ATS Resume Expert"
)

// Line is one body line and the baseline it is drawn at.
type Line struct {
	Text string
	Y    float64
}

// Page is the layout of a single report page.
// Title is only set on the first page.
type Page struct {
	Number int
	Title  string
	Lines  []Line
}

// SplitLines splits a body on line breaks. A trailing carriage return is
// dropped so CRLF text doesn't draw stray glyphs.
func SplitLines(body string) []string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Layout paginates body under title.
//
// Before each line is placed, a cursor that has moved past BottomLimitY
// starts a new page and returns to the top margin. The first page holds
// 45 body lines, every following page 47.
func Layout(title, body string) []Page {
	pages := []Page{{Number: 1, Title: title}}
	y := BodyStartY

	for _, text := range SplitLines(body) {
		if y > BottomLimitY {
			pages = append(pages, Page{Number: len(pages) + 1})
			y = Margin
		}
		current := &pages[len(pages)-1]
		current.Lines = append(current.Lines, Line{Text: text, Y: y})
		y += LineHeight
	}

	return pages
}

// LinesPerPage reports how many body lines fit on the given page number.
func LinesPerPage(pageNumber int) int {
	start := Margin
	if pageNumber == 1 {
		start = BodyStartY
	}
	return int((BottomLimitY-start)/LineHeight) + 1
}

// PagesFor returns how many pages a body of lineCount lines produces.
func PagesFor(lineCount int) int {
	first := LinesPerPage(1)
	if lineCount <= first {
		return 1
	}
	rest := LinesPerPage(2)
	return 1 + (lineCount-first+rest-1)/rest
}

// Renderer draws report layouts into PDF documents.
type Renderer struct{}

// NewRenderer creates a report renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the PDF for title and body.
// The returned reader is positioned at the start of the document.
func (r *Renderer) Render(title, body string) (*bytes.Reader, error) {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetTitle(title, true)
	doc.SetCreator(creator, true)

	// Core fonts speak cp1252; this maps what it can and degrades the rest.
	translate := doc.UnicodeTranslatorFromDescriptor("")

	for _, page := range Layout(title, body) {
		doc.AddPage()

		if page.Number == 1 {
			doc.SetFont(titleFont, "B", TitleFontSize)
			doc.Text(Margin, TitleY, translate(page.Title))
		}

		doc.SetFont(bodyFont, "", BodyFontSize)
		for _, line := range page.Lines {
			doc.Text(Margin, line.Y, translate(line.Text))
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	return bytes.NewReader(buf.Bytes()), nil
}
