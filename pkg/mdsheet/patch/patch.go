// Package patch computes the minimal text replacement for an edited workbook region or
// document section, and applies such replacements to a buffer.
//
// Positions are (line, column) pairs. Columns count runes, so a host editor that addresses
// code points can apply a Patch without re-reading the buffer.
package patch

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/parser"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/scan"
)

// ErrNotFound is returned when a document section index does not exist.
var ErrNotFound = errors.New("document section not found")

// Patch replaces the text from (StartLine, 0) through (EndLine, EndCol) with Content.
type Patch struct {
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
	Content   string `json:"content"`
}

// Range is a line span with the column just past its last character.
type Range struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
	EndCol    int `json:"endCol"`
}

// Apply returns text with the patch applied. Positions past the end of a line or of the
// buffer are clamped.
func Apply(text string, p Patch) string {
	lines := scan.Lines(text)
	start := offset(lines, p.StartLine, 0)
	end := offset(lines, p.EndLine, p.EndCol)
	if end < start {
		end = start
	}
	return text[:start] + p.Content + text[end:]
}

// offset converts a (line, rune column) position into a byte offset.
func offset(lines []string, line, col int) int {
	if line < 0 {
		return 0
	}
	off := 0
	if line >= len(lines) {
		for _, l := range lines {
			off += len(l) + 1
		}
		return off - 1
	}
	for row := 0; row < line; row++ {
		off += len(lines[row]) + 1
	}
	s := lines[line]
	for i := 0; i < col && len(s) > 0; i++ {
		_, size := utf8.DecodeRuneInString(s)
		off += size
		s = s[size:]
	}
	return off
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// Workbook builds the patch that replaces the workbook region with the rendering of wb.
//
// An empty workbook removes the region, root marker included. A region running to the end
// of the buffer is replaced through the true end; otherwise the range stops at the end of
// the line before the next section's heading. Without an existing region the new text is
// appended after the last line, separated from it by exactly one blank line.
func Workbook(wb models.Workbook, text string, schema parser.Schema, r parser.Renderer) Patch {
	lines := scan.Lines(text)
	n := len(lines)
	start, end := scan.WorkbookRange(lines, schema.RootMarker, schema.SheetHeaderLevel)

	var p Patch
	if end >= n {
		p.EndLine = n - 1
	} else {
		p.EndLine = end - 1
	}
	p.EndCol = runeLen(lines[p.EndLine])

	rendered := ""
	if len(wb.Sheets) > 0 {
		rendered = r.Render(wb, schema) + "\n"
	}

	if start < n {
		p.StartLine = start
		p.Content = rendered
		return p
	}

	// Append: the last line is rewritten with its own text followed by the region.
	p.StartLine = n - 1
	last := lines[n-1]
	switch {
	case rendered == "":
		p.Content = last
	case last != "":
		p.Content = last + "\n\n" + rendered
	case n > 1 && lines[n-2] != "":
		p.Content = "\n" + rendered
	default:
		p.Content = rendered
	}
	return p
}

// DocumentRange returns the span of the n-th document section.
func DocumentRange(text, rootMarker string, docHeaderLevel, n int) (Range, error) {
	lines := scan.Lines(text)
	docs := scan.DocumentSections(lines, rootMarker, docHeaderLevel)
	if n < 0 || n >= len(docs) {
		return Range{}, fmt.Errorf("%w: index %d of %d", ErrNotFound, n, len(docs))
	}
	d := docs[n]
	return Range{StartLine: d.StartLine, EndLine: d.EndLine, EndCol: runeLen(lines[d.EndLine])}, nil
}

// Whole returns the patch that replaces all of before with after.
func Whole(before, after string) Patch {
	lines := scan.Lines(before)
	last := len(lines) - 1
	return Patch{StartLine: 0, EndLine: last, EndCol: runeLen(lines[last]), Content: after}
}
