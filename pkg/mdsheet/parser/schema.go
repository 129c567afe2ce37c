// Package parser is the GFM codec for the workbook region: it parses Markdown into a
// models.Workbook and renders a models.Workbook back into Markdown.
package parser

import (
	"strings"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
)

// Schema controls how the workbook region is parsed and rendered.
type Schema struct {
	RootMarker          string
	SheetHeaderLevel    int
	TableHeaderLevel    int
	CaptureDescription  bool
	ColumnSeparator     string
	HeaderSeparatorChar string
	RequireOuterPipes   bool
	StripWhitespace     bool
}

// DefaultSchema returns the default schema.
func DefaultSchema() Schema {
	return Schema{
		RootMarker:          "# Tables",
		SheetHeaderLevel:    2,
		TableHeaderLevel:    3,
		CaptureDescription:  true,
		ColumnSeparator:     "|",
		HeaderSeparatorChar: "-",
		RequireOuterPipes:   true,
		StripWhitespace:     true,
	}
}

// Renderer turns a workbook into the text of its region.
type Renderer interface {
	Render(wb models.Workbook, schema Schema) string
}

// Codec is the default Renderer backed by Render.
type Codec struct{}

// Render implements Renderer.
func (Codec) Render(wb models.Workbook, schema Schema) string { return Render(wb, schema) }

// Cell encodes a raw value for a table cell under this schema.
func (s Schema) Cell(value string) string { return EncodeCell(value, s.StripWhitespace) }

func (s Schema) sep() string {
	if s.ColumnSeparator == "" {
		return "|"
	}
	return s.ColumnSeparator
}

func (s Schema) dash() string {
	if s.HeaderSeparatorChar == "" {
		return "-"
	}
	return s.HeaderSeparatorChar
}

func heading(level int, title string) string {
	return strings.Repeat("#", level) + " " + title
}
