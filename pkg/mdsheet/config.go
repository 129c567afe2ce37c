// Package mdsheet keeps a spreadsheet model and the Markdown buffer that embeds it in sync.
package mdsheet

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/edit"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/parser"
)

// Config describes where the workbook lives in the buffer and how its tables are written.
// Zero values fall back to the defaults.
type Config struct {
	// RootMarker is the line that opens the workbook region. Default "# Tables".
	RootMarker string `json:"rootMarker,omitempty"`
	// SheetHeaderLevel is the heading level of sheet names. Default 2.
	SheetHeaderLevel int `json:"sheetHeaderLevel,omitempty"`
	// TableHeaderLevel is the heading level of table names. Default 3.
	TableHeaderLevel int `json:"tableHeaderLevel,omitempty"`
	// CaptureDescription keeps the text between a table heading and its table.
	// If nil, defaults to true.
	CaptureDescription *bool `json:"captureDescription,omitempty"`
	// ColumnSeparator splits cells. Default "|".
	ColumnSeparator string `json:"columnSeparator,omitempty"`
	// HeaderSeparatorChar draws the separator row. Default "-".
	HeaderSeparatorChar string `json:"headerSeparatorChar,omitempty"`
	// RequireOuterPipes writes and expects leading and trailing separators.
	// If nil, defaults to true.
	RequireOuterPipes *bool `json:"requireOuterPipes,omitempty"`
	// StripWhitespace trims cell text. If nil, defaults to true.
	StripWhitespace *bool `json:"stripWhitespace,omitempty"`
	// DocHeaderLevel is the heading level of document sections. Default 1.
	DocHeaderLevel int `json:"docHeaderLevel,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{}
}

// ParseConfig decodes a JSON configuration. Empty input yields the defaults. The object may
// also arrive as a JSON string holding the object.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return cfg, nil
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		return ParseConfig([]byte(inner))
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ShouldCaptureDescription returns whether table descriptions are kept.
func (c Config) ShouldCaptureDescription() bool {
	if c.CaptureDescription != nil {
		return *c.CaptureDescription
	}
	return true
}

// ShouldRequireOuterPipes returns whether rows carry leading and trailing separators.
func (c Config) ShouldRequireOuterPipes() bool {
	if c.RequireOuterPipes != nil {
		return *c.RequireOuterPipes
	}
	return true
}

// ShouldStripWhitespace returns whether cell text is trimmed.
func (c Config) ShouldStripWhitespace() bool {
	if c.StripWhitespace != nil {
		return *c.StripWhitespace
	}
	return true
}

// DocumentHeaderLevel returns the heading level of document sections.
func (c Config) DocumentHeaderLevel() int {
	if c.DocHeaderLevel > 0 {
		return c.DocHeaderLevel
	}
	return 1
}

// Schema resolves the configuration into a parser schema.
func (c Config) Schema() parser.Schema {
	s := parser.DefaultSchema()
	if c.RootMarker != "" {
		s.RootMarker = c.RootMarker
	}
	if c.SheetHeaderLevel > 0 {
		s.SheetHeaderLevel = c.SheetHeaderLevel
	}
	if c.TableHeaderLevel > 0 {
		s.TableHeaderLevel = c.TableHeaderLevel
	}
	if c.ColumnSeparator != "" {
		s.ColumnSeparator = c.ColumnSeparator
	}
	if c.HeaderSeparatorChar != "" {
		s.HeaderSeparatorChar = c.HeaderSeparatorChar
	}
	s.CaptureDescription = c.ShouldCaptureDescription()
	s.RequireOuterPipes = c.ShouldRequireOuterPipes()
	s.StripWhitespace = c.ShouldStripWhitespace()
	return s
}

// Layout resolves the configuration into the section layout used by document edits.
func (c Config) Layout() edit.Layout {
	return edit.Layout{Schema: c.Schema(), DocHeaderLevel: c.DocumentHeaderLevel()}
}
