// Package models defines the workbook document model embedded in a Markdown buffer.
package models

// CellRange represents a rectangular block of cells.
type CellRange struct {
	// MinR is the first row (0-based, inclusive).
	MinR int `json:"minR"`
	// MaxR is the last row (0-based, inclusive).
	MaxR int `json:"maxR"`
	// MinC is the first column (0-based, inclusive).
	MinC int `json:"minC"`
	// MaxC is the last column (0-based, inclusive).
	MaxC int `json:"maxC"`
}

// Height returns the number of rows covered by the range.
func (r CellRange) Height() int { return r.MaxR - r.MinR + 1 }

// Width returns the number of columns covered by the range.
func (r CellRange) Width() int { return r.MaxC - r.MinC + 1 }

// Valid reports whether the range is non-empty and non-negative.
func (r CellRange) Valid() bool {
	return r.MinR >= 0 && r.MinC >= 0 && r.MaxR >= r.MinR && r.MaxC >= r.MinC
}
