package models

// Alignment is a GFM column alignment.
type Alignment string

const (
	AlignDefault Alignment = "default"
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
)

// ParseAlignment converts a string into an Alignment. Empty input maps to AlignDefault.
func ParseAlignment(s string) (Alignment, bool) {
	switch Alignment(s) {
	case "", AlignDefault:
		return AlignDefault, true
	case AlignLeft, AlignCenter, AlignRight:
		return Alignment(s), true
	}
	return AlignDefault, false
}

// Table represents a single GFM table with its heading, description and metadata.
type Table struct {
	// Name is the table heading text (empty for an unnamed table).
	Name string `json:"name"`
	// Description is the free text between the table heading and the table.
	Description string `json:"description"`
	// Headers defines the canonical column count.
	Headers []string `json:"headers"`
	// Rows contains body rows. A row may be shorter than Headers.
	Rows [][]string `json:"rows"`
	// Alignments holds per-column alignment; missing entries are AlignDefault.
	Alignments []Alignment `json:"alignments,omitempty"`
	// Metadata is persisted in the table sentinel comment.
	Metadata TableMetadata `json:"metadata"`
}

// ColumnCount returns the number of header columns.
func (t Table) ColumnCount() int { return len(t.Headers) }

// Cell returns the value at (row, col), treating short rows as padded with empty cells.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// AlignmentAt returns the alignment of a column.
func (t Table) AlignmentAt(col int) Alignment {
	if col < 0 || col >= len(t.Alignments) || t.Alignments[col] == "" {
		return AlignDefault
	}
	return t.Alignments[col]
}

// Width returns the widest of the header row and all body rows.
func (t Table) Width() int {
	width := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// CopyRows returns a new outer slice whose rows are independent copies.
func CopyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string{}, row...)
	}
	return out
}
