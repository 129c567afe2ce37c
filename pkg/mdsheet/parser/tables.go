package parser

import (
	"strings"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
)

// isRow reports whether a line can be part of a table.
func isRow(line string, schema Schema) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if schema.RequireOuterPipes {
		return strings.HasPrefix(trimmed, schema.sep())
	}
	return strings.Contains(trimmed, schema.sep())
}

// parseSeparator returns the column alignments of a header separator row.
func parseSeparator(line string, schema Schema) ([]models.Alignment, bool) {
	if !isRow(line, schema) {
		return nil, false
	}
	dash := schema.dash()
	cells := SplitRow(line, schema.sep(), true)
	aligns := make([]models.Alignment, len(cells))
	for i, cell := range cells {
		left := strings.HasPrefix(cell, ":")
		right := strings.HasSuffix(cell, ":") && len(cell) > 1
		core := strings.TrimSuffix(strings.TrimPrefix(cell, ":"), ":")
		if core == "" || strings.Trim(core, dash) != "" {
			return nil, false
		}
		switch {
		case left && right:
			aligns[i] = models.AlignCenter
		case left:
			aligns[i] = models.AlignLeft
		case right:
			aligns[i] = models.AlignRight
		default:
			aligns[i] = models.AlignDefault
		}
	}
	return aligns, true
}

// tableAt reports whether a table (header row plus separator row) starts at line i.
func tableAt(lines []string, i, end int, schema Schema) bool {
	if i+1 >= end || !isRow(lines[i], schema) {
		return false
	}
	_, ok := parseSeparator(lines[i+1], schema)
	return ok
}

// parseTable reads the table starting at line i and returns it with the index of the first
// line after it.
func parseTable(lines []string, i, end int, schema Schema) (models.Table, int) {
	sep := schema.sep()
	headers := SplitRow(lines[i], sep, schema.StripWhitespace)
	aligns, _ := parseSeparator(lines[i+1], schema)

	table := models.Table{Headers: headers, Alignments: aligns, Rows: [][]string{}}
	next := i + 2
	for next < end && isRow(lines[next], schema) {
		if _, _, ok := ParseComment(lines[next]); ok {
			break
		}
		table.Rows = append(table.Rows, SplitRow(lines[next], sep, schema.StripWhitespace))
		next++
	}
	return table, next
}

// renderTable writes the GFM lines of a table. Short rows are padded to the header width.
func renderTable(t models.Table, schema Schema) []string {
	sep := schema.sep()
	dash := strings.Repeat(schema.dash(), 3)

	out := make([]string, 0, len(t.Rows)+2)
	out = append(out, renderRow(t.Headers, len(t.Headers), sep))

	marks := make([]string, len(t.Headers))
	for i := range marks {
		switch t.AlignmentAt(i) {
		case models.AlignLeft:
			marks[i] = ":" + dash
		case models.AlignCenter:
			marks[i] = ":" + dash + ":"
		case models.AlignRight:
			marks[i] = dash + ":"
		default:
			marks[i] = dash
		}
	}
	out = append(out, renderRow(marks, len(marks), sep))

	for _, row := range t.Rows {
		out = append(out, renderRow(row, len(t.Headers), sep))
	}
	return out
}

func renderRow(cells []string, width int, sep string) string {
	n := max(len(cells), width)
	var b strings.Builder
	b.WriteString(sep)
	for i := 0; i < n; i++ {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		b.WriteString(" ")
		b.WriteString(cell)
		b.WriteString(" ")
		b.WriteString(sep)
	}
	return b.String()
}
