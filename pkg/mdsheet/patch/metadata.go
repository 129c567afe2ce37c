package patch

import (
	"slices"
	"strings"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/parser"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/scan"
)

// WriteWorkbookMetadata rewrites the workbook metadata sentinel without re-rendering the
// workbook region. An existing sentinel outside code fences is replaced in place (or removed
// with its leading blank line when meta is empty). Otherwise a blank line and the sentinel are
// inserted at the end of the workbook region, before any trailing blank lines. Text without a
// workbook region is returned unchanged.
func WriteWorkbookMetadata(text string, schema parser.Schema, meta models.WorkbookMetadata) (string, error) {
	lines := scan.Lines(text)

	at := -1
	scan.Walk(lines, 0, func(i int, line string) bool {
		if scope, _, ok := parser.ParseComment(line); ok && scope == parser.ScopeWorkbook {
			at = i
			return false
		}
		return true
	})

	if meta.IsEmpty() {
		if at < 0 {
			return text, nil
		}
		from := at
		if from > 0 && strings.TrimSpace(lines[from-1]) == "" {
			from--
		}
		return strings.Join(slices.Delete(lines, from, at+1), "\n"), nil
	}

	comment, err := parser.Comment(parser.ScopeWorkbook, meta)
	if err != nil {
		return "", err
	}
	if at >= 0 {
		lines[at] = comment
		return strings.Join(lines, "\n"), nil
	}

	start, end := scan.WorkbookRange(lines, schema.RootMarker, schema.SheetHeaderLevel)
	if start >= len(lines) {
		return text, nil
	}
	pos := end
	for pos-1 > start && strings.TrimSpace(lines[pos-1]) == "" {
		pos--
	}
	return strings.Join(slices.Insert(lines, pos, "", comment), "\n"), nil
}
