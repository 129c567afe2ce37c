// Package scan locates structural regions of a Markdown buffer: the workbook region opened by
// the root marker and the document sections around it. Fenced code blocks are literal text;
// nothing inside a fence starts or ends a region.
package scan

import (
	"strings"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
)

const fence = "```"

// Lines splits text on "\n". A trailing newline yields a final empty line, so the
// line count always matches what an editor shows.
func Lines(text string) []string {
	return strings.Split(text, "\n")
}

// IsFence reports whether a line opens or closes a code fence.
func IsFence(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), fence)
}

// HeadingLevel returns the length of the leading '#' run of the trimmed line.
func HeadingLevel(line string) int {
	trimmed := strings.TrimSpace(line)
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	return level
}

// IsHeading reports whether line is an ATX heading of exactly the given level.
func IsHeading(line string, level int) bool {
	if level <= 0 || HeadingLevel(line) != level {
		return false
	}
	rest := strings.TrimLeft(line, " \t")[level:]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

// HeadingTitle returns the text of a heading line without its marker.
func HeadingTitle(line string) string {
	trimmed := strings.TrimSpace(line)
	return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
}

// Walk calls fn for every line that lies outside a code fence. Fence delimiter lines
// themselves are not reported.
func Walk(lines []string, from int, fn func(i int, line string) bool) {
	inFence := false
	for i := from; i < len(lines); i++ {
		if IsFence(lines[i]) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if !fn(i, lines[i]) {
			return
		}
	}
}

// FindRootMarker returns the first line outside a fence that equals rootMarker after trimming,
// or -1.
func FindRootMarker(lines []string, rootMarker string) int {
	found := -1
	Walk(lines, 0, func(i int, line string) bool {
		if strings.TrimSpace(line) == rootMarker {
			found = i
			return false
		}
		return true
	})
	return found
}

// WorkbookRange returns the [start, end) line span of the workbook region.
//
// start is the root marker line, or len(lines) when there is none (append at end).
// end is the first later line outside a fence whose heading level is below
// sheetHeaderLevel, or len(lines).
func WorkbookRange(lines []string, rootMarker string, sheetHeaderLevel int) (start, end int) {
	start = FindRootMarker(lines, rootMarker)
	if start < 0 {
		return len(lines), len(lines)
	}
	end = len(lines)
	// The fence state restarts after the marker, which is never inside a fence.
	Walk(lines, start+1, func(i int, line string) bool {
		level := HeadingLevel(line)
		if level > 0 && level < sheetHeaderLevel {
			end = i
			return false
		}
		return true
	})
	return start, end
}

// Structure returns the top-level sections in file order. A section starts at a heading of
// docHeaderLevel (or the root marker) and ends on the line before the next such heading.
// Text before the first heading belongs to no section.
func Structure(lines []string, rootMarker string, docHeaderLevel int) []models.Section {
	var sections []models.Section
	open := false
	closeOpen := func(end int) {
		if !open {
			return
		}
		open = false
		last := &sections[len(sections)-1]
		last.EndLine = end
		if last.Type == models.SectionDocument && last.StartLine < end {
			last.Content = strings.Join(lines[last.StartLine+1:end+1], "\n")
		}
	}
	Walk(lines, 0, func(i int, line string) bool {
		if strings.TrimSpace(line) == rootMarker {
			closeOpen(i - 1)
			sections = append(sections, models.Section{Type: models.SectionWorkbook, StartLine: i})
			open = true
			return true
		}
		level := HeadingLevel(line)
		if level == 0 || level > docHeaderLevel {
			return true
		}
		closeOpen(i - 1)
		if IsHeading(line, docHeaderLevel) {
			sections = append(sections, models.Section{
				Type:      models.SectionDocument,
				Title:     HeadingTitle(line),
				StartLine: i,
			})
			open = true
		}
		return true
	})
	closeOpen(len(lines) - 1)
	return sections
}

// DocumentSections returns only the document sections, in file order.
func DocumentSections(lines []string, rootMarker string, docHeaderLevel int) []models.Section {
	var docs []models.Section
	for _, s := range Structure(lines, rootMarker, docHeaderLevel) {
		if s.Type == models.SectionDocument {
			docs = append(docs, s)
		}
	}
	return docs
}

// SheetHeaderLines returns the line number of each sheet heading inside the workbook region.
func SheetHeaderLines(lines []string, rootMarker string, sheetHeaderLevel int) []int {
	start, end := WorkbookRange(lines, rootMarker, sheetHeaderLevel)
	if start >= len(lines) {
		return nil
	}
	var out []int
	Walk(lines[:end], start+1, func(i int, line string) bool {
		if IsHeading(line, sheetHeaderLevel) {
			out = append(out, i)
		}
		return true
	})
	return out
}
