package edit

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/parser"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/patch"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/scan"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/taborder"
)

// Layout locates the workbook region and the document sections of a buffer.
type Layout struct {
	Schema         parser.Schema
	DocHeaderLevel int
}

// TextEdit is the outcome of an edit that works on the buffer text rather than the
// workbook model.
type TextEdit struct {
	// Text is the whole buffer after the edit.
	Text string
	// Patch turns the old buffer into Text.
	Patch patch.Patch
	// Workbook carries any tab order change.
	Workbook models.Workbook
	// FileChanged is false when the edit turned out to be a no-op.
	FileChanged bool
	// MetadataChanged reports that the workbook sentinel was rewritten.
	MetadataChanged bool
}

func (l Layout) structure(lines []string) []models.Section {
	return scan.Structure(lines, l.Schema.RootMarker, l.DocHeaderLevel)
}

func (l Layout) heading(title string) string {
	return strings.Repeat("#", l.DocHeaderLevel) + " " + title
}

func documents(structure []models.Section) []models.Section {
	var docs []models.Section
	for _, s := range structure {
		if s.Type == models.SectionDocument {
			docs = append(docs, s)
		}
	}
	return docs
}

func workbookSection(structure []models.Section) (models.Section, bool) {
	for _, s := range structure {
		if s.Type == models.SectionWorkbook {
			return s, true
		}
	}
	return models.Section{}, false
}

// withOrder stores a new tab order in the model and in the sentinel of the edited text.
func withOrder(before string, e TextEdit, order []models.TabOrderEntry, l Layout) (TextEdit, error) {
	e.Workbook.Metadata = e.Workbook.Metadata.WithTabOrder(order)
	e.MetadataChanged = true
	text, err := patch.WriteWorkbookMetadata(e.Text, l.Schema, e.Workbook.Metadata)
	if err != nil {
		return e, fmt.Errorf("write workbook metadata: %w", err)
	}
	if text != e.Text {
		e.Text = text
		e.Patch = patch.Whole(before, text)
	}
	return e, nil
}

// insertLines builds the patch that inserts block before line at (after the last line when
// at is past the end).
func insertLines(lines []string, at int, block []string) patch.Patch {
	n := len(lines)
	if at < n {
		return patch.Patch{StartLine: at, EndLine: at, Content: strings.Join(block, "\n") + "\n"}
	}
	last := lines[n-1]
	return patch.Patch{
		StartLine: n - 1,
		EndLine:   n - 1,
		EndCol:    utf8.RuneCountInString(last),
		Content:   last + "\n" + strings.Join(block, "\n"),
	}
}

func blank(line string) bool { return strings.TrimSpace(line) == "" }

// AddDocumentParams describes a new document section.
type AddDocumentParams struct {
	Title string
	// AfterDoc places the section after that document; past the end appends.
	AfterDoc *int
	// AfterWorkbook places the section right after the workbook region.
	AfterWorkbook bool
	// TabPosition is the display position of the new tab; nil appends it.
	TabPosition *int
}

// AddDocument inserts an empty document section. Without a placement it goes to the top of
// the buffer.
func AddDocument(text string, wb models.Workbook, l Layout, p AddDocumentParams) (TextEdit, error) {
	lines := scan.Lines(text)
	structure := l.structure(lines)
	docs := documents(structure)

	at := 0
	switch {
	case p.AfterWorkbook:
		at = len(lines)
		if ws, ok := workbookSection(structure); ok {
			at = ws.EndLine + 1
		}
	case p.AfterDoc != nil && *p.AfterDoc >= 0:
		at = len(lines)
		if *p.AfterDoc < len(docs) {
			at = docs[*p.AfterDoc].EndLine + 1
		}
	}

	block := []string{l.heading(p.Title), ""}
	if at > 0 && !blank(lines[min(at, len(lines))-1]) {
		block = slices.Insert(block, 0, "")
	}
	pt := insertLines(lines, at, block)
	e := TextEdit{Text: patch.Apply(text, pt), Patch: pt, Workbook: wb, FileChanged: true}

	if len(wb.Sheets) == 0 && wb.Metadata.TabOrder == nil {
		return e, nil
	}
	logical := 0
	for _, d := range docs {
		if d.StartLine < at {
			logical++
		}
	}
	pos := -1
	if p.TabPosition != nil {
		pos = *p.TabPosition
	}
	order := taborder.Insert(orderFor(wb, structure), models.ItemDocument, logical, pos)
	return withOrder(text, e, order, l)
}

// RenameDocument rewrites the heading line of a document section.
func RenameDocument(text string, wb models.Workbook, l Layout, n int, title string) (TextEdit, error) {
	lines := scan.Lines(text)
	docs := documents(l.structure(lines))
	if err := checkIndex("document", n, len(docs)); err != nil {
		return TextEdit{}, err
	}
	line := docs[n].StartLine
	pt := patch.Patch{
		StartLine: line,
		EndLine:   line,
		EndCol:    utf8.RuneCountInString(lines[line]),
		Content:   l.heading(title),
	}
	return TextEdit{Text: patch.Apply(text, pt), Patch: pt, Workbook: wb, FileChanged: true}, nil
}

// DeleteDocument removes a document section with its trailing blank lines, and its tab.
func DeleteDocument(text string, wb models.Workbook, l Layout, n int) (TextEdit, error) {
	lines := scan.Lines(text)
	docs := documents(l.structure(lines))
	if err := checkIndex("document", n, len(docs)); err != nil {
		return TextEdit{}, err
	}
	d := docs[n]
	pt := patch.Patch{StartLine: d.StartLine, EndLine: d.EndLine + 1}
	if d.EndLine+1 >= len(lines) {
		pt.EndLine = d.EndLine
		pt.EndCol = utf8.RuneCountInString(lines[d.EndLine])
	}
	e := TextEdit{Text: patch.Apply(text, pt), Patch: pt, Workbook: wb, FileChanged: true}
	if wb.Metadata.TabOrder == nil {
		return e, nil
	}
	return withOrder(text, e, taborder.Remove(wb.Metadata.TabOrder, models.ItemDocument, n), l)
}

// splice moves lines[s:e+1] before line target of the original text and returns the new
// lines with the block's first line. A blank line is kept on both sides of the block.
func splice(lines []string, s, e, target int) ([]string, int) {
	block := slices.Clone(lines[s : e+1])
	rest := slices.Concat(lines[:s], lines[e+1:])
	at := target
	switch {
	case target > e:
		at = target - len(block)
	case target > s:
		at = s
	}
	at = max(0, min(at, len(rest)))

	start := at
	if at < len(rest) && !blank(block[len(block)-1]) {
		block = append(block, "")
	}
	if at > 0 && !blank(rest[at-1]) {
		block = slices.Insert(block, 0, "")
		start++
	}
	return slices.Concat(rest[:at], block, rest[at:]), start
}

// MoveDocumentParams describes where a document section goes. Exactly one destination is
// used, checked in the order AfterWorkbook, BeforeWorkbook, ToDoc.
type MoveDocumentParams struct {
	From int
	// ToDoc places the section before that document; past the end appends.
	ToDoc          *int
	AfterWorkbook  bool
	BeforeWorkbook bool
	// TabTarget places the moved tab at that display position.
	TabTarget *int
}

// MoveDocumentSection moves a document section, heading and body, to a new place in the
// buffer and renumbers the tab order.
func MoveDocumentSection(text string, wb models.Workbook, l Layout, p MoveDocumentParams) (TextEdit, error) {
	lines := scan.Lines(text)
	structure := l.structure(lines)
	docs := documents(structure)
	if err := checkIndex("document", p.From, len(docs)); err != nil {
		return TextEdit{}, err
	}
	if p.ToDoc != nil && *p.ToDoc == p.From && p.TabTarget == nil {
		return TextEdit{Text: text, Workbook: wb}, nil
	}

	ws, hasWorkbook := workbookSection(structure)
	var target int
	switch {
	case p.AfterWorkbook && hasWorkbook:
		target = ws.EndLine + 1
	case p.BeforeWorkbook && hasWorkbook:
		target = ws.StartLine
	case p.ToDoc != nil && *p.ToDoc >= 0 && !p.AfterWorkbook && !p.BeforeWorkbook:
		target = len(lines)
		if *p.ToDoc < len(docs) {
			target = docs[*p.ToDoc].StartLine
		}
	default:
		return TextEdit{}, ErrInvalidTarget
	}

	d := docs[p.From]
	moved, start := splice(lines, d.StartLine, d.EndLine, target)
	after := strings.Join(moved, "\n")
	e := TextEdit{Text: after, Patch: patch.Whole(text, after), Workbook: wb, FileChanged: true}

	if wb.Metadata.TabOrder == nil && p.TabTarget == nil {
		return e, nil
	}
	to := slices.IndexFunc(documents(l.structure(moved)), func(s models.Section) bool {
		return s.StartLine == start
	})
	if to < 0 {
		to = p.From
	}
	order := taborder.Reconcile(orderFor(wb, structure), models.ItemDocument, p.From, to, p.TabTarget)
	return withOrder(text, e, order, l)
}

// MoveWorkbookParams describes where the workbook region goes.
type MoveWorkbookParams struct {
	// ToDoc is the document the region is placed before (or after, with AfterDoc).
	// len(documents) appends.
	ToDoc    int
	AfterDoc bool
	// TabTarget regroups every sheet tab as one block at that display position.
	TabTarget *int
}

// MoveWorkbookSection moves the whole workbook region relative to the document sections.
func MoveWorkbookSection(text string, wb models.Workbook, l Layout, p MoveWorkbookParams) (TextEdit, error) {
	lines := scan.Lines(text)
	structure := l.structure(lines)
	docs := documents(structure)
	ws, ok := workbookSection(structure)
	if !ok {
		return TextEdit{}, fmt.Errorf("workbook section: %w", patch.ErrNotFound)
	}
	if p.ToDoc < 0 || p.ToDoc > len(docs) {
		return TextEdit{}, &IndexError{Kind: "document", Index: p.ToDoc, Len: len(docs)}
	}

	target := len(lines)
	if p.ToDoc < len(docs) {
		target = docs[p.ToDoc].StartLine
		if p.AfterDoc {
			target = docs[p.ToDoc].EndLine + 1
		}
	}
	moved, _ := splice(lines, ws.StartLine, ws.EndLine, target)
	after := strings.Join(moved, "\n")
	e := TextEdit{Text: after, Patch: patch.Whole(text, after), Workbook: wb, FileChanged: true}

	if p.TabTarget == nil {
		return e, nil
	}
	order := taborder.Group(orderFor(wb, structure), models.ItemSheet, *p.TabTarget)
	return withOrder(text, e, order, l)
}
