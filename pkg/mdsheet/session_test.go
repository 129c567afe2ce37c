package mdsheet

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/edit"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/parser"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/patch"
)

const sample = "# Intro\n\nhello\n\n# Tables\n\n## S1\n\n| A |\n| --- |\n| 1 |\n\n# Notes\n\nbye"

func newSession(t *testing.T, text string) *Session {
	t.Helper()
	s := NewSession()
	if err := s.Initialize(text, DefaultConfig()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return s
}

// applies checks that the reported update turns before into the session's text.
func applies(t *testing.T, before string, u Update, s *Session) {
	t.Helper()
	p := patch.Patch{StartLine: u.StartLine, EndLine: u.EndLine, EndCol: u.EndCol, Content: u.Content}
	if got := patch.Apply(before, p); got != s.Text() {
		t.Errorf("update applies to %q, session holds %q", got, s.Text())
	}
}

func TestState(t *testing.T) {
	s := newSession(t, sample)
	st, err := s.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.SessionID != s.ID() || len(st.Revision) != 64 {
		t.Errorf("State() id = %q, revision = %q", st.SessionID, st.Revision)
	}
	if len(st.Workbook.Sheets) != 1 || st.Workbook.Sheets[0].HeaderLine == nil || *st.Workbook.Sheets[0].HeaderLine != 6 {
		t.Fatalf("State() sheets = %+v", st.Workbook.Sheets)
	}
	types := make([]models.SectionType, len(st.Structure))
	for i, sec := range st.Structure {
		types[i] = sec.Type
	}
	expected := []models.SectionType{models.SectionDocument, models.SectionWorkbook, models.SectionDocument}
	if len(types) != len(expected) {
		t.Fatalf("Structure = %v, expected %v", types, expected)
	}
	for i := range expected {
		if types[i] != expected[i] {
			t.Errorf("Structure[%d] = %v, expected %v", i, types[i], expected[i])
		}
	}

	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"header_line":6`) {
		t.Errorf("state JSON missing header_line: %s", data)
	}
}

func TestNotInitialized(t *testing.T) {
	s := NewSession()
	if _, err := s.InsertRow(0, 0, 0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("InsertRow before Initialize error = %v, expected ErrNotInitialized", err)
	}
	if _, err := s.State(); Code(err) != "NotInitialized" {
		t.Errorf("Code(State error) = %q, expected NotInitialized", Code(err))
	}

	s = newSession(t, sample)
	s.Reset()
	if _, err := s.FullMarkdown(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("FullMarkdown after Reset error = %v, expected ErrNotInitialized", err)
	}
}

func TestUpdateCommitsTextAndModel(t *testing.T) {
	s := newSession(t, sample)
	before := s.Text()
	revision := s.Revision()

	u, err := s.UpdateCell(0, 0, 0, 0, "x|y")
	if err != nil {
		t.Fatalf("UpdateCell: %v", err)
	}
	applies(t, before, u, s)
	if !strings.Contains(s.Text(), `| x\|y |`) {
		t.Errorf("Text() = %q, expected escaped cell", s.Text())
	}
	if !strings.HasPrefix(s.Text(), "# Intro\n\nhello\n\n") || !strings.HasSuffix(s.Text(), "\n# Notes\n\nbye") {
		t.Errorf("surrounding documents changed: %q", s.Text())
	}
	if got := s.Workbook().Sheets[0].Tables[0].Rows[0][0]; got != `x\|y` {
		t.Errorf("model cell = %q, expected %q", got, `x\|y`)
	}
	if s.Revision() == revision {
		t.Errorf("Revision() unchanged after edit")
	}
}

func TestFailedUpdateLeavesSessionUnchanged(t *testing.T) {
	s := newSession(t, sample)
	before := s.Text()
	wb := s.Workbook()

	tests := []struct {
		name string
		run  func() (Update, error)
		code string
	}{
		{"sheet out of range", func() (Update, error) { return s.UpdateCell(3, 0, 0, 0, "v") }, "IndexOutOfRange"},
		{"column out of range", func() (Update, error) { return s.UpdateColumnWidth(0, 0, 9, 100) }, "IndexOutOfRange"},
		{"move without target", func() (Update, error) { return s.MoveRows(0, 0, nil, 0) }, "InvalidTarget"},
		{"document out of range", func() (Update, error) { return s.RenameDocument(7, "x") }, "IndexOutOfRange"},
	}

	for _, tt := range tests {
		_, err := tt.run()
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if got := Code(err); got != tt.code {
			t.Errorf("%s: Code(%v) = %q, expected %q", tt.name, err, got, tt.code)
		}
		if s.Text() != before {
			t.Errorf("%s: text changed to %q", tt.name, s.Text())
		}
	}
	if len(s.Workbook().Sheets) != len(wb.Sheets) || &s.Workbook().Sheets[0] != &wb.Sheets[0] {
		t.Errorf("workbook replaced after failed edits")
	}
}

func TestDeleteLastSheetKeepsTrailingDocument(t *testing.T) {
	text := "# Tables\n\n## S1\n\n| A |\n| --- |\n| 1 |\n\n# Notes\n\nbye"
	s := newSession(t, text)

	u, err := s.DeleteSheet(0)
	if err != nil {
		t.Fatalf("DeleteSheet: %v", err)
	}
	if u.Content != "" || u.StartLine != 0 || u.EndLine != 7 {
		t.Errorf("DeleteSheet(0) = %+v, expected empty content over lines 0-7", u)
	}
	applies(t, text, u, s)
	if !strings.HasSuffix(s.Text(), "# Notes\n\nbye") || strings.Contains(s.Text(), "# Tables") {
		t.Errorf("Text() = %q", s.Text())
	}
}

func TestDocumentOperations(t *testing.T) {
	s := newSession(t, sample)

	before := s.Text()
	u, err := s.AddDocument(edit.AddDocumentParams{Title: "Appendix", AfterDoc: ptr(1)})
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if u.FileChanged == nil || !*u.FileChanged {
		t.Errorf("AddDocument fileChanged = %v", u.FileChanged)
	}
	applies(t, before, u, s)
	if !strings.HasSuffix(s.Text(), "# Appendix\n") {
		t.Errorf("Text() = %q", s.Text())
	}

	before = s.Text()
	u, err = s.MoveDocumentSection(edit.MoveDocumentParams{From: 1, ToDoc: ptr(1)})
	if err != nil {
		t.Fatalf("MoveDocumentSection: %v", err)
	}
	if u.FileChanged == nil || *u.FileChanged || s.Text() != before {
		t.Errorf("move onto itself changed the buffer: %+v", u)
	}

	r, err := s.DocumentSectionRange(0)
	if err != nil {
		t.Fatalf("DocumentSectionRange: %v", err)
	}
	if r.StartLine != 0 || r.EndLine != 3 {
		t.Errorf("DocumentSectionRange(0) = %+v", r)
	}
	if _, err := s.DocumentSectionRange(9); !errors.Is(err, ErrNotFound) {
		t.Errorf("DocumentSectionRange(9) error = %v, expected ErrNotFound", err)
	}
}

func TestSync(t *testing.T) {
	s := newSession(t, sample)
	if err := s.Sync("# Tables\n\n## A\n\n## B\n"); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := len(s.Workbook().Sheets); got != 2 {
		t.Errorf("sheets after Sync = %d, expected 2", got)
	}
}

func TestInitializeRejectsHeadingLevel(t *testing.T) {
	s := NewSession()
	err := s.Initialize(sample, Config{SheetHeaderLevel: 9})
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("Initialize error = %v, expected ErrInvalidParams", err)
	}
}

func ptr(v int) *int { return &v }

func TestTextAndModelAgreeAfterEachUpdate(t *testing.T) {
	s := newSession(t, sample)
	steps := []struct {
		name string
		run  func() (Update, error)
	}{
		{"newline", func() (Update, error) { return s.UpdateCell(0, 0, 0, 0, "line1\nline2") }},
		{"backtick", func() (Update, error) { return s.UpdateCell(0, 0, 0, 0, "it`s") }},
		{"insertColumn", func() (Update, error) { return s.InsertColumn(0, 0, 1, "B") }},
		{"padding", func() (Update, error) { return s.UpdateCell(0, 0, 0, 1, "  padded ") }},
		{"paste", func() (Update, error) {
			return s.PasteCells(0, 0, 1, 0, [][]string{{"a|b", "`x|y`"}, {"", "c\r\nd"}}, false)
		}},
		{"width", func() (Update, error) { return s.UpdateColumnWidth(0, 0, 1, 120) }},
		{"sheetMetadata", func() (Update, error) { return s.UpdateSheetMetadata(0, map[string]any{"color": "blue"}) }},
		{"addSheet", func() (Update, error) { return s.AddSheet(edit.AddSheetParams{Name: "S2"}) }},
		{"moveSheet", func() (Update, error) { return s.MoveSheet(1, 0, nil) }},
		{"tableMetadata", func() (Update, error) { return s.UpdateTableMetadata(0, 0, "T", "about T") }},
		{"sort", func() (Update, error) { return s.SortRows(1, 0, 0, false) }},
		{"addDocument", func() (Update, error) { return s.AddDocument(edit.AddDocumentParams{Title: "Appendix"}) }},
		{"moveWorkbook", func() (Update, error) { return s.MoveWorkbookSection(edit.MoveWorkbookParams{ToDoc: 0}) }},
		{"deleteColumns", func() (Update, error) { return s.DeleteColumns(1, 0, []int{0}) }},
	}

	schema := s.Config().Schema()
	for _, step := range steps {
		if _, err := step.run(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		fromText := parser.Render(parser.Parse(s.Text(), schema), schema)
		fromModel := parser.Render(s.Workbook(), schema)
		if fromText != fromModel {
			t.Errorf("%s: text parses to\n%s\nbut the model renders\n%s", step.name, fromText, fromModel)
		}
	}
}
