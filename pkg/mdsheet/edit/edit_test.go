package edit

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/parser"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/scan"
)

var schema = parser.DefaultSchema()

func ptr(i int) *int { return &i }

func sheet(i int) models.TabOrderEntry {
	return models.TabOrderEntry{Type: models.ItemSheet, Index: i}
}

func doc(i int) models.TabOrderEntry {
	return models.TabOrderEntry{Type: models.ItemDocument, Index: i}
}

func withTable(table models.Table) models.Workbook {
	return models.Workbook{Sheets: []models.Sheet{{Name: "S1", Tables: []models.Table{table}}}}
}

func sample() models.Workbook {
	return withTable(models.Table{
		Name:    "T1",
		Headers: []string{"A", "B"},
		Rows:    [][]string{{"1", "2"}},
	})
}

func widths(values map[string]string) *models.VisualMetadata {
	c := models.ColumnMap{}
	for k, v := range values {
		c[k] = json.RawMessage(v)
	}
	return &models.VisualMetadata{ColumnWidths: c}
}

func table(wb models.Workbook) models.Table { return wb.Sheets[0].Tables[0] }

func TestInsertColumnAtFront(t *testing.T) {
	orig := sample()
	orig.Sheets[0].Tables[0].Metadata.Visual = widths(map[string]string{"0": "100"})

	wb, err := InsertColumn(orig, 0, 0, 0, "")
	if err != nil {
		t.Fatalf("InsertColumn: %v", err)
	}
	got := table(wb)
	if !reflect.DeepEqual(got.Headers, []string{"", "A", "B"}) {
		t.Errorf("headers = %q", got.Headers)
	}
	if !reflect.DeepEqual(got.Rows, [][]string{{"", "1", "2"}}) {
		t.Errorf("rows = %q", got.Rows)
	}
	if raw, ok := got.Metadata.Visual.ColumnWidths.Get(1); !ok || string(raw) != "100" {
		t.Errorf("width moved to %v, expected column 1", got.Metadata.Visual.ColumnWidths)
	}
	if _, ok := got.Metadata.Visual.ColumnWidths.Get(0); ok {
		t.Errorf("column 0 still has a width")
	}
	if !reflect.DeepEqual(table(orig).Headers, []string{"A", "B"}) {
		t.Errorf("input workbook was modified: %q", table(orig).Headers)
	}
	if _, ok := table(orig).Metadata.Visual.ColumnWidths.Get(0); !ok {
		t.Errorf("input metadata was modified")
	}
}

func TestInsertColumnClamps(t *testing.T) {
	wb, _ := InsertColumn(sample(), 0, 0, 9, "C|D")
	if got := table(wb).Headers; !reflect.DeepEqual(got, []string{"A", "B", `C\|D`}) {
		t.Errorf("headers = %q", got)
	}
}

func TestDeleteAndMoveColumns(t *testing.T) {
	base := withTable(models.Table{
		Headers:  []string{"A", "B", "C"},
		Rows:     [][]string{{"a", "b", "c"}, {"x"}},
		Metadata: models.TableMetadata{Visual: widths(map[string]string{"0": "10", "2": "30"})},
	})

	moved, err := MoveColumns(base, 0, 0, []int{0}, 3)
	if err != nil {
		t.Fatalf("MoveColumns: %v", err)
	}
	mt := table(moved)
	if !reflect.DeepEqual(mt.Headers, []string{"B", "C", "A"}) {
		t.Errorf("headers = %q", mt.Headers)
	}
	if !reflect.DeepEqual(mt.Rows[0], []string{"b", "c", "a"}) {
		t.Errorf("row 0 = %q", mt.Rows[0])
	}
	w := mt.Metadata.Visual.ColumnWidths
	if a, _ := w.Get(2); string(a) != "10" {
		t.Errorf("width of A = %s, expected 10", a)
	}
	if c, _ := w.Get(1); string(c) != "30" {
		t.Errorf("width of C = %s, expected 30", c)
	}

	deleted, err := DeleteColumns(base, 0, 0, []int{0, 7})
	if err != nil {
		t.Fatalf("DeleteColumns: %v", err)
	}
	dt := table(deleted)
	if !reflect.DeepEqual(dt.Headers, []string{"B", "C"}) {
		t.Errorf("headers = %q", dt.Headers)
	}
	if len(dt.Metadata.Visual.ColumnWidths) != 1 {
		t.Errorf("widths = %v, expected only column 1", dt.Metadata.Visual.ColumnWidths)
	}
	if c, _ := dt.Metadata.Visual.ColumnWidths.Get(1); string(c) != "30" {
		t.Errorf("width of C = %s, expected 30", c)
	}
}

func TestMoveOntoItselfIsNoop(t *testing.T) {
	base := withTable(models.Table{
		Headers: []string{"N"},
		Rows:    [][]string{{"0"}, {"1"}, {"2"}, {"3"}},
	})
	for _, target := range []int{1, 2, 3} {
		wb, err := MoveRows(base, 0, 0, []int{1, 2}, target)
		if err != nil {
			t.Fatalf("MoveRows: %v", err)
		}
		if !reflect.DeepEqual(table(wb).Rows, table(base).Rows) {
			t.Errorf("MoveRows([1 2], %d) = %q, expected unchanged", target, table(wb).Rows)
		}
	}
}

func TestMoveRows(t *testing.T) {
	base := withTable(models.Table{
		Headers: []string{"N"},
		Rows:    [][]string{{"0"}, {"1"}, {"2"}, {"3"}},
	})
	tests := []struct {
		rows     []int
		target   int
		expected []string
	}{
		{[]int{0}, 3, []string{"1", "2", "0", "3"}},
		{[]int{3}, 0, []string{"3", "0", "1", "2"}},
		{[]int{0, 2}, 4, []string{"1", "3", "0", "2"}},
		{[]int{0, 9}, 2, []string{"1", "0", "2", "3"}},
	}

	for _, tt := range tests {
		wb, err := MoveRows(base, 0, 0, tt.rows, tt.target)
		if err != nil {
			t.Fatalf("MoveRows(%v, %d): %v", tt.rows, tt.target, err)
		}
		var got []string
		for _, r := range table(wb).Rows {
			got = append(got, r[0])
		}
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("MoveRows(%v, %d) = %q, expected %q", tt.rows, tt.target, got, tt.expected)
		}
	}

	if _, err := MoveRows(base, 0, 0, nil, 1); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("MoveRows(nil) error = %v, expected ErrInvalidTarget", err)
	}
}

func TestInsertAndDeleteRows(t *testing.T) {
	base := withTable(models.Table{
		Headers: []string{"N", "M"},
		Rows:    [][]string{{"0"}, {"1"}, {"2"}, {"3"}},
	})
	wb, _ := InsertRow(base, 0, 0, 1)
	if got := table(wb).Rows; len(got) != 5 || len(got[1]) != 2 || got[2][0] != "1" {
		t.Errorf("InsertRow = %q", got)
	}
	wb, _ = DeleteRows(base, 0, 0, []int{1, 3, 9})
	if got := table(wb).Rows; !reflect.DeepEqual(got, [][]string{{"0"}, {"2"}}) {
		t.Errorf("DeleteRows = %q", got)
	}
}

func TestMoveCells(t *testing.T) {
	base := withTable(models.Table{
		Headers: []string{"X", "Y", "Z"},
		Rows:    [][]string{{"a", "b", "c"}, {"d", "e", "f"}, {"g", "h", "i"}},
	})

	wb, err := MoveCells(base, 0, 0, models.CellRange{MinR: 0, MaxR: 1, MinC: 0, MaxC: 0}, 1, 0)
	if err != nil {
		t.Fatalf("MoveCells: %v", err)
	}
	expected := [][]string{{"", "b", "c"}, {"a", "e", "f"}, {"d", "h", "i"}}
	if got := table(wb).Rows; !reflect.DeepEqual(got, expected) {
		t.Errorf("MoveCells = %q, expected %q", got, expected)
	}

	wb, err = MoveCells(base, 0, 0, models.CellRange{MinR: 0, MaxR: 0, MinC: 2, MaxC: 2}, 3, 3)
	if err != nil {
		t.Fatalf("MoveCells: %v", err)
	}
	grown := table(wb)
	if len(grown.Rows) != 4 || grown.Rows[3][3] != "c" || grown.Rows[0][2] != "" {
		t.Errorf("MoveCells grow = %q", grown.Rows)
	}
	if len(grown.Headers) != 4 || grown.Headers[3] != "Col 4" {
		t.Errorf("headers = %q", grown.Headers)
	}

	if _, err := MoveCells(base, 0, 0, models.CellRange{MinR: 1, MaxR: 0}, 0, 0); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("inverted range error = %v, expected ErrInvalidTarget", err)
	}
}

func TestUpdateCell(t *testing.T) {
	wb, err := UpdateCell(sample(), 0, 0, 2, 3, "x|y", schema)
	if err != nil {
		t.Fatalf("UpdateCell: %v", err)
	}
	got := table(wb)
	if len(got.Rows) != 3 || got.Rows[2][3] != `x\|y` {
		t.Errorf("rows = %q", got.Rows)
	}
	if len(got.Headers) != 4 {
		t.Errorf("headers = %q", got.Headers)
	}

	wb, _ = UpdateCell(sample(), 0, 0, HeaderRow, 0, "Name", schema)
	if h := table(wb).Headers[0]; h != "Name" {
		t.Errorf("header = %q, expected Name", h)
	}

	var ie *IndexError
	if _, err := UpdateCell(sample(), 1, 0, 0, 0, "v", schema); !errors.As(err, &ie) || ie.Kind != "sheet" {
		t.Errorf("UpdateCell(sheet 1) error = %v, expected sheet IndexError", err)
	}
	if _, err := UpdateCell(sample(), 0, 3, 0, 0, "v", schema); !errors.As(err, &ie) || ie.Kind != "table" {
		t.Errorf("UpdateCell(table 3) error = %v, expected table IndexError", err)
	}
}

func TestPasteCells(t *testing.T) {
	wb, err := PasteCells(sample(), 0, 0, 0, 1, [][]string{{"H1", "H2"}, {"p", "q"}, {"r"}}, true, schema)
	if err != nil {
		t.Fatalf("PasteCells: %v", err)
	}
	got := table(wb)
	if !reflect.DeepEqual(got.Headers, []string{"A", "H1", "H2"}) {
		t.Errorf("headers = %q", got.Headers)
	}
	if !reflect.DeepEqual(got.Rows, [][]string{{"1", "p", "q"}, {"", "r", ""}}) {
		t.Errorf("rows = %q", got.Rows)
	}
}

func TestCellValuesParseBack(t *testing.T) {
	keep := schema
	keep.StripWhitespace = false

	tests := []struct {
		value    string
		schema   parser.Schema
		expected string
	}{
		{"line1\nline2", schema, "line1<br>line2"},
		{"it`s", schema, "it\\`s"},
		{" padded ", schema, "padded"},
		{" padded ", keep, " padded "},
		{"`a|b`", schema, "`a|b`"},
	}

	for _, tt := range tests {
		wb, err := UpdateCell(withTable(models.Table{
			Headers: []string{"A", "B", "C"},
			Rows:    [][]string{{"1", "2", "3"}},
		}), 0, 0, 0, 0, tt.value, tt.schema)
		if err != nil {
			t.Fatalf("UpdateCell(%q): %v", tt.value, err)
		}
		if got := table(wb).Rows[0]; !reflect.DeepEqual(got, []string{tt.expected, "2", "3"}) {
			t.Errorf("UpdateCell(%q) row = %q, expected first cell %q", tt.value, got, tt.expected)
		}
		rendered := parser.Render(wb, tt.schema)
		if again := parser.Render(parser.Parse(rendered, tt.schema), tt.schema); again != rendered {
			t.Errorf("UpdateCell(%q) does not parse back:\n%s\nvs\n%s", tt.value, rendered, again)
		}
	}

	wb, _ := PasteCells(sample(), 0, 0, 0, 0, [][]string{{"a\r\nb ", " c|d"}}, false, schema)
	if got := table(wb).Rows[0]; !reflect.DeepEqual(got, []string{"a<br>b", `c\|d`}) {
		t.Errorf("PasteCells row = %q", got)
	}
}

func TestClearColumns(t *testing.T) {
	wb, _ := ClearColumns(sample(), 0, 0, []int{1, 5})
	if got := table(wb).Rows; !reflect.DeepEqual(got, [][]string{{"1", ""}}) {
		t.Errorf("ClearColumns = %q", got)
	}
}

func column(wb models.Workbook) []string {
	var out []string
	for _, r := range table(wb).Rows {
		out = append(out, r[0])
	}
	return out
}

func TestSortRows(t *testing.T) {
	numbers := withTable(models.Table{
		Headers: []string{"N"},
		Rows:    [][]string{{"1,000"}, {"20"}, {""}, {"3"}},
	})
	words := withTable(models.Table{
		Headers: []string{"W"},
		Rows:    [][]string{{"b"}, {"A"}, {"c"}},
	})
	typed := withTable(models.Table{
		Headers: []string{"S"},
		Rows:    [][]string{{"9"}, {"10"}},
		Metadata: models.TableMetadata{Visual: &models.VisualMetadata{
			Columns: models.ColumnMap{"0": json.RawMessage(`{"type":"string"}`)},
		}},
	})

	tests := []struct {
		name      string
		wb        models.Workbook
		ascending bool
		expected  []string
	}{
		{"numeric ascending", numbers, true, []string{"", "3", "20", "1,000"}},
		{"numeric descending", numbers, false, []string{"1,000", "20", "3", ""}},
		{"text ascending", words, true, []string{"A", "b", "c"}},
		{"declared text type", typed, true, []string{"10", "9"}},
	}

	for _, tt := range tests {
		wb, err := SortRows(tt.wb, 0, 0, 0, tt.ascending)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got := column(wb); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("%s: SortRows = %q, expected %q", tt.name, got, tt.expected)
		}
	}
}

func TestSortRowsDescendingKeepsTies(t *testing.T) {
	wb := withTable(models.Table{
		Headers: []string{"K", "ID"},
		Rows:    [][]string{{"b", "1"}, {"a", "2"}, {"b", "3"}, {"a", "4"}},
	})
	wb, err := SortRows(wb, 0, 0, 0, false)
	if err != nil {
		t.Fatalf("SortRows: %v", err)
	}
	var ids []string
	for _, r := range table(wb).Rows {
		ids = append(ids, r[1])
	}
	if expected := []string{"1", "3", "2", "4"}; !reflect.DeepEqual(ids, expected) {
		t.Errorf("SortRows(descending) ids = %q, expected %q", ids, expected)
	}
}

func TestColumnFormatting(t *testing.T) {
	wb, err := UpdateColumnWidth(sample(), 0, 0, 0, 120)
	if err != nil {
		t.Fatalf("UpdateColumnWidth: %v", err)
	}
	if w, _ := table(wb).Metadata.Visual.ColumnWidths.Get(0); string(w) != "120" {
		t.Errorf("width = %s, expected 120", w)
	}

	wb, _ = UpdateColumnFilter(sample(), 0, 0, 1, nil)
	if table(wb).Metadata.Visual != nil {
		t.Errorf("clearing an absent filter created visual metadata")
	}
	wb, _ = UpdateColumnFilter(sample(), 0, 0, 1, []string{"x"})
	if f, _ := table(wb).Metadata.Visual.Filters.Get(1); string(f) != `["x"]` {
		t.Errorf("filter = %s", f)
	}

	wb, _ = UpdateColumnFormat(sample(), 0, 0, 1, json.RawMessage(`{"decimals":2}`))
	spec, ok := table(wb).Metadata.Visual.Column(1)
	if !ok || string(spec.Format) != `{"decimals":2}` {
		t.Errorf("format = %s", spec.Format)
	}
	wb, _ = UpdateColumnFormat(wb, 0, 0, 1, json.RawMessage(`null`))
	if _, ok := table(wb).Metadata.Visual.Column(1); ok {
		t.Errorf("format entry not removed")
	}

	wb, _ = UpdateColumnAlign(sample(), 0, 0, 1, models.AlignCenter)
	if got := table(wb).Alignments; !reflect.DeepEqual(got, []models.Alignment{models.AlignDefault, models.AlignCenter}) {
		t.Errorf("alignments = %q", got)
	}
	if _, err := UpdateColumnAlign(sample(), 0, 0, 1, "middle"); err == nil {
		t.Errorf("UpdateColumnAlign(middle) succeeded")
	}

	var ie *IndexError
	if _, err := UpdateColumnWidth(sample(), 0, 0, 5, 10); !errors.As(err, &ie) || ie.Kind != "column" {
		t.Errorf("UpdateColumnWidth(5) error = %v, expected column IndexError", err)
	}
}

func TestUpdateVisualMetadata(t *testing.T) {
	base := sample()
	base.Sheets[0].Tables[0].Metadata.Visual = widths(map[string]string{"0": "100"})
	wb, err := UpdateVisualMetadata(base, 0, 0, json.RawMessage(`{"filters":{"1":["x"]},"column_widths":null,"theme":"dark"}`))
	if err != nil {
		t.Fatalf("UpdateVisualMetadata: %v", err)
	}
	v := table(wb).Metadata.Visual
	if v.ColumnWidths != nil {
		t.Errorf("column_widths = %v, expected removed", v.ColumnWidths)
	}
	if _, ok := v.Filters.Get(1); !ok {
		t.Errorf("filters = %v", v.Filters)
	}
	if v.Extra["theme"] != "dark" {
		t.Errorf("extra = %v", v.Extra)
	}
}

func TestAddSheet(t *testing.T) {
	wb, err := AddSheet(sample(), AddSheetParams{}, nil)
	if err != nil {
		t.Fatalf("AddSheet: %v", err)
	}
	if len(wb.Sheets) != 2 || wb.Sheets[1].Name != "Sheet 2" {
		t.Fatalf("sheets = %+v", wb.Sheets)
	}
	added := wb.Sheets[1].Tables[0]
	if !reflect.DeepEqual(added.Headers, DefaultHeaders) || len(added.Rows) != 1 {
		t.Errorf("new table = %+v", added)
	}
	if wb.Metadata.TabOrder != nil {
		t.Errorf("tab order = %v, expected none", wb.Metadata.TabOrder)
	}

	wb, _ = AddSheet(sample(), AddSheetParams{Name: "First", Index: ptr(0), TabPosition: ptr(0)}, nil)
	if wb.Sheets[0].Name != "First" || wb.Metadata.TabOrder != nil {
		t.Errorf("AddSheet at 0 = %q, order %v", wb.Sheets[0].Name, wb.Metadata.TabOrder)
	}

	structure := scan.Structure(scan.Lines(docText), "# Tables", 1)
	wb, _ = AddSheet(sample(), AddSheetParams{Name: "New"}, structure)
	expected := []models.TabOrderEntry{doc(0), sheet(0), doc(1), sheet(1)}
	if !reflect.DeepEqual(wb.Metadata.TabOrder, expected) {
		t.Errorf("tab order = %v, expected %v", wb.Metadata.TabOrder, expected)
	}
}

func threeSheets() models.Workbook {
	wb := models.Workbook{Sheets: []models.Sheet{{Name: "A"}, {Name: "B"}, {Name: "C"}}}
	wb.Metadata.TabOrder = []models.TabOrderEntry{sheet(0), doc(0), sheet(1), sheet(2)}
	return wb
}

func names(wb models.Workbook) []string {
	var out []string
	for _, s := range wb.Sheets {
		out = append(out, s.Name)
	}
	return out
}

func TestMoveSheet(t *testing.T) {
	wb, err := MoveSheet(threeSheets(), 0, 2, nil, nil)
	if err != nil {
		t.Fatalf("MoveSheet: %v", err)
	}
	if got := names(wb); !reflect.DeepEqual(got, []string{"B", "C", "A"}) {
		t.Errorf("sheets = %q", got)
	}
	if expected := []models.TabOrderEntry{sheet(0), doc(0), sheet(1), sheet(2)}; !reflect.DeepEqual(wb.Metadata.TabOrder, expected) {
		t.Errorf("tab order = %v, expected %v", wb.Metadata.TabOrder, expected)
	}

	wb, _ = MoveSheet(threeSheets(), 0, 2, ptr(0), nil)
	if expected := []models.TabOrderEntry{sheet(2), doc(0), sheet(0), sheet(1)}; !reflect.DeepEqual(wb.Metadata.TabOrder, expected) {
		t.Errorf("tab order with target = %v, expected %v", wb.Metadata.TabOrder, expected)
	}

	wb, _ = MoveSheet(threeSheets(), 2, 99, nil, nil)
	if got := names(wb); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("clamped move = %q", got)
	}

	var ie *IndexError
	if _, err := MoveSheet(threeSheets(), 3, 0, nil, nil); !errors.As(err, &ie) {
		t.Errorf("MoveSheet(3) error = %v, expected IndexError", err)
	}
}

func TestDeleteSheet(t *testing.T) {
	wb, err := DeleteSheet(threeSheets(), 1)
	if err != nil {
		t.Fatalf("DeleteSheet: %v", err)
	}
	if got := names(wb); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("sheets = %q", got)
	}
	if expected := []models.TabOrderEntry{sheet(0), doc(0), sheet(1)}; !reflect.DeepEqual(wb.Metadata.TabOrder, expected) {
		t.Errorf("tab order = %v, expected %v", wb.Metadata.TabOrder, expected)
	}
}

func TestTables(t *testing.T) {
	wb, _ := AddTable(sample(), 0, "", nil)
	if got := wb.Sheets[0].Tables; len(got) != 2 || got[1].Name != "New Table 2" {
		t.Errorf("AddTable = %+v", got)
	}
	wb, _ = RenameTable(wb, 0, 1, "Renamed")
	wb, _ = UpdateTableMetadata(wb, 0, 0, "First", "about")
	if got := wb.Sheets[0].Tables; got[1].Name != "Renamed" || got[0].Description != "about" {
		t.Errorf("tables = %+v", got)
	}
	wb, _ = DeleteTable(wb, 0, 0)
	if got := wb.Sheets[0].Tables; len(got) != 1 || got[0].Name != "Renamed" {
		t.Errorf("DeleteTable = %+v", got)
	}
	wb, _ = RenameSheet(wb, 0, "Main")
	if wb.Sheets[0].Name != "Main" {
		t.Errorf("RenameSheet = %q", wb.Sheets[0].Name)
	}
}
