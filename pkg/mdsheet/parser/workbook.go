package parser

import (
	"encoding/json"
	"strings"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/scan"
)

// Parse extracts the workbook region of text. Text without a root marker yields an
// empty workbook.
func Parse(text string, schema Schema) models.Workbook {
	lines := scan.Lines(text)
	start, end := scan.WorkbookRange(lines, schema.RootMarker, schema.SheetHeaderLevel)
	p := &parseState{schema: schema}
	if start >= len(lines) {
		return p.wb
	}

	inFence := false
	for i := start + 1; i < end; {
		line := lines[i]
		if scan.IsFence(line) {
			inFence = !inFence
			p.text(line)
			i++
			continue
		}
		if inFence {
			p.text(line)
			i++
			continue
		}

		switch {
		case scan.IsHeading(line, schema.SheetHeaderLevel):
			p.flush()
			p.wb.Sheets = append(p.wb.Sheets, models.Sheet{Name: scan.HeadingTitle(line), Tables: []models.Table{}})
		case len(p.wb.Sheets) > 0 && scan.IsHeading(line, schema.TableHeaderLevel):
			p.flush()
			p.pending = &models.Table{Name: scan.HeadingTitle(line)}
		case p.comment(line):
		case len(p.wb.Sheets) > 0 && tableAt(lines, i, end, schema):
			table, next := parseTable(lines, i, end, schema)
			p.add(table)
			i = next
			continue
		default:
			p.text(line)
		}
		i++
	}
	p.flush()
	return p.wb
}

type parseState struct {
	schema  Schema
	wb      models.Workbook
	pending *models.Table
	desc    []string
}

func (p *parseState) sheet() *models.Sheet {
	if len(p.wb.Sheets) == 0 {
		return nil
	}
	return &p.wb.Sheets[len(p.wb.Sheets)-1]
}

// text collects description lines between a table heading and its table.
func (p *parseState) text(line string) {
	if p.pending != nil && p.schema.CaptureDescription {
		p.desc = append(p.desc, line)
	}
}

// add appends a parsed table, giving it the pending heading and description.
func (p *parseState) add(table models.Table) {
	if p.pending != nil {
		table.Name = p.pending.Name
		table.Description = p.description()
		p.pending = nil
		p.desc = nil
	}
	s := p.sheet()
	s.Tables = append(s.Tables, table)
}

// flush keeps a table heading that never got a table as a header-less table.
func (p *parseState) flush() {
	if p.pending == nil {
		return
	}
	table := *p.pending
	table.Description = p.description()
	table.Rows = [][]string{}
	p.pending = nil
	p.desc = nil
	s := p.sheet()
	s.Tables = append(s.Tables, table)
}

func (p *parseState) description() string {
	return strings.TrimSpace(strings.Join(p.desc, "\n"))
}

// comment applies a metadata sentinel. Unparseable payloads are treated as text.
func (p *parseState) comment(line string) bool {
	scope, payload, ok := ParseComment(line)
	if !ok {
		return false
	}
	switch scope {
	case ScopeWorkbook:
		var meta models.WorkbookMetadata
		if err := json.Unmarshal(payload, &meta); err != nil {
			return false
		}
		p.wb.Metadata = meta
	case ScopeSheet:
		s := p.sheet()
		if s == nil {
			return false
		}
		var meta map[string]any
		if err := json.Unmarshal(payload, &meta); err != nil {
			return false
		}
		s.Metadata = meta
	case ScopeTable:
		p.flush()
		s := p.sheet()
		if s == nil || len(s.Tables) == 0 {
			return false
		}
		var meta models.TableMetadata
		if err := json.Unmarshal(payload, &meta); err != nil {
			return false
		}
		s.Tables[len(s.Tables)-1].Metadata = meta
	}
	return true
}

// Render produces the workbook region text, starting with the root marker and without a
// trailing newline. Sentinel comments are written only for non-empty metadata.
func Render(wb models.Workbook, schema Schema) string {
	var out []string
	block := func(lines ...string) {
		out = append(out, "")
		out = append(out, lines...)
	}
	out = append(out, schema.RootMarker)

	for _, s := range wb.Sheets {
		block(heading(schema.SheetHeaderLevel, s.Name))
		if len(s.Metadata) > 0 {
			if c, err := Comment(ScopeSheet, s.Metadata); err == nil {
				block(c)
			}
		}
		for _, t := range s.Tables {
			if t.Name != "" {
				block(heading(schema.TableHeaderLevel, t.Name))
				if t.Description != "" {
					block(t.Description)
				}
			}
			if len(t.Headers) == 0 {
				if t.Name == "" {
					continue
				}
			} else {
				block(renderTable(t, schema)...)
			}
			if !t.Metadata.IsEmpty() {
				if c, err := Comment(ScopeTable, t.Metadata); err == nil {
					block(c)
				}
			}
		}
	}

	if !wb.Metadata.IsEmpty() {
		if c, err := Comment(ScopeWorkbook, wb.Metadata); err == nil {
			block(c)
		}
	}
	return strings.Join(out, "\n")
}
