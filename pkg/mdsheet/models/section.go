package models

// SectionType identifies a top-level region of the buffer.
type SectionType string

const (
	SectionWorkbook SectionType = "workbook"
	SectionDocument SectionType = "document"
)

// Section is a derived top-level region. It is computed from text and never stored.
type Section struct {
	Type      SectionType `json:"type"`
	Title     string      `json:"title,omitempty"`
	Content   string      `json:"content,omitempty"`
	StartLine int         `json:"startLine"`
	EndLine   int         `json:"endLine"`
}
