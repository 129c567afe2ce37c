package models

// Sheet represents a named group of tables under a sheet heading.
type Sheet struct {
	// Name is the sheet heading text.
	Name string `json:"name"`
	// Tables contains the tables of the sheet in text order.
	Tables []Table `json:"tables"`
	// Metadata is the opaque sheet metadata persisted in the sheet sentinel comment.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// WithTables returns a copy of the sheet that owns the given tables slice.
func (s Sheet) WithTables(tables []Table) Sheet {
	s.Tables = tables
	return s
}
