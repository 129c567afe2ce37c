package models

import (
	"bytes"
	"encoding/json"
	"maps"
	"strconv"

	"github.com/tiendc/go-deepcopy"
)

// Metadata keys understood by the engine. Everything else passes through Extra.
const (
	KeyVisual             = "visual"
	KeyLegacyColumnWidths = "columnWidths"

	KeyColumnWidths = "column_widths"
	KeyValidation   = "validation"
	KeyFilters      = "filters"
	KeyColumns      = "columns"
)

// ColumnMap holds per-column values keyed by the current column index rendered as a string.
type ColumnMap map[string]json.RawMessage

// UnmarshalJSON accepts the object form and the legacy array form ([120, 80]).
func (c *ColumnMap) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*c = nil
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		out := make(ColumnMap, len(items))
		for i, item := range items {
			if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
				continue
			}
			out[strconv.Itoa(i)] = item
		}
		*c = out
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return err
	}
	*c = ColumnMap(m)
	return nil
}

// Get returns the raw value stored for a column.
func (c ColumnMap) Get(col int) (json.RawMessage, bool) {
	v, ok := c[strconv.Itoa(col)]
	return v, ok
}

// With returns a copy of the map with the column value replaced.
func (c ColumnMap) With(col int, value any) (ColumnMap, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	out := make(ColumnMap, len(c)+1)
	maps.Copy(out, c)
	out[strconv.Itoa(col)] = raw
	return out, nil
}

// Clone returns a copy that preserves nil-ness.
func (c ColumnMap) Clone() ColumnMap {
	if c == nil {
		return nil
	}
	return maps.Clone(c)
}

// ColumnSpec is the decoded form of a visual.columns entry.
type ColumnSpec struct {
	Width  *float64        `json:"width,omitempty"`
	Align  string          `json:"align,omitempty"`
	Format json.RawMessage `json:"format,omitempty"`
	Hidden *bool           `json:"hidden,omitempty"`
	Type   string          `json:"type,omitempty"`
}

// VisualMetadata is the reserved "visual" section of table metadata.
type VisualMetadata struct {
	ColumnWidths ColumnMap
	Validation   ColumnMap
	Filters      ColumnMap
	Columns      ColumnMap
	Extra        map[string]any
}

// Column decodes the visual.columns entry for a column.
func (v *VisualMetadata) Column(col int) (ColumnSpec, bool) {
	var spec ColumnSpec
	if v == nil {
		return spec, false
	}
	raw, ok := v.Columns.Get(col)
	if !ok {
		return spec, false
	}
	if err := json.Unmarshal(raw, &spec); err != nil {
		return spec, false
	}
	return spec, true
}

// ColumnMaps returns pointers to every column-indexed sub-map.
func (v *VisualMetadata) ColumnMaps() []*ColumnMap {
	return []*ColumnMap{&v.ColumnWidths, &v.Validation, &v.Filters, &v.Columns}
}

// Clone returns a deep copy.
func (v *VisualMetadata) Clone() *VisualMetadata {
	if v == nil {
		return nil
	}
	return &VisualMetadata{
		ColumnWidths: v.ColumnWidths.Clone(),
		Validation:   v.Validation.Clone(),
		Filters:      v.Filters.Clone(),
		Columns:      v.Columns.Clone(),
		Extra:        CloneMap(v.Extra),
	}
}

func (v VisualMetadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(v.Extra)+4)
	for k, val := range v.Extra {
		out[k] = val
	}
	putColumnMap(out, KeyColumnWidths, v.ColumnWidths)
	putColumnMap(out, KeyValidation, v.Validation)
	putColumnMap(out, KeyFilters, v.Filters)
	putColumnMap(out, KeyColumns, v.Columns)
	return json.Marshal(out)
}

func (v *VisualMetadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = VisualMetadata{}
	for key, value := range raw {
		var err error
		switch key {
		case KeyColumnWidths:
			err = json.Unmarshal(value, &v.ColumnWidths)
		case KeyValidation:
			err = json.Unmarshal(value, &v.Validation)
		case KeyFilters:
			err = json.Unmarshal(value, &v.Filters)
		case KeyColumns:
			err = json.Unmarshal(value, &v.Columns)
		default:
			v.Extra, err = putExtra(v.Extra, key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// TableMetadata is the typed form of table metadata.
type TableMetadata struct {
	// Visual is the reserved "visual" section; nil when absent.
	Visual *VisualMetadata
	// ColumnWidths is the legacy top-level "columnWidths" map, shifted independently of Visual.
	ColumnWidths ColumnMap
	// Extra holds unrecognized keys verbatim.
	Extra map[string]any
}

// IsEmpty reports whether nothing would be persisted.
func (m TableMetadata) IsEmpty() bool {
	return m.Visual == nil && m.ColumnWidths == nil && len(m.Extra) == 0
}

// Clone returns a deep copy.
func (m TableMetadata) Clone() TableMetadata {
	return TableMetadata{
		Visual:       m.Visual.Clone(),
		ColumnWidths: m.ColumnWidths.Clone(),
		Extra:        CloneMap(m.Extra),
	}
}

func (m TableMetadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+2)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Visual != nil {
		out[KeyVisual] = m.Visual
	}
	putColumnMap(out, KeyLegacyColumnWidths, m.ColumnWidths)
	return json.Marshal(out)
}

func (m *TableMetadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = TableMetadata{}
	for key, value := range raw {
		var err error
		switch key {
		case KeyVisual:
			if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
				continue
			}
			m.Visual = &VisualMetadata{}
			err = json.Unmarshal(value, m.Visual)
		case KeyLegacyColumnWidths:
			err = json.Unmarshal(value, &m.ColumnWidths)
		default:
			m.Extra, err = putExtra(m.Extra, key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// CloneMap deep-copies an arbitrary JSON-shaped map.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	var out map[string]any
	if err := deepcopy.Copy(&out, m); err != nil || out == nil {
		return maps.Clone(m)
	}
	return out
}

func putColumnMap(out map[string]any, key string, c ColumnMap) {
	if c != nil {
		out[key] = map[string]json.RawMessage(c)
	}
}

func putExtra(extra map[string]any, key string, value json.RawMessage) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(value, &v); err != nil {
		return extra, err
	}
	if extra == nil {
		extra = make(map[string]any)
	}
	extra[key] = v
	return extra, nil
}
