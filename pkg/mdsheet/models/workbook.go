package models

import "encoding/json"

const keyTabOrder = "tab_order"

// ItemType identifies the kind of a tab order entry.
type ItemType string

const (
	// ItemSheet is a sheet tab.
	ItemSheet ItemType = "sheet"
	// ItemDocument is a document section tab.
	ItemDocument ItemType = "document"
)

// TabOrderEntry is one tab in the display order.
type TabOrderEntry struct {
	// Type is the kind of item the tab points at.
	Type ItemType `json:"type"`
	// Index is the logical index: the item's position among items of the same kind.
	Index int `json:"index"`
}

// Workbook represents the parsed workbook region.
type Workbook struct {
	// Sheets contains the sheets in text order.
	Sheets []Sheet `json:"sheets"`
	// Metadata is the workbook metadata persisted in the workbook sentinel comment.
	Metadata WorkbookMetadata `json:"metadata"`
}

// WithSheets returns a copy of the workbook that owns the given sheets slice.
func (w Workbook) WithSheets(sheets []Sheet) Workbook {
	w.Sheets = sheets
	return w
}

// WorkbookMetadata holds the tab order plus any keys the engine does not interpret.
type WorkbookMetadata struct {
	// TabOrder is the explicit display order. Nil means the key is absent.
	TabOrder []TabOrderEntry
	// Extra holds unrecognized keys verbatim.
	Extra map[string]any
}

// IsEmpty reports whether nothing would be persisted.
func (m WorkbookMetadata) IsEmpty() bool {
	return m.TabOrder == nil && len(m.Extra) == 0
}

// Clone returns a deep copy.
func (m WorkbookMetadata) Clone() WorkbookMetadata {
	out := WorkbookMetadata{Extra: CloneMap(m.Extra)}
	if m.TabOrder != nil {
		out.TabOrder = append([]TabOrderEntry{}, m.TabOrder...)
	}
	return out
}

// WithTabOrder returns a copy with the tab order replaced. A nil order drops the key.
func (m WorkbookMetadata) WithTabOrder(order []TabOrderEntry) WorkbookMetadata {
	out := m.Clone()
	out.TabOrder = order
	return out
}

func (m WorkbookMetadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+1)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.TabOrder != nil {
		out[keyTabOrder] = m.TabOrder
	}
	return json.Marshal(out)
}

func (m *WorkbookMetadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = WorkbookMetadata{}
	for key, value := range raw {
		if key == keyTabOrder {
			order := []TabOrderEntry{}
			if err := json.Unmarshal(value, &order); err != nil {
				return err
			}
			if order == nil {
				order = []TabOrderEntry{}
			}
			m.TabOrder = order
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return err
		}
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[key] = v
	}
	return nil
}
