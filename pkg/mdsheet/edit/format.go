package edit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
)

// updateVisual runs fn on a private copy of a table's visual metadata, creating it if absent.
func updateVisual(wb models.Workbook, s, t, col int, fn func(*models.VisualMetadata) error) (models.Workbook, error) {
	return updateTable(wb, s, t, func(table models.Table) (models.Table, error) {
		if col >= 0 {
			if err := checkIndex("column", col, max(table.ColumnCount(), table.Width())); err != nil {
				return table, err
			}
		}
		meta := table.Metadata.Clone()
		created := meta.Visual == nil
		if created {
			meta.Visual = &models.VisualMetadata{}
		}
		if err := fn(meta.Visual); err != nil {
			return table, err
		}
		if v := meta.Visual; created && len(v.ColumnWidths)+len(v.Validation)+len(v.Filters)+len(v.Columns)+len(v.Extra) == 0 {
			meta.Visual = nil
		}
		table.Metadata = meta
		return table, nil
	})
}

// UpdateColumnWidth stores a column's display width.
func UpdateColumnWidth(wb models.Workbook, s, t, col int, width float64) (models.Workbook, error) {
	return updateVisual(wb, s, t, col, func(v *models.VisualMetadata) error {
		var err error
		v.ColumnWidths, err = v.ColumnWidths.With(col, width)
		return err
	})
}

// UpdateColumnFilter stores the values hidden by a column's filter. An empty list clears it.
func UpdateColumnFilter(wb models.Workbook, s, t, col int, hidden []string) (models.Workbook, error) {
	return updateVisual(wb, s, t, col, func(v *models.VisualMetadata) error {
		if len(hidden) == 0 {
			v.Filters = without(v.Filters, col)
			return nil
		}
		var err error
		v.Filters, err = v.Filters.With(col, hidden)
		return err
	})
}

// UpdateColumnFormat stores the format object of a column's visual.columns entry, keeping
// the entry's other keys. A null or empty format removes the key.
func UpdateColumnFormat(wb models.Workbook, s, t, col int, format json.RawMessage) (models.Workbook, error) {
	return updateVisual(wb, s, t, col, func(v *models.VisualMetadata) error {
		entry := map[string]json.RawMessage{}
		if raw, ok := v.Columns.Get(col); ok {
			if err := json.Unmarshal(raw, &entry); err != nil {
				return fmt.Errorf("column %d spec: %w", col, err)
			}
		}
		trimmed := bytes.TrimSpace(format)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			delete(entry, "format")
		} else {
			entry["format"] = trimmed
		}
		if len(entry) == 0 {
			v.Columns = without(v.Columns, col)
			return nil
		}
		var err error
		v.Columns, err = v.Columns.With(col, entry)
		return err
	})
}

// UpdateColumnAlign sets a column's alignment, extending the alignment list as needed.
func UpdateColumnAlign(wb models.Workbook, s, t, col int, align models.Alignment) (models.Workbook, error) {
	a, ok := models.ParseAlignment(string(align))
	if !ok {
		return wb, fmt.Errorf("unknown alignment %q", align)
	}
	return updateTable(wb, s, t, func(table models.Table) (models.Table, error) {
		if err := checkIndex("column", col, max(table.ColumnCount(), table.Width())); err != nil {
			return table, err
		}
		aligns := make([]models.Alignment, max(len(table.Alignments), col+1))
		for i := range aligns {
			aligns[i] = table.AlignmentAt(i)
		}
		aligns[col] = a
		table.Alignments = aligns
		return table, nil
	})
}

// UpdateVisualMetadata merges top-level keys into a table's visual metadata. A null value
// removes the key.
func UpdateVisualMetadata(wb models.Workbook, s, t int, visual json.RawMessage) (models.Workbook, error) {
	var changes map[string]json.RawMessage
	if err := json.Unmarshal(visual, &changes); err != nil {
		return wb, fmt.Errorf("visual metadata: %w", err)
	}
	return updateVisual(wb, s, t, -1, func(v *models.VisualMetadata) error {
		current, err := json.Marshal(v)
		if err != nil {
			return err
		}
		merged := map[string]json.RawMessage{}
		if err := json.Unmarshal(current, &merged); err != nil {
			return err
		}
		for key, value := range changes {
			if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
				delete(merged, key)
				continue
			}
			merged[key] = value
		}
		data, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, v)
	})
}

// UpdateSheetMetadata replaces a sheet's metadata.
func UpdateSheetMetadata(wb models.Workbook, s int, meta map[string]any) (models.Workbook, error) {
	return updateSheet(wb, s, func(sheet models.Sheet) (models.Sheet, error) {
		sheet.Metadata = models.CloneMap(meta)
		return sheet, nil
	})
}

func without(c models.ColumnMap, col int) models.ColumnMap {
	if _, ok := c.Get(col); !ok {
		return c
	}
	out := c.Clone()
	delete(out, strconv.Itoa(col))
	return out
}
