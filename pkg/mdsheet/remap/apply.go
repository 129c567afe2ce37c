package remap

import (
	"strconv"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
)

// ApplySlice rearranges a per-index slice through m. Positions without a source (an inserted
// index, or the padding of a short input) are set to fill. An empty input stays empty.
func ApplySlice[T any](s []T, m Map, fill T) []T {
	if len(s) == 0 {
		return s
	}
	size := m.Len()
	if extra := len(s) - m.count; extra > 0 {
		size += extra
	}
	out := make([]T, size)
	for i := range out {
		out[i] = fill
	}
	for old, v := range s {
		if n, ok := m.Lookup(old); ok {
			out[n] = v
		}
	}
	return out
}

// ApplyColumnMap rewrites integer keys through m. Removed keys are dropped and
// non-integer keys are kept as they are. A nil map stays nil.
func ApplyColumnMap(c models.ColumnMap, m Map) models.ColumnMap {
	if c == nil {
		return nil
	}
	out := make(models.ColumnMap, len(c))
	for key, value := range c {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 {
			out[key] = value
			continue
		}
		if n, ok := m.Lookup(idx); ok {
			out[strconv.Itoa(n)] = value
		}
	}
	return out
}

// ApplyTable shifts every column-indexed section of table metadata: the four visual
// sub-maps and the legacy top-level columnWidths, each independently.
func ApplyTable(meta models.TableMetadata, m Map) models.TableMetadata {
	out := meta
	out.ColumnWidths = ApplyColumnMap(meta.ColumnWidths, m)
	if meta.Visual != nil {
		visual := *meta.Visual
		for _, sub := range visual.ColumnMaps() {
			*sub = ApplyColumnMap(*sub, m)
		}
		out.Visual = &visual
	}
	return out
}
