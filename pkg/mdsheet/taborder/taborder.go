// Package taborder keeps the explicit display order of sheets and document sections consistent
// with their physical order in the text.
package taborder

import (
	"cmp"
	"slices"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/remap"
)

// Synthesize builds the order implied by the file structure: documents and the workbook's
// sheets interleaved as they appear. A workbook without a region in the text (not yet
// written) contributes its sheets at the end.
func Synthesize(structure []models.Section, sheetCount int) []models.TabOrderEntry {
	order := make([]models.TabOrderEntry, 0, len(structure)+sheetCount)
	docs := 0
	placed := false
	for _, s := range structure {
		switch s.Type {
		case models.SectionDocument:
			order = append(order, models.TabOrderEntry{Type: models.ItemDocument, Index: docs})
			docs++
		case models.SectionWorkbook:
			if placed {
				continue
			}
			order = appendSheets(order, sheetCount)
			placed = true
		}
	}
	if !placed {
		order = appendSheets(order, sheetCount)
	}
	return order
}

func appendSheets(order []models.TabOrderEntry, n int) []models.TabOrderEntry {
	for i := 0; i < n; i++ {
		order = append(order, models.TabOrderEntry{Type: models.ItemSheet, Index: i})
	}
	return order
}

// IsTrivial reports whether order is exactly one sheet entry per sheet in physical order.
func IsTrivial(order []models.TabOrderEntry, sheetCount int) bool {
	if len(order) != sheetCount {
		return false
	}
	for i, e := range order {
		if e.Type != models.ItemSheet || e.Index != i {
			return false
		}
	}
	return true
}

// Insert makes room for a new item of kind at logical index and places its entry at display
// position pos. A negative or past-the-end pos appends.
func Insert(order []models.TabOrderEntry, kind models.ItemType, logical, pos int) []models.TabOrderEntry {
	out := make([]models.TabOrderEntry, 0, len(order)+1)
	for _, e := range order {
		if e.Type == kind && e.Index >= logical {
			e.Index++
		}
		out = append(out, e)
	}
	entry := models.TabOrderEntry{Type: kind, Index: logical}
	if pos < 0 || pos > len(out) {
		return append(out, entry)
	}
	return slices.Insert(out, pos, entry)
}

// Remove drops the entry for a deleted item and closes the gap in its kind's indices.
// Entries of other kinds keep their indices and relative order.
func Remove(order []models.TabOrderEntry, kind models.ItemType, logical int) []models.TabOrderEntry {
	out := make([]models.TabOrderEntry, 0, len(order))
	for _, e := range order {
		if e.Type == kind {
			if e.Index == logical {
				continue
			}
			if e.Index > logical {
				e.Index--
			}
		}
		out = append(out, e)
	}
	return out
}

// Reconcile updates order after the item of kind at physical index from was moved to physical
// index to (pop then insert).
//
// Every entry of that kind is renumbered through the move. When target is set, the moved entry
// is then repositioned to display index *target; removing it from a slot before the target
// shifts the target down by one. Without a target the entries of that kind are re-sorted
// inside the slots they already occupy, so their display order follows the new physical order.
func Reconcile(order []models.TabOrderEntry, kind models.ItemType, from, to int, target *int) []models.TabOrderEntry {
	out := slices.Clone(order)
	count := from + 1
	found := false
	for _, e := range out {
		if e.Type == kind {
			found = true
			count = max(count, e.Index+1)
		}
	}
	if !found || from < 0 {
		return out
	}
	to = max(0, min(to, count-1))
	t := to
	if to > from {
		t = to + 1
	}
	m := remap.Move(count, []int{from}, t)

	moved := -1
	for i, e := range out {
		if e.Type != kind {
			continue
		}
		if e.Index == from && moved < 0 {
			moved = i
		}
		if n, ok := m.Lookup(e.Index); ok {
			out[i].Index = n
		}
	}

	if target == nil {
		return sortSlots(out, kind)
	}
	if moved < 0 {
		return out
	}
	entry := out[moved]
	out = slices.Delete(out, moved, moved+1)
	pos := *target
	if moved < pos {
		pos--
	}
	pos = max(0, min(pos, len(out)))
	return slices.Insert(out, pos, entry)
}

// Group pulls every entry of kind out of the order and reinserts them as one block at display
// position pos of the remaining list.
func Group(order []models.TabOrderEntry, kind models.ItemType, pos int) []models.TabOrderEntry {
	var block, rest []models.TabOrderEntry
	for _, e := range order {
		if e.Type == kind {
			block = append(block, e)
		} else {
			rest = append(rest, e)
		}
	}
	pos = max(0, min(pos, len(rest)))
	return slices.Concat(rest[:pos], block, rest[pos:])
}

func sortSlots(order []models.TabOrderEntry, kind models.ItemType) []models.TabOrderEntry {
	var slots []int
	var entries []models.TabOrderEntry
	for i, e := range order {
		if e.Type == kind {
			slots = append(slots, i)
			entries = append(entries, e)
		}
	}
	slices.SortStableFunc(entries, func(a, b models.TabOrderEntry) int {
		return cmp.Compare(a.Index, b.Index)
	})
	for i, slot := range slots {
		order[slot] = entries[i]
	}
	return order
}
