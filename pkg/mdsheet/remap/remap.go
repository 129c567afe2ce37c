// Package remap implements old-index to new-index maps for structural column (and row, sheet,
// document) edits, and applies them to per-column metadata and slices.
//
// Insert, Delete and Move all produce the same Map type; callers never shift indices by hand.
package remap

import (
	"slices"
)

// Removed is the target of an index that no longer exists.
const Removed = -1

// Map is a total function from old indices to new indices.
// Indices below the count it was built over are looked up in an explicit table; indices past it
// (stale metadata keys, over-long rows) move by a constant offset.
type Map struct {
	count int
	table []int
	tail  int
}

// Insert maps every index >= at to index+1. Index at has no source.
func Insert(count, at int) Map {
	at = clamp(at, 0, count)
	m := Map{count: count, table: make([]int, count), tail: 1}
	for i := range m.table {
		if i < at {
			m.table[i] = i
		} else {
			m.table[i] = i + 1
		}
	}
	return m
}

// Delete maps every index in removed to Removed and renumbers survivors by rank.
// Indices outside [0, count) are ignored.
func Delete(count int, removed []int) Map {
	gone := normalize(removed, count)
	m := Map{count: count, table: make([]int, count), tail: -len(gone)}
	next := 0
	for i := range m.table {
		if _, found := slices.BinarySearch(gone, i); found {
			m.table[i] = Removed
			continue
		}
		m.table[i] = next
		next++
	}
	return m
}

// Move maps the indices produced by lifting moved out of the sequence and reinserting them,
// as one block in their original relative order, before position target of the original
// sequence. Indices outside [0, count) are ignored.
func Move(count int, moved []int, target int) Map {
	sel := normalize(moved, count)
	target = clamp(target, 0, count)

	order := make([]int, 0, count)
	for i := 0; i < count; i++ {
		order = append(order, i)
	}
	// Remove in descending order so the remaining positions stay valid.
	for i := len(sel) - 1; i >= 0; i-- {
		order = slices.Delete(order, sel[i], sel[i]+1)
	}
	at := target - Before(sel, target)
	at = clamp(at, 0, len(order))
	order = slices.Insert(order, at, sel...)

	m := Map{count: count, table: make([]int, count)}
	for newIdx, oldIdx := range order {
		m.table[oldIdx] = newIdx
	}
	return m
}

// Lookup returns the new index for old, or false when old was removed or is negative.
func (m Map) Lookup(old int) (int, bool) {
	if old < 0 {
		return Removed, false
	}
	if old >= m.count {
		return old + m.tail, true
	}
	n := m.table[old]
	return n, n != Removed
}

// Len returns the number of indices after the edit.
func (m Map) Len() int { return m.count + m.tail }

// IsIdentity reports whether the map changes nothing.
func (m Map) IsIdentity() bool {
	if m.tail != 0 {
		return false
	}
	for i, n := range m.table {
		if n != i {
			return false
		}
	}
	return true
}

// Before counts the entries of the sorted selection that are strictly below target.
func Before(sorted []int, target int) int {
	n, _ := slices.BinarySearch(sorted, target)
	return n
}

// Contiguous reports whether the sorted selection is a run of consecutive indices.
func Contiguous(sorted []int) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			return false
		}
	}
	return true
}

// normalize returns the sorted, de-duplicated in-range indices.
func normalize(indices []int, count int) []int {
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < count {
			out = append(out, i)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Normalize is normalize for callers that validate selections before building a map.
func Normalize(indices []int, count int) []int { return normalize(indices, count) }

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
