package parser

import (
	"fmt"
	"strings"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/xuri/excelize/v2"
)

// ParseRange parses an A1-style reference such as "A1:C3", "$B$2:$B$9" or a single cell "D4"
// into a 0-based CellRange. The corners may be given in any order.
func ParseRange(ref string) (models.CellRange, error) {
	// Remove $ signs and an optional sheet prefix
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	if idx := strings.LastIndex(ref, "!"); idx >= 0 {
		ref = ref[idx+1:]
	}

	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return models.CellRange{}, fmt.Errorf("invalid range %q", ref)
	}
	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return models.CellRange{}, err
	}
	endCol, endRow := startCol, startRow
	if len(parts) == 2 {
		endCol, endRow, err = excelize.CellNameToCoordinates(parts[1])
		if err != nil {
			return models.CellRange{}, err
		}
	}

	return models.CellRange{
		MinR: min(startRow, endRow) - 1,
		MaxR: max(startRow, endRow) - 1,
		MinC: min(startCol, endCol) - 1,
		MaxC: max(startCol, endCol) - 1,
	}, nil
}

// FormatRange renders a CellRange in A1 notation.
func FormatRange(r models.CellRange) (string, error) {
	startCell, err := excelize.CoordinatesToCellName(r.MinC+1, r.MinR+1)
	if err != nil {
		return "", err
	}
	endCell, err := excelize.CoordinatesToCellName(r.MaxC+1, r.MaxR+1)
	if err != nil {
		return "", err
	}
	if startCell == endCell {
		return startCell, nil
	}
	return fmt.Sprintf("%s:%s", startCell, endCell), nil
}
