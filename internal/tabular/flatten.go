package tabular

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Flatten resolves a single-sheet XLSX byte buffer into a plain row/column
// grid. Merged ranges are resolved by propagating the top-left cell's value
// across every cell of the range, then each column is forward-filled
// top-to-bottom so values whose merge metadata was absent or inconsistent
// are still recovered. The first grid row is the header.
//
// A workbook whose active sheet has no rows yields an empty grid, not an
// error. Container-format problems (not a valid XLSX) are returned as
// errors; callers that sniff formats surface those before calling here.
//
// Forward-fill runs after merge resolution, so a genuinely blank cell below
// a value is filled too. That is an accepted approximation for the kind of
// export this handles, not something to special-case away.
func Flatten(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("read merge ranges: %w", err)
	}

	type span struct {
		r1, c1, r2, c2 int
		val            string
	}
	spans := make([]span, 0, len(merges))
	for _, m := range merges {
		c1, r1, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			continue
		}
		c2, r2, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			continue
		}
		spans = append(spans, span{r1: r1, c1: c1, r2: r2, c2: c2, val: m.GetCellValue()})
	}

	// Square the grid. GetRows returns ragged rows and drops trailing rows
	// that only exist as merge metadata, so size to the merge extents too.
	height, width := len(rows), 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for _, s := range spans {
		if s.r2 > height {
			height = s.r2
		}
		if s.c2 > width {
			width = s.c2
		}
	}
	grid := make([][]string, height)
	for i := range grid {
		grid[i] = make([]string, width)
		if i < len(rows) {
			copy(grid[i], rows[i])
		}
	}

	for _, s := range spans {
		for r := s.r1; r <= s.r2; r++ {
			for c := s.c1; c <= s.c2; c++ {
				grid[r-1][c-1] = s.val
			}
		}
	}

	// Forward-fill each column once merges are resolved.
	for c := 0; c < width; c++ {
		last := ""
		for r := range grid {
			if grid[r][c] == "" {
				grid[r][c] = last
			} else {
				last = grid[r][c]
			}
		}
	}

	return grid, nil
}
