package tabular

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, cells map[string]string, merges [][2]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for axis, val := range cells {
		if err := f.SetCellValue(sheet, axis, val); err != nil {
			t.Fatalf("SetCellValue(%s): %v", axis, err)
		}
	}
	for _, m := range merges {
		if err := f.MergeCell(sheet, m[0], m[1]); err != nil {
			t.Fatalf("MergeCell(%s:%s): %v", m[0], m[1], err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestFlattenPlainSheet(t *testing.T) {
	data := buildWorkbook(t, map[string]string{
		"A1": "Country", "B1": "Demand",
		"A2": "PL", "B2": "100",
		"A3": "DE", "B3": "200",
	}, nil)

	grid, err := Flatten(data)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(grid) != 3 {
		t.Fatalf("got %d rows, want 3", len(grid))
	}
	if grid[0][0] != "Country" || grid[2][1] != "200" {
		t.Errorf("grid corners wrong: %v", grid)
	}
}

func TestFlattenMergedCells(t *testing.T) {
	// A vertical merge in the Country column must propagate its value to
	// every covered row, including rows GetRows alone would not surface.
	data := buildWorkbook(t, map[string]string{
		"A1": "Country", "B1": "Demand",
		"A2": "PL",
		"B2": "100", "B3": "200", "B4": "300",
	}, [][2]string{{"A2", "A4"}})

	grid, err := Flatten(data)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(grid) < 4 {
		t.Fatalf("got %d rows, want at least 4", len(grid))
	}
	for r := 1; r <= 3; r++ {
		if grid[r][0] != "PL" {
			t.Errorf("grid[%d][0] = %q, want PL", r, grid[r][0])
		}
	}
}

func TestFlattenForwardFill(t *testing.T) {
	// Blank cells below a value are filled even without merge metadata.
	data := buildWorkbook(t, map[string]string{
		"A1": "Country", "B1": "Demand",
		"A2": "PL", "B2": "100",
		"B3": "200",
		"A4": "DE", "B4": "300",
	}, nil)

	grid, err := Flatten(data)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if grid[2][0] != "PL" {
		t.Errorf("grid[2][0] = %q, want forward-filled PL", grid[2][0])
	}
	if grid[3][0] != "DE" {
		t.Errorf("grid[3][0] = %q, want DE", grid[3][0])
	}
}

func TestFlattenEmptySheet(t *testing.T) {
	f := excelize.NewFile()
	buf, err := f.WriteToBuffer()
	f.Close()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	grid, err := Flatten(buf.Bytes())
	if err != nil {
		t.Fatalf("Flatten on empty sheet: %v", err)
	}
	if len(grid) != 0 {
		t.Errorf("got %d rows, want 0", len(grid))
	}
}

func TestFlattenRejectsGarbage(t *testing.T) {
	if _, err := Flatten([]byte("this is not a workbook")); err == nil {
		t.Fatal("expected an error for non-XLSX input")
	}
}
