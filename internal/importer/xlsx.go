package importer

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/hearthside/mealplan/internal/model"
)

// XLSXOptions configures the spreadsheet importer.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ReadXLSXPantry reads a pantry inventory spreadsheet. The first row is
// treated as a header when it contains a "name" column; name and quantity
// columns are located by header, falling back to columns 0 and 1. Rows with
// an empty name are skipped.
func ReadXLSXPantry(path string, opts XLSXOptions) ([]model.PantryRow, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "importer: open xlsx")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	nameCol, qtyCol := 0, 1
	start := 0
	if len(sheet.Rows) > 0 {
		if n, q, ok := headerColumns(rowToStrings(sheet.Rows[0])); ok {
			nameCol, qtyCol = n, q
			start = 1
		}
	}

	var rows []model.PantryRow
	for i := start; i < len(sheet.Rows); i++ {
		cells := rowToStrings(sheet.Rows[i])
		name := cellAt(cells, nameCol)
		if name == "" {
			continue
		}
		rows = append(rows, NewPantryRow(name, cellAt(cells, qtyCol)))
	}
	return rows, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("importer: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("importer: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

// headerColumns locates the name and quantity columns in a header row. The
// row counts as a header only when a name column is present.
func headerColumns(cells []string) (nameCol, qtyCol int, ok bool) {
	nameCol, qtyCol = -1, -1
	for i, c := range cells {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "name", "ingredient", "item":
			if nameCol < 0 {
				nameCol = i
			}
		case "quantity", "qty", "amount":
			if qtyCol < 0 {
				qtyCol = i
			}
		}
	}
	if nameCol < 0 {
		return 0, 1, false
	}
	if qtyCol < 0 {
		qtyCol = nameCol + 1
	}
	return nameCol, qtyCol, true
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}
