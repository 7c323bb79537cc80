package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/hearthside/mealplan/internal/pantry"
)

func TestParseYAMLSeed(t *testing.T) {
	data := []byte(`
pantry:
  - name: Flour
    quantity: 2 cups
  - name: Eggs
    quantity: "12"
  - name: Olive Oil
    quantity: 500 ml
  - name: ""
    quantity: 1 cup
`)
	rows, err := ParseYAMLSeed(data)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Flour", rows[0].Name)
	assert.Equal(t, "flour", rows[0].NameLower)
	assert.Equal(t, "2 cups", rows[0].QuantityText)
	require.NotNil(t, rows[0].QuantityNumber)
	assert.InDelta(t, 2, *rows[0].QuantityNumber, 1e-9)
	assert.Equal(t, "cup", rows[0].Unit)

	assert.Equal(t, "eggs", rows[1].NameLower)
	require.NotNil(t, rows[1].QuantityNumber)
	assert.InDelta(t, 12, *rows[1].QuantityNumber, 1e-9)
	assert.Empty(t, rows[1].Unit)

	assert.Equal(t, "olive oil", rows[2].NameLower)
	assert.Equal(t, "ml", rows[2].Unit)
	assert.NotEmpty(t, rows[2].ID)
}

func TestParseYAMLSeed_UnparseableQuantityKeepsText(t *testing.T) {
	rows, err := ParseYAMLSeed([]byte("pantry:\n  - name: Salt\n    quantity: plenty\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "plenty", rows[0].QuantityText)
	assert.Nil(t, rows[0].QuantityNumber)
	assert.Empty(t, rows[0].Unit)
}

func TestParseYAMLSeed_Invalid(t *testing.T) {
	_, err := ParseYAMLSeed([]byte("pantry: [broken"))
	assert.Error(t, err)
}

func TestReadYAMLSeed_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pantry:\n  - name: Rice\n    quantity: 1 kg\n"), 0644))

	rows, err := ReadYAMLSeed(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "rice", rows[0].NameLower)
	assert.Equal(t, "kg", rows[0].Unit)
}

func TestReadYAMLSeed_MissingFile(t *testing.T) {
	_, err := ReadYAMLSeed(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "pantry.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSXPantry_WithHeader(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Pantry": {
			{"Name", "Quantity"},
			{"Flour", "2 cups"},
			{"Milk", "1 l"},
			{"", "3 cups"},
		},
	})

	rows, err := ReadXLSXPantry(path, XLSXOptions{SheetName: "Pantry"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "flour", rows[0].NameLower)
	require.NotNil(t, rows[0].QuantityNumber)
	assert.InDelta(t, 2, *rows[0].QuantityNumber, 1e-9)
	assert.Equal(t, "cup", rows[0].Unit)
	assert.Equal(t, "milk", rows[1].NameLower)
	assert.Equal(t, "l", rows[1].Unit)
}

func TestReadXLSXPantry_ReorderedHeader(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Amount", "Item"},
			{"500 g", "Butter"},
		},
	})

	rows, err := ReadXLSXPantry(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "butter", rows[0].NameLower)
	assert.Equal(t, "g", rows[0].Unit)
}

func TestReadXLSXPantry_NoHeader(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Sugar", "1 cup"},
			{"Honey", "250 ml"},
		},
	})

	rows, err := ReadXLSXPantry(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "sugar", rows[0].NameLower)
	assert.Equal(t, "honey", rows[1].NameLower)
}

func TestReadXLSXPantry_SheetNotFound(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {{"Name", "Quantity"}},
	})

	_, err := ReadXLSXPantry(path, XLSXOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadXLSXPantry_MissingFile(t *testing.T) {
	_, err := ReadXLSXPantry(filepath.Join(t.TempDir(), "nope.xlsx"), XLSXOptions{})
	assert.Error(t, err)
}

func TestImportedQuantityTextReparses(t *testing.T) {
	rows, err := ParseYAMLSeed([]byte("pantry:\n  - name: Flour\n    quantity: 1 1/2 cups\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	pq := pantry.ParseQuantityText(rows[0].QuantityText)
	require.NotNil(t, pq.Number)
	assert.InDelta(t, 1.5, *pq.Number, 1e-9)
	assert.Equal(t, "cups", pq.Unit)
}
