// Package importer renders external pantry inventories into pantry rows:
// YAML seed files for first-run setup and XLSX exports from spreadsheet
// inventories. Quantity text goes through the same parser the pantry engine
// uses, so imported rows deduct like hand-entered ones.
package importer

import (
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/hearthside/mealplan/internal/model"
	"github.com/hearthside/mealplan/internal/pantry"
	"github.com/hearthside/mealplan/internal/units"
)

// SeedFile is the YAML pantry seed format.
type SeedFile struct {
	Pantry []SeedItem `yaml:"pantry"`
}

// SeedItem is one pantry entry in a seed file.
type SeedItem struct {
	Name     string `yaml:"name"`
	Quantity string `yaml:"quantity"`
}

// ReadYAMLSeed loads a YAML seed file and returns pantry rows ready for bulk
// insert. Items without a name are skipped.
func ReadYAMLSeed(path string) ([]model.PantryRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "importer: read seed file")
	}
	return ParseYAMLSeed(data)
}

// ParseYAMLSeed parses seed file contents.
func ParseYAMLSeed(data []byte) ([]model.PantryRow, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, eris.Wrap(err, "importer: parse seed yaml")
	}

	rows := make([]model.PantryRow, 0, len(seed.Pantry))
	for _, item := range seed.Pantry {
		if strings.TrimSpace(item.Name) == "" {
			continue
		}
		rows = append(rows, NewPantryRow(item.Name, item.Quantity))
	}
	return rows, nil
}

// NewPantryRow builds a row from a display name and free-text quantity,
// filling the structured columns when the text parses.
func NewPantryRow(name, quantityText string) model.PantryRow {
	name = strings.TrimSpace(name)
	now := time.Now().UTC()
	row := model.PantryRow{
		ID:           uuid.New().String(),
		Name:         name,
		NameLower:    strings.ToLower(name),
		QuantityText: strings.TrimSpace(quantityText),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	pq := pantry.ParseQuantityText(row.QuantityText)
	if pq.Number != nil {
		row.QuantityNumber = pq.Number
		row.Unit = units.Canonical(pq.Unit)
	}
	return row
}
