package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/Aquarium/internal/model"
)

// SaveLayout writes a tank layout to a JSON file.
func SaveLayout(path string, layout model.TankLayout) error {
	if err := writeJSON(path, layout); err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}
	return nil
}

// LoadLayout reads a tank layout from a JSON file. Missing settings fall
// back to the defaults so an old file still opens.
func LoadLayout(path string) (model.TankLayout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.TankLayout{}, fmt.Errorf("failed to read layout: %w", err)
	}
	layout := model.NewTankLayout()
	if err := json.Unmarshal(data, &layout); err != nil {
		return model.TankLayout{}, fmt.Errorf("failed to parse layout: %w", err)
	}
	if layout.Objects == nil {
		layout.Objects = []model.PlacedObject{}
	}
	defaults := model.DefaultSettings()
	if layout.Settings.TilesHorizontal <= 0 {
		layout.Settings.TilesHorizontal = defaults.TilesHorizontal
	}
	if layout.Settings.TilesVertical <= 0 {
		layout.Settings.TilesVertical = defaults.TilesVertical
	}
	if layout.Settings.TileSize <= 0 {
		layout.Settings.TileSize = defaults.TileSize
	}
	if layout.Settings.DefaultFootprint <= 0 {
		layout.Settings.DefaultFootprint = defaults.DefaultFootprint
	}
	return layout, nil
}
