package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/Aquarium/internal/model"
)

// excelHeaders match the importer's header aliases so exported sheets
// can be imported again.
var excelHeaders = []string{"ID", "Sprite", "Col", "Row", "Footprint", "Layer"}

// ExportExcel writes the layout's objects to the first sheet of a workbook
// and coverage figures to a Summary sheet.
func ExportExcel(path string, layout model.TankLayout) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := setRow(f, sheet, 1, toCells(excelHeaders)); err != nil {
		return err
	}
	for i, o := range layout.Objects {
		row := []interface{}{o.ID, o.SpriteRef, o.OriginCol, o.OriginRow, o.Footprint, o.Layer}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet("Summary"); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	stats := LayoutStats(layout)
	summary := [][]interface{}{
		{"Name", layout.Name},
		{"Owner", layout.OwnerID},
		{"Tiles Horizontal", layout.Settings.TilesHorizontal},
		{"Tiles Vertical", layout.Settings.TilesVertical},
		{"Tile Size", layout.Settings.TileSize},
		{"Objects", stats.Objects},
		{"Occupied Tiles", stats.OccupiedTiles},
		{"Coverage %", stats.Occupancy()},
	}
	for i, row := range summary {
		if err := setRow(f, "Summary", i+1, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		ref, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to build cell reference: %w", err)
		}
		if err := f.SetCellValue(sheet, ref, v); err != nil {
			return fmt.Errorf("failed to set %s!%s: %w", sheet, ref, err)
		}
	}
	return nil
}
