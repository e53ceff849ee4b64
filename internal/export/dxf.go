package export

import (
	"fmt"

	"github.com/yofu/dxf"

	"github.com/piwi3910/Aquarium/internal/model"
)

// DXF layer names
const (
	dxfObjectLayer = "OBJECTS"
	dxfLabelLayer  = "LABELS"
)

// ExportDXF draws each object's footprint as a closed square of LINE
// entities in world units, with its sprite reference as text. Axes match
// the tank: x grows with columns and y grows with rows.
func ExportDXF(path string, layout model.TankLayout) error {
	tile := layout.Settings.TileSize
	if tile <= 0 {
		return fmt.Errorf("invalid tile size %g", tile)
	}
	if len(layout.Objects) == 0 {
		return fmt.Errorf("no objects to export")
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer(dxfObjectLayer, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	for _, o := range layout.Objects {
		x0 := float64(o.OriginCol) * tile
		y0 := float64(o.OriginRow) * tile
		x1 := x0 + float64(o.Footprint)*tile
		y1 := y0 + float64(o.Footprint)*tile
		// Edges in order so chained imports close each square on its own
		edges := [][4]float64{
			{x0, y0, x1, y0},
			{x1, y0, x1, y1},
			{x1, y1, x0, y1},
			{x0, y1, x0, y0},
		}
		for _, e := range edges {
			if _, err := d.Line(e[0], e[1], 0, e[2], e[3], 0); err != nil {
				return fmt.Errorf("failed to draw %s: %w", o.ID, err)
			}
		}
	}

	if _, err := d.AddLayer(dxfLabelLayer, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	for _, o := range layout.Objects {
		if o.SpriteRef == "" {
			continue
		}
		x := (float64(o.OriginCol) + 0.5) * tile
		y := (float64(o.OriginRow) + 0.5) * tile
		if _, err := d.Text(o.SpriteRef, x, y, 0, tile/2); err != nil {
			return fmt.Errorf("failed to label %s: %w", o.ID, err)
		}
	}

	return d.SaveAs(path)
}
