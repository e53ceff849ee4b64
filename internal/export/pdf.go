// Package export writes tank layouts to PDF, label sheets, Excel and DXF.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/Aquarium/internal/model"
)

// objectColor is an RGB fill for a placed object.
type objectColor struct {
	R, G, B int
}

// layerColors gives each render layer its own fill.
var layerColors = []objectColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF renders a tank layout: one page with the grid and every
// object, followed by a summary page with coverage and an object table.
func ExportPDF(path string, layout model.TankLayout) error {
	s := layout.Settings
	if s.TilesHorizontal <= 0 || s.TilesVertical <= 0 {
		return fmt.Errorf("layout has no tank area")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderTankPage(pdf, layout)

	pdf.AddPage()
	renderSummaryPage(pdf, layout)

	return pdf.OutputFileAndClose(path)
}

// LayoutStats computes coverage from a layout's records.
func LayoutStats(layout model.TankLayout) model.LayoutStats {
	covered := map[model.Coord]bool{}
	for _, o := range layout.Objects {
		for _, c := range o.Cells() {
			covered[c] = true
		}
	}
	return model.LayoutStats{
		Objects:       len(layout.Objects),
		OccupiedTiles: len(covered),
		TotalTiles:    layout.Settings.TilesHorizontal * layout.Settings.TilesVertical,
	}
}

func colorFor(layer int) objectColor {
	if layer < 0 {
		layer = -layer
	}
	return layerColors[layer%len(layerColors)]
}

// renderTankPage draws the tank grid and objects on the current page.
func renderTankPage(pdf *fpdf.Fpdf, layout model.TankLayout) {
	s := layout.Settings
	stats := LayoutStats(layout)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s (%d x %d tiles)", layout.Name, s.TilesHorizontal, s.TilesVertical)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	line := fmt.Sprintf("Objects: %d | Occupied: %d / %d tiles | Coverage: %.1f%%",
		stats.Objects, stats.OccupiedTiles, stats.TotalTiles, stats.Occupancy())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, line, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	tile := math.Min(drawWidth/float64(s.TilesHorizontal), drawHeight/float64(s.TilesVertical))
	canvasW := float64(s.TilesHorizontal) * tile
	canvasH := float64(s.TilesVertical) * tile
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Water
	pdf.SetFillColor(200, 230, 250)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	// Tile grid
	pdf.SetDrawColor(170, 200, 220)
	pdf.SetLineWidth(0.1)
	for c := 1; c < s.TilesHorizontal; c++ {
		x := offsetX + float64(c)*tile
		pdf.Line(x, offsetY, x, offsetY+canvasH)
	}
	for r := 1; r < s.TilesVertical; r++ {
		y := offsetY + float64(r)*tile
		pdf.Line(offsetX, y, offsetX+canvasW, y)
	}

	for _, o := range layout.Objects {
		col := colorFor(o.Layer)
		ox := offsetX + float64(o.OriginCol)*tile
		oy := offsetY + float64(o.OriginRow)*tile
		size := float64(o.Footprint) * tile

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(ox, oy, size, size, "FD")

		if size > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(size))
			pdf.SetTextColor(0, 0, 0)
			w := pdf.GetStringWidth(o.ID)
			if w < size-1 {
				pdf.SetXY(ox+(size-w)/2, oy+size/2-2)
				pdf.CellFormat(w, 4, o.ID, "", 0, "C", false, 0, "")
			}
		}
	}

	drawLegend(pdf, layout.Objects, offsetY+canvasH+5)
}

// drawLegend lists each object with its colour swatch under the tank.
func drawLegend(pdf *fpdf.Fpdf, objects []model.PlacedObject, startY float64) {
	if len(objects) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Objects:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight
	for _, o := range objects {
		col := colorFor(o.Layer)
		label := fmt.Sprintf("%s %s (%dx%d)", o.ID, o.SpriteRef, o.Footprint, o.Footprint)
		labelW := pdf.GetStringWidth(label) + 6
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}
}

// renderSummaryPage draws coverage figures and the object table.
func renderSummaryPage(pdf *fpdf.Fpdf, layout model.TankLayout) {
	stats := LayoutStats(layout)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Tank Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	items := []struct{ label, value string }{
		{"Owner", layout.OwnerID},
		{"Tank Size", fmt.Sprintf("%d x %d tiles (%.0f x %.0f units)",
			layout.Settings.TilesHorizontal, layout.Settings.TilesVertical,
			layout.Settings.WorldWidth(), layout.Settings.WorldHeight())},
		{"Objects", fmt.Sprintf("%d", stats.Objects)},
		{"Coverage", fmt.Sprintf("%.1f%% (%d tiles)", stats.Occupancy(), stats.OccupiedTiles)},
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(120, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}
	y += 5

	colWidths := []float64{30, 90, 35, 35, 30, 30}
	headers := []string{"ID", "Sprite", "Column", "Row", "Footprint", "Layer"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, h := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, h, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, o := range layout.Objects {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
		}
		row := []string{
			o.ID,
			o.SpriteRef,
			fmt.Sprintf("%d", o.OriginCol),
			fmt.Sprintf("%d", o.OriginRow),
			fmt.Sprintf("%d", o.Footprint),
			fmt.Sprintf("%d", o.Layer),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by Aquarium", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// labelFontSize picks a font size that fits inside a square of side size mm.
func labelFontSize(size float64) float64 {
	switch {
	case size > 40:
		return 8
	case size > 20:
		return 7
	default:
		return 6
	}
}
