package importer

import (
	"path/filepath"
	"testing"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/entity"
)

func writeTestDXF(t *testing.T, build func(d *drawing.Drawing)) string {
	t.Helper()
	d := dxf.NewDrawing()
	build(d)
	path := filepath.Join(t.TempDir(), "tank.dxf")
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("failed to save DXF: %v", err)
	}
	return path
}

func TestImportDXF_SquareFromLines(t *testing.T) {
	path := writeTestDXF(t, func(d *drawing.Drawing) {
		// 60x60 square at (32, 48)
		d.Line(32, 48, 0, 92, 48, 0)
		d.Line(92, 48, 0, 92, 108, 0)
		d.Line(92, 108, 0, 32, 108, 0)
		d.Line(32, 108, 0, 32, 48, 0)
	})

	result := ImportDXF(path, 16)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(result.Objects))
	}
	obj := result.Objects[0]
	if obj.OriginCol != 2 || obj.OriginRow != 3 {
		t.Errorf("expected origin (2,3), got (%d,%d)", obj.OriginCol, obj.OriginRow)
	}
	if obj.Footprint != 4 {
		t.Errorf("expected footprint 4, got %d", obj.Footprint)
	}
}

func TestImportDXF_CircleAndOpenChain(t *testing.T) {
	path := writeTestDXF(t, func(d *drawing.Drawing) {
		d.Circle(100, 100, 0, 20)
		// Open polyline of two lines is not a shape
		d.Line(200, 0, 0, 250, 0, 0)
		d.Line(250, 0, 0, 250, 40, 0)
	})

	result := ImportDXF(path, 10)
	if len(result.Objects) != 1 {
		t.Fatalf("expected only the circle, got %d objects (errors %v)", len(result.Objects), result.Errors)
	}
	obj := result.Objects[0]
	if obj.OriginCol != 8 || obj.OriginRow != 8 || obj.Footprint != 4 {
		t.Errorf("unexpected circle object %+v", obj)
	}
}

func TestImportDXF_Errors(t *testing.T) {
	if result := ImportDXF("/nonexistent/tank.dxf", 16); len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
	if result := ImportDXF("/nonexistent/tank.dxf", 0); len(result.Errors) == 0 {
		t.Error("expected error for zero tile size")
	}
}

func TestPolylinePoints_BulgeExtendsBounds(t *testing.T) {
	lw := &entity.LwPolyline{
		Vertices: [][]float64{{20, 20}, {40, 20}, {40, 40}, {20, 40}},
		Bulges:   []float64{0, 0, 0, 1},
	}
	b := boundsOf(polylinePoints(lw))
	if b.minX > 10.001 || b.minX < 9.999 {
		t.Errorf("expected semicircle to reach x=10, got %f", b.minX)
	}
	if b.maxX != 40 || b.minY != 20 || b.maxY != 40 {
		t.Errorf("unexpected bounds %+v", b)
	}
}

func TestChainSegments_ClosedTriangle(t *testing.T) {
	loops := chainSegments([]segment{
		{point{0, 0}, point{10, 0}},
		{point{0, 10}, point{0, 0}},
		{point{10, 0}, point{0, 10}},
	})
	if len(loops) != 1 {
		t.Fatalf("expected 1 loop, got %d", len(loops))
	}
	if len(loops[0]) != 3 {
		t.Errorf("expected 3 vertices, got %d", len(loops[0]))
	}
}
