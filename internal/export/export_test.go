package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/Aquarium/internal/importer"
	"github.com/piwi3910/Aquarium/internal/model"
)

// buildTestLayout creates a small tank with non-touching objects.
func buildTestLayout() model.TankLayout {
	layout := model.NewTankLayout()
	layout.Name = "Reef"
	layout.OwnerID = "alice"
	layout.Settings = model.WorldSettings{TilesHorizontal: 30, TilesVertical: 20, TileSize: 16, DefaultFootprint: 6}
	layout.Objects = []model.PlacedObject{
		{ID: "castle01", OwnerID: "alice", SpriteRef: "decor/castle.png", OriginCol: 0, OriginRow: 0, Footprint: 8, Layer: 1},
		{ID: "rock0001", OwnerID: "alice", SpriteRef: "decor/rock.png", OriginCol: 12, OriginRow: 2, Footprint: 3, Layer: 0},
		{ID: "diver001", OwnerID: "alice", SpriteRef: "decor/diver.png", OriginCol: 20, OriginRow: 10, Footprint: 5, Layer: 2},
	}
	return layout
}

func assertNonEmptyFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("output file is empty")
	}
}

// ─── Stats ─────────────────────────────────────────────────

func TestLayoutStats(t *testing.T) {
	stats := LayoutStats(buildTestLayout())
	if stats.Objects != 3 {
		t.Errorf("expected 3 objects, got %d", stats.Objects)
	}
	if stats.OccupiedTiles != 64+9+25 {
		t.Errorf("expected 98 tiles, got %d", stats.OccupiedTiles)
	}
	if stats.TotalTiles != 600 {
		t.Errorf("expected 600 total tiles, got %d", stats.TotalTiles)
	}
}

// ─── PDF ───────────────────────────────────────────────────

func TestExportPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reef.pdf")
	if err := ExportPDF(path, buildTestLayout()); err != nil {
		t.Fatalf("ExportPDF failed: %v", err)
	}
	assertNonEmptyFile(t, path)

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Error("output is not a PDF")
	}
}

func TestExportPDF_EmptyTank(t *testing.T) {
	layout := buildTestLayout()
	layout.Objects = nil
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := ExportPDF(path, layout); err != nil {
		t.Fatalf("an empty tank should still export: %v", err)
	}
	assertNonEmptyFile(t, path)
}

func TestExportPDF_NoArea(t *testing.T) {
	layout := buildTestLayout()
	layout.Settings.TilesHorizontal = 0
	if err := ExportPDF(filepath.Join(t.TempDir(), "x.pdf"), layout); err == nil {
		t.Error("expected error for zero-size tank")
	}
}

func TestExportPDF_ManyObjectsPaginates(t *testing.T) {
	layout := buildTestLayout()
	layout.Settings = model.WorldSettings{TilesHorizontal: 60, TilesVertical: 40, TileSize: 16}
	layout.Objects = nil
	for i := 0; i < 60; i++ {
		layout.Objects = append(layout.Objects, model.PlacedObject{
			ID: fmt.Sprintf("obj%03d", i), SpriteRef: "decor/rock.png",
			OriginCol: (i % 20) * 3, OriginRow: (i / 20) * 3, Footprint: 2,
		})
	}
	path := filepath.Join(t.TempDir(), "many.pdf")
	if err := ExportPDF(path, layout); err != nil {
		t.Fatalf("ExportPDF failed: %v", err)
	}
	assertNonEmptyFile(t, path)
}

// ─── Labels ────────────────────────────────────────────────

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestLayout())
	if len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(labels))
	}
	if labels[1].ObjectID != "rock0001" || labels[1].Col != 12 || labels[1].Row != 2 {
		t.Errorf("unexpected label %+v", labels[1])
	}

	data, err := json.Marshal(labels[0])
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"id", "sprite", "col", "row", "footprint", "layer"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("QR payload missing %q", key)
		}
	}
}

func TestExportLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")
	if err := ExportLabels(path, buildTestLayout()); err != nil {
		t.Fatalf("ExportLabels failed: %v", err)
	}
	assertNonEmptyFile(t, path)
}

func TestExportLabels_MultiplePages(t *testing.T) {
	layout := buildTestLayout()
	layout.Objects = nil
	for i := 0; i < labelsPerPage+5; i++ {
		layout.Objects = append(layout.Objects, model.PlacedObject{ID: fmt.Sprintf("o%d", i), SpriteRef: "decor/seaweed.png", Footprint: 1})
	}
	path := filepath.Join(t.TempDir(), "labels.pdf")
	if err := ExportLabels(path, layout); err != nil {
		t.Fatalf("ExportLabels failed: %v", err)
	}
	assertNonEmptyFile(t, path)
}

func TestExportLabels_NoObjects(t *testing.T) {
	layout := buildTestLayout()
	layout.Objects = nil
	if err := ExportLabels(filepath.Join(t.TempDir(), "labels.pdf"), layout); err == nil {
		t.Error("expected error when there is nothing to label")
	}
}

// ─── Excel ─────────────────────────────────────────────────

func TestExportExcel_RoundTrip(t *testing.T) {
	layout := buildTestLayout()
	path := filepath.Join(t.TempDir(), "reef.xlsx")
	if err := ExportExcel(path, layout); err != nil {
		t.Fatalf("ExportExcel failed: %v", err)
	}

	result := importer.ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("import errors: %v", result.Errors)
	}
	if len(result.Objects) != len(layout.Objects) {
		t.Fatalf("expected %d objects, got %d", len(layout.Objects), len(result.Objects))
	}
	for i, got := range result.Objects {
		want := layout.Objects[i]
		if got.ID != want.ID || got.SpriteRef != want.SpriteRef || got.Origin() != want.Origin() ||
			got.Footprint != want.Footprint || got.Layer != want.Layer {
			t.Errorf("object %d: expected %+v, got %+v", i, want, got)
		}
	}
}

// ─── DXF ───────────────────────────────────────────────────

func TestExportDXF_RoundTrip(t *testing.T) {
	layout := buildTestLayout()
	path := filepath.Join(t.TempDir(), "reef.dxf")
	if err := ExportDXF(path, layout); err != nil {
		t.Fatalf("ExportDXF failed: %v", err)
	}

	result := importer.ImportDXF(path, layout.Settings.TileSize)
	if len(result.Errors) > 0 {
		t.Fatalf("import errors: %v", result.Errors)
	}
	if len(result.Objects) != len(layout.Objects) {
		t.Fatalf("expected %d shapes, got %d", len(layout.Objects), len(result.Objects))
	}
	got := map[model.Coord]int{}
	for _, o := range result.Objects {
		got[o.Origin()] = o.Footprint
	}
	for _, want := range layout.Objects {
		if got[want.Origin()] != want.Footprint {
			t.Errorf("object at %v: expected footprint %d, got %d", want.Origin(), want.Footprint, got[want.Origin()])
		}
	}
}

func TestExportDXF_Errors(t *testing.T) {
	layout := buildTestLayout()
	layout.Objects = nil
	if err := ExportDXF(filepath.Join(t.TempDir(), "x.dxf"), layout); err == nil {
		t.Error("expected error with no objects")
	}
	layout = buildTestLayout()
	layout.Settings.TileSize = 0
	if err := ExportDXF(filepath.Join(t.TempDir(), "x.dxf"), layout); err == nil {
		t.Error("expected error with zero tile size")
	}
}
