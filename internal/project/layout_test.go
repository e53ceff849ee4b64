package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/Aquarium/internal/model"
)

func TestSaveAndLoadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reef.json")

	layout := model.NewTankLayout()
	layout.Name = "Reef"
	layout.OwnerID = "alice"
	layout.Settings.TilesHorizontal = 30
	layout.Objects = append(layout.Objects, model.PlacedObject{
		ID: "c1", OwnerID: "alice", SpriteRef: "decor/coral.png", OriginCol: 4, OriginRow: 5, Footprint: 6, Layer: 1,
	})

	if err := SaveLayout(path, layout); err != nil {
		t.Fatalf("SaveLayout failed: %v", err)
	}
	loaded, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout failed: %v", err)
	}
	if loaded.Name != "Reef" || loaded.OwnerID != "alice" {
		t.Errorf("unexpected header: %q %q", loaded.Name, loaded.OwnerID)
	}
	if loaded.Settings.TilesHorizontal != 30 {
		t.Errorf("expected 30 tiles, got %d", loaded.Settings.TilesHorizontal)
	}
	if len(loaded.Objects) != 1 || loaded.Objects[0].OriginRow != 5 {
		t.Errorf("objects not preserved: %+v", loaded.Objects)
	}
}

func TestLoadLayoutFillsMissingSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"name":"Old","settings":{"tiles_horizontal":12}}`), 0644); err != nil {
		t.Fatal(err)
	}

	layout, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout failed: %v", err)
	}
	defaults := model.DefaultSettings()
	if layout.Settings.TilesHorizontal != 12 {
		t.Errorf("expected 12, got %d", layout.Settings.TilesHorizontal)
	}
	if layout.Settings.TilesVertical != defaults.TilesVertical {
		t.Errorf("expected default rows, got %d", layout.Settings.TilesVertical)
	}
	if layout.Settings.DefaultFootprint != defaults.DefaultFootprint {
		t.Errorf("expected default footprint, got %d", layout.Settings.DefaultFootprint)
	}
	if layout.Objects == nil {
		t.Error("objects should not be nil")
	}
}

func TestLoadLayoutErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadLayout(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLayout(bad); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
