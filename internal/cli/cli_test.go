package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/Aquarium/internal/engine"
	"github.com/piwi3910/Aquarium/internal/model"
	"github.com/piwi3910/Aquarium/internal/project"
)

// writeConfig writes a config for a 20x20 tank of 10-unit tiles with the
// file backend rooted in a temp dir, and returns the config path.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`world:
  tiles_horizontal: 20
  tiles_vertical: 20
  tile_size: 10
  default_footprint: 4
storage:
  backend: file
  path: %s
  data_dir: %s
owner_id: tester
`, filepath.Join(dir, "objects.json"), dir)
	path := filepath.Join(dir, "aquarium.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}

func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Run(append([]string{"-config", configPath}, args...), &out)
	return out.String(), err
}

func mustRun(t *testing.T, configPath string, args ...string) string {
	t.Helper()
	out, err := run(t, configPath, args...)
	require.NoError(t, err, out)
	return out
}

func listObjects(t *testing.T, configPath string, args ...string) []model.PlacedObject {
	t.Helper()
	out := mustRun(t, configPath, append(args, "list", "-json")...)
	var objects []model.PlacedObject
	require.NoError(t, json.Unmarshal([]byte(out), &objects))
	return objects
}

func TestRun_Usage(t *testing.T) {
	cfg := writeConfig(t)

	err := Run(nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUsage)

	_, err = run(t, cfg, "juggle")
	assert.ErrorIs(t, err, ErrUsage)

	_, err = run(t, cfg, "move", "a", "sideways")
	assert.ErrorIs(t, err, ErrUsage)

	_, err = run(t, cfg, "export")
	assert.ErrorIs(t, err, ErrUsage, "export needs -o")
}

func TestRun_PlacePersistsAcrossRuns(t *testing.T) {
	cfg := writeConfig(t)

	out := mustRun(t, cfg, "place", "-sprite", "fish.png", "-id", "a")
	assert.Equal(t, "placed a at (0, 0) size 4\n", out)

	out = mustRun(t, cfg, "place", "-sprite", "fish.png", "-id", "b")
	assert.NotContains(t, out, "(0, 0)", "second drop lands next to the first")

	objects := listObjects(t, cfg)
	require.Len(t, objects, 2)
	ids := []string{objects[0].ID, objects[1].ID}
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	out = mustRun(t, cfg, "stats")
	assert.Contains(t, out, "objects:   2")
	assert.Contains(t, out, "occupied:  32 / 400 tiles (8.0%)")

	prefs, err := project.LoadAppConfig(filepath.Join(filepath.Dir(cfg), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"tester"}, prefs.RecentOwners)
}

func TestRun_PlaceFromCatalog(t *testing.T) {
	cfg := writeConfig(t)

	out := mustRun(t, cfg, "place", "-item", "Castle", "-x", "55", "-y", "31")
	assert.Contains(t, out, "at (5, 3) size 8")

	objects := listObjects(t, cfg)
	require.Len(t, objects, 1)
	assert.Equal(t, "decor/castle.png", objects[0].SpriteRef)
	assert.Equal(t, 1, objects[0].Layer)

	_, err := run(t, cfg, "place", "-item", "Submarine")
	assert.Error(t, err)
}

func TestRun_MoveAndRemove(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "place", "-id", "a")

	out := mustRun(t, cfg, "move", "-steps", "2", "a", "right")
	assert.Equal(t, "moved a to (2, 0)\n", out)

	_, err := run(t, cfg, "move", "a", "up")
	assert.ErrorIs(t, err, engine.ErrOutOfBounds)

	objects := listObjects(t, cfg)
	require.Len(t, objects, 1)
	assert.Equal(t, 2, objects[0].OriginCol, "failed move is not persisted")

	out = mustRun(t, cfg, "remove", "a")
	assert.Equal(t, "removed a\n", out)
	out = mustRun(t, cfg, "remove", "a")
	assert.Equal(t, "not found a\n", out)
	assert.Empty(t, listObjects(t, cfg))
}

func TestRun_OwnersAreSeparate(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "place", "-id", "mine")
	mustRun(t, cfg, "-owner", "other", "place", "-id", "theirs")

	mine := listObjects(t, cfg)
	require.Len(t, mine, 1)
	assert.Equal(t, "mine", mine[0].ID)

	theirs := listObjects(t, cfg, "-owner", "other")
	require.Len(t, theirs, 1)
	assert.Equal(t, "theirs", theirs[0].ID)
	assert.Equal(t, 0, theirs[0].OriginCol, "tanks do not block each other")
}

func TestRun_Arrange(t *testing.T) {
	cfg := writeConfig(t)

	out := mustRun(t, cfg, "arrange", "Rock=3", "Castle")
	assert.Contains(t, out, "placed 4 objects")
	assert.Len(t, listObjects(t, cfg), 4)

	_, err := run(t, cfg, "arrange", "Rock=lots")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestRun_ArrangeReportsOverflow(t *testing.T) {
	cfg := writeConfig(t)

	out := mustRun(t, cfg, "arrange", "Castle=5")
	assert.Contains(t, out, "placed 4 objects")
	assert.Contains(t, out, "no room for 1 objects")
}

func TestRun_ExportFormats(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "place", "-sprite", "decor/rock.png")
	dir := t.TempDir()

	for _, tc := range []struct {
		file   string
		format string
	}{
		{"tank.pdf", ""},
		{"labels.pdf", "labels"},
		{"tank.xlsx", ""},
		{"tank.dxf", ""},
		{"tank.json", ""},
	} {
		path := filepath.Join(dir, tc.file)
		args := []string{"export", "-o", path}
		if tc.format != "" {
			args = append(args, "-format", tc.format)
		}
		out := mustRun(t, cfg, args...)
		assert.Contains(t, out, "exported 1 objects", tc.file)

		info, err := os.Stat(path)
		require.NoError(t, err, tc.file)
		assert.Greater(t, info.Size(), int64(0), tc.file)
	}

	_, err := run(t, cfg, "export", "-o", filepath.Join(dir, "tank.bmp"))
	assert.ErrorIs(t, err, ErrUsage)
}

func TestRun_ExportImportRoundTrip(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "place", "-sprite", "decor/rock.png", "-footprint", "3", "-x", "42", "-y", "71")
	file := filepath.Join(t.TempDir(), "tank.xlsx")
	mustRun(t, cfg, "export", "-o", file)

	out := mustRun(t, cfg, "-owner", "copy", "import", file)
	assert.Contains(t, out, "imported 1 of 1 objects")

	copied := listObjects(t, cfg, "-owner", "copy")
	require.Len(t, copied, 1)
	assert.Equal(t, "decor/rock.png", copied[0].SpriteRef)
	assert.Equal(t, 4, copied[0].OriginCol)
	assert.Equal(t, 7, copied[0].OriginRow)
	assert.Equal(t, 3, copied[0].Footprint)

	original := listObjects(t, cfg)
	require.Len(t, original, 1)
	assert.NotEqual(t, original[0].ID, copied[0].ID, "imports get fresh ids")
}

func TestRun_ImportNearest(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "rocks.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("sprite,col,row,footprint\nrock,0,0,4\nrock,0,0,4\nrock,18,18,4\n"), 0644))

	cfg := writeConfig(t)
	out := mustRun(t, cfg, "import", csvPath)
	assert.Contains(t, out, "imported 1 of 3 objects")
	assert.Contains(t, out, "skipped rock")

	cfg = writeConfig(t)
	out = mustRun(t, cfg, "import", "-nearest", csvPath)
	assert.Contains(t, out, "imported 3 of 3 objects")
	assert.Len(t, listObjects(t, cfg), 3)
}

func TestRun_ImportRejectsUnreadableFile(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, cfg, "import", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestRun_TemplateSaveAndApply(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "arrange", "Rock=2")

	out := mustRun(t, cfg, "template", "save", "-description", "two rocks", "starter")
	assert.Contains(t, out, "saved template starter with 2 objects")

	out = mustRun(t, cfg, "template", "list")
	assert.Contains(t, out, "starter")

	out = mustRun(t, cfg, "-owner", "friend", "template", "apply", "starter")
	assert.Contains(t, out, "applied 2 of 2 objects")
	assert.Len(t, listObjects(t, cfg, "-owner", "friend"), 2)
	assert.Len(t, listObjects(t, cfg), 2, "source tank untouched")

	_, err := run(t, cfg, "template", "apply", "missing")
	assert.Error(t, err)
}

func TestRun_CatalogImport(t *testing.T) {
	cfg := writeConfig(t)
	extra := filepath.Join(t.TempDir(), "extra.json")
	item := model.NewDecorItem("Anchor", "decor/anchor.png", 5, 1)
	require.NoError(t, project.SaveCatalog(extra, model.Catalog{Items: []model.DecorItem{item}}))

	out := mustRun(t, cfg, "catalog", "import", extra)
	assert.Equal(t, "added 1 catalog items\n", out)
	out = mustRun(t, cfg, "catalog", "import", extra)
	assert.Equal(t, "added 0 catalog items\n", out)

	out = mustRun(t, cfg, "catalog")
	assert.Contains(t, out, "Anchor")
	assert.Contains(t, out, "Castle")
}

func TestRun_BackupAndRestore(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "place", "-id", "keeper")
	mustRun(t, cfg, "-owner", "other", "place", "-id", "visitor")

	backup := filepath.Join(t.TempDir(), "backup.json")
	out := mustRun(t, cfg, "backup", "-o", backup)
	assert.Contains(t, out, "backed up 2 objects")

	fresh := writeConfig(t)
	out = mustRun(t, fresh, "restore", backup)
	assert.Contains(t, out, "restored 2 objects")

	restored := listObjects(t, fresh)
	require.Len(t, restored, 1)
	assert.Equal(t, "keeper", restored[0].ID)
	assert.Len(t, listObjects(t, fresh, "-owner", "other"), 1)
}

func TestRun_BackupCoversEveryOwnerOnGdata(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))

	dir := t.TempDir()
	cfg := filepath.Join(dir, "aquarium.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(fmt.Sprintf(`world:
  tiles_horizontal: 20
  tiles_vertical: 20
  tile_size: 10
  default_footprint: 4
storage:
  backend: gdata
  app_name: aquarium_cli_backup_test
  data_dir: %s
owner_id: alice
`, dir)), 0644))

	if _, err := run(t, cfg, "place", "-id", "a1"); err != nil {
		t.Skipf("gdata unavailable: %v", err)
	}
	mustRun(t, cfg, "-owner", "bob", "place", "-id", "b1")

	backup := filepath.Join(t.TempDir(), "backup.json")
	out := mustRun(t, cfg, "backup", "-o", backup)
	assert.Contains(t, out, "backed up 2 objects")

	data, err := project.ImportAllData(backup)
	require.NoError(t, err)
	ids := make([]string, 0, len(data.Objects))
	for _, rec := range data.Objects {
		ids = append(ids, rec.ID)
	}
	assert.ElementsMatch(t, []string{"a1", "b1"}, ids)
}
