package tui

import (
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/Aquarium/internal/model"
	"github.com/piwi3910/Aquarium/internal/project"
	"github.com/piwi3910/Aquarium/internal/session"
)

func newTestEditor(t *testing.T) (*Editor, *session.Session, *project.FileStore) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(40, 20)

	fs := project.NewFileStore(filepath.Join(t.TempDir(), "objects.json"))
	settings := model.WorldSettings{TilesHorizontal: 30, TilesVertical: 12, TileSize: 10, DefaultFootprint: 2}
	sess, err := session.Open(settings, fs, "tester")
	require.NoError(t, err)

	catalog := model.Catalog{Items: []model.DecorItem{
		model.NewDecorItem("Rock", "decor/rock.png", 2, 0),
		model.NewDecorItem("Castle", "decor/castle.png", 4, 1),
	}}
	return New(screen, sess, catalog), sess, fs
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func char(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func press(e *Editor, events ...tcell.Event) {
	for _, ev := range events {
		e.HandleEvent(ev)
	}
}

func TestEditor_CursorStaysInTank(t *testing.T) {
	e, _, _ := newTestEditor(t)

	press(e, key(tcell.KeyUp), key(tcell.KeyLeft))
	col, row := e.Cursor()
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)

	for i := 0; i < 50; i++ {
		press(e, key(tcell.KeyRight), char('j'))
	}
	col, row = e.Cursor()
	assert.Equal(t, 29, col)
	assert.Equal(t, 11, row)
}

func TestEditor_PlaceAtCursor(t *testing.T) {
	e, sess, fs := newTestEditor(t)

	press(e, key(tcell.KeyRight), key(tcell.KeyRight), key(tcell.KeyDown), char('p'))
	require.Equal(t, 1, len(sess.Objects()))
	obj := sess.Objects()[0]
	assert.Equal(t, 2, obj.OriginCol)
	assert.Equal(t, 1, obj.OriginRow)
	assert.Equal(t, "decor/rock.png", obj.SpriteRef)
	assert.Equal(t, obj.ID, e.Selected(), "new object is selected")

	stored, err := fs.LoadAllObjects("tester")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestEditor_CycleItem(t *testing.T) {
	e, sess, _ := newTestEditor(t)

	press(e, char(']'))
	assert.Equal(t, "item: Castle", e.Status())
	press(e, char(']'))
	assert.Equal(t, "item: Rock", e.Status())
	press(e, char('['), char('p'))

	objects := sess.Objects()
	require.Len(t, objects, 1)
	assert.Equal(t, 4, objects[0].Footprint)
	assert.Equal(t, 1, objects[0].Layer)
}

func TestEditor_NudgeSelected(t *testing.T) {
	e, sess, fs := newTestEditor(t)
	press(e, char('p'))
	id := e.Selected()
	require.NotEmpty(t, id)

	press(e, key(tcell.KeyRight), key(tcell.KeyDown))
	obj, ok := sess.Get(id)
	require.True(t, ok)
	assert.Equal(t, model.Coord{Col: 1, Row: 1}, obj.Origin())
	col, row := e.Cursor()
	assert.Equal(t, 1, col)
	assert.Equal(t, 1, row)

	stored, err := fs.LoadAllObjects("tester")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 1, stored[0].OriginCol)
	assert.Equal(t, 1, stored[0].OriginRow)
}

func TestEditor_BlockedNudgeReportsError(t *testing.T) {
	e, sess, _ := newTestEditor(t)
	press(e, char('p'))
	first := e.Selected()

	press(e, key(tcell.KeyEscape))
	for i := 0; i < 3; i++ {
		press(e, key(tcell.KeyRight))
	}
	press(e, char('p'))
	second := e.Selected()
	require.NotEqual(t, first, second)

	press(e, key(tcell.KeyLeft))
	press(e, key(tcell.KeyLeft))
	assert.Contains(t, e.Status(), "tile held by "+first)

	obj, _ := sess.Get(second)
	assert.Equal(t, 2, obj.OriginCol, "blocked move leaves the object where it was")
}

func TestEditor_SelectAndRemove(t *testing.T) {
	e, sess, _ := newTestEditor(t)
	press(e, char('p'), key(tcell.KeyEscape))
	assert.Empty(t, e.Selected())

	press(e, key(tcell.KeyEnter))
	require.NotEmpty(t, e.Selected())

	press(e, char('x'))
	assert.Empty(t, e.Selected())
	assert.Empty(t, sess.Objects())

	press(e, char('x'))
	assert.Equal(t, "nothing selected", e.Status())
}

func TestEditor_TabCyclesObjects(t *testing.T) {
	e, sess, _ := newTestEditor(t)
	press(e, char('p'))
	for i := 0; i < 5; i++ {
		press(e, key(tcell.KeyEscape), key(tcell.KeyRight))
	}
	press(e, key(tcell.KeyEscape), char('p'), key(tcell.KeyEscape))
	objects := sess.Objects()
	require.Len(t, objects, 2)

	press(e, key(tcell.KeyTab))
	assert.Equal(t, objects[0].ID, e.Selected())
	press(e, key(tcell.KeyTab))
	assert.Equal(t, objects[1].ID, e.Selected())
	press(e, key(tcell.KeyTab))
	assert.Equal(t, objects[0].ID, e.Selected())
}

func TestEditor_Quit(t *testing.T) {
	e, _, _ := newTestEditor(t)
	assert.False(t, e.HandleEvent(char('q')))
	assert.False(t, e.HandleEvent(key(tcell.KeyCtrlC)))
	assert.False(t, e.HandleEvent(key(tcell.KeyEscape)), "escape with no selection quits")

	e.HandleEvent(char('p'))
	assert.True(t, e.HandleEvent(key(tcell.KeyEscape)), "escape clears the selection first")
}

func TestEditor_Draw(t *testing.T) {
	e, _, _ := newTestEditor(t)
	press(e, key(tcell.KeyRight), char('p'))
	e.Draw()

	for _, c := range []struct{ x, y int }{{1, 0}, {2, 0}, {1, 1}, {2, 1}} {
		r, _, _, _ := e.screen.GetContent(c.x, c.y)
		assert.Equal(t, 'R', r, "tile (%d, %d)", c.x, c.y)
	}
	r, _, _, _ := e.screen.GetContent(0, 0)
	assert.Equal(t, emptyTile, r)
	r, _, _, _ = e.screen.GetContent(35, 0)
	assert.Equal(t, ' ', r, "columns past the tank stay blank")

	r, _, _, _ = e.screen.GetContent(0, 18)
	assert.Equal(t, 't', r, "status line starts with the owner")
}

func TestGlyphFor(t *testing.T) {
	assert.Equal(t, 'C', glyphFor("decor/castle.png"))
	assert.Equal(t, 'S', glyphFor("seaweed"))
	assert.Equal(t, '#', glyphFor(""))
	assert.Equal(t, '#', glyphFor("decor/.png"))
}
