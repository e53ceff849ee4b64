// Package tui is a terminal editor for one tank. Objects are drawn one
// character per tile; the arrow keys move a cursor or nudge the selected
// object.
package tui

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/piwi3910/Aquarium/internal/engine"
	"github.com/piwi3910/Aquarium/internal/model"
	"github.com/piwi3910/Aquarium/internal/session"
)

const (
	emptyTile  = '·'
	statusRows = 2
)

var layerColors = []tcell.Color{
	tcell.ColorTeal,
	tcell.ColorGreen,
	tcell.ColorYellow,
	tcell.ColorFuchsia,
	tcell.ColorAqua,
}

// Editor draws a session onto a screen and turns key presses into
// session operations.
type Editor struct {
	screen  tcell.Screen
	sess    *session.Session
	catalog model.Catalog

	cursorCol, cursorRow int
	offCol, offRow       int
	selected             string
	item                 int
	status               string
}

// New creates an editor. The screen must already be initialised.
func New(screen tcell.Screen, sess *session.Session, catalog model.Catalog) *Editor {
	return &Editor{
		screen:  screen,
		sess:    sess,
		catalog: catalog,
		status:  "arrows move, enter selects, p places, [ ] pick item, x removes, q quits",
	}
}

// Run draws and handles events until the user quits.
func (e *Editor) Run() {
	for {
		e.Draw()
		e.screen.Show()
		ev := e.screen.PollEvent()
		if ev == nil {
			return
		}
		if !e.HandleEvent(ev) {
			return
		}
	}
}

// Selected returns the id of the selected object, if any.
func (e *Editor) Selected() string { return e.selected }

// Cursor returns the tile under the cursor.
func (e *Editor) Cursor() (col, row int) { return e.cursorCol, e.cursorRow }

// Status returns the message shown on the status line.
func (e *Editor) Status() string { return e.status }

// HandleEvent applies one event. It returns false when the editor should exit.
func (e *Editor) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape:
			if e.selected == "" {
				return false
			}
			e.selected = ""
			e.status = "selection cleared"
		case tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			e.step(model.DirectionUp)
		case tcell.KeyDown:
			e.step(model.DirectionDown)
		case tcell.KeyLeft:
			e.step(model.DirectionLeft)
		case tcell.KeyRight:
			e.step(model.DirectionRight)
		case tcell.KeyEnter:
			e.selectAtCursor()
		case tcell.KeyTab:
			e.selectNext()
		case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
			e.removeSelected()
		case tcell.KeyRune:
			return e.handleRune(ev.Rune())
		}
	case *tcell.EventResize:
		e.screen.Sync()
	}
	return true
}

func (e *Editor) handleRune(r rune) bool {
	switch r {
	case 'q':
		return false
	case 'h':
		e.step(model.DirectionLeft)
	case 'j':
		e.step(model.DirectionDown)
	case 'k':
		e.step(model.DirectionUp)
	case 'l':
		e.step(model.DirectionRight)
	case ' ':
		e.selectAtCursor()
	case 'p':
		e.placeAtCursor()
	case 'x':
		e.removeSelected()
	case '[':
		e.cycleItem(-1)
	case ']':
		e.cycleItem(1)
	}
	return true
}

// step nudges the selected object, or moves the cursor when nothing is
// selected.
func (e *Editor) step(dir model.Direction) {
	if e.selected != "" {
		obj, err := e.sess.Nudge(e.selected, dir)
		if err != nil {
			e.status = err.Error()
			return
		}
		e.cursorCol, e.cursorRow = obj.OriginCol, obj.OriginRow
		e.status = fmt.Sprintf("moved %s to (%d, %d)", obj.ID, obj.OriginCol, obj.OriginRow)
		return
	}

	dc, dr := dir.Delta()
	settings := e.sess.Settings()
	e.cursorCol = clamp(e.cursorCol+dc, 0, settings.TilesHorizontal-1)
	e.cursorRow = clamp(e.cursorRow+dr, 0, settings.TilesVertical-1)
}

func (e *Editor) selectAtCursor() {
	owner, ok := e.sess.Occupancy()[model.Coord{Col: e.cursorCol, Row: e.cursorRow}]
	if !ok {
		e.selected = ""
		e.status = "nothing here"
		return
	}
	e.selected = owner
	e.status = "selected " + owner
}

func (e *Editor) selectNext() {
	objects := e.sess.Objects()
	if len(objects) == 0 {
		e.status = "tank is empty"
		return
	}
	next := 0
	for i, o := range objects {
		if o.ID == e.selected {
			next = (i + 1) % len(objects)
			break
		}
	}
	obj := objects[next]
	e.selected = obj.ID
	e.cursorCol, e.cursorRow = obj.OriginCol, obj.OriginRow
	e.status = "selected " + obj.ID
}

func (e *Editor) placeAtCursor() {
	req := engine.PlaceRequest{}
	if it := e.currentItem(); it != nil {
		req.SpriteRef = it.SpriteRef
		req.Footprint = it.Footprint
		req.Layer = it.Layer
	}
	// Aim at the tile centre so the drop tile is the cursor tile
	tile := e.sess.Settings().TileSize
	req.WorldX = (float64(e.cursorCol) + 0.5) * tile
	req.WorldY = (float64(e.cursorRow) + 0.5) * tile

	obj, err := e.sess.Drop(req)
	if err != nil {
		e.status = err.Error()
		return
	}
	e.selected = obj.ID
	e.cursorCol, e.cursorRow = obj.OriginCol, obj.OriginRow
	e.status = fmt.Sprintf("placed %s at (%d, %d)", obj.ID, obj.OriginCol, obj.OriginRow)
}

func (e *Editor) removeSelected() {
	if e.selected == "" {
		e.status = "nothing selected"
		return
	}
	id := e.selected
	if _, err := e.sess.Delete(id); err != nil {
		e.status = err.Error()
		return
	}
	e.selected = ""
	e.status = "removed " + id
}

func (e *Editor) currentItem() *model.DecorItem {
	if len(e.catalog.Items) == 0 {
		return nil
	}
	return &e.catalog.Items[e.item]
}

func (e *Editor) cycleItem(delta int) {
	n := len(e.catalog.Items)
	if n == 0 {
		e.status = "catalog is empty"
		return
	}
	e.item = ((e.item+delta)%n + n) % n
	e.status = "item: " + e.catalog.Items[e.item].Name
}

// Draw renders the visible part of the tank and the status lines.
func (e *Editor) Draw() {
	e.screen.Clear()
	w, h := e.screen.Size()
	viewW, viewH := w, h-statusRows
	if viewW <= 0 || viewH <= 0 {
		return
	}
	e.scrollTo(viewW, viewH)

	settings := e.sess.Settings()
	occupancy := e.sess.Occupancy()
	glyphs := map[string]rune{}
	layers := map[string]int{}
	for _, o := range e.sess.Objects() {
		glyphs[o.ID] = glyphFor(o.SpriteRef)
		layers[o.ID] = o.Layer
	}

	for y := 0; y < viewH && e.offRow+y < settings.TilesVertical; y++ {
		for x := 0; x < viewW && e.offCol+x < settings.TilesHorizontal; x++ {
			c := model.Coord{Col: e.offCol + x, Row: e.offRow + y}
			ch, style := emptyTile, tcell.StyleDefault.Foreground(tcell.ColorGray)
			if owner, ok := occupancy[c]; ok {
				ch = glyphs[owner]
				style = tcell.StyleDefault.Foreground(colorFor(layers[owner]))
				if owner == e.selected {
					style = style.Bold(true).Reverse(true)
				}
			}
			if c.Col == e.cursorCol && c.Row == e.cursorRow {
				style = style.Underline(true).Foreground(tcell.ColorWhite)
			}
			e.screen.SetContent(x, y, ch, nil, style)
		}
	}

	st := e.sess.Stats()
	item := "-"
	if it := e.currentItem(); it != nil {
		item = it.Name
	}
	info := fmt.Sprintf("%s  objects %d  occupied %.1f%%  cursor (%d, %d)  item %s",
		e.sess.Owner(), st.Objects, st.Occupancy(), e.cursorCol, e.cursorRow, item)
	e.drawText(0, h-2, info, tcell.StyleDefault.Reverse(true))
	e.drawText(0, h-1, e.status, tcell.StyleDefault)
}

// scrollTo keeps the cursor inside the visible window.
func (e *Editor) scrollTo(viewW, viewH int) {
	if e.cursorCol < e.offCol {
		e.offCol = e.cursorCol
	} else if e.cursorCol >= e.offCol+viewW {
		e.offCol = e.cursorCol - viewW + 1
	}
	if e.cursorRow < e.offRow {
		e.offRow = e.cursorRow
	} else if e.cursorRow >= e.offRow+viewH {
		e.offRow = e.cursorRow - viewH + 1
	}
}

func (e *Editor) drawText(x, y int, s string, style tcell.Style) {
	w, _ := e.screen.Size()
	for _, r := range s {
		if x >= w {
			return
		}
		e.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// glyphFor picks the tile character for a sprite: the first letter of its
// file name, upper-cased.
func glyphFor(spriteRef string) rune {
	name := strings.TrimSuffix(path.Base(spriteRef), path.Ext(spriteRef))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
	}
	return '#'
}

func colorFor(layer int) tcell.Color {
	i := layer % len(layerColors)
	if i < 0 {
		i += len(layerColors)
	}
	return layerColors[i]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
