// Package engine places, moves and removes decor objects on the tank grid.
package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/Aquarium/internal/grid"
	"github.com/piwi3910/Aquarium/internal/model"
)

// Engine owns the occupancy grid and the records of every placed object.
// It is single-threaded: callers must not interleave calls on one Engine.
type Engine struct {
	Settings model.WorldSettings

	grid    *grid.Occupancy
	objects map[string]*model.PlacedObject
	partial map[string]bool // Loaded records that lost tiles to a later overlapping record
}

func New(settings model.WorldSettings) *Engine {
	if settings.DefaultFootprint <= 0 {
		settings.DefaultFootprint = model.DefaultFootprint
	}
	return &Engine{
		Settings: settings,
		grid:     grid.New(settings.TilesHorizontal, settings.TilesVertical),
		objects:  make(map[string]*model.PlacedObject),
	}
}

// PlaceRequest describes a drop of a new object at a world-space point.
type PlaceRequest struct {
	WorldX    float64
	WorldY    float64
	SpriteRef string
	Footprint int    // 0 uses the configured default
	Layer     int    // Passed through untouched
	ID        string // Optional; generated when empty
	OwnerID   string
}

// WorldToTile converts a world-space point to the tile containing it.
func (e *Engine) WorldToTile(x, y float64) (col, row int) {
	size := e.Settings.TileSize
	if size <= 0 {
		size = 1
	}
	return int(math.Floor(x / size)), int(math.Floor(y / size))
}

// Place drops a new object as close as possible to the world point.
// The drop tile is clamped so the footprint fits, then the nearest free
// block is claimed. When nothing fits the error wraps ErrNoSpaceAvailable
// and the engine is unchanged.
func (e *Engine) Place(req PlaceRequest) (model.PlacedObject, error) {
	size := e.footprintOrDefault(req.Footprint)
	if req.ID != "" {
		if _, exists := e.objects[req.ID]; exists {
			return model.PlacedObject{}, fmt.Errorf("place %s: id already in use: %w", req.ID, ErrPreconditionViolation)
		}
	}

	col, row := e.WorldToTile(req.WorldX, req.WorldY)
	maxCol := e.grid.Cols() - size
	maxRow := e.grid.Rows() - size
	if maxCol < 0 || maxRow < 0 {
		return model.PlacedObject{}, fmt.Errorf("place %dx%d object on %dx%d tank: %w",
			size, size, e.grid.Cols(), e.grid.Rows(), ErrNoSpaceAvailable)
	}
	col = clamp(col, 0, maxCol)
	row = clamp(row, 0, maxRow)

	origin, ok := e.grid.FindNearestFree(col, row, size)
	if !ok {
		return model.PlacedObject{}, fmt.Errorf("place %dx%d object near tile (%d, %d): %w",
			size, size, col, row, ErrNoSpaceAvailable)
	}

	id := req.ID
	if id == "" {
		id = e.newID()
	}
	obj := &model.PlacedObject{
		ID:        id,
		OwnerID:   req.OwnerID,
		SpriteRef: req.SpriteRef,
		OriginCol: origin.Col,
		OriginRow: origin.Row,
		Footprint: size,
		Layer:     req.Layer,
		State:     model.StatePlaced,
	}
	e.grid.Claim(obj.OriginCol, obj.OriginRow, size, id)
	e.objects[id] = obj
	return *obj, nil
}

// Move shifts a placed object one tile in the given direction.
//
// The candidate block is checked against the tank edges first and then
// against other objects, ignoring the mover's own tiles. Only after both
// checks pass are the old tiles released and the new ones claimed, so a
// failed move leaves the grid untouched.
func (e *Engine) Move(id string, dir model.Direction) (model.PlacedObject, error) {
	obj, ok := e.objects[id]
	if !ok {
		return model.PlacedObject{}, fmt.Errorf("move %s: %w", id, ErrPreconditionViolation)
	}
	dc, dr := dir.Delta()
	if dc == 0 && dr == 0 {
		return model.PlacedObject{}, fmt.Errorf("move %s: unknown direction %d", id, int(dir))
	}

	nc, nr := obj.OriginCol+dc, obj.OriginRow+dr
	size := obj.Footprint
	if !e.grid.BlockInBounds(nc, nr, size) {
		return model.PlacedObject{}, fmt.Errorf("move %s %s to (%d, %d): %w", id, dir, nc, nr, ErrOutOfBounds)
	}
	if !e.grid.IsAreaFree(nc, nr, size, id) {
		blocker := e.firstBlocker(nc, nr, size, id)
		return model.PlacedObject{}, fmt.Errorf("move %s %s: tile held by %s: %w", id, dir, blocker, ErrBlocked)
	}

	e.grid.Release(obj.OriginCol, obj.OriginRow, size, id)
	e.grid.Claim(nc, nr, size, id)
	obj.OriginCol = nc
	obj.OriginRow = nr
	delete(e.partial, id)
	e.reclaimPartial()
	return *obj, nil
}

// Insert registers a record at exactly its recorded origin. It validates
// bounds and overlap the same way Move does and leaves the engine
// unchanged on failure.
func (e *Engine) Insert(rec model.PlacedObject) (model.PlacedObject, error) {
	if rec.ID == "" {
		rec.ID = e.newID()
	}
	if _, exists := e.objects[rec.ID]; exists {
		return model.PlacedObject{}, fmt.Errorf("insert %s: id already in use: %w", rec.ID, ErrPreconditionViolation)
	}
	rec.Footprint = e.footprintOrDefault(rec.Footprint)
	if !e.grid.BlockInBounds(rec.OriginCol, rec.OriginRow, rec.Footprint) {
		return model.PlacedObject{}, fmt.Errorf("insert %s at (%d, %d): %w", rec.ID, rec.OriginCol, rec.OriginRow, ErrOutOfBounds)
	}
	if !e.grid.IsAreaFree(rec.OriginCol, rec.OriginRow, rec.Footprint, "") {
		blocker := e.firstBlocker(rec.OriginCol, rec.OriginRow, rec.Footprint, "")
		return model.PlacedObject{}, fmt.Errorf("insert %s: tile held by %s: %w", rec.ID, blocker, ErrBlocked)
	}

	rec.State = model.StatePlaced
	obj := rec
	e.grid.Claim(obj.OriginCol, obj.OriginRow, obj.Footprint, obj.ID)
	e.objects[obj.ID] = &obj
	return obj, nil
}

// Remove releases every tile owned by id and forgets the record. The
// returned record is in the Removed state. Removing an unknown or already
// removed id is a no-op that reports false.
func (e *Engine) Remove(id string) (model.PlacedObject, bool) {
	obj, ok := e.objects[id]
	if !ok {
		return model.PlacedObject{}, false
	}
	e.grid.ReleaseAll(id)
	delete(e.objects, id)
	delete(e.partial, id)
	e.reclaimPartial()
	obj.State = model.StateRemoved
	return *obj, true
}

// reclaimPartial hands free tiles back to records that lost them during a
// rebuild. Records are served in id order; a record that owns its whole
// footprint again is no longer partial.
func (e *Engine) reclaimPartial() {
	if len(e.partial) == 0 {
		return
	}
	ids := make([]string, 0, len(e.partial))
	for id := range e.partial {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		obj := e.objects[id]
		whole := true
		for _, c := range obj.Cells() {
			owner, taken := e.grid.Owner(c.Col, c.Row)
			switch {
			case !taken:
				e.grid.Claim(c.Col, c.Row, 1, id)
			case owner != id:
				whole = false
			}
		}
		if whole {
			delete(e.partial, id)
		}
	}
}

// Get returns the placed record for id.
func (e *Engine) Get(id string) (model.PlacedObject, bool) {
	obj, ok := e.objects[id]
	if !ok {
		return model.PlacedObject{}, false
	}
	return *obj, true
}

// Objects returns every placed record ordered by layer, then origin row,
// origin column and id.
func (e *Engine) Objects() []model.PlacedObject {
	out := make([]model.PlacedObject, 0, len(e.objects))
	for _, o := range e.objects {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Layer != b.Layer {
			return a.Layer < b.Layer
		}
		if a.OriginRow != b.OriginRow {
			return a.OriginRow < b.OriginRow
		}
		if a.OriginCol != b.OriginCol {
			return a.OriginCol < b.OriginCol
		}
		return a.ID < b.ID
	})
	return out
}

// Len returns the number of placed objects.
func (e *Engine) Len() int { return len(e.objects) }

// OccupiedCells returns the tiles currently claimed by id in row-major order.
func (e *Engine) OccupiedCells(id string) []model.Coord {
	return e.grid.CellsOwnedBy(id)
}

// Occupancy returns a copy of the full claim map.
func (e *Engine) Occupancy() map[model.Coord]string {
	return e.grid.Snapshot()
}

// FindNearestFree exposes the grid search for previews of a drop.
func (e *Engine) FindNearestFree(col, row, size int) (model.Coord, bool) {
	return e.grid.FindNearestFree(col, row, e.footprintOrDefault(size))
}

// Stats summarises tank coverage.
func (e *Engine) Stats() model.LayoutStats {
	return model.LayoutStats{
		Objects:       len(e.objects),
		OccupiedTiles: e.grid.Len(),
		TotalTiles:    e.grid.Cols() * e.grid.Rows(),
	}
}

func (e *Engine) footprintOrDefault(size int) int {
	if size > 0 {
		return size
	}
	return e.Settings.DefaultFootprint
}

// newID generates an object id that is not yet in use.
func (e *Engine) newID() string {
	for {
		id := model.NewObjectID()
		if _, taken := e.objects[id]; !taken {
			return id
		}
	}
}

// firstBlocker returns the owner of the first tile in the block that is
// held by someone other than excludeID.
func (e *Engine) firstBlocker(col, row, size int, excludeID string) string {
	for r := row; r < row+size; r++ {
		for c := col; c < col+size; c++ {
			if owner, ok := e.grid.Owner(c, r); ok && owner != excludeID {
				return owner
			}
		}
	}
	return ""
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
