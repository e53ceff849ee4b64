package model

import "github.com/google/uuid"

// DefaultFootprint is the edge length, in tiles, of a decor object when the
// caller does not ask for a specific size.
const DefaultFootprint = 6

// Coord is an integer tile coordinate on the tank grid.
type Coord struct {
	Col int `json:"col" yaml:"col"`
	Row int `json:"row" yaml:"row"`
}

// Direction is a single-step movement intent for a placed object.
type Direction int

const (
	DirectionUp Direction = iota
	DirectionDown
	DirectionLeft
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "Up"
	case DirectionDown:
		return "Down"
	case DirectionLeft:
		return "Left"
	case DirectionRight:
		return "Right"
	default:
		return "Unknown"
	}
}

// Delta returns the unit (col, row) offset for the direction.
// Rows grow downwards, so Up is a negative row delta.
func (d Direction) Delta() (dc, dr int) {
	switch d {
	case DirectionUp:
		return 0, -1
	case DirectionDown:
		return 0, 1
	case DirectionLeft:
		return -1, 0
	case DirectionRight:
		return 1, 0
	default:
		return 0, 0
	}
}

// Opposite returns the direction that undoes a step in d.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionUp:
		return DirectionDown
	case DirectionDown:
		return DirectionUp
	case DirectionLeft:
		return DirectionRight
	default:
		return DirectionLeft
	}
}

// ParseDirection converts a user-facing name ("up", "Left", "r", ...) into
// a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up", "Up", "UP", "u", "w":
		return DirectionUp, true
	case "down", "Down", "DOWN", "d", "s":
		return DirectionDown, true
	case "left", "Left", "LEFT", "l", "a":
		return DirectionLeft, true
	case "right", "Right", "RIGHT", "r":
		return DirectionRight, true
	default:
		return DirectionUp, false
	}
}

// ObjectState is the lifecycle state of a PlacedObject.
type ObjectState int

const (
	StateUnplaced ObjectState = iota // Record built but never placed on the grid
	StatePlaced                      // Footprint currently claimed
	StateRemoved                     // Terminal: footprint released, handle must not be reused
)

func (s ObjectState) String() string {
	switch s {
	case StatePlaced:
		return "Placed"
	case StateRemoved:
		return "Removed"
	default:
		return "Unplaced"
	}
}

// PlacedObject is one decor item sitting on the tank grid.
type PlacedObject struct {
	ID        string      `json:"id" yaml:"id"`
	OwnerID   string      `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
	SpriteRef string      `json:"sprite_ref" yaml:"sprite_ref"` // Opaque handle to the visual asset
	OriginCol int         `json:"origin_col" yaml:"origin_col"` // Top-left tile column
	OriginRow int         `json:"origin_row" yaml:"origin_row"` // Top-left tile row
	Footprint int         `json:"footprint" yaml:"footprint"`   // Edge length of the N x N block
	Layer     int         `json:"layer" yaml:"layer"`           // Render order hint, not used for placement
	State     ObjectState `json:"-" yaml:"-"`
}

// NewObjectID returns a fresh short object identifier.
func NewObjectID() string {
	return uuid.New().String()[:8]
}

// Origin returns the top-left tile of the object's footprint.
func (o PlacedObject) Origin() Coord {
	return Coord{Col: o.OriginCol, Row: o.OriginRow}
}

// Cells returns every tile covered by the footprint in row-major order.
func (o PlacedObject) Cells() []Coord {
	if o.Footprint <= 0 {
		return nil
	}
	cells := make([]Coord, 0, o.Footprint*o.Footprint)
	for r := o.OriginRow; r < o.OriginRow+o.Footprint; r++ {
		for c := o.OriginCol; c < o.OriginCol+o.Footprint; c++ {
			cells = append(cells, Coord{Col: c, Row: r})
		}
	}
	return cells
}

// Covers reports whether the footprint includes the given tile.
func (o PlacedObject) Covers(col, row int) bool {
	return col >= o.OriginCol && col < o.OriginCol+o.Footprint &&
		row >= o.OriginRow && row < o.OriginRow+o.Footprint
}

// ObjectUpdate carries the fields of a partial record update. Nil fields are
// left untouched by the persistence layer.
type ObjectUpdate struct {
	OriginCol *int    `json:"origin_col,omitempty" yaml:"origin_col,omitempty"`
	OriginRow *int    `json:"origin_row,omitempty" yaml:"origin_row,omitempty"`
	Layer     *int    `json:"layer,omitempty" yaml:"layer,omitempty"`
	SpriteRef *string `json:"sprite_ref,omitempty" yaml:"sprite_ref,omitempty"`
}

// OriginUpdate builds an ObjectUpdate that moves a record to (col, row).
func OriginUpdate(col, row int) ObjectUpdate {
	return ObjectUpdate{OriginCol: &col, OriginRow: &row}
}

// Apply copies the non-nil fields of the update onto the record.
func (u ObjectUpdate) Apply(o *PlacedObject) {
	if u.OriginCol != nil {
		o.OriginCol = *u.OriginCol
	}
	if u.OriginRow != nil {
		o.OriginRow = *u.OriginRow
	}
	if u.Layer != nil {
		o.Layer = *u.Layer
	}
	if u.SpriteRef != nil {
		o.SpriteRef = *u.SpriteRef
	}
}

// WorldSettings holds the grid geometry injected into the engine.
type WorldSettings struct {
	TilesHorizontal  int     `json:"tiles_horizontal" yaml:"tiles_horizontal"`
	TilesVertical    int     `json:"tiles_vertical" yaml:"tiles_vertical"`
	TileSize         float64 `json:"tile_size" yaml:"tile_size"` // World units per tile edge
	DefaultFootprint int     `json:"default_footprint" yaml:"default_footprint"`
}

func DefaultSettings() WorldSettings {
	return WorldSettings{
		TilesHorizontal:  60,
		TilesVertical:    40,
		TileSize:         16.0,
		DefaultFootprint: DefaultFootprint,
	}
}

// WorldWidth returns the tank width in world units.
func (s WorldSettings) WorldWidth() float64 {
	return float64(s.TilesHorizontal) * s.TileSize
}

// WorldHeight returns the tank height in world units.
func (s WorldSettings) WorldHeight() float64 {
	return float64(s.TilesVertical) * s.TileSize
}

// LayoutStats summarises how much of the tank is covered.
type LayoutStats struct {
	Objects       int `json:"objects"`
	OccupiedTiles int `json:"occupied_tiles"`
	TotalTiles    int `json:"total_tiles"`
}

// Occupancy returns the covered percentage of the tank.
func (ls LayoutStats) Occupancy() float64 {
	if ls.TotalTiles == 0 {
		return 0
	}
	return float64(ls.OccupiedTiles) / float64(ls.TotalTiles) * 100.0
}

// TankLayout ties everything together for save/load.
type TankLayout struct {
	Name     string         `json:"name"`
	OwnerID  string         `json:"owner_id"`
	Settings WorldSettings  `json:"settings"`
	Objects  []PlacedObject `json:"objects"`
}

func NewTankLayout() TankLayout {
	return TankLayout{
		Name:     "Untitled",
		Objects:  []PlacedObject{},
		Settings: DefaultSettings(),
	}
}
