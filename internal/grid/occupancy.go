// Package grid tracks which tank tiles are claimed by which decor object.
package grid

import (
	"sort"

	"github.com/piwi3910/Aquarium/internal/model"
)

// Occupancy is a bounded, sparse map from tile to owning object id.
// Unclaimed tiles are absent from the map.
//
// Occupancy is not safe for concurrent use; callers serialise access.
type Occupancy struct {
	cols, rows int
	cells      map[model.Coord]string
}

// New creates an empty occupancy map for a cols x rows grid.
func New(cols, rows int) *Occupancy {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	return &Occupancy{
		cols:  cols,
		rows:  rows,
		cells: make(map[model.Coord]string),
	}
}

// Cols returns the grid width in tiles.
func (g *Occupancy) Cols() int { return g.cols }

// Rows returns the grid height in tiles.
func (g *Occupancy) Rows() int { return g.rows }

// InBounds reports whether the tile lies on the grid.
func (g *Occupancy) InBounds(col, row int) bool {
	return col >= 0 && col < g.cols && row >= 0 && row < g.rows
}

// BlockInBounds reports whether the whole size x size block anchored at
// (col, row) lies on the grid.
func (g *Occupancy) BlockInBounds(col, row, size int) bool {
	if size <= 0 {
		return false
	}
	return col >= 0 && row >= 0 && col+size <= g.cols && row+size <= g.rows
}

// IsFree reports whether the tile is on the grid and unclaimed.
func (g *Occupancy) IsFree(col, row int) bool {
	if !g.InBounds(col, row) {
		return false
	}
	_, taken := g.cells[model.Coord{Col: col, Row: row}]
	return !taken
}

// IsAreaFree reports whether every tile of the block is on the grid and
// either unclaimed or owned by excludeID. An empty excludeID excludes nothing.
func (g *Occupancy) IsAreaFree(col, row, size int, excludeID string) bool {
	if !g.BlockInBounds(col, row, size) {
		return false
	}
	for r := row; r < row+size; r++ {
		for c := col; c < col+size; c++ {
			owner, taken := g.cells[model.Coord{Col: c, Row: r}]
			if taken && (excludeID == "" || owner != excludeID) {
				return false
			}
		}
	}
	return true
}

// Claim marks every tile of the block as owned by id. It does not check
// that the block is free; callers validate with IsAreaFree first.
func (g *Occupancy) Claim(col, row, size int, id string) {
	for r := row; r < row+size; r++ {
		for c := col; c < col+size; c++ {
			g.cells[model.Coord{Col: c, Row: r}] = id
		}
	}
}

// Release drops the claims on the block that belong to id. Tiles owned by
// anyone else are left alone.
func (g *Occupancy) Release(col, row, size int, id string) {
	for r := row; r < row+size; r++ {
		for c := col; c < col+size; c++ {
			k := model.Coord{Col: c, Row: r}
			if g.cells[k] == id {
				delete(g.cells, k)
			}
		}
	}
}

// ReleaseAll drops every claim owned by id, wherever it is.
func (g *Occupancy) ReleaseAll(id string) int {
	n := 0
	for k, owner := range g.cells {
		if owner == id {
			delete(g.cells, k)
			n++
		}
	}
	return n
}

// Owner returns the id that claims the tile, if any.
func (g *Occupancy) Owner(col, row int) (string, bool) {
	id, ok := g.cells[model.Coord{Col: col, Row: row}]
	return id, ok
}

// CellsOwnedBy returns the tiles claimed by id in row-major order.
func (g *Occupancy) CellsOwnedBy(id string) []model.Coord {
	var out []model.Coord
	for k, owner := range g.cells {
		if owner == id {
			out = append(out, k)
		}
	}
	sortCoords(out)
	return out
}

// Len returns the number of claimed tiles.
func (g *Occupancy) Len() int { return len(g.cells) }

// Clear drops every claim.
func (g *Occupancy) Clear() {
	g.cells = make(map[model.Coord]string)
}

// Snapshot returns a copy of the claim map.
func (g *Occupancy) Snapshot() map[model.Coord]string {
	cp := make(map[model.Coord]string, len(g.cells))
	for k, v := range g.cells {
		cp[k] = v
	}
	return cp
}

// MaxSearchRadius is the ring distance after which FindNearestFree gives up.
// Every in-bounds origin is within this distance of every other.
func (g *Occupancy) MaxSearchRadius() int {
	if g.cols > g.rows {
		return g.cols
	}
	return g.rows
}

// FindNearestFree returns the origin of the free size x size block closest
// to (targetCol, targetRow).
//
// Candidates are visited in Chebyshev rings of growing distance from the
// target, starting with the target itself. Inside a ring the sweep is
// row-major: smaller row first, then smaller column. The first block that
// is in bounds and completely unclaimed wins, so the result is fully
// determined by the claim map and the target.
func (g *Occupancy) FindNearestFree(targetCol, targetRow, size int) (model.Coord, bool) {
	if size <= 0 || size > g.cols || size > g.rows {
		return model.Coord{}, false
	}
	maxOriginCol := g.cols - size
	maxOriginRow := g.rows - size

	for d := 0; d <= g.MaxSearchRadius(); d++ {
		for r := targetRow - d; r <= targetRow+d; r++ {
			if r < 0 || r > maxOriginRow {
				continue
			}
			edgeRow := r == targetRow-d || r == targetRow+d
			step := 2 * d
			if edgeRow || step == 0 {
				step = 1
			}
			for c := targetCol - d; c <= targetCol+d; c += step {
				if c < 0 || c > maxOriginCol {
					continue
				}
				if g.IsAreaFree(c, r, size, "") {
					return model.Coord{Col: c, Row: r}, true
				}
			}
		}
	}
	return model.Coord{}, false
}

func sortCoords(cs []model.Coord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Row != cs[j].Row {
			return cs[i].Row < cs[j].Row
		}
		return cs[i].Col < cs[j].Col
	})
}
