package engine

import (
	"fmt"
	"sort"

	"github.com/piwi3910/Aquarium/internal/grid"
	"github.com/piwi3910/Aquarium/internal/model"
)

// ConflictKind classifies a data-integrity problem found while rebuilding.
type ConflictKind int

const (
	ConflictOverlap     ConflictKind = iota // Record claimed tiles another record already held
	ConflictOutOfBounds                     // Record footprint leaves the tank; record skipped
	ConflictDuplicateID                     // Same id appeared twice; the later record replaced the earlier
)

func (k ConflictKind) String() string {
	switch k {
	case ConflictOverlap:
		return "overlap"
	case ConflictOutOfBounds:
		return "out of bounds"
	case ConflictDuplicateID:
		return "duplicate id"
	default:
		return "unknown"
	}
}

// Conflict describes one problem in loaded records. The engine never
// refuses to load; callers decide whether to log or repair.
type Conflict struct {
	Kind        ConflictKind
	ObjectID    string
	DisplacedID string // Earlier owner for overlaps
}

func (c Conflict) String() string {
	if c.DisplacedID != "" {
		return fmt.Sprintf("%s: %s displaced %s", c.Kind, c.ObjectID, c.DisplacedID)
	}
	return fmt.Sprintf("%s: %s", c.Kind, c.ObjectID)
}

// RebuildFromRecords discards all state and re-claims each record's
// footprint in input order.
//
// Persisted records are the source of truth, so nothing here fails. When
// two records overlap the later one wins the shared tiles and the earlier
// one keeps the rest. Once the winner is removed or moves away the earlier
// record claims its freed tiles back, so no later placement can land
// inside a loaded footprint. Records whose footprint leaves the tank are
// skipped. Each such case is reported.
func (e *Engine) RebuildFromRecords(records []model.PlacedObject) []Conflict {
	e.grid = grid.New(e.Settings.TilesHorizontal, e.Settings.TilesVertical)
	e.objects = make(map[string]*model.PlacedObject, len(records))
	e.partial = make(map[string]bool)

	var conflicts []Conflict
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = e.newID()
		}
		rec.Footprint = e.footprintOrDefault(rec.Footprint)

		if !e.grid.BlockInBounds(rec.OriginCol, rec.OriginRow, rec.Footprint) {
			conflicts = append(conflicts, Conflict{Kind: ConflictOutOfBounds, ObjectID: rec.ID})
			continue
		}

		if prev, dup := e.objects[rec.ID]; dup {
			e.grid.Release(prev.OriginCol, prev.OriginRow, prev.Footprint, prev.ID)
			delete(e.objects, rec.ID)
			delete(e.partial, rec.ID)
			e.reclaimPartial()
			conflicts = append(conflicts, Conflict{Kind: ConflictDuplicateID, ObjectID: rec.ID})
		}

		for _, displaced := range e.ownersIn(rec.OriginCol, rec.OriginRow, rec.Footprint) {
			conflicts = append(conflicts, Conflict{Kind: ConflictOverlap, ObjectID: rec.ID, DisplacedID: displaced})
			e.partial[displaced] = true
		}

		rec.State = model.StatePlaced
		obj := rec
		e.grid.Claim(obj.OriginCol, obj.OriginRow, obj.Footprint, obj.ID)
		e.objects[obj.ID] = &obj
	}
	return conflicts
}

// ownersIn returns the distinct owners of tiles in the block, sorted.
func (e *Engine) ownersIn(col, row, size int) []string {
	seen := map[string]bool{}
	var owners []string
	for r := row; r < row+size; r++ {
		for c := col; c < col+size; c++ {
			if owner, ok := e.grid.Owner(c, r); ok && !seen[owner] {
				seen[owner] = true
				owners = append(owners, owner)
			}
		}
	}
	sort.Strings(owners)
	return owners
}
