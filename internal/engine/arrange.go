package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/piwi3910/Aquarium/internal/model"
)

// ArrangeItem asks for Quantity copies of a drop request.
type ArrangeItem struct {
	Request  PlaceRequest
	Quantity int
}

// ArrangeResult holds the outcome of a bulk arrangement.
type ArrangeResult struct {
	Placed   []model.PlacedObject
	Unplaced []PlaceRequest
}

// Arrange drops many objects in one pass. Items are expanded by quantity
// and placed largest footprint first, each through Place, so the
// nearest-free search fills around the big pieces. Requests that do not
// fit are returned in Unplaced. Any other error undoes the whole call and
// leaves the engine as it was.
func (e *Engine) Arrange(items []ArrangeItem) (ArrangeResult, error) {
	if err := e.checkArrangeIDs(items); err != nil {
		return ArrangeResult{}, err
	}

	var expanded []PlaceRequest
	for _, it := range items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		for i := 0; i < qty; i++ {
			req := it.Request
			if i > 0 {
				// Explicit ids cannot repeat
				req.ID = ""
			}
			req.Footprint = e.footprintOrDefault(req.Footprint)
			expanded = append(expanded, req)
		}
	}

	// Largest first; equal sizes keep input order
	sort.SliceStable(expanded, func(i, j int) bool {
		return expanded[i].Footprint > expanded[j].Footprint
	})

	result := ArrangeResult{}
	for _, req := range expanded {
		obj, err := e.Place(req)
		if err != nil {
			if errors.Is(err, ErrNoSpaceAvailable) {
				result.Unplaced = append(result.Unplaced, req)
				continue
			}
			for _, placed := range result.Placed {
				e.Remove(placed.ID)
			}
			return ArrangeResult{}, err
		}
		result.Placed = append(result.Placed, obj)
	}
	return result, nil
}

// checkArrangeIDs rejects explicit ids that are already placed or that
// appear on more than one item.
func (e *Engine) checkArrangeIDs(items []ArrangeItem) error {
	seen := make(map[string]bool)
	for _, it := range items {
		id := it.Request.ID
		if id == "" {
			continue
		}
		if _, ok := e.objects[id]; ok || seen[id] {
			return fmt.Errorf("arrange %s: id already in use: %w", id, ErrPreconditionViolation)
		}
		seen[id] = true
	}
	return nil
}
