// Package session binds a placement engine to persistent storage for one
// tank owner.
package session

import (
	"fmt"
	"log"
	"sync"

	"github.com/piwi3910/Aquarium/internal/engine"
	"github.com/piwi3910/Aquarium/internal/model"
)

// ObjectStore persists placed-object records.
type ObjectStore interface {
	SaveObject(rec model.PlacedObject) (string, error)
	UpdateObject(id string, upd model.ObjectUpdate) error
	DeleteObject(id string) error
	LoadAllObjects(ownerID string) ([]model.PlacedObject, error)
}

// Session serialises access to one engine and mirrors every successful
// change into the store with exactly one call. When the store fails the
// in-memory change is undone so memory and storage agree.
type Session struct {
	mu      sync.Mutex
	owner   string
	engine  *engine.Engine
	store   ObjectStore
	pending []engine.Conflict
}

// Open loads the owner's records and rebuilds the grid from them.
// Conflicts found while rebuilding are logged and kept for Conflicts.
func Open(settings model.WorldSettings, store ObjectStore, ownerID string) (*Session, error) {
	records, err := store.LoadAllObjects(ownerID)
	if err != nil {
		return nil, fmt.Errorf("load objects for %q: %w", ownerID, err)
	}

	eng := engine.New(settings)
	conflicts := eng.RebuildFromRecords(records)
	for _, c := range conflicts {
		log.Printf("[Session] Warning: data integrity: %s", c)
	}
	log.Printf("[Session] Loaded %d objects for %q", eng.Len(), ownerID)

	return &Session{
		owner:   ownerID,
		engine:  eng,
		store:   store,
		pending: conflicts,
	}, nil
}

// Owner returns the owner this session was opened for.
func (s *Session) Owner() string { return s.owner }

// Settings returns the world geometry.
func (s *Session) Settings() model.WorldSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Settings
}

// Conflicts returns the problems found when the session was opened.
func (s *Session) Conflicts() []engine.Conflict {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]engine.Conflict, len(s.pending))
	copy(out, s.pending)
	return out
}

// Drop places a new object near the world point and saves it.
func (s *Session) Drop(req engine.PlaceRequest) (model.PlacedObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.OwnerID = s.owner
	obj, err := s.engine.Place(req)
	if err != nil {
		return model.PlacedObject{}, err
	}
	if _, err := s.store.SaveObject(obj); err != nil {
		s.engine.Remove(obj.ID)
		return model.PlacedObject{}, fmt.Errorf("save %s: %w", obj.ID, err)
	}
	return obj, nil
}

// Nudge moves an object one tile and saves its new origin.
func (s *Session) Nudge(id string, dir model.Direction) (model.PlacedObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, err := s.engine.Move(id, dir)
	if err != nil {
		return model.PlacedObject{}, err
	}
	if err := s.store.UpdateObject(id, model.OriginUpdate(obj.OriginCol, obj.OriginRow)); err != nil {
		if _, undoErr := s.engine.Move(id, dir.Opposite()); undoErr != nil {
			log.Printf("[Session] Warning: failed to undo move of %s: %v", id, undoErr)
		}
		return model.PlacedObject{}, fmt.Errorf("update %s: %w", id, err)
	}
	return obj, nil
}

// Arrange drops many objects in one call, each saved as it lands.
// Objects whose save fails are removed again and reported as unplaced.
// When the engine rejects the call nothing is placed or saved.
func (s *Session) Arrange(items []engine.ArrangeItem) (engine.ArrangeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := make([]engine.ArrangeItem, len(items))
	copy(owned, items)
	for i := range owned {
		owned[i].Request.OwnerID = s.owner
	}
	result, err := s.engine.Arrange(owned)
	if err != nil {
		return result, err
	}

	saved := result.Placed[:0]
	for _, obj := range result.Placed {
		if _, err := s.store.SaveObject(obj); err != nil {
			log.Printf("[Session] Warning: failed to save %s: %v", obj.ID, err)
			s.engine.Remove(obj.ID)
			result.Unplaced = append(result.Unplaced, requestFor(obj))
			continue
		}
		saved = append(saved, obj)
	}
	result.Placed = saved
	return result, nil
}

// Insert registers a record at its recorded origin and saves it. Used for
// imports and templates, where positions are already decided.
func (s *Session) Insert(rec model.PlacedObject) (model.PlacedObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.OwnerID = s.owner
	obj, err := s.engine.Insert(rec)
	if err != nil {
		return model.PlacedObject{}, err
	}
	if _, err := s.store.SaveObject(obj); err != nil {
		s.engine.Remove(obj.ID)
		return model.PlacedObject{}, fmt.Errorf("save %s: %w", obj.ID, err)
	}
	return obj, nil
}

// Delete removes an object and its stored record. Deleting an unknown id
// is a no-op that reports false.
func (s *Session) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.engine.Remove(id)
	if !ok {
		return false, nil
	}
	if err := s.store.DeleteObject(id); err != nil {
		prev.State = model.StatePlaced
		if _, undoErr := s.engine.Insert(prev); undoErr != nil {
			log.Printf("[Session] Warning: failed to restore %s: %v", id, undoErr)
		}
		return false, fmt.Errorf("delete %s: %w", id, err)
	}
	return true, nil
}

// Get returns the placed record for id.
func (s *Session) Get(id string) (model.PlacedObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Get(id)
}

// Objects returns every placed record in render order.
func (s *Session) Objects() []model.PlacedObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Objects()
}

// Occupancy returns a copy of the claim map.
func (s *Session) Occupancy() map[model.Coord]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Occupancy()
}

// Stats summarises tank coverage.
func (s *Session) Stats() model.LayoutStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Stats()
}

// Layout snapshots the session as a TankLayout for export.
func (s *Session) Layout(name string) model.TankLayout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.TankLayout{
		Name:     name,
		OwnerID:  s.owner,
		Settings: s.engine.Settings,
		Objects:  s.engine.Objects(),
	}
}

// requestFor rebuilds a drop request that would place obj at its origin.
func requestFor(obj model.PlacedObject) engine.PlaceRequest {
	return engine.PlaceRequest{
		SpriteRef: obj.SpriteRef,
		Footprint: obj.Footprint,
		Layer:     obj.Layer,
		OwnerID:   obj.OwnerID,
	}
}
