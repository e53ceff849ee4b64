// Package store persists placed objects and preferences in the platform
// data directory through gdata.
package store

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/Aquarium/internal/model"
)

// ErrRecordNotFound is returned when an update names an id the store does
// not hold.
var ErrRecordNotFound = errors.New("record not found")

// Storage keys
const (
	objectsObject = "aquarium_objects" // prop = object id, value = YAML record
	ownersObject  = "aquarium_owners"  // prop = owner id, value = YAML id list
	ownerListProp = "_owners"          // every owner key that has had an index
)

// GdataStore keeps one YAML record per object and a per-owner id index so
// records can be listed without scanning the data directory.
type GdataStore struct {
	mu           sync.Mutex
	gdataManager *gdata.Manager
}

// NewGdataStore wraps an opened gdata manager.
func NewGdataStore(m *gdata.Manager) (*GdataStore, error) {
	if m == nil {
		return nil, errors.New("gdata store requires a manager")
	}
	return &GdataStore{gdataManager: m}, nil
}

// OpenGdataStore opens the data directory for appName.
func OpenGdataStore(appName string) (*GdataStore, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open gdata: %w", err)
	}
	return NewGdataStore(m)
}

// Manager exposes the underlying gdata manager for sharing with a
// SettingsManager.
func (s *GdataStore) Manager() *gdata.Manager { return s.gdataManager }

// SaveObject writes rec and adds it to its owner's index. An empty id is
// generated. Saving over an existing id replaces the record.
func (s *GdataStore) SaveObject(rec model.PlacedObject) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = model.NewObjectID()
	}
	if prev, ok, err := s.loadRecord(rec.ID); err != nil {
		return "", err
	} else if ok && prev.OwnerID != rec.OwnerID {
		if err := s.unindex(prev.OwnerID, prev.ID); err != nil {
			return "", err
		}
	}

	if err := s.writeRecord(rec); err != nil {
		return "", err
	}
	if err := s.index(rec.OwnerID, rec.ID); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// UpdateObject applies a partial update to the stored record.
func (s *GdataStore) UpdateObject(id string, upd model.ObjectUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok, err := s.loadRecord(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("update %s: %w", id, ErrRecordNotFound)
	}
	upd.Apply(&rec)
	return s.writeRecord(rec)
}

// DeleteObject removes the record and its index entry. Deleting an unknown
// id succeeds.
func (s *GdataStore) DeleteObject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok, err := s.loadRecord(id)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := s.gdataManager.DeleteObjectProp(objectsObject, id); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", id, err)
	}
	return s.unindex(rec.OwnerID, id)
}

// LoadAllObjects returns every record indexed under ownerID in save order.
// An empty ownerID returns the records of every owner, grouped by owner in
// the order owners first saved. Index entries without a record are dropped
// with a warning.
func (s *GdataStore) LoadAllObjects(ownerID string) ([]model.PlacedObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	var err error
	if ownerID == "" {
		ids, err = s.loadAllIndexes()
	} else {
		ids, err = s.loadIndex(ownerID)
	}
	if err != nil {
		return nil, err
	}
	out := make([]model.PlacedObject, 0, len(ids))
	for _, id := range ids {
		rec, ok, err := s.loadRecord(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Printf("[GdataStore] Warning: index for %q lists missing object %s", ownerID, id)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *GdataStore) loadRecord(id string) (model.PlacedObject, bool, error) {
	if !s.gdataManager.ObjectPropExists(objectsObject, id) {
		return model.PlacedObject{}, false, nil
	}
	data, err := s.gdataManager.LoadObjectProp(objectsObject, id)
	if err != nil {
		return model.PlacedObject{}, false, fmt.Errorf("failed to load object %s: %w", id, err)
	}
	var rec model.PlacedObject
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return model.PlacedObject{}, false, fmt.Errorf("failed to unmarshal object %s: %w", id, err)
	}
	return rec, true, nil
}

func (s *GdataStore) writeRecord(rec model.PlacedObject) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal object %s: %w", rec.ID, err)
	}
	if err := s.gdataManager.SaveObjectProp(objectsObject, rec.ID, data); err != nil {
		return fmt.Errorf("failed to save object %s: %w", rec.ID, err)
	}
	return nil
}

// ownerKey maps an owner to its index property. gdata keys must not be
// empty, and keys starting with an underscore are reserved, so owners
// spelled that way get one more underscore.
func ownerKey(ownerID string) string {
	if ownerID == "" {
		return "_none"
	}
	if strings.HasPrefix(ownerID, "_") {
		return "_" + ownerID
	}
	return ownerID
}

func (s *GdataStore) loadIndex(ownerID string) ([]string, error) {
	return s.loadIDList(ownerKey(ownerID))
}

func (s *GdataStore) loadIDList(key string) ([]string, error) {
	if !s.gdataManager.ObjectPropExists(ownersObject, key) {
		return nil, nil
	}
	data, err := s.gdataManager.LoadObjectProp(ownersObject, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load index %q: %w", key, err)
	}
	var ids []string
	if err := yaml.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index %q: %w", key, err)
	}
	return ids, nil
}

// loadAllIndexes merges the index of every known owner. An id listed under
// more than one owner is returned once.
func (s *GdataStore) loadAllIndexes() ([]string, error) {
	keys, err := s.loadIDList(ownerListProp)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var ids []string
	for _, key := range keys {
		owned, err := s.loadIDList(key)
		if err != nil {
			return nil, err
		}
		for _, id := range owned {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// trackOwner records key in the owner list the first time it gets an index.
func (s *GdataStore) trackOwner(key string) error {
	keys, err := s.loadIDList(ownerListProp)
	if err != nil {
		return err
	}
	for _, existing := range keys {
		if existing == key {
			return nil
		}
	}
	data, err := yaml.Marshal(append(keys, key))
	if err != nil {
		return fmt.Errorf("failed to marshal owner list: %w", err)
	}
	if err := s.gdataManager.SaveObjectProp(ownersObject, ownerListProp, data); err != nil {
		return fmt.Errorf("failed to save owner list: %w", err)
	}
	return nil
}

func (s *GdataStore) saveIndex(ownerID string, ids []string) error {
	data, err := yaml.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal index for %q: %w", ownerID, err)
	}
	if err := s.gdataManager.SaveObjectProp(ownersObject, ownerKey(ownerID), data); err != nil {
		return fmt.Errorf("failed to save index for %q: %w", ownerID, err)
	}
	return nil
}

func (s *GdataStore) index(ownerID, id string) error {
	ids, err := s.loadIndex(ownerID)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	if err := s.trackOwner(ownerKey(ownerID)); err != nil {
		return err
	}
	return s.saveIndex(ownerID, append(ids, id))
}

func (s *GdataStore) unindex(ownerID, id string) error {
	ids, err := s.loadIndex(ownerID)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	return s.saveIndex(ownerID, kept)
}
