package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/piwi3910/Aquarium/internal/model"
)

// ErrRecordNotFound is returned when an update names an id the store does
// not hold.
var ErrRecordNotFound = errors.New("record not found")

// DefaultObjectsPath returns ~/.aquarium/objects.json.
func DefaultObjectsPath() string {
	return filepath.Join(DefaultConfigDir(), "objects.json")
}

// objectsFile is the on-disk layout of a FileStore.
type objectsFile struct {
	Version string               `json:"version"`
	Objects []model.PlacedObject `json:"objects"`
}

// FileStore keeps placed-object records of every owner in one JSON file.
// Each write rewrites the whole file; the in-memory copy only changes once
// the write succeeded.
type FileStore struct {
	path string

	mu      sync.Mutex
	loaded  bool
	records []model.PlacedObject
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// SaveObject stores rec, replacing any record with the same id, and returns
// the persisted id. An empty id is generated.
func (s *FileStore) SaveObject(rec model.PlacedObject) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return "", err
	}
	if rec.ID == "" {
		rec.ID = model.NewObjectID()
	}
	rec.State = model.StateUnplaced

	next := make([]model.PlacedObject, 0, len(s.records)+1)
	replaced := false
	for _, r := range s.records {
		if r.ID == rec.ID {
			next = append(next, rec)
			replaced = true
			continue
		}
		next = append(next, r)
	}
	if !replaced {
		next = append(next, rec)
	}
	if err := s.commit(next); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// UpdateObject applies a partial update to the record with id.
func (s *FileStore) UpdateObject(id string, upd model.ObjectUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	next := make([]model.PlacedObject, len(s.records))
	copy(next, s.records)
	for i := range next {
		if next[i].ID == id {
			upd.Apply(&next[i])
			return s.commit(next)
		}
	}
	return fmt.Errorf("update %s: %w", id, ErrRecordNotFound)
}

// DeleteObject drops the record with id. Deleting an unknown id succeeds.
func (s *FileStore) DeleteObject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	next := make([]model.PlacedObject, 0, len(s.records))
	found := false
	for _, r := range s.records {
		if r.ID == id {
			found = true
			continue
		}
		next = append(next, r)
	}
	if !found {
		return nil
	}
	return s.commit(next)
}

// LoadAllObjects returns the records belonging to ownerID in stored order.
// An empty owner returns every record.
func (s *FileStore) LoadAllObjects(ownerID string) ([]model.PlacedObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	out := []model.PlacedObject{}
	for _, r := range s.records {
		if ownerID == "" || r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ensureLoaded reads the file on first use. A missing file is an empty store.
func (s *FileStore) ensureLoaded() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.records = []model.PlacedObject{}
			s.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read objects file: %w", err)
	}
	var f objectsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse objects file: %w", err)
	}
	if f.Objects == nil {
		f.Objects = []model.PlacedObject{}
	}
	s.records = f.Objects
	s.loaded = true
	return nil
}

func (s *FileStore) commit(next []model.PlacedObject) error {
	if err := writeJSON(s.path, objectsFile{Version: "1.0.0", Objects: next}); err != nil {
		return fmt.Errorf("failed to write objects file: %w", err)
	}
	s.records = next
	return nil
}
