package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/Aquarium/internal/model"
)

// DefaultTemplatesPath returns ~/.aquarium/templates.json.
func DefaultTemplatesPath() string {
	return filepath.Join(DefaultConfigDir(), "templates.json")
}

// SaveTemplates writes every layout template to the specified JSON file.
func SaveTemplates(path string, store model.TemplateStore) error {
	if err := writeJSON(path, store); err != nil {
		return fmt.Errorf("save templates %s: %w", path, err)
	}
	return nil
}

// LoadTemplates reads layout templates from the specified JSON file.
// A missing file is an empty set. Templates without objects load with an
// empty object list.
func LoadTemplates(path string) (model.TemplateStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewTemplateStore(), nil
		}
		return model.TemplateStore{}, fmt.Errorf("load templates %s: %w", path, err)
	}
	var store model.TemplateStore
	if err := json.Unmarshal(data, &store); err != nil {
		return model.TemplateStore{}, fmt.Errorf("load templates %s: %w", path, err)
	}
	if store.Templates == nil {
		store.Templates = []model.LayoutTemplate{}
	}
	for i := range store.Templates {
		if store.Templates[i].Objects == nil {
			store.Templates[i].Objects = []model.PlacedObject{}
		}
	}
	return store, nil
}

// PutTemplate stores t in the file at path, replacing any template with
// the same name, and returns the updated set.
func PutTemplate(path string, t model.LayoutTemplate) (model.TemplateStore, error) {
	store, err := LoadTemplates(path)
	if err != nil {
		return store, err
	}
	if existing := store.FindByName(t.Name); existing != nil {
		store.Remove(existing.ID)
	}
	store.Add(t)
	return store, SaveTemplates(path, store)
}
