package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/Aquarium/internal/model"
)

// DefaultCatalogPath returns ~/.aquarium/catalog.json.
func DefaultCatalogPath() string {
	return filepath.Join(DefaultConfigDir(), "catalog.json")
}

// SaveCatalog writes the decor catalog to the specified JSON file.
func SaveCatalog(path string, cat model.Catalog) error {
	return writeJSON(path, cat)
}

// LoadCatalog reads the decor catalog from the specified JSON file.
// If the file does not exist, it returns the default catalog and saves it.
func LoadCatalog(path string) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cat := model.DefaultCatalog()
			if saveErr := SaveCatalog(path, cat); saveErr != nil {
				return cat, saveErr
			}
			return cat, nil
		}
		return model.Catalog{}, err
	}
	var cat model.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return model.Catalog{}, err
	}
	if cat.Items == nil {
		cat.Items = []model.DecorItem{}
	}
	return cat, nil
}

// LoadOrCreateCatalog loads the catalog from the default path.
func LoadOrCreateCatalog() (model.Catalog, string, error) {
	path := DefaultCatalogPath()
	cat, err := LoadCatalog(path)
	return cat, path, err
}

// ImportCatalog merges the items of a catalog file into existing.
// Items whose ID is already present are skipped.
func ImportCatalog(path string, existing model.Catalog) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Catalog
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}

	ids := make(map[string]bool, len(existing.Items))
	for _, it := range existing.Items {
		ids[it.ID] = true
	}
	for _, it := range imported.Items {
		if !ids[it.ID] {
			existing.Items = append(existing.Items, it)
			ids[it.ID] = true
		}
	}
	return existing, nil
}
