package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/piwi3910/Aquarium/internal/model"
)

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string               `json:"version"`
	CreatedAt string               `json:"created_at"`
	Config    model.AppConfig      `json:"config"`
	Catalog   model.Catalog        `json:"catalog"`
	Objects   []model.PlacedObject `json:"objects"`
}

// ExportAllData exports preferences, the decor catalog and every stored
// object record to a single JSON file at the specified path.
func ExportAllData(exportPath string, config model.AppConfig, catalog model.Catalog, objects []model.PlacedObject) error {
	if objects == nil {
		objects = []model.PlacedObject{}
	}
	backup := BackupData{
		Version:   "1.0.0",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Catalog:   catalog,
		Objects:   objects,
	}
	if err := writeJSON(exportPath, backup); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying the imported data.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.RecentOwners == nil {
		backup.Config.RecentOwners = []string{}
	}
	if backup.Catalog.Items == nil {
		backup.Catalog.Items = []model.DecorItem{}
	}
	if backup.Objects == nil {
		backup.Objects = []model.PlacedObject{}
	}
	return backup, nil
}
