package store

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/Aquarium/internal/model"
)

// Storage path for preferences
const (
	settingsObject   = "settings"
	settingsProperty = "app"
)

// SettingsManager loads and saves AppConfig through gdata.
// A nil manager runs in memory only.
type SettingsManager struct {
	gdataManager *gdata.Manager
	config       model.AppConfig
}

// NewSettingsManager creates a manager and loads any saved preferences.
// A load failure is logged and the defaults are used.
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		config:       model.DefaultAppConfig(),
	}
	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}
	return sm
}

// Load reads preferences from gdata. Missing data yields the defaults.
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.config = model.DefaultAppConfig()
		return nil
	}
	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.config = model.DefaultAppConfig()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.config = model.DefaultAppConfig()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := model.DefaultAppConfig()
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		sm.config = model.DefaultAppConfig()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if loaded.RecentOwners == nil {
		loaded.RecentOwners = []string{}
	}
	sm.config = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save writes preferences to gdata. Without a manager it does nothing.
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}
	data, err := yaml.Marshal(sm.config)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// Config returns the current preferences.
func (sm *SettingsManager) Config() model.AppConfig {
	return sm.config
}

// SetConfig replaces the preferences in memory. Call Save to persist.
func (sm *SettingsManager) SetConfig(c model.AppConfig) {
	if c.RecentOwners == nil {
		c.RecentOwners = []string{}
	}
	sm.config = c
}

// TouchOwner records owner as most recently used.
func (sm *SettingsManager) TouchOwner(owner string) {
	sm.config.TouchRecentOwner(owner)
}
