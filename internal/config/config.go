// Package config loads process configuration for the aquarium tools.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/Aquarium/internal/model"
)

// Storage backends.
const (
	BackendFile  = "file"
	BackendGdata = "gdata"
)

// Config holds all process configuration
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Storage StorageConfig `yaml:"storage"`
	OwnerID string        `yaml:"owner_id"`
}

// WorldConfig holds tank grid dimensions
type WorldConfig struct {
	TilesHorizontal  int     `yaml:"tiles_horizontal"`
	TilesVertical    int     `yaml:"tiles_vertical"`
	TileSize         float64 `yaml:"tile_size"` // world units per tile
	DefaultFootprint int     `yaml:"default_footprint"`
}

// StorageConfig selects where placed objects are persisted
type StorageConfig struct {
	Backend string `yaml:"backend"` // file or gdata
	Path    string `yaml:"path"`    // objects file for the file backend
	AppName string `yaml:"app_name"`
	DataDir string `yaml:"data_dir"` // catalog, templates and preferences; empty uses ~/.aquarium
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults; unset fields in a present file are filled the same way.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the engine cannot work with.
func (c *Config) Validate() error {
	if c.World.TilesHorizontal < 0 || c.World.TilesVertical < 0 {
		return fmt.Errorf("invalid tank size %dx%d", c.World.TilesHorizontal, c.World.TilesVertical)
	}
	if c.World.TileSize < 0 {
		return fmt.Errorf("invalid tile size %g", c.World.TileSize)
	}
	switch c.Storage.Backend {
	case BackendFile, BackendGdata:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

// WorldSettings converts the world section for the engine.
func (c *Config) WorldSettings() model.WorldSettings {
	return model.WorldSettings{
		TilesHorizontal:  c.World.TilesHorizontal,
		TilesVertical:    c.World.TilesVertical,
		TileSize:         c.World.TileSize,
		DefaultFootprint: c.World.DefaultFootprint,
	}
}

func (c *Config) applyDefaults() {
	def := model.DefaultSettings()
	if c.World.TilesHorizontal == 0 {
		c.World.TilesHorizontal = def.TilesHorizontal
	}
	if c.World.TilesVertical == 0 {
		c.World.TilesVertical = def.TilesVertical
	}
	if c.World.TileSize == 0 {
		c.World.TileSize = def.TileSize
	}
	if c.World.DefaultFootprint == 0 {
		c.World.DefaultFootprint = def.DefaultFootprint
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.AppName == "" {
		c.Storage.AppName = "aquarium"
	}
	if c.OwnerID == "" {
		c.OwnerID = "local"
	}
}
