package model

// AppConfig holds application-wide preferences and default world settings.
type AppConfig struct {
	// Defaults applied to new tanks
	DefaultTilesHorizontal int     `json:"default_tiles_horizontal" yaml:"default_tiles_horizontal"`
	DefaultTilesVertical   int     `json:"default_tiles_vertical" yaml:"default_tiles_vertical"`
	DefaultTileSize        float64 `json:"default_tile_size" yaml:"default_tile_size"`
	DefaultFootprint       int     `json:"default_footprint" yaml:"default_footprint"`
	DefaultLayer           int     `json:"default_layer" yaml:"default_layer"`

	// Application preferences
	AutoSaveInterval int      `json:"auto_save_interval" yaml:"auto_save_interval"` // minutes, 0 = disabled
	RecentOwners     []string `json:"recent_owners" yaml:"recent_owners"`
	Theme            string   `json:"theme" yaml:"theme"` // "light", "dark", "system"
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultTilesHorizontal: defaults.TilesHorizontal,
		DefaultTilesVertical:   defaults.TilesVertical,
		DefaultTileSize:        defaults.TileSize,
		DefaultFootprint:       defaults.DefaultFootprint,
		DefaultLayer:           0,
		AutoSaveInterval:       0,
		RecentOwners:           []string{},
		Theme:                  "system",
	}
}

// ApplyToSettings copies the default values from AppConfig into a WorldSettings struct.
// Zero values are skipped so a partially filled config never shrinks the tank to nothing.
func (c AppConfig) ApplyToSettings(s *WorldSettings) {
	if c.DefaultTilesHorizontal > 0 {
		s.TilesHorizontal = c.DefaultTilesHorizontal
	}
	if c.DefaultTilesVertical > 0 {
		s.TilesVertical = c.DefaultTilesVertical
	}
	if c.DefaultTileSize > 0 {
		s.TileSize = c.DefaultTileSize
	}
	if c.DefaultFootprint > 0 {
		s.DefaultFootprint = c.DefaultFootprint
	}
}

// MaxRecentOwners bounds the RecentOwners list.
const MaxRecentOwners = 10

// TouchRecentOwner moves owner to the front of RecentOwners.
func (c *AppConfig) TouchRecentOwner(owner string) {
	if owner == "" {
		return
	}
	recent := []string{owner}
	for _, o := range c.RecentOwners {
		if o != owner {
			recent = append(recent, o)
		}
	}
	if len(recent) > MaxRecentOwners {
		recent = recent[:MaxRecentOwners]
	}
	c.RecentOwners = recent
}
