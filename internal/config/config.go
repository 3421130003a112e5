package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the conventional config file location.
const DefaultPath = ".bearmap.yml"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (BEARMAP_*). A missing file is not an
// error; defaults apply.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables. Double underscore separates nesting
	// levels so keys like center_lat stay intact:
	// BEARMAP_SERVER__PORT -> server.port, BEARMAP_MAP__CENTER_LAT -> map.center_lat.
	if err := k.Load(env.Provider("BEARMAP_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "BEARMAP_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validPositions is the set of recognized control corner values.
var validPositions = map[string]bool{
	"topleft":     true,
	"topright":    true,
	"bottomleft":  true,
	"bottomright": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Map.Title == "" {
		return fmt.Errorf("map title is required")
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		return fmt.Errorf("center_lat %v out of range", c.Map.CenterLat)
	}
	if c.Map.CenterLng < -180 || c.Map.CenterLng > 180 {
		return fmt.Errorf("center_lng %v out of range", c.Map.CenterLng)
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 22 {
		return fmt.Errorf("zoom %d out of range: must be 0-22", c.Map.Zoom)
	}
	if len(c.Map.Tiles) == 0 {
		return fmt.Errorf("at least one tile layer is required")
	}
	for _, t := range c.Map.Tiles {
		if t.Name == "" || t.URL == "" {
			return fmt.Errorf("tile layers need both name and url")
		}
	}

	if c.Draw.Position != "" && !validPositions[c.Draw.Position] {
		return fmt.Errorf("invalid draw position %q: must be one of topleft, topright, bottomleft, bottomright", c.Draw.Position)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}

	return nil
}
