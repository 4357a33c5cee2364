// Package config holds collider settings loaded from a JSON file and
// overridden by command-line flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chazu/collider/pkg/collision"
	"github.com/chazu/collider/pkg/geom"
	"github.com/chazu/collider/pkg/scene"
)

// Config holds the generator settings.
type Config struct {
	OutputDir     string     `json:"output_dir"`
	Method        string     `json:"method"` // "convex" or "box"
	Prefix        string     `json:"prefix"`
	CustomName    string     `json:"custom_name"`
	UseActiveName bool       `json:"use_active_name"`
	Oriented      bool       `json:"oriented"`
	Epsilon       float64    `json:"epsilon"`
	Offset        geom.Point `json:"offset"`
	Rotation      geom.Point `json:"rotation"` // XYZ Euler radians
	ExportSTL     bool       `json:"export_stl"`
	AutoFocus     bool       `json:"auto_focus"`
}

// DefaultConfig returns a Config with the stock block naming and a convex
// hull method.
func DefaultConfig() *Config {
	n := scene.DefaultNaming()
	return &Config{
		OutputDir:     ".",
		Method:        string(collision.MethodConvex),
		Prefix:        n.Prefix,
		CustomName:    n.Custom,
		UseActiveName: n.UseActive,
		Epsilon:       collision.DefaultEpsilon,
	}
}

// Load reads a JSON config file. Fields missing from the file keep their
// DefaultConfig values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["out"] {
		cfg.OutputDir = fromFile.OutputDir
	}
	if !explicitFlags["method"] {
		cfg.Method = fromFile.Method
	}
	if !explicitFlags["prefix"] {
		cfg.Prefix = fromFile.Prefix
	}
	if !explicitFlags["name"] {
		cfg.CustomName = fromFile.CustomName
	}
	if !explicitFlags["use-active-name"] {
		cfg.UseActiveName = fromFile.UseActiveName
	}
	if !explicitFlags["oriented"] {
		cfg.Oriented = fromFile.Oriented
	}
	if !explicitFlags["epsilon"] {
		cfg.Epsilon = fromFile.Epsilon
	}
	if !explicitFlags["offset"] {
		cfg.Offset = fromFile.Offset
	}
	if !explicitFlags["rotation"] {
		cfg.Rotation = fromFile.Rotation
	}
	if !explicitFlags["stl"] {
		cfg.ExportSTL = fromFile.ExportSTL
	}
	if !explicitFlags["auto-focus"] {
		cfg.AutoFocus = fromFile.AutoFocus
	}
}

// Validate rejects settings no generation could use.
func (c *Config) Validate() error {
	if _, err := collision.ParseMethod(c.Method); err != nil {
		return err
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("epsilon must not be negative, got %g", c.Epsilon)
	}
	if c.UseActiveName && c.Prefix == "" {
		return fmt.Errorf("prefix must be set when naming after the active object")
	}
	if !c.UseActiveName && c.CustomName == "" {
		return fmt.Errorf("custom_name must be set when use_active_name is false")
	}
	return nil
}

// Naming returns the block naming settings.
func (c *Config) Naming() scene.Naming {
	return scene.Naming{
		Prefix:    c.Prefix,
		Custom:    c.CustomName,
		UseActive: c.UseActiveName,
	}
}

// Params returns the generation parameters.
func (c *Config) Params() (collision.Params, error) {
	m, err := collision.ParseMethod(c.Method)
	if err != nil {
		return collision.Params{}, err
	}
	return collision.Params{
		Method:   m,
		Offset:   c.Offset,
		Rotation: c.Rotation,
		Oriented: c.Oriented,
		Epsilon:  c.Epsilon,
	}, nil
}
