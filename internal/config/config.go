package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"boothmap/internal/overlay"
)

// Config is the on-disk configuration. Pointer fields distinguish "absent"
// from zero so partial files keep the defaults.
type Config struct {
	DefaultWidth  *float64 `json:"default_width,omitempty"`  // meters
	DefaultHeight *float64 `json:"default_height,omitempty"` // meters
	Editable      *bool    `json:"editable,omitempty"`
	ShowOverlays  *bool    `json:"show_overlays,omitempty"`
	DBPath        *string  `json:"db_path,omitempty"`
	PageWidthMM   *float64 `json:"page_width_mm,omitempty"`
	PageHeightMM  *float64 `json:"page_height_mm,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DefaultWidth:  ptrFloat64(overlay.DefaultRectangle[0]),
		DefaultHeight: ptrFloat64(overlay.DefaultRectangle[1]),
		Editable:      ptrBool(true),
		ShowOverlays:  ptrBool(true),
		DBPath:        ptrString(""),
		PageWidthMM:   ptrFloat64(297),
		PageHeightMM:  ptrFloat64(210),
	}
}

// Load reads a JSON config file on top of Default.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects sizes the engine could not draw.
func (c *Config) Validate() error {
	if c.DefaultWidth != nil && *c.DefaultWidth <= 0 {
		return fmt.Errorf("default_width must be positive, got %g", *c.DefaultWidth)
	}
	if c.DefaultHeight != nil && *c.DefaultHeight <= 0 {
		return fmt.Errorf("default_height must be positive, got %g", *c.DefaultHeight)
	}
	if c.PageWidthMM != nil && *c.PageWidthMM <= 0 {
		return fmt.Errorf("page_width_mm must be positive, got %g", *c.PageWidthMM)
	}
	if c.PageHeightMM != nil && *c.PageHeightMM <= 0 {
		return fmt.Errorf("page_height_mm must be positive, got %g", *c.PageHeightMM)
	}
	return nil
}

// Overlay converts the file config into the engine's per-pass Config.
// Nil fields fall back to the built-in defaults.
func (c *Config) Overlay() overlay.Config {
	def := Default()
	return overlay.Config{
		DefaultSize: [2]float64{
			orFloat(c.DefaultWidth, *def.DefaultWidth),
			orFloat(c.DefaultHeight, *def.DefaultHeight),
		},
		Editable:     orBool(c.Editable, *def.Editable),
		ShowOverlays: orBool(c.ShowOverlays, *def.ShowOverlays),
	}
}

// GetDBPath returns the store path, empty when persistence is off.
func (c *Config) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

// PageSize returns the snapshot page in millimetres.
func (c *Config) PageSize() (float64, float64) {
	def := Default()
	return orFloat(c.PageWidthMM, *def.PageWidthMM), orFloat(c.PageHeightMM, *def.PageHeightMM)
}

func orFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func orBool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
