// Package config loads the modelo YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by Validate errors.
var ErrInvalid = errors.New("config: invalid")

// Config is the top-level configuration.
type Config struct {
	Viewer   ViewerConfig   `yaml:"viewer"`
	Timing   TimingConfig   `yaml:"timing"`
	Camera   CameraConfig   `yaml:"camera"`
	Progress ProgressConfig `yaml:"progress"`
	Locale   string         `yaml:"locale"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
}

// ViewerConfig holds the initial viewer attributes.
type ViewerConfig struct {
	AutoRotate        bool               `yaml:"auto_rotate"`
	RotationSpeed     float64            `yaml:"rotation_speed"`
	Speeds            map[string]float64 `yaml:"speeds"`
	EnvironmentImage  string             `yaml:"environment_image"`
	InteractionPrompt string             `yaml:"interaction_prompt"`
	DefaultModel      string             `yaml:"default_model"`
}

// TimingConfig holds timeouts and delays.
type TimingConfig struct {
	LoadTimeout      time.Duration `yaml:"load_timeout"`
	RetryDelay       time.Duration `yaml:"retry_delay"`
	InteractionDelay time.Duration `yaml:"interaction_delay"`
}

// CameraConfig is the reset camera.
type CameraConfig struct {
	DefaultOrbit  string `yaml:"default_orbit"`
	DefaultTarget string `yaml:"default_target"`
}

// ProgressConfig selects the progress message bands.
type ProgressConfig struct {
	Bands string `yaml:"bands"` // viewer | compact
}

// ServerConfig configures modelo serve.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	AssetsDir string `yaml:"assets_dir"`
	DBPath    string `yaml:"db_path"`
}

// StorageConfig holds the versioned preference keys.
type StorageConfig struct {
	ThemeKey       string `yaml:"theme_key"`
	CameraOrbitKey string `yaml:"camera_orbit_key"`
	CapabilityKey  string `yaml:"capability_key"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{Viewer: ViewerConfig{AutoRotate: true}}
	c.applyDefaults()
	return c
}

// LoadFile reads a YAML configuration file. Unset fields take their
// defaults. An empty file is allowed.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration.
func Parse(data []byte) (*Config, error) {
	cfg := Config{Viewer: ViewerConfig{AutoRotate: true}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Viewer.RotationSpeed <= 0 {
		c.Viewer.RotationSpeed = 0.5
	}
	if c.Viewer.Speeds == nil {
		c.Viewer.Speeds = map[string]float64{
			"slow":      0.25,
			"normal":    0.5,
			"fast":      1,
			"very-fast": 1.5,
		}
	}
	if c.Viewer.EnvironmentImage == "" {
		c.Viewer.EnvironmentImage = "neutral"
	}
	if c.Viewer.InteractionPrompt == "" {
		c.Viewer.InteractionPrompt = "auto"
	}
	if c.Timing.LoadTimeout <= 0 {
		c.Timing.LoadTimeout = 20 * time.Second
	}
	if c.Timing.RetryDelay <= 0 {
		c.Timing.RetryDelay = time.Second
	}
	if c.Timing.InteractionDelay <= 0 {
		c.Timing.InteractionDelay = 800 * time.Millisecond
	}
	if c.Camera.DefaultOrbit == "" {
		c.Camera.DefaultOrbit = "0deg 75deg 2.5m"
	}
	if c.Camera.DefaultTarget == "" {
		c.Camera.DefaultTarget = "0m 0m 0m"
	}
	if c.Progress.Bands == "" {
		c.Progress.Bands = "viewer"
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.AssetsDir == "" {
		c.Server.AssetsDir = "assets"
	}
	if c.Server.DBPath == "" {
		c.Server.DBPath = "modelo.db"
	}
	if c.Storage.ThemeKey == "" {
		c.Storage.ThemeKey = "theme-mode-v3"
	}
	if c.Storage.CameraOrbitKey == "" {
		c.Storage.CameraOrbitKey = "camera-orbit-v2"
	}
	if c.Storage.CapabilityKey == "" {
		c.Storage.CapabilityKey = "gpu-capabilities-v1"
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	switch c.Progress.Bands {
	case "viewer", "compact":
	default:
		return fmt.Errorf("%w: progress.bands %q, want viewer or compact", ErrInvalid, c.Progress.Bands)
	}
	for name, v := range c.Viewer.Speeds {
		if v <= 0 {
			return fmt.Errorf("%w: viewer.speeds.%s must be > 0", ErrInvalid, name)
		}
	}
	return nil
}
