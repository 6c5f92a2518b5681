package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"linkmap/diagram"
)

type Config struct {
	SaveDirectory string `toml:"save_directory"`
	Confirmations bool   `toml:"confirmations"`

	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"` // debug, info, warn, error

	// Terminal cell size in scene pixels.
	CellWidth  float64 `toml:"cell_width"`
	CellHeight float64 `toml:"cell_height"`

	AnimateOnLoad bool    `toml:"animate_on_load"`
	MarkerSpeed   string  `toml:"marker_speed"` // pixels per tick or a duration
	FPS           int     `toml:"fps"`
	PinchStep     float64 `toml:"pinch_step"`
}

func DefaultConfig() *Config {
	return &Config{
		Confirmations: true,
		LogLevel:      "info",
		CellWidth:     8,
		CellHeight:    16,
		MarkerSpeed:   "2s",
		FPS:           defaultFPS,
		PinchStep:     1.1,
	}
}

// ConfigDir returns the linkmap config directory.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "linkmap")
}

func defaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.CellWidth <= 0 {
		c.CellWidth = d.CellWidth
	}
	if c.CellHeight <= 0 {
		c.CellHeight = d.CellHeight
	}
	if c.FPS <= 0 || c.FPS > 240 {
		c.FPS = d.FPS
	}
	if c.PinchStep <= 1 {
		c.PinchStep = d.PinchStep
	}
	if _, err := diagram.ParseSpeed(c.MarkerSpeed); err != nil {
		c.MarkerSpeed = d.MarkerSpeed
	}
	if strings.HasPrefix(c.SaveDirectory, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			c.SaveDirectory = filepath.Join(home, strings.TrimPrefix(c.SaveDirectory, "~"))
		}
	}
}

// Save writes the config to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0o755)
	return filepath.Join(c.SaveDirectory, filename)
}

func (c *Config) markerSpeed() diagram.Speed {
	s, err := diagram.ParseSpeed(c.MarkerSpeed)
	if err != nil {
		s, _ = diagram.ParseSpeed(DefaultConfig().MarkerSpeed)
	}
	return s
}

func (c *Config) slogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
