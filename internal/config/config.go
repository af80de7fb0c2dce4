// Package config loads the jabscan configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ericlevine/jabcode"
)

// Decode contains the decoder settings.
type Decode struct {
	Mode          string `toml:"mode"`
	MaxSymbols    int    `toml:"max_symbols"`
	CharacterSet  string `toml:"character_set"`
	MaxIterations int    `toml:"max_iterations"`
}

// Encode contains the encoder settings.
type Encode struct {
	ColorNumber int `toml:"color_number"`
	ECCLevel    int `toml:"ecc_level"`
	MaskType    int `toml:"mask_type"`
	ModuleSize  int `toml:"module_size"`
	QuietZone   int `toml:"quiet_zone"`
}

// Output contains report settings.
type Output struct {
	// Format is auto, table, text or yaml. Auto picks table on a terminal.
	Format string `toml:"format"`
}

// Logging contains logger settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full jabscan configuration.
type Config struct {
	Decode  Decode  `toml:"decode"`
	Encode  Encode  `toml:"encode"`
	Output  Output  `toml:"output"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the per-user configuration file location.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "jabscan", "config.toml"), nil
}

// Load parses and validates a configuration file. An empty path reads the
// default location; a missing default file yields the defaults. It reports
// whether a file was read.
func Load(path string) (*Config, bool, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, false, err
		}
		path = p
	}

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		if err := toml.NewDecoder(file).DisallowUnknownFields().Decode(&cfg); err != nil {
			return nil, false, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		if err := cfg.Validate(); err != nil {
			return nil, false, err
		}
		return &cfg, false, nil
	default:
		return nil, false, fmt.Errorf("open config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return &cfg, true, nil
}

// DecodeOptions converts the decode section.
func (c *Config) DecodeOptions() (*jabcode.DecodeOptions, error) {
	mode, err := jabcode.ParseMode(c.Decode.Mode)
	if err != nil {
		return nil, err
	}
	return &jabcode.DecodeOptions{
		Mode:          mode,
		MaxSymbols:    c.Decode.MaxSymbols,
		CharacterSet:  c.Decode.CharacterSet,
		MaxIterations: c.Decode.MaxIterations,
	}, nil
}

// EncodeOptions converts the encode section.
func (c *Config) EncodeOptions() *jabcode.EncodeOptions {
	return &jabcode.EncodeOptions{
		ColorNumber: c.Encode.ColorNumber,
		ECCLevel:    c.Encode.ECCLevel,
		MaskType:    c.Encode.MaskType,
		ModuleSize:  c.Encode.ModuleSize,
		QuietZone:   c.Encode.QuietZone,
	}
}
