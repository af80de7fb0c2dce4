package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ericlevine/jabcode"
	"github.com/ericlevine/jabcode/internal/config"
)

func TestLoadMissingDefaultUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, found, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Fatal("reported a config file where none exists")
	}
	if cfg.Decode.MaxSymbols != jabcode.DefaultMaxSymbols || cfg.Encode.ColorNumber != 8 || cfg.Output.Format != "auto" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jabscan.toml")
	content := `
[decode]
mode = "exhaustive"
max_symbols = 5
character_set = "Shift_JIS"

[encode]
color_number = 16
ecc_level = 6

[output]
format = "yaml"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, found, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("config file not reported as found")
	}
	if cfg.Encode.ColorNumber != 16 || cfg.Encode.ECCLevel != 6 || cfg.Encode.ModuleSize != 12 {
		t.Errorf("encode section %+v", cfg.Encode)
	}
	opts, err := cfg.DecodeOptions()
	if err != nil {
		t.Fatalf("DecodeOptions: %v", err)
	}
	if opts.Mode != jabcode.ModeExhaustive || opts.MaxSymbols != 5 || opts.CharacterSet != "Shift_JIS" {
		t.Errorf("decode options %+v", opts)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("output format %q, want yaml", cfg.Output.Format)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[decode]\nspeed = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for a missing explicit path")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"mode", func(c *config.Config) { c.Decode.Mode = "fast" }},
		{"max symbols zero", func(c *config.Config) { c.Decode.MaxSymbols = 0 }},
		{"max symbols too large", func(c *config.Config) { c.Decode.MaxSymbols = 62 }},
		{"iterations", func(c *config.Config) { c.Decode.MaxIterations = -1 }},
		{"colors", func(c *config.Config) { c.Encode.ColorNumber = 12 }},
		{"ecc", func(c *config.Config) { c.Encode.ECCLevel = 11 }},
		{"mask", func(c *config.Config) { c.Encode.MaskType = 8 }},
		{"module size", func(c *config.Config) { c.Encode.ModuleSize = 0 }},
		{"output", func(c *config.Config) { c.Output.Format = "xml" }},
		{"logging", func(c *config.Config) { c.Logging.Format = "logfmt" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}
