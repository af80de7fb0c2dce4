package config

import (
	"errors"
	"fmt"

	"github.com/ericlevine/jabcode"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDecode(); err != nil {
		return err
	}
	if err := c.validateEncode(); err != nil {
		return err
	}
	switch c.Output.Format {
	case "auto", "table", "text", "yaml":
	default:
		return fmt.Errorf("output.format must be auto, table, text or yaml, got %q", c.Output.Format)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateDecode() error {
	if _, err := jabcode.ParseMode(c.Decode.Mode); err != nil {
		return fmt.Errorf("decode.mode: %w", err)
	}
	if c.Decode.MaxSymbols <= 0 || c.Decode.MaxSymbols > jabcode.DefaultMaxSymbols {
		return fmt.Errorf("decode.max_symbols must be between 1 and %d", jabcode.DefaultMaxSymbols)
	}
	if c.Decode.MaxIterations < 0 {
		return errors.New("decode.max_iterations must not be negative")
	}
	return nil
}

func (c *Config) validateEncode() error {
	switch c.Encode.ColorNumber {
	case 4, 8, 16, 32, 64, 128, 256:
	default:
		return fmt.Errorf("encode.color_number must be a power of two from 4 to 256, got %d", c.Encode.ColorNumber)
	}
	if c.Encode.ECCLevel < 1 || c.Encode.ECCLevel > 10 {
		return fmt.Errorf("encode.ecc_level must be between 1 and 10, got %d", c.Encode.ECCLevel)
	}
	if c.Encode.MaskType < 0 || c.Encode.MaskType > 7 {
		return fmt.Errorf("encode.mask_type must be between 0 and 7, got %d", c.Encode.MaskType)
	}
	if c.Encode.ModuleSize <= 0 {
		return errors.New("encode.module_size must be positive")
	}
	if c.Encode.QuietZone < 0 {
		return errors.New("encode.quiet_zone must not be negative")
	}
	return nil
}
