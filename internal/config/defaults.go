package config

import "github.com/ericlevine/jabcode"

// Default returns the configuration used when no file is present.
func Default() Config {
	enc := jabcode.DefaultEncodeOptions()
	return Config{
		Decode: Decode{
			Mode:       jabcode.ModeNormal.String(),
			MaxSymbols: jabcode.DefaultMaxSymbols,
		},
		Encode: Encode{
			ColorNumber: enc.ColorNumber,
			ECCLevel:    enc.ECCLevel,
			MaskType:    enc.MaskType,
			ModuleSize:  enc.ModuleSize,
			QuietZone:   enc.QuietZone,
		},
		Output: Output{Format: "auto"},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}
