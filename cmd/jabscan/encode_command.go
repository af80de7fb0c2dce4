package main

import (
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ericlevine/jabcode"
)

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	var (
		output       string
		input        string
		colors       int
		ecc          int
		mask         int
		moduleSize   int
		quietZone    int
		sideVersionX int
		sideVersionY int
		slaves       []string
	)
	cmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Render a payload as a JAB Code PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			payload, err := readPayload(cmd.InOrStdin(), input, args)
			if err != nil {
				return err
			}
			opts := cfg.EncodeOptions()
			flags := cmd.Flags()
			if flags.Changed("colors") {
				opts.ColorNumber = colors
			}
			if flags.Changed("ecc") {
				opts.ECCLevel = ecc
			}
			if flags.Changed("mask") {
				opts.MaskType = mask
			}
			if flags.Changed("module-size") {
				opts.ModuleSize = moduleSize
			}
			if flags.Changed("quiet-zone") {
				opts.QuietZone = quietZone
			}
			opts.SideVersionX, opts.SideVersionY = sideVersionX, sideVersionY
			for _, s := range slaves {
				spec, err := parseSlave(s)
				if err != nil {
					return err
				}
				opts.Slaves = append(opts.Slaves, spec)
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			img, err := jabcode.Encode(payload, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if err := png.Encode(out, img); err != nil {
				return fmt.Errorf("write png: %w", err)
			}
			logger.Info("code written",
				zap.String("output", output), zap.Int("bytes", len(payload)),
				zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "PNG file to write; empty or - writes to stdout")
	flags.StringVarP(&input, "input", "i", "", "Read the payload from a file")
	flags.IntVar(&colors, "colors", 8, "Number of module colors: 4, 8, 16, 32, 64, 128 or 256")
	flags.IntVar(&ecc, "ecc", 3, "Error correction level, 1 to 10")
	flags.IntVar(&mask, "mask", 7, "Mask pattern, 0 to 7")
	flags.IntVar(&moduleSize, "module-size", 12, "Module size in pixels")
	flags.IntVar(&quietZone, "quiet-zone", 4, "Quiet zone in modules")
	flags.IntVar(&sideVersionX, "side-version-x", 0, "Master side version along x; 0 picks the smallest fit")
	flags.IntVar(&sideVersionY, "side-version-y", 0, "Master side version along y; 0 picks the smallest fit")
	flags.StringArrayVar(&slaves, "slave", nil, "Docked slave as host:position[:side-version[:ecc]], e.g. 0:right")
	return cmd
}

func readPayload(stdin io.Reader, input string, args []string) ([]byte, error) {
	switch {
	case input != "" && len(args) > 0:
		return nil, errors.New("give either --input or a text argument, not both")
	case input == "-":
		return io.ReadAll(stdin)
	case input != "":
		return os.ReadFile(input)
	case len(args) == 1:
		return []byte(args[0]), nil
	default:
		return nil, errors.New("no payload: pass text or --input")
	}
}

// parseSlave reads host:position[:side-version[:ecc]].
func parseSlave(s string) (jabcode.SlaveSpec, error) {
	var spec jabcode.SlaveSpec
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 4 {
		return spec, fmt.Errorf("slave %q: want host:position[:side-version[:ecc]]", s)
	}
	if _, err := fmt.Sscanf(parts[0], "%d", &spec.Host); err != nil {
		return spec, fmt.Errorf("slave %q: host: %w", s, err)
	}
	pos, err := parsePosition(parts[1])
	if err != nil {
		return spec, fmt.Errorf("slave %q: %w", s, err)
	}
	spec.Position = pos
	if len(parts) > 2 {
		if _, err := fmt.Sscanf(parts[2], "%d", &spec.SideVersion); err != nil {
			return spec, fmt.Errorf("slave %q: side version: %w", s, err)
		}
	}
	if len(parts) > 3 {
		if _, err := fmt.Sscanf(parts[3], "%d", &spec.ECCLevel); err != nil {
			return spec, fmt.Errorf("slave %q: ecc: %w", s, err)
		}
	}
	return spec, nil
}
