package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ericlevine/jabcode"
)

func newDecodeCommand(ctx *commandContext) *cobra.Command {
	var (
		mode       string
		maxSymbols int
		charset    string
		format     string
	)
	cmd := &cobra.Command{
		Use:   "decode <image-file> [image-file...]",
		Short: "Detect and decode JAB Codes in PNG, JPEG or GIF images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := cfg.DecodeOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("mode") {
				if opts.Mode, err = jabcode.ParseMode(mode); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("max-symbols") {
				opts.MaxSymbols = maxSymbols
			}
			if cmd.Flags().Changed("charset") {
				opts.CharacterSet = charset
			}
			if !cmd.Flags().Changed("format") {
				format = cfg.Output.Format
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			scanID := uuid.NewString()
			opts.Logger = logger.With(zap.String("scan_id", scanID))

			reports := make([]fileReport, 0, len(args))
			failed := 0
			for _, path := range args {
				rep := scanFile(cmd.Context(), path, opts)
				rep.ScanID = scanID
				if rep.Error != "" {
					failed++
				}
				reports = append(reports, rep)
			}
			if err := writeReports(cmd.OutOrStdout(), format, reports); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "normal", "Detection mode: normal or exhaustive")
	cmd.Flags().IntVar(&maxSymbols, "max-symbols", jabcode.DefaultMaxSymbols, "Maximum number of symbols to decode")
	cmd.Flags().StringVar(&charset, "charset", "", "Character set of the payload; empty guesses it")
	cmd.Flags().StringVarP(&format, "format", "f", "auto", "Output format: auto, table, text or yaml")
	return cmd
}

// scanFile decodes one image. A panic in the decoder is reported as an
// error for that file.
func scanFile(ctx context.Context, path string, opts *jabcode.DecodeOptions) (rep fileReport) {
	rep.File = path
	defer func() {
		if r := recover(); r != nil {
			rep.Status = jabcode.StatusDecodeFailed.String()
			rep.Error = fmt.Sprintf("decoder panic: %v", r)
		}
	}()
	if ctx == nil {
		ctx = context.Background()
	}

	f, err := os.Open(path)
	if err != nil {
		rep.Status = jabcode.StatusInvalidInput.String()
		rep.Error = err.Error()
		return rep
	}
	defer f.Close()
	img, _, err := jabcode.ReadImage(f)
	if err != nil {
		rep.Status = jabcode.StatusInvalidInput.String()
		rep.Error = err.Error()
		return rep
	}

	res, err := jabcode.Decode(ctx, img, opts)
	rep.fill(res)
	if err != nil {
		rep.Error = err.Error()
	}
	return rep
}
