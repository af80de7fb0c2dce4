package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/ericlevine/jabcode"
)

type symbolReport struct {
	Index      int     `yaml:"index"`
	Host       int     `yaml:"host"`
	Position   string  `yaml:"position"`
	Size       string  `yaml:"size"`
	Colors     int     `yaml:"colors"`
	Weights    string  `yaml:"weights"`
	ModuleSize float64 `yaml:"module_size"`
	Rotation   float64 `yaml:"rotation"`
	Status     string  `yaml:"status"`
	Algorithm  string  `yaml:"algorithm,omitempty"`
	Iterations int     `yaml:"iterations"`
	Corrected  int     `yaml:"corrected"`
	Bytes      int     `yaml:"bytes"`
	Error      string  `yaml:"error,omitempty"`
}

type fileReport struct {
	ScanID  string         `yaml:"scan_id"`
	File    string         `yaml:"file"`
	Status  string         `yaml:"status"`
	Text    string         `yaml:"text,omitempty"`
	Bytes   int            `yaml:"bytes"`
	Symbols []symbolReport `yaml:"symbols,omitempty"`
	Error   string         `yaml:"error,omitempty"`
}

var positionNames = [4]string{"top", "bottom", "left", "right"}

func positionName(p int) string {
	if p < 0 || p >= len(positionNames) {
		return "master"
	}
	return positionNames[p]
}

func parsePosition(s string) (int, error) {
	for i, n := range positionNames {
		if strings.EqualFold(s, n) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown docking position %q", s)
}

func (r *fileReport) fill(res *jabcode.Result) {
	r.Status = res.Status.String()
	r.Text = res.Text
	r.Bytes = len(res.Payload)
	for _, s := range res.Symbols {
		sr := symbolReport{
			Index:      s.Index,
			Host:       s.Host,
			Position:   positionName(s.Position),
			Size:       fmt.Sprintf("%dx%d", s.Width, s.Height),
			ModuleSize: s.ModuleSize,
			Rotation:   s.Rotation,
			Status:     s.Status.String(),
			Algorithm:  s.Algorithm,
			Iterations: s.Iterations,
			Corrected:  s.ErrorsCorrected,
			Bytes:      len(s.Payload),
		}
		if s.Metadata.ColWeight > 0 {
			sr.Colors = s.Metadata.ColorCount()
			sr.Weights = fmt.Sprintf("%d/%d", s.Metadata.ColWeight, s.Metadata.RowWeight)
		}
		if s.Err != nil {
			sr.Error = s.Err.Error()
		}
		r.Symbols = append(r.Symbols, sr)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func writeReports(w io.Writer, format string, reports []fileReport) error {
	if format == "auto" {
		format = "text"
		if isTerminal(w) {
			format = "table"
		}
	}
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return enc.Close()
	case "table":
		for _, r := range reports {
			fmt.Fprintf(w, "%s: %s\n", r.File, r.Status)
			if r.Text != "" {
				fmt.Fprintf(w, "%s\n", r.Text)
			}
			if len(r.Symbols) > 0 {
				fmt.Fprintln(w, renderSymbols(r.Symbols))
			}
			if r.Error != "" {
				fmt.Fprintf(w, "error: %s\n", r.Error)
			}
		}
		return nil
	case "text":
		for _, r := range reports {
			if len(reports) > 1 {
				fmt.Fprintf(w, "%s: ", r.File)
			}
			if r.Error != "" {
				fmt.Fprintf(w, "[%s] error: %s\n", r.Status, r.Error)
				continue
			}
			fmt.Fprintf(w, "[%s] %s\n", r.Status, r.Text)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderSymbols(symbols []symbolReport) string {
	tw := table.NewWriter()
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	tw.AppendHeader(table.Row{"#", "Host", "Position", "Size", "Colors", "wc/wr", "Module", "Status", "LDPC", "Iter", "Fixed", "Bytes"})
	for _, s := range symbols {
		host := "-"
		if s.Host >= 0 {
			host = strconv.Itoa(s.Host)
		}
		tw.AppendRow(table.Row{
			s.Index, host, s.Position, s.Size, s.Colors, s.Weights,
			fmt.Sprintf("%.1f", s.ModuleSize), s.Status, s.Algorithm,
			s.Iterations, s.Corrected, s.Bytes,
		})
	}
	configs := make([]table.ColumnConfig, 0, 12)
	for _, n := range []int{1, 5, 7, 10, 11, 12} {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}
