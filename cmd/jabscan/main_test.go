package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ericlevine/jabcode"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestEncodeThenDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code.png")
	if _, err := runCLI(t, "encode", "-o", path, "hello from the cli"); err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := runCLI(t, "decode", "--format", "text", path)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got, want := strings.TrimSpace(out), "[SUCCESS] hello from the cli"; got != want {
		t.Errorf("output %q, want %q", got, want)
	}

	out, err = runCLI(t, "decode", "--format", "yaml", path)
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	var reports []fileReport
	if err := yaml.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("parse yaml report: %v\n%s", err, out)
	}
	if len(reports) != 1 || reports[0].Text != "hello from the cli" || reports[0].ScanID == "" {
		t.Fatalf("unexpected report %+v", reports)
	}
	if len(reports[0].Symbols) != 1 || reports[0].Symbols[0].Position != "master" {
		t.Errorf("unexpected symbols %+v", reports[0].Symbols)
	}
}

func TestDecodeMissingFile(t *testing.T) {
	out, err := runCLI(t, "decode", "--format", "text", filepath.Join(t.TempDir(), "absent.png"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !strings.Contains(out, "[INVALID_INPUT] error:") {
		t.Errorf("output %q does not report the failure", out)
	}
}

func TestParseSlave(t *testing.T) {
	tests := []struct {
		in   string
		want jabcode.SlaveSpec
		ok   bool
	}{
		{"0:right", jabcode.SlaveSpec{Host: 0, Position: jabcode.DockRight}, true},
		{"1:Top:4", jabcode.SlaveSpec{Host: 1, Position: jabcode.DockTop, SideVersion: 4}, true},
		{"0:left:0:6", jabcode.SlaveSpec{Host: 0, Position: jabcode.DockLeft, ECCLevel: 6}, true},
		{"0:sideways", jabcode.SlaveSpec{}, false},
		{"right", jabcode.SlaveSpec{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSlave(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("parseSlave(%q) error %v", tt.in, err)
			}
			if tt.ok && got != tt.want {
				t.Errorf("parseSlave(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRenderSymbolsTable(t *testing.T) {
	s := renderSymbols([]symbolReport{{Index: 0, Host: -1, Position: "master", Size: "21x21", Colors: 8, Weights: "4/7", Status: "SUCCESS"}})
	for _, want := range []string{"Position", "master", "21x21", "SUCCESS"} {
		if !strings.Contains(s, want) {
			t.Errorf("table lacks %q:\n%s", want, s)
		}
	}
}
