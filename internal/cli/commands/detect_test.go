package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/fieldnotes/pkg/config"
)

var detectLines = []string{
	"obs1   10/5 - 10/7   A1   12.3   N   4.5   1   1   migrant   3",
	"obs2   9/30 - 10/2   A2   1.0   S   2.5   1   1   resident",
}

func TestDetectCommand_Text(t *testing.T) {
	dir := t.TempDir()
	raw := writeTempFile(t, dir, "raw.txt", strings.Join(detectLines, "\n")+"\n")

	out, err := runCommand(t, NewDetectCommand(), raw)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	for _, want := range []string{
		"=== Raw File Profile ===",
		"Lines sampled: 2",
		"  1: 2 line(s)",
		"Detected Date Format: Month/day",
		`layout: "1/2/06"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "WARNING") {
		t.Errorf("unexpected warning:\n%s", out)
	}
}

func TestDetectCommand_MalformedWarning(t *testing.T) {
	dir := t.TempDir()
	raw := writeTempFile(t, dir, "raw.txt", detectLines[0]+"\n"+extraMarkerLine+"\n")

	out, err := runCommand(t, NewDetectCommand(), raw)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(out, "WARNING: 1 line(s) would fail to parse: 2") {
		t.Errorf("expected malformed line warning:\n%s", out)
	}
}

func TestDetectCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	raw := writeTempFile(t, dir, "raw.txt", strings.Join(detectLines, "\n")+"\n")

	out, err := runCommand(t, NewDetectCommand(), "-o", "json", "--all", raw)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	var result JSONOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if result.SampledLines != 2 {
		t.Errorf("SampledLines = %d, want 2", result.SampledLines)
	}
	if result.MarkerCounts["1"] != 2 {
		t.Errorf("MarkerCounts = %v", result.MarkerCounts)
	}
	if result.FieldCounts["11"] != 1 || result.FieldCounts["10"] != 1 {
		t.Errorf("FieldCounts = %v", result.FieldCounts)
	}
	if len(result.MalformedLines) != 0 {
		t.Errorf("MalformedLines = %v, want none", result.MalformedLines)
	}
	if len(result.Matches) == 0 || result.Matches[0].Layout != "1/2/06" {
		t.Fatalf("Matches = %+v", result.Matches)
	}
}

func TestDetectCommand_WriteConfig(t *testing.T) {
	dir := t.TempDir()
	raw := writeTempFile(t, dir, "raw.txt", strings.Join(detectLines, "\n")+"\n")
	configPath := filepath.Join(dir, "fieldnotes.yaml")

	out, err := runCommand(t, NewDetectCommand(), "--write-config", configPath, raw)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(out, "Wrote starter config to: "+configPath) {
		t.Errorf("missing write confirmation:\n%s", out)
	}

	cfg, err := config.Load(context.Background(), configPath)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.Input != raw {
		t.Errorf("Input = %q, want %q", cfg.Input, raw)
	}
	if cfg.Dates.Layout != "1/2/06" {
		t.Errorf("Dates.Layout = %q", cfg.Dates.Layout)
	}
	if want := filepath.Join(dir, "raw.clean.csv"); cfg.Output.Path != want {
		t.Errorf("Output.Path = %q, want %q", cfg.Output.Path, want)
	}

	// A second run must not replace the file.
	before, _ := os.ReadFile(configPath)
	if _, err := runCommand(t, NewDetectCommand(), "--write-config", configPath, raw); err == nil {
		t.Error("expected an error when the config already exists")
	}
	after, _ := os.ReadFile(configPath)
	if string(before) != string(after) {
		t.Error("existing config was modified")
	}
}

func TestDetectCommand_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCommand(t, NewDetectCommand(), filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}

	raw := writeTempFile(t, dir, "raw.txt", detectLines[0]+"\n")
	if _, err := runCommand(t, NewDetectCommand(), "-o", "xml", raw); err == nil {
		t.Error("expected error for unknown output format")
	}

	noDates := writeTempFile(t, dir, "plain.txt", "nothing to see here\n")
	if _, err := runCommand(t, NewDetectCommand(), "--write-config", filepath.Join(dir, "out.yaml"), noDates); err == nil {
		t.Error("expected error writing a config with no detected layout")
	}
}
