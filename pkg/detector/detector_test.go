package detector

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ccollicutt/fieldnotes/pkg/config"
)

var sampleLines = []string{
	"obs1   10/5 - 10/7   A1   12.3   N   4.5   1   1   migrant   3",
	"obs2   9/30 - 10/2   A2   1.0   S   2.5   1   1   resident",
	"obs3   10/6 - 10/8   B1   2.0   E   1.5   2   2   migrant   1",
}

func TestDetector_DetectFromLines_MonthDay(t *testing.T) {
	d := New()
	p := d.DetectFromLines(sampleLines)

	if !p.HasMatch() {
		t.Fatal("Expected to detect a format")
	}

	best := p.BestMatch()
	if best.Format.Name != "Month/day" {
		t.Errorf("Expected Month/day, got %s", best.Format.Name)
	}
	if best.Layout != "1/2/06" {
		t.Errorf("Layout = %q, want %q", best.Layout, "1/2/06")
	}
	if best.Confidence != 1.0 {
		t.Errorf("Expected 100%% confidence, got %.1f%%", best.Confidence*100)
	}
	if want := time.Date(2012, 10, 5, 0, 0, 0, 0, time.UTC); !best.ParsedDate.Equal(want) {
		t.Errorf("ParsedDate = %v, want %v", best.ParsedDate, want)
	}

	// 9/30 rules out day/month, so there is nothing ambiguous to report.
	if p.AmbiguityNote != "" {
		t.Errorf("Unexpected ambiguity note: %s", p.AmbiguityNote)
	}
}

func TestDetector_DetectFromLines_Ambiguous(t *testing.T) {
	d := New()
	p := d.DetectFromLines(sampleLines[:1])

	if p.AmbiguityNote == "" {
		t.Error("Expected an ambiguity note when month and day are both <= 12")
	}
	if got := p.BestMatch().Format.Name; got != "Month/day" {
		t.Errorf("Ties should prefer Month/day, got %s", got)
	}
}

func TestDetector_DetectFromLines_DayMonth(t *testing.T) {
	lines := []string{
		"obs1   30/9 - 2/10   A1   12.3   N   4.5   1   1   migrant   3",
	}

	p := New().DetectFromLines(lines)
	best := p.BestMatch()
	if best == nil || best.Layout != "2/1/06" {
		t.Fatalf("BestMatch() = %+v, want layout 2/1/06", best)
	}
}

func TestDetector_DetectFromLines_Histograms(t *testing.T) {
	lines := append([]string{}, sampleLines...)
	lines = append(lines,
		"no marker at all",
		"obs1 10/5 - 10/7 - 10/9 A1 3",
	)

	p := New().DetectFromLines(lines)

	if p.SampledLines != 5 {
		t.Errorf("SampledLines = %d, want 5", p.SampledLines)
	}
	wantMarkers := map[int]int{0: 1, 1: 3, 2: 1}
	if !reflect.DeepEqual(p.MarkerCounts, wantMarkers) {
		t.Errorf("MarkerCounts = %v, want %v", p.MarkerCounts, wantMarkers)
	}
	wantFields := map[int]int{10: 1, 11: 2}
	if !reflect.DeepEqual(p.FieldCounts, wantFields) {
		t.Errorf("FieldCounts = %v, want %v", p.FieldCounts, wantFields)
	}
	if !reflect.DeepEqual(p.MalformedLines, []int{4, 5}) {
		t.Errorf("MalformedLines = %v, want [4 5]", p.MalformedLines)
	}
	if p.MaxFields != 11 {
		t.Errorf("MaxFields = %d, want 11", p.MaxFields)
	}
	if p.DateTokens != 6 {
		t.Errorf("DateTokens = %d, want 6", p.DateTokens)
	}
	if got := Keys(p.MarkerCounts); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("Keys() = %v", got)
	}
}

func TestDetector_DetectFromLines_NoMatch(t *testing.T) {
	p := New().DetectFromLines([]string{"nothing to see"})
	if p.HasMatch() {
		t.Error("Expected no match")
	}
	if p.BestMatch() != nil {
		t.Error("BestMatch() should be nil")
	}
}

func TestDetector_Options(t *testing.T) {
	lines := []string{"obs1   10/5 ~ 10/7   A1   3"}

	d := New(WithMarker(" ~ "), WithImpliedYear("/2019", "/2006"))
	p := d.DetectFromLines(lines)

	best := p.BestMatch()
	if best == nil {
		t.Fatal("Expected to detect a format")
	}
	if best.Layout != "1/2/2006" {
		t.Errorf("Layout = %q, want 1/2/2006", best.Layout)
	}
	if best.ParsedDate.Year() != 2019 {
		t.Errorf("Year = %d, want 2019", best.ParsedDate.Year())
	}
}

func TestDetector_DetectFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.txt")
	content := strings.Join(sampleLines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := New(WithSampleSize(2)).DetectFromFile(context.Background(), path)
	if err != nil {
		t.Fatalf("DetectFromFile() error = %v", err)
	}
	if p.SampledLines != 2 {
		t.Errorf("SampledLines = %d, want 2", p.SampledLines)
	}

	if _, err := New().DetectFromFile(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestDetector_SuggestConfig(t *testing.T) {
	d := New()
	cfg := d.SuggestConfig(d.DetectFromLines(sampleLines), "raw/observations.txt")

	if cfg.Input != "raw/observations.txt" {
		t.Errorf("Input = %q", cfg.Input)
	}
	if cfg.Output.Path != "raw/observations.clean.csv" {
		t.Errorf("Output.Path = %q", cfg.Output.Path)
	}
	if !reflect.DeepEqual(cfg.Record.Columns, config.DefaultColumns) {
		t.Errorf("Columns = %v, want defaults", cfg.Record.Columns)
	}
	if err := config.Validate(cfg); err != nil {
		t.Errorf("suggested config is invalid: %v", err)
	}
}

func TestDetector_SuggestConfig_CustomWidth(t *testing.T) {
	d := New()
	cfg := d.SuggestConfig(d.DetectFromLines([]string{"obs1 10/5 - 10/7 A1 3"}), "raw.txt")

	want := []string{"field_1", "date_first", "date_last", "field_4", "field_5"}
	if !reflect.DeepEqual(cfg.Record.Columns, want) {
		t.Errorf("Columns = %v, want %v", cfg.Record.Columns, want)
	}
	if err := config.Validate(cfg); err != nil {
		t.Errorf("suggested config is invalid: %v", err)
	}
}
