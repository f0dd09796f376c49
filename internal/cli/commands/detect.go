package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/fieldnotes/pkg/config"
	"github.com/ccollicutt/fieldnotes/pkg/detector"
)

// maxListedLines caps the malformed line numbers printed in text output.
const maxListedLines = 20

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output       string
	SampleSize   int
	ShowAll      bool
	WriteConfig  string
	Marker       string
	Suffix       string
	SuffixLayout string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <raw-file>",
		Short: "Profile a raw observation file",
		Long: `Profile a raw observation file before cleaning it.

Samples lines from the file and reports:
  - how many lines carry the date-range marker exactly once
  - how many fields each parseable line yields
  - which lines would fail to parse
  - which date layout fits the date tokens, with the implied year appended

Optionally generates a starter config file with --write-config.

Example:
  fieldnotes detect raw/observations.txt
  fieldnotes detect --sample 5000 --all raw/observations.txt
  fieldnotes detect --suffix /2019 --year-layout /2006 raw/2019.txt
  fieldnotes detect -w fieldnotes.yaml raw/observations.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all matching date layouts, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")
	cmd.Flags().StringVar(&opts.Marker, "marker", "", "Date-range marker (default \" - \")")
	cmd.Flags().StringVar(&opts.Suffix, "suffix", config.DefaultImpliedYearSuffix, "Implied year suffix appended to each date")
	cmd.Flags().StringVar(&opts.SuffixLayout, "year-layout", "/06", "Go layout of the suffix")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	rawFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := os.Stat(rawFile); os.IsNotExist(err) {
		return fmt.Errorf("raw file not found: %s", rawFile)
	}

	d := detector.New(
		detector.WithSampleSize(opts.SampleSize),
		detector.WithMarker(opts.Marker),
		detector.WithImpliedYear(opts.Suffix, opts.SuffixLayout),
	)

	profile, err := d.DetectFromFile(ctx, rawFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	w := cmd.OutOrStdout()
	if opts.WriteConfig != "" {
		if err := writeStarterConfig(w, d, profile, rawFile, opts.WriteConfig); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(w, profile, rawFile, opts)
	case "text":
		return outputDetectText(w, profile, rawFile, opts)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func outputDetectText(w io.Writer, p *detector.Profile, rawFile string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Raw File Profile ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", rawFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", p.SampledLines)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Marker occurrences per line:")
	for _, k := range detector.Keys(p.MarkerCounts) {
		fmt.Fprintf(w, "  %d: %d line(s)\n", k, p.MarkerCounts[k])
	}
	fmt.Fprintln(w)

	if len(p.FieldCounts) > 0 {
		fmt.Fprintln(w, "Fields per parsed line:")
		for _, k := range detector.Keys(p.FieldCounts) {
			fmt.Fprintf(w, "  %d: %d line(s)\n", k, p.FieldCounts[k])
		}
		fmt.Fprintln(w)
	}

	if n := len(p.MalformedLines); n > 0 {
		listed := p.MalformedLines
		if n > maxListedLines {
			listed = listed[:maxListedLines]
		}
		nums := make([]string, len(listed))
		for i, l := range listed {
			nums[i] = fmt.Sprint(l)
		}
		more := ""
		if n > maxListedLines {
			more = fmt.Sprintf(" (and %d more)", n-maxListedLines)
		}
		fmt.Fprintf(w, "WARNING: %d line(s) would fail to parse: %s%s\n", n, strings.Join(nums, ", "), more)
		fmt.Fprintln(w)
	}

	if !p.HasMatch() {
		fmt.Fprintln(w, "No date layout detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: check the marker with --marker and the year with --suffix.")
		return nil
	}

	best := p.BestMatch()
	fmt.Fprintf(w, "Detected Date Format: %s\n", best.Format.Name)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d date tokens matched)\n",
		best.Confidence*100, best.MatchCount, p.DateTokens)
	fmt.Fprintf(w, "Sample: %s%s parsed as %s\n", best.SampleText, opts.Suffix, best.ParsedDate.Format("2006-01-02"))
	fmt.Fprintln(w)

	if p.AmbiguityNote != "" {
		fmt.Fprintf(w, "Note: %s\n", p.AmbiguityNote)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "--- Configuration snippet (copy to your config file) ---")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "dates:")
	fmt.Fprintf(w, "  implied_year_suffix: %q\n", opts.Suffix)
	fmt.Fprintf(w, "  layout: %q\n", best.Layout)
	fmt.Fprintln(w)

	if opts.ShowAll && len(p.Matches) > 1 {
		fmt.Fprintln(w, "--- Alternative layouts detected ---")
		for i, m := range p.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%.1f%% confidence)\n", i+2, m.Format.Name, m.Confidence*100)
			fmt.Fprintf(w, "   layout: %q\n", m.Layout)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// JSONMatch represents a layout match in JSON output.
type JSONMatch struct {
	Name       string  `json:"name"`
	Pattern    string  `json:"pattern"`
	Layout     string  `json:"layout"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
	SampleText string  `json:"sample_text"`
	Ambiguous  bool    `json:"ambiguous,omitempty"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File           string         `json:"file"`
	SampledLines   int            `json:"sampled_lines"`
	MarkerCounts   map[string]int `json:"marker_counts"`
	FieldCounts    map[string]int `json:"field_counts"`
	MalformedLines []int          `json:"malformed_lines"`
	DateTokens     int            `json:"date_tokens"`
	Matches        []JSONMatch    `json:"matches"`
	AmbiguityNote  string         `json:"ambiguity_note,omitempty"`
}

func outputDetectJSON(w io.Writer, p *detector.Profile, rawFile string, opts *DetectOptions) error {
	out := JSONOutput{
		File:           rawFile,
		SampledLines:   p.SampledLines,
		MarkerCounts:   histogram(p.MarkerCounts),
		FieldCounts:    histogram(p.FieldCounts),
		MalformedLines: p.MalformedLines,
		DateTokens:     p.DateTokens,
		AmbiguityNote:  p.AmbiguityNote,
		Matches:        make([]JSONMatch, 0),
	}
	if out.MalformedLines == nil {
		out.MalformedLines = []int{}
	}

	matches := p.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1]
	}

	for _, m := range matches {
		out.Matches = append(out.Matches, JSONMatch{
			Name:       m.Format.Name,
			Pattern:    m.Format.PatternStr,
			Layout:     m.Layout,
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			SampleText: m.SampleText,
			Ambiguous:  m.Format.Ambiguous,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// histogram converts integer keys to strings for JSON objects.
func histogram(h map[int]int) map[string]int {
	out := make(map[string]int, len(h))
	for k, v := range h {
		out[fmt.Sprint(k)] = v
	}
	return out
}

// writeStarterConfig writes a config built from the profile. It never
// replaces an existing file.
func writeStarterConfig(w io.Writer, d *detector.Detector, p *detector.Profile, rawFile, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !p.HasMatch() {
		return fmt.Errorf("cannot generate config: no date layout detected")
	}

	content, err := generateStarterConfig(d, p, rawFile)
	if err != nil {
		return err
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig renders the suggested config as commented YAML.
func generateStarterConfig(d *detector.Detector, p *detector.Profile, rawFile string) ([]byte, error) {
	cfg := d.SuggestConfig(p, rawFile)
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}

	best := p.BestMatch()
	var sb strings.Builder
	sb.WriteString("# fieldnotes configuration\n")
	sb.WriteString("# Generated by: fieldnotes detect\n")
	fmt.Fprintf(&sb, "# Detected date format: %s (%.0f%% confidence)\n", best.Format.Name, best.Confidence*100)
	if p.AmbiguityNote != "" {
		fmt.Fprintf(&sb, "# Note: %s\n", p.AmbiguityNote)
	}
	if len(p.MalformedLines) > 0 {
		fmt.Fprintf(&sb, "# Warning: %d sampled line(s) will not parse; first is line %d\n",
			len(p.MalformedLines), p.MalformedLines[0])
	}
	sb.WriteString("\n")
	sb.Write(body)
	return []byte(sb.String()), nil
}
