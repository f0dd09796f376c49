// Package detector profiles raw observation files: how many lines carry the
// date-range marker, how many fields each line yields and which date layout
// fits the date tokens.
package detector

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ccollicutt/fieldnotes/pkg/config"
	"github.com/ccollicutt/fieldnotes/pkg/record"
	"github.com/ccollicutt/fieldnotes/pkg/tableio"
)

// DefaultSampleSize is the number of lines profiled when no size is given.
const DefaultSampleSize = 1000

// Profile holds the result of analyzing a raw file.
type Profile struct {
	SampledLines int

	// MarkerCounts maps occurrences of the marker per line to line counts.
	MarkerCounts map[int]int

	// FieldCounts maps fields per parsed line to line counts.
	FieldCounts map[int]int

	// MalformedLines lists 1-based line numbers that failed to parse.
	MalformedLines []int

	// MaxFields is the widest parsed line.
	MaxFields int

	// DateTokens is the number of date tokens tested against the formats.
	DateTokens int

	Matches       []FormatMatch // Formats that matched, sorted by confidence descending
	AmbiguityNote string        // Warning about date ordering if applicable
}

// FormatMatch represents a date format that matched with its confidence score.
type FormatMatch struct {
	Format *DateFormat

	// Layout is the full layout for the suffixed value, e.g. "1/2/06".
	Layout     string
	Confidence float64   // 0.0 to 1.0 (share of date tokens matched)
	MatchCount int       // Number of tokens that matched
	SampleText string    // Example token that matched
	ParsedDate time.Time // Parsed date from sample
}

// Detector profiles raw observation lines.
type Detector struct {
	formats      []*DateFormat
	sampleSize   int
	marker       string
	dateWidth    int
	suffix       string
	suffixLayout string
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 1000).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithMarker sets the date-range marker (default " - ").
func WithMarker(marker string) Option {
	return func(d *Detector) {
		if marker != "" {
			d.marker = marker
		}
	}
}

// WithDateWidth sets the fixed date token width.
func WithDateWidth(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.dateWidth = n
		}
	}
}

// WithImpliedYear sets the suffix appended to each date token and the layout
// that parses it, e.g. "/12" and "/06".
func WithImpliedYear(suffix, layout string) Option {
	return func(d *Detector) {
		if suffix != "" && layout != "" {
			d.suffix = suffix
			d.suffixLayout = layout
		}
	}
}

// New creates a new Detector with default formats.
func New(opts ...Option) *Detector {
	d := &Detector{
		formats:      DefaultFormats(),
		sampleSize:   DefaultSampleSize,
		marker:       record.DefaultMarker,
		dateWidth:    record.DefaultDateTokenWidth,
		suffix:       config.DefaultImpliedYearSuffix,
		suffixLayout: "/06",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile profiles the head of a raw file.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*Profile, error) {
	lines, err := tableio.ReadLines(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(lines) > d.sampleSize {
		lines = lines[:d.sampleSize]
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines profiles a slice of raw lines.
func (d *Detector) DetectFromLines(lines []string) *Profile {
	p := &Profile{
		SampledLines: len(lines),
		MarkerCounts: make(map[int]int),
		FieldCounts:  make(map[int]int),
	}

	parser := record.NewParser(record.WithMarker(d.marker), record.WithDateWidth(d.dateWidth))

	var tokens []string
	for i, line := range lines {
		p.MarkerCounts[len(record.Locate(line, d.marker))]++

		fields, err := parser.ParseLine(i+1, line)
		if err != nil {
			p.MalformedLines = append(p.MalformedLines, i+1)
			continue
		}
		p.FieldCounts[len(fields)]++
		p.MaxFields = max(p.MaxFields, len(fields))
		tokens = append(tokens, fields[1], fields[2])
	}

	p.DateTokens = len(tokens)
	if len(tokens) == 0 {
		return p
	}

	type formatStats struct {
		format     *DateFormat
		matchCount int
		sampleText string
		parsedDate time.Time
	}

	stats := make(map[*DateFormat]*formatStats)
	for _, tok := range tokens {
		for _, format := range d.formats {
			if !format.Pattern.MatchString(tok) {
				continue
			}
			parsed, err := time.Parse(format.Layout+d.suffixLayout, tok+d.suffix)
			if err != nil {
				continue
			}
			if stats[format] == nil {
				stats[format] = &formatStats{format: format, sampleText: tok, parsedDate: parsed}
			}
			stats[format].matchCount++
		}
	}

	for _, s := range stats {
		p.Matches = append(p.Matches, FormatMatch{
			Format:     s.format,
			Layout:     s.format.Layout + d.suffixLayout,
			Confidence: float64(s.matchCount) / float64(len(tokens)),
			MatchCount: s.matchCount,
			SampleText: s.sampleText,
			ParsedDate: s.parsedDate,
		})
	}

	// Sort by confidence descending, then by the built-in order (more specific first)
	order := make(map[*DateFormat]int, len(d.formats))
	for i, f := range d.formats {
		order[f] = i
	}
	sort.Slice(p.Matches, func(i, j int) bool {
		if p.Matches[i].Confidence != p.Matches[j].Confidence {
			return p.Matches[i].Confidence > p.Matches[j].Confidence
		}
		return order[p.Matches[i].Format] < order[p.Matches[j].Format]
	})

	if len(p.Matches) > 1 && p.Matches[0].Format.Ambiguous &&
		p.Matches[1].Format.Ambiguous && p.Matches[1].Confidence == p.Matches[0].Confidence {
		p.AmbiguityNote = fmt.Sprintf(
			"Every date token reads both as %q and %q (month/day vs day/month). "+
				"Verify dates.layout against a record whose day is above 12.",
			p.Matches[0].Layout, p.Matches[1].Layout)
	}

	return p
}

// BestMatch returns the highest confidence match, or nil if none found.
func (p *Profile) BestMatch() *FormatMatch {
	if len(p.Matches) == 0 {
		return nil
	}
	return &p.Matches[0]
}

// HasMatch returns true if at least one format matched.
func (p *Profile) HasMatch() bool {
	return len(p.Matches) > 0
}

// Keys returns the sorted keys of a histogram.
func Keys(h map[int]int) []int {
	keys := make([]int, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// SuggestConfig builds a starter configuration for input from a profile.
// When the widest line matches the default observation layout the default
// column names are used; otherwise columns are named field_1, field_2, ...
// around the two date columns.
func (d *Detector) SuggestConfig(p *Profile, input string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Input = input
	cfg.Output.Path = strings.TrimSuffix(input, filepath.Ext(input)) + ".clean.csv"
	cfg.Record.Marker = d.marker
	cfg.Record.DateWidth = d.dateWidth
	cfg.Dates.ImpliedYearSuffix = d.suffix
	if best := p.BestMatch(); best != nil {
		cfg.Dates.Layout = best.Layout
	}

	if p.MaxFields > 0 && p.MaxFields != len(config.DefaultColumns) {
		cols := make([]string, p.MaxFields)
		for i := range cols {
			cols[i] = fmt.Sprintf("field_%d", i+1)
		}
		cols[1], cols[2] = config.DefaultDateColumns[0], config.DefaultDateColumns[1]
		cfg.Record.Columns = cols
	}
	return cfg
}
