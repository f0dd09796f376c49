package record

import (
	"context"
	"errors"
	"fmt"
)

// DefaultMarker is the padded hyphen separating the two dates of the range.
const DefaultMarker = " - "

// MarkersPerLine is the number of marker occurrences a well-formed line
// carries. The single occurrence provides both bounds of the date range:
// its start is the opening bound and its end the closing bound.
const MarkersPerLine = 1

// Parser turns raw lines into field sequences.
type Parser struct {
	marker    string
	dateWidth int
}

// Option configures a Parser.
type Option func(*Parser)

// WithMarker sets the literal date-range marker (default " - ").
func WithMarker(marker string) Option {
	return func(p *Parser) {
		if marker != "" {
			p.marker = marker
		}
	}
}

// WithDateWidth sets the fixed date-token width (default 5).
func WithDateWidth(width int) Option {
	return func(p *Parser) {
		if width > 0 {
			p.dateWidth = width
		}
	}
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		marker:    DefaultMarker,
		dateWidth: DefaultDateTokenWidth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Marker returns the configured marker.
func (p *Parser) Marker() string {
	return p.marker
}

// ParseLine parses a single line. n is the 1-based line number used in errors.
func (p *Parser) ParseLine(n int, line string) (FieldSequence, error) {
	spans := Locate(line, p.marker)
	if len(spans) != MarkersPerLine {
		return nil, &LineError{
			Line: n,
			Raw:  line,
			Kind: ErrMalformedMarkerCount,
			Msg:  fmt.Sprintf("found %d occurrence(s) of %q, want %d", len(spans), p.marker, MarkersPerLine),
		}
	}

	seg, err := Segment(line, spans[0], spans[len(spans)-1], p.marker, p.dateWidth)
	if err != nil {
		var se *segmentError
		if errors.As(err, &se) {
			return nil, &LineError{Line: n, Raw: line, Kind: se.kind, Msg: se.msg}
		}
		return nil, err
	}

	return Assemble(seg.Leading, seg.Dates, Normalize(seg.Trailing)), nil
}

// ParseLines parses every line in order and stops at the first failure.
func (p *Parser) ParseLines(ctx context.Context, lines []string) ([]FieldSequence, error) {
	out := make([]FieldSequence, len(lines))
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := p.ParseLine(i+1, line)
		if err != nil {
			return nil, err
		}
		out[i] = fields
	}
	return out, nil
}
