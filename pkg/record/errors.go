package record

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedMarkerCount means a line does not carry the expected number
	// of date-range markers.
	ErrMalformedMarkerCount = errors.New("malformed marker count")

	// ErrMalformedDateRange means the date block did not split into two dates.
	ErrMalformedDateRange = errors.New("malformed date range")
)

// LineError reports a fatal parse failure with the offending line.
type LineError struct {
	// Line is the 1-based line number in the input.
	Line int

	// Raw is the unmodified line content.
	Raw string

	Kind error
	Msg  string
}

func (e *LineError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Kind, e.Raw)
	}
	return fmt.Sprintf("line %d: %s: %s: %q", e.Line, e.Kind, e.Msg, e.Raw)
}

func (e *LineError) Unwrap() error { return e.Kind }

// segmentError is returned by Segment, which has no line context. The parser
// turns it into a LineError.
type segmentError struct {
	kind error
	msg  string
}

func (e *segmentError) Error() string { return fmt.Sprintf("%s: %s", e.kind, e.msg) }

func (e *segmentError) Unwrap() error { return e.kind }

func errMalformedDateRange(block string, parts int) error {
	return &segmentError{
		kind: ErrMalformedDateRange,
		msg:  fmt.Sprintf("date block %q split into %d part(s), want 2", block, parts),
	}
}
