package table

import (
	"errors"
	"fmt"
)

var (
	// ErrColumnCountMismatch means the supplied column names do not match the
	// widest record.
	ErrColumnCountMismatch = errors.New("column count mismatch")

	// ErrDateParse means a date value did not match the configured layout.
	ErrDateParse = errors.New("date parse failure")

	// ErrUnknownColumn means an operation named a column the table lacks.
	ErrUnknownColumn = errors.New("unknown column")
)

// ShapeError reports a mismatch between expected and actual field counts.
type ShapeError struct {
	Want int
	Got  int
	Msg  string
}

func (e *ShapeError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: have %d column name(s), records have %d field(s)", ErrColumnCountMismatch, e.Want, e.Got)
	}
	return fmt.Sprintf("%s: %s: want %d field(s), got %d", ErrColumnCountMismatch, e.Msg, e.Want, e.Got)
}

func (e *ShapeError) Unwrap() error { return ErrColumnCountMismatch }

// DateParseError reports the first value that failed to parse as a date.
type DateParseError struct {
	Column string
	// Row is the 0-based row index; Row+1 is the input line number.
	Row   int
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("%s: column %s, line %d: %q: %v", ErrDateParse, e.Column, e.Row+1, e.Value, e.Err)
}

func (e *DateParseError) Unwrap() []error { return []error{ErrDateParse, e.Err} }

func unknownColumn(name string) error {
	return fmt.Errorf("%w %q", ErrUnknownColumn, name)
}
