package record

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completeLine = "obs1   10/5 - 10/7   A1   12.3   N   4.5   1   1   migrant   3"

func TestLocate(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		marker string
		want   []MarkerSpan
	}{
		{
			name:   "single occurrence",
			line:   completeLine,
			marker: " - ",
			want:   []MarkerSpan{{Start: 11, End: 14}},
		},
		{
			name:   "multiple occurrences in order",
			line:   "a - b - c",
			marker: " - ",
			want:   []MarkerSpan{{Start: 1, End: 4}, {Start: 5, End: 8}},
		},
		{
			name:   "overlapping occurrences are not double counted",
			line:   "a - - b",
			marker: " - ",
			want:   []MarkerSpan{{Start: 1, End: 4}},
		},
		{
			name:   "no occurrence",
			line:   "obs1 10/5 10/7",
			marker: " - ",
			want:   nil,
		},
		{
			name:   "hyphen without padding is not a marker",
			line:   "obs-1 10/5-10/7",
			marker: " - ",
			want:   nil,
		},
		{
			name:   "empty marker",
			line:   "anything",
			marker: "",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Locate(tt.line, tt.marker))
		})
	}
}

func TestSegment_CompleteLine(t *testing.T) {
	spans := Locate(completeLine, DefaultMarker)
	require.Len(t, spans, 1)

	seg, err := Segment(completeLine, spans[0], spans[0], DefaultMarker, DefaultDateTokenWidth)
	require.NoError(t, err)

	assert.Equal(t, "obs1", seg.Leading)
	assert.Equal(t, [2]string{"10/5", "10/7"}, seg.Dates)
	assert.Equal(t, "  A1   12.3   N   4.5   1   1   migrant   3", seg.Trailing)
}

func TestSegment_PaddedDates(t *testing.T) {
	line := "Jane Doe 10/15 - 10/17 A2 3"
	spans := Locate(line, DefaultMarker)
	require.Len(t, spans, 1)

	seg, err := Segment(line, spans[0], spans[0], DefaultMarker, DefaultDateTokenWidth)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", seg.Leading)
	assert.Equal(t, [2]string{"10/15", "10/17"}, seg.Dates)
	assert.Equal(t, " A2 3", seg.Trailing)
}

func TestSegment_ClampsToLine(t *testing.T) {
	line := "10/5 - 10/7"
	spans := Locate(line, DefaultMarker)
	require.Len(t, spans, 1)

	seg, err := Segment(line, spans[0], spans[0], DefaultMarker, DefaultDateTokenWidth)
	require.NoError(t, err)

	assert.Equal(t, "", seg.Leading)
	assert.Equal(t, [2]string{"10/5", "10/7"}, seg.Dates)
	assert.Equal(t, "", seg.Trailing)
}

func TestSegment_MalformedDateRange(t *testing.T) {
	line := "obs 10/5 - 10/6 - 10/7 A1"
	spans := Locate(line, DefaultMarker)
	require.Len(t, spans, 2)

	_, err := Segment(line, spans[0], spans[1], DefaultMarker, DefaultDateTokenWidth)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedDateRange))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"irregular runs", "  A1   12.3   N  4.5 1    3  ", []string{"A1", "12.3", "N", "4.5", "1", "3"}},
		{"single spaced", "A1 12.3", []string{"A1", "12.3"}},
		{"long run", "a" + strings.Repeat(" ", 17) + "b", []string{"a", "b"}},
		{"empty", "", []string{}},
		{"only spaces", "     ", []string{}},
		{"crlf", "  A1   12.3   3\r", []string{"A1", "12.3", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"  A1   12.3   N   4.5   1   1   migrant   3",
		"x",
		"",
		"a  b   c    d",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(strings.Join(once, " "))
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestAssemble(t *testing.T) {
	got := Assemble("obs1", [2]string{"10/5", "10/7"}, []string{"A1", "3"})
	assert.Equal(t, FieldSequence{"obs1", "10/5", "10/7", "A1", "3"}, got)

	got = Assemble("obs1", [2]string{"10/5", "10/7"}, nil)
	assert.Equal(t, FieldSequence{"obs1", "10/5", "10/7"}, got)
}

func TestParser_ParseLine_CompleteLine(t *testing.T) {
	p := NewParser()

	fields, err := p.ParseLine(1, completeLine)
	require.NoError(t, err)

	assert.Equal(t, FieldSequence{
		"obs1", "10/5", "10/7",
		"A1", "12.3", "N", "4.5", "1", "1", "migrant", "3",
	}, fields)
}

func TestParser_ParseLine_CRLF(t *testing.T) {
	p := NewParser()

	lf, err := p.ParseLine(1, completeLine)
	require.NoError(t, err)
	crlf, err := p.ParseLine(1, completeLine+"\r")
	require.NoError(t, err)

	assert.Equal(t, lf, crlf)
	assert.Equal(t, "3", crlf[len(crlf)-1])
}

func TestParser_ParseLine_MarkerCount(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"three markers", "obs1 10/5 - 10/7 - 10/9 - A1 3"},
		{"two markers", "obs1 10/5 - 10/7 - A1 3"},
		{"no marker", "obs1 10/5 10/7 A1 3"},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseLine(7, tt.line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedMarkerCount))

			var lineErr *LineError
			require.True(t, errors.As(err, &lineErr))
			assert.Equal(t, 7, lineErr.Line)
			assert.Equal(t, tt.line, lineErr.Raw)
			assert.Contains(t, err.Error(), "line 7")
		})
	}
}

func TestParser_Options(t *testing.T) {
	p := NewParser(WithMarker(" ~ "), WithDateWidth(6))
	assert.Equal(t, " ~ ", p.Marker())

	fields, err := p.ParseLine(1, "obs  10/05 ~ 10/07  A1  2")
	require.NoError(t, err)
	assert.Equal(t, FieldSequence{"obs", "10/05", "10/07", "A1", "2"}, fields)

	// Zero values keep the defaults.
	p = NewParser(WithMarker(""), WithDateWidth(0))
	assert.Equal(t, DefaultMarker, p.Marker())
}

func TestParser_PreservesTokens(t *testing.T) {
	lines := []string{
		completeLine,
		"Jane Doe 10/15 - 10/17 A2    7.1  SW 2.0 3  4  resident",
		"obs3    9/30 - 10/2        B7 1 E 0.5 2 2 migrant 1",
	}

	p := NewParser()
	for i, line := range lines {
		fields, err := p.ParseLine(i+1, line)
		require.NoError(t, err)

		var want []string
		for _, tok := range strings.Fields(line) {
			if tok != strings.TrimSpace(DefaultMarker) {
				want = append(want, tok)
			}
		}
		assert.Equal(t, want, strings.Fields(strings.Join(fields, " ")), "line %d", i+1)
	}
}

func TestParser_ParseLines(t *testing.T) {
	p := NewParser()
	lines := []string{
		completeLine,
		"obs2   10/6 - 10/8   A2   1.0   S   2.5   1   1   resident",
	}

	got, err := p.ParseLines(context.Background(), lines)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0], 11)
	assert.Len(t, got[1], 10)
}

func TestParser_ParseLines_AbortsOnFirstError(t *testing.T) {
	p := NewParser()
	lines := []string{
		completeLine,
		"bad line without dates",
		"obs1 10/5 - 10/7 - 10/9 - A1 3",
	}

	_, err := p.ParseLines(context.Background(), lines)
	var lineErr *LineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, 2, lineErr.Line)
}

func TestParser_ParseLines_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().ParseLines(ctx, []string{completeLine})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecord_Classify(t *testing.T) {
	r := Classify(FieldSequence{"a", "b"}, 4)
	assert.False(t, r.Complete())
	assert.Equal(t, 2, r.Missing)

	padded, mask := r.Padded()
	assert.Equal(t, FieldSequence{"a", "b", "", ""}, padded)
	assert.Equal(t, []bool{false, false, true, true}, mask)
	assert.Equal(t, FieldSequence{"a", "b"}, r.Fields, "original fields untouched")

	r = Classify(FieldSequence{"a", "b"}, 2)
	assert.True(t, r.Complete())
}
