package record

import "strings"

// DefaultDateTokenWidth is the fixed width reserved for each date token on
// either side of the marker. The source format pads dates to five characters
// ("10/05", " 10/5"), so the date block spans from five bytes before the
// opening bound to five bytes after the closing bound. Changing the format
// only requires a different width.
const DefaultDateTokenWidth = 5

// Segment splits line into its leading, date and trailing parts using the
// opening and closing bounds of the date-range marker.
//
// The date block is line[opening.Start-width : closing.End+width]. Everything
// before it is the leading segment and everything after it is the trailing
// segment. Bounds falling outside the line are clamped to it.
func Segment(line string, opening, closing MarkerSpan, marker string, width int) (Segments, error) {
	blockStart := clamp(opening.Start-width, 0, len(line))
	blockEnd := clamp(closing.End+width, blockStart, len(line))

	block := line[blockStart:blockEnd]
	parts := strings.Split(block, marker)
	if len(parts) != 2 {
		return Segments{}, errMalformedDateRange(block, len(parts))
	}

	return Segments{
		Leading:  strings.TrimSpace(line[:blockStart]),
		Dates:    [2]string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])},
		Trailing: line[blockEnd:],
	}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
