package record

import "strings"

// Locate returns every non-overlapping occurrence of marker in line, in order
// of appearance. An empty marker matches nothing.
func Locate(line, marker string) []MarkerSpan {
	if marker == "" {
		return nil
	}

	var spans []MarkerSpan
	offset := 0
	for {
		idx := strings.Index(line[offset:], marker)
		if idx < 0 {
			return spans
		}
		start := offset + idx
		end := start + len(marker)
		spans = append(spans, MarkerSpan{Start: start, End: end})
		offset = end
	}
}
