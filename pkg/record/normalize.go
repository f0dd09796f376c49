package record

import "strings"

// Normalize collapses runs of spaces in s and splits it into tokens.
//
// The segment is trimmed first, then every run of two or more spaces is
// collapsed to one until none remain. Each pass shortens the string, so the
// loop terminates. An empty segment yields an empty slice.
func Normalize(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.Split(s, " ")
}

// Assemble concatenates the leading segment, the two date tokens and the
// trailing tokens into one field sequence.
func Assemble(leading string, dates [2]string, trailing []string) FieldSequence {
	fields := make(FieldSequence, 0, 3+len(trailing))
	fields = append(fields, leading, dates[0], dates[1])
	fields = append(fields, trailing...)
	return fields
}
