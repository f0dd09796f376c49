package detector

import "regexp"

// DateFormat is a known shape of the month/day tokens on either side of the
// date-range marker.
type DateFormat struct {
	Name       string         // Human-readable name
	Pattern    *regexp.Regexp // Compiled regex (set during init)
	PatternStr string         // Pattern string for display
	Layout     string         // Go time layout for the token, without the year
	Examples   []string       // Example tokens
	Ambiguous  bool           // True if the token could be read as month/day or day/month
}

// DefaultFormats returns the built-in date token formats to detect.
// Formats are ordered by specificity (more specific patterns first).
func DefaultFormats() []*DateFormat {
	formats := []*DateFormat{
		{
			Name:       "Zero-padded month/day",
			PatternStr: `^\d{2}/\d{2}$`,
			Layout:     "01/02",
			Examples:   []string{"10/05", "09/30"},
			Ambiguous:  true,
		},
		{
			Name:       "Zero-padded day/month",
			PatternStr: `^\d{2}/\d{2}$`,
			Layout:     "02/01",
			Examples:   []string{"05/10", "30/09"},
			Ambiguous:  true,
		},
		{
			Name:       "Month/day",
			PatternStr: `^\d{1,2}/\d{1,2}$`,
			Layout:     "1/2",
			Examples:   []string{"10/5", "9/30"},
			Ambiguous:  true,
		},
		{
			Name:       "Day/month",
			PatternStr: `^\d{1,2}/\d{1,2}$`,
			Layout:     "2/1",
			Examples:   []string{"5/10", "30/9"},
			Ambiguous:  true,
		},
		{
			Name:       "Month-day",
			PatternStr: `^\d{1,2}-\d{1,2}$`,
			Layout:     "1-2",
			Examples:   []string{"10-5", "9-30"},
			Ambiguous:  true,
		},
		{
			Name:       "Day.month",
			PatternStr: `^\d{1,2}\.\d{1,2}$`,
			Layout:     "2.1",
			Examples:   []string{"5.10", "30.9"},
		},
		{
			Name:       "Abbreviated month and day",
			PatternStr: `^[A-Z][a-z]{2}\d{1,2}$`,
			Layout:     "Jan2",
			Examples:   []string{"Oct5", "Sep30"},
		},
	}

	for _, f := range formats {
		f.Pattern = regexp.MustCompile(f.PatternStr)
	}

	return formats
}
