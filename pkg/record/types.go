// Package record parses ragged observation lines into ordered field sequences.
//
// A line carries free text (the observer), a date range such as
// "10/5 - 10/7" anchored on a padded marker, and a trailing run of
// whitespace-separated tokens whose spacing is irregular.
package record

// MarkerSpan is one located occurrence of the padded marker within a line.
// Offsets are byte offsets; Start is inclusive, End is exclusive.
type MarkerSpan struct {
	Start int
	End   int
}

// FieldSequence is the ordered list of string fields parsed from one line.
// Its length may differ between lines until the table is built.
type FieldSequence []string

// Segments holds the three logical parts of a line.
type Segments struct {
	// Leading is the free-text segment before the date range, trimmed.
	Leading string

	// Dates holds the first and last date tokens of the range, trimmed.
	Dates [2]string

	// Trailing is the raw remainder of the line after the date range.
	Trailing string
}

// Record classifies a field sequence against the table width.
// A Record with Missing == 0 is complete; otherwise it lacks that many
// trailing fields.
type Record struct {
	Fields  FieldSequence
	Missing int
}

// Classify compares fields against width. Sequences longer than width are
// never produced by the table builder, which derives width from the longest
// sequence, so Missing is never negative.
func Classify(fields FieldSequence, width int) Record {
	missing := width - len(fields)
	if missing < 0 {
		missing = 0
	}
	return Record{Fields: fields, Missing: missing}
}

// Complete reports whether the record has every field.
func (r Record) Complete() bool {
	return r.Missing == 0
}

// Padded returns the fields followed by Missing empty slots and a mask
// marking which positions were padded. The original fields are not modified.
func (r Record) Padded() (FieldSequence, []bool) {
	out := make(FieldSequence, len(r.Fields)+r.Missing)
	copy(out, r.Fields)
	mask := make([]bool, len(out))
	for i := len(r.Fields); i < len(out); i++ {
		mask[i] = true
	}
	return out, mask
}
