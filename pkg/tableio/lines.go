// Package tableio reads raw input lines and reads and writes cleaned tables.
package tableio

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1024 * 1024

// ReadLines reads every line of path in order. Lines are returned exactly as
// stored, minus the "\n" terminator; a carriage return before it is kept.
// The file is closed before ReadLines returns.
func ReadLines(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided input path is expected
	if err != nil {
		return nil, fmt.Errorf("opening input file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanRawLines)

	var lines []string
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

// scanRawLines is bufio.ScanLines without the carriage-return stripping.
func scanRawLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[0:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
