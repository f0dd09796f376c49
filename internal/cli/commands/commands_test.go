package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const (
	completeLine    = "obs1   10/5 - 10/7   A1   12.3   N   4.5   1   1   migrant   3"
	shortLine       = "obs2   10/6 - 10/8   A2   1.0   S   2.5   1   1   resident"
	extraMarkerLine = "obs3 10/5 - 10/7 - 10/9 - A3 1"
)

// writeTempFile creates a file in dir with the given content.
func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runCommand executes cmd with args and returns what it wrote to stdout.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	ExitCode = 0
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// fixture holds a raw input file and a config pointing at it.
type fixture struct {
	dir    string
	input  string
	output string
	config string
}

// newFixture writes lines as the raw input and a config with extra appended
// to its dates section.
func newFixture(t *testing.T, lines []string, extraDates string) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		input:  writeTempFile(t, dir, "raw.txt", strings.Join(lines, "\n")+"\n"),
		output: filepath.Join(dir, "clean.csv"),
	}
	cfg := "input: " + f.input + "\n" +
		"dates:\n" +
		"  implied_year_suffix: \"/12\"\n" + extraDates +
		"output:\n" +
		"  path: " + f.output + "\n"
	f.config = writeTempFile(t, dir, "fieldnotes.yaml", cfg)
	return f
}
