package commands

import (
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand(t *testing.T) {
	f := newFixture(t, []string{completeLine}, "")

	out, err := runCommand(t, NewValidateCommand(), f.config)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid!")
	assert.Contains(t, out, "Columns: 11")
	assert.Contains(t, out, "2. date_first (date)")
	assert.Contains(t, out, "11. times_observed (text)")
	assert.Contains(t, out, `missing as "NA"`)
	assert.NotContains(t, out, "Warning")
}

func TestValidateCommand_InputWarning(t *testing.T) {
	f := newFixture(t, []string{completeLine}, "")
	require.NoError(t, os.Remove(f.input))

	out, err := runCommand(t, NewValidateCommand(), f.config)
	require.NoError(t, err)
	assert.Contains(t, out, "Warning: input file not accessible")
}

func TestValidateCommand_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no input", "output:\n  path: out.csv\n", "input: is required"},
		{"unknown date column", "input: raw.txt\ndates:\n  columns: [when]\noutput:\n  path: out.csv\n", "dates.columns"},
		{"output is input", "input: raw.txt\noutput:\n  path: raw.txt\n", "output.path"},
		{"bad yaml", "input: [\n", "parsing config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml", tt.content)
			_, err := runCommand(t, NewValidateCommand(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, NewVersionCommand())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "fieldnotes "+Version))
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
}
