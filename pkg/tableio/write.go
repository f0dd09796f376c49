package tableio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ccollicutt/fieldnotes/pkg/table"
)

var (
	// ErrSameFile means the destination would replace the input file.
	ErrSameFile = errors.New("output path refers to the input file")

	// ErrOutputExists means the destination exists and overwriting was not
	// requested.
	ErrOutputExists = errors.New("output file already exists")

	// ErrSentinelCollision means a present cell equals the missing-value
	// marker, so the written file could not tell the two apart.
	ErrSentinelCollision = errors.New("cell value collides with the missing-value marker")

	// ErrUnsupportedFormat means no file encoder exists for the format.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Encode writes t to w in opts.Format.
func Encode(w io.Writer, t *table.Table, opts WriteOptions) error {
	switch opts.Format {
	case FormatCSV, "":
		return WriteCSV(w, t, opts)
	case FormatJSON:
		return WriteJSON(w, t, opts)
	case FormatXLSX:
		return WriteXLSX(w, t, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
}

// WriteFile writes t to path. The table is encoded to a temporary file in the
// destination directory and renamed into place, so a failed write never
// leaves a partial file at path.
func WriteFile(ctx context.Context, t *table.Table, path string, opts WriteOptions) error {
	if path == "" {
		return errors.New("output path is required")
	}
	if opts.Input != "" && SamePath(path, opts.Input) {
		return fmt.Errorf("%w: %s", ErrSameFile, path)
	}
	if !opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrOutputExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking output path: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := Encode(tmp, t, opts); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { // #nosec G302 -- output is a shareable data file
		return fmt.Errorf("setting permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	committed = true
	return nil
}

// SamePath reports whether a and b name the same file, either by absolute
// path or, when both exist, by identity.
func SamePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}

// ReadFile reads a table from a csv or xlsx file, chosen by extension.
func ReadFile(path string, opts ReadOptions) (*table.Table, error) {
	switch filepath.Ext(path) {
	case ".xlsx":
		return ReadXLSX(path, opts)
	case ".csv", ".txt":
		f, err := os.Open(path) // #nosec G304 -- user-provided input path is expected
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		return ReadCSV(f, opts)
	default:
		return nil, fmt.Errorf("%w: cannot read %s", ErrUnsupportedFormat, path)
	}
}
