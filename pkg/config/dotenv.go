package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment. Variables already set are not overridden. A missing file is
// an error only when it was named explicitly.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("env file %s not found", path)
			}
			return fmt.Errorf("loading env file %s: %w", path, err)
		}
	}
	return nil
}
