package app

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnv loads the first .env file found in the working directory or the
// config directory. Variables already set in the environment win.
// Returns the file that was loaded, or "" when none exists.
func LoadEnv() (string, error) {
	paths := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ".env"))
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", err
		}
		if err := godotenv.Load(p); err != nil {
			return "", err
		}
		slog.Debug("loaded env file", "path", p)
		return p, nil
	}
	return "", nil
}
