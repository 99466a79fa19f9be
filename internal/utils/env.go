package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/kelsos/atom-tasks/internal/config"
	"github.com/kelsos/atom-tasks/internal/logger"
)

// envFiles lists the .env candidates, most specific first: the working
// directory, next to the executable, then the config directory.
func envFiles() []string {
	files := []string{".env"}
	if execPath, err := os.Executable(); err == nil {
		files = append(files, filepath.Join(filepath.Dir(execPath), ".env"))
	} else {
		logger.Debug("Could not determine executable path: %v", err)
	}
	return append(files, filepath.Join(filepath.Dir(config.DefaultConfigFile()), ".env"))
}

// LoadEnvironment loads ATOM_* variables from the usual .env locations
func LoadEnvironment() {
	LoadEnvFiles(envFiles()...)
}

// LoadEnvFiles loads each existing file in order and returns the ones read.
// Variables already set, by the shell or an earlier file, are kept.
func LoadEnvFiles(paths ...string) []string {
	var loaded []string
	seen := make(map[string]bool, len(paths))

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true

		if err := godotenv.Load(abs); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warn("Failed to load %s: %v", abs, err)
			}
			continue
		}
		logger.Debug("Loaded environment from %s", abs)
		loaded = append(loaded, abs)
	}
	return loaded
}
