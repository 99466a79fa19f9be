// Package backup archives the client's local state directory.
package backup

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelsos/atom-tasks/internal/config"
	"github.com/kelsos/atom-tasks/internal/logger"
)

// DefaultDir is where archives go when no directory is given
func DefaultDir(dataDir string) string {
	return filepath.Join(dataDir, "backups")
}

// Create writes a zip of the stored entries under dataDir into destDir and
// returns the archive path. Logs and earlier archives are left out.
func Create(dataDir, destDir string) (string, error) {
	if destDir == "" {
		destDir = DefaultDir(dataDir)
	}
	if err := os.MkdirAll(destDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	archivePath := filepath.Join(destDir, fmt.Sprintf("%s_backup_%s.zip", config.AppName, timestamp))

	f, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	absDest, _ := filepath.Abs(destDir)
	err = filepath.Walk(dataDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && path != dataDir {
			if abs, _ := filepath.Abs(path); abs == absDest {
				return filepath.SkipDir
			}
		}
		return addEntry(zw, dataDir, path, info)
	})
	if err != nil {
		zw.Close()
		os.Remove(archivePath)
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish backup: %w", err)
	}

	logger.Info("Backup created: %s", archivePath)
	return archivePath, nil
}

func addEntry(zw *zip.Writer, dataDir, path string, info os.FileInfo) error {
	if path == dataDir {
		return nil
	}

	rel, err := filepath.Rel(dataDir, path)
	if err != nil {
		return fmt.Errorf("failed to get relative path: %w", err)
	}

	if !include(rel, info.IsDir()) {
		logger.Debug("Skipping %s", rel)
		if info.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create file header: %w", err)
	}
	header.Name = filepath.ToSlash(rel)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", rel, err)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rel, err)
	}
	defer src.Close()

	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to copy %s: %w", rel, err)
	}

	logger.Debug("Added %s to backup", rel)
	return nil
}

// include keeps top-level stored entries and the sqlite database; nested
// directories and temporary files are skipped.
func include(rel string, isDir bool) bool {
	if isDir {
		return false
	}
	if strings.ContainsRune(filepath.ToSlash(rel), '/') {
		return false
	}
	if strings.HasSuffix(rel, ".tmp") || strings.HasSuffix(rel, "-journal") {
		return false
	}
	return true
}
