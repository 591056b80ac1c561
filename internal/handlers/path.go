package handlers

import (
	"errors"
	"os"
)

// documentsBaseDir returns the base directory for stored family documents.
// Falls back to ./storage/documents when DOCUMENTS_DIR is not set.
func documentsBaseDir() string {
	if v := os.Getenv("DOCUMENTS_DIR"); v != "" {
		return v
	}
	return "./storage/documents"
}

// ensureDir guarantees the directory exists. Errors if the path exists and
// is a regular file.
func ensureDir(path string) error {
	if path == "" {
		return errors.New("empty dir path")
	}
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return errors.New("path exists and is not a directory")
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(path, 0o755)
}

// fileExists reports whether a regular file (not a directory) exists.
func fileExists(p string) bool {
	if p == "" {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
