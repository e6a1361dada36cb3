package vault

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// tempFilePrefix marks in-progress saves. Such files never match the
	// *.secnote listing pattern.
	tempFilePrefix = ".notevault-tmp-"

	fileMode = 0600
	dirMode  = 0700
)

// writeFileAtomic writes data to a temp file next to filename, syncs it and
// renames it into place.
func writeFileAtomic(filename string, data []byte) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	// No-op once the rename has happened.
	defer os.Remove(tmpFile.Name())

	if err := tmpFile.Chmod(fileMode); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}
	return nil
}
