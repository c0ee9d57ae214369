// filepath: internal/storage/file.go
// Package storage writes the files the tool owns: the configuration and
// the seed file whose passwords are cleared after a run.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SaveFile streams data to path. The content goes to a temporary file in
// the same directory first and is renamed over path, so readers never see
// a half-written file.
func SaveFile(data io.Reader, path string, perm os.FileMode) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("could not create file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	size, err := io.Copy(tmp, data)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("could not write file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("could not set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("could not write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("could not replace %s: %w", path, err)
	}
	return size, nil
}
