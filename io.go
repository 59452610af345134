// File: lixenwraith/propbind/io.go
package propbind

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// MaxLineSize bounds a single physical line of a line-format store.
const MaxLineSize = 1 << 20

// checkFile verifies that path names an existing regular file.
func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: file '%s' not found", ErrStoreUnavailable, path)
		}
		return fmt.Errorf("%w: failed to stat '%s': %w", ErrStoreUnavailable, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: '%s' is a directory", ErrStoreUnavailable, path)
	}
	return nil
}

// readLines returns the physical lines of path without their terminators.
// The file is closed before returning.
func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open '%s': %w", ErrStoreUnavailable, path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read '%s': %w", ErrStoreUnavailable, path, err)
	}
	return lines, nil
}

// atomicWriteFile replaces path with data through a temporary file in the
// same directory, keeping the permissions of the file it replaces.
func atomicWriteFile(path string, data []byte) error {
	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
