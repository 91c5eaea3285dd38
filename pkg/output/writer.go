// Package output writes generated READMEs to disk.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrFileExists is returned when the target exists and overwrite is off
var ErrFileExists = errors.New("file already exists")

// WriteOptions controls Write
type WriteOptions struct {
	Overwrite bool
}

// Result describes a completed write
type Result struct {
	Path        string `json:"path"`
	Overwritten bool   `json:"overwritten"`
}

// Exists reports whether path exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Write stores content at path, creating parent directories. The file is
// written to a temporary sibling and renamed into place.
func Write(content, path string, opts WriteOptions) (Result, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve output path: %w", err)
	}

	exists := Exists(absPath)
	if exists && !opts.Overwrite {
		return Result{}, fmt.Errorf("%w: %s (use --force to overwrite)", ErrFileExists, absPath)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeAtomic(absPath, []byte(content)); err != nil {
		return Result{}, err
	}

	return Result{Path: absPath, Overwritten: exists}, nil
}

func writeAtomic(path string, data []byte) error {
	suffix, err := gonanoid.New(8)
	if err != nil {
		return fmt.Errorf("failed to generate temporary file name: %w", err)
	}

	tempPath := path + "." + suffix + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
