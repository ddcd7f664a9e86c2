package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// StorageRoot is the application-private directory under which the
// sensor log directory is created.
type StorageRoot string

// NewStorageRoot cleans the path and makes it absolute.
func NewStorageRoot(path string) (StorageRoot, error) {
	if len(path) == 0 {
		return "", errors.New("storage root cannot be empty")
	}

	cleanPath := filepath.Clean(path)
	if strings.ContainsAny(cleanPath, "<>\"|?*") {
		return "", fmt.Errorf("%w: storage root contains invalid characters: %s", ErrValidation, cleanPath)
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return "", fmt.Errorf("resolving storage root: %w", err)
	}

	return StorageRoot(absPath), nil
}
