package vaultfs

import (
	"fmt"
	"path"
	"strings"
)

// Input validation helpers

// ValidateKey checks if a key has the correct size
func ValidateKey(key []byte, expectedSize int) error {
	if key == nil {
		return &ValidationError{
			Field:   "key",
			Message: "key cannot be nil",
			Err:     ErrInvalidKey,
		}
	}
	if len(key) != expectedSize {
		return &ValidationError{
			Field:   "key",
			Value:   len(key),
			Message: fmt.Sprintf("invalid key size: got %d bytes, expected %d bytes", len(key), expectedSize),
			Err:     ErrInvalidKey,
		}
	}
	return nil
}

// ValidateOffset checks if a file offset is valid
func ValidateOffset(offset int64, name string) error {
	if offset < 0 {
		return &ValidationError{
			Field:   name,
			Value:   offset,
			Message: "offset cannot be negative",
			Err:     ErrNegativeOffset,
		}
	}
	return nil
}

// CleanPath validates p as an absolute slash separated path and returns
// its cleaned form.
func CleanPath(p string) (string, error) {
	if p == "" {
		return "", &ValidationError{
			Field:   "path",
			Message: "path cannot be empty",
		}
	}
	if !strings.HasPrefix(p, "/") {
		return "", &ValidationError{
			Field:   "path",
			Value:   p,
			Message: "path must be absolute",
		}
	}
	return path.Clean(p), nil
}

// ValidateStatus checks the resume window of an operation status.
func ValidateStatus(s *Status) error {
	if s == nil {
		return nil
	}
	if err := ValidateOffset(s.Offset, "offset"); err != nil {
		return err
	}
	return ValidateOffset(s.Length, "length")
}
