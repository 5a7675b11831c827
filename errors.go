package vaultfs

import (
	"errors"
	"fmt"
)

// Error types represent different categories of errors

// ValidationError represents a configuration or parameter validation error
type ValidationError struct {
	Field   string // The field or parameter that failed validation
	Value   any    // The invalid value
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IOError is a transport failure reported by the underlying storage.
// The storage error stays reachable through Unwrap.
type IOError struct {
	Operation string // "read", "write", "open", "list", etc.
	Path      string // Storage path
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("io error: %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("io error: %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// AuthenticationError reports content that failed integrity verification.
// ChunkIdx is -1 when the failure is not tied to a chunk.
type AuthenticationError struct {
	Path     string
	ChunkIdx int64
	Message  string
	Err      error
}

func (e *AuthenticationError) Error() string {
	switch {
	case e.Path != "" && e.ChunkIdx >= 0:
		return fmt.Sprintf("authentication error: %s (chunk %d): %s", e.Path, e.ChunkIdx, e.Message)
	case e.ChunkIdx >= 0:
		return fmt.Sprintf("authentication error: chunk %d: %s", e.ChunkIdx, e.Message)
	case e.Path != "":
		return fmt.Sprintf("authentication error: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("authentication error: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// HeaderError reports a missing, malformed or unauthenticated file header.
type HeaderError struct {
	Path    string
	Message string
	Err     error
}

func (e *HeaderError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("header error: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("header error: %s", e.Message)
}

func (e *HeaderError) Unwrap() error {
	return e.Err
}

// UnsupportedError reports an operation an overlay cannot perform,
// typically because its paths straddle a vault boundary.
type UnsupportedError struct {
	Operation string
	Source    string
	Target    string
}

func (e *UnsupportedError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("unsupported: %s %s -> %s", e.Operation, e.Source, e.Target)
	}
	return fmt.Sprintf("unsupported: %s %s", e.Operation, e.Source)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// PathError reports a ciphertext name or path that cannot be decoded.
type PathError struct {
	Path    string
	Message string
	Err     error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path error: %s: %s", e.Path, e.Message)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

var (
	ErrInvalidKey         = errors.New("invalid encryption key")
	ErrAuthFailed         = errors.New("authentication failed - data may be corrupted or tampered")
	ErrInvalidHeader      = errors.New("invalid file header")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrUnsupportedCipher  = errors.New("unsupported cipher suite")
	ErrUnsupported        = errors.New("operation not supported")
	ErrInvalidName        = errors.New("invalid encrypted name")
	ErrNotInVault         = errors.New("path is not inside the vault")
	ErrVaultOverlap       = errors.New("vault overlaps a registered vault")
	ErrVaultExists        = errors.New("vault already exists")
	ErrNilConfig          = errors.New("config cannot be nil")
	ErrNilKeyProvider     = errors.New("key provider cannot be nil")
	ErrNegativeOffset     = errors.New("negative offset not allowed")
	ErrClosed             = errors.New("stream already closed")
)

// Helper functions for creating structured errors

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewIOError creates a new I/O error
func NewIOError(operation, path string, err error) error {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewAuthenticationError creates an authentication error not tied to a chunk
func NewAuthenticationError(path string, err error) error {
	return &AuthenticationError{
		Path:     path,
		ChunkIdx: -1,
		Message:  err.Error(),
		Err:      err,
	}
}

func newChunkAuthError(path string, idx uint64, err error) error {
	return &AuthenticationError{
		Path:     path,
		ChunkIdx: int64(idx),
		Message:  err.Error(),
		Err:      err,
	}
}

// NewHeaderError creates a header error wrapping ErrInvalidHeader
func NewHeaderError(path, message string) error {
	return &HeaderError{
		Path:    path,
		Message: message,
		Err:     ErrInvalidHeader,
	}
}

// Error checking helpers

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsIOError checks if an error is an I/O error
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}

// IsAuthenticationError checks if an error is an authentication error
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// IsHeaderError checks if an error is a header error
func IsHeaderError(err error) bool {
	var he *HeaderError
	return errors.As(err, &he)
}

// IsUnsupportedError checks if an error is an unsupported-operation error
func IsUnsupportedError(err error) bool {
	var ue *UnsupportedError
	return errors.As(err, &ue)
}

// IsPathError checks if an error is a path decoding error
func IsPathError(err error) bool {
	var pe *PathError
	return errors.As(err, &pe)
}
