package vaultfs

import (
	"errors"
	"testing"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ValidationError
		wantMsg string
	}{
		{
			name: "with field",
			err: &ValidationError{
				Field:   "chunk_size",
				Value:   1024,
				Message: "too small",
			},
			wantMsg: "validation error: chunk_size: too small",
		},
		{
			name: "without field",
			err: &ValidationError{
				Message: "invalid configuration",
			},
			wantMsg: "validation error: invalid configuration",
		},
		{
			name: "with wrapped error",
			err: &ValidationError{
				Field:   "key",
				Message: "invalid key",
				Err:     ErrInvalidKey,
			},
			wantMsg: "validation error: key: invalid key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.wantMsg)
			}
			if tt.err.Err != nil && !errors.Is(tt.err, tt.err.Err) {
				t.Errorf("ValidationError does not unwrap to %v", tt.err.Err)
			}
		})
	}
}

func TestIOError(t *testing.T) {
	baseErr := errors.New("permission denied")

	tests := []struct {
		name    string
		err     *IOError
		wantMsg string
	}{
		{
			name:    "with path",
			err:     &IOError{Operation: "read", Path: "/test/file.dat", Err: baseErr},
			wantMsg: "io error: read /test/file.dat: permission denied",
		},
		{
			name:    "operation only",
			err:     &IOError{Operation: "sync", Err: baseErr},
			wantMsg: "io error: sync: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("IOError.Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, baseErr) {
				t.Error("IOError does not unwrap to the storage error")
			}
		})
	}
}

func TestAuthenticationError(t *testing.T) {
	tests := []struct {
		name    string
		err     *AuthenticationError
		wantMsg string
	}{
		{
			name:    "with path and chunk",
			err:     &AuthenticationError{Path: "/vault/secret", ChunkIdx: 3, Message: "invalid tag"},
			wantMsg: "authentication error: /vault/secret (chunk 3): invalid tag",
		},
		{
			name:    "chunk only",
			err:     &AuthenticationError{ChunkIdx: 0, Message: "invalid tag"},
			wantMsg: "authentication error: chunk 0: invalid tag",
		},
		{
			name:    "with path",
			err:     &AuthenticationError{Path: "/vault/vault.json", ChunkIdx: -1, Message: "wrong key"},
			wantMsg: "authentication error: /vault/vault.json: wrong key",
		},
		{
			name:    "message only",
			err:     &AuthenticationError{ChunkIdx: -1, Message: "key derivation failed"},
			wantMsg: "authentication error: key derivation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("AuthenticationError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestHeaderAndPathErrors(t *testing.T) {
	he := &HeaderError{Path: "/vault/f", Message: "bad magic bytes", Err: ErrInvalidHeader}
	if got, want := he.Error(), "header error: /vault/f: bad magic bytes"; got != want {
		t.Errorf("HeaderError.Error() = %q, want %q", got, want)
	}
	if got, want := (&HeaderError{Message: "short"}).Error(), "header error: short"; got != want {
		t.Errorf("HeaderError.Error() = %q, want %q", got, want)
	}

	pe := &PathError{Path: "x.vlt", Message: "bad encoding", Err: ErrInvalidName}
	if got, want := pe.Error(), "path error: x.vlt: bad encoding"; got != want {
		t.Errorf("PathError.Error() = %q, want %q", got, want)
	}
	if !errors.Is(pe, ErrInvalidName) {
		t.Error("PathError does not unwrap")
	}

	ue := &UnsupportedError{Operation: "move", Source: "/a", Target: "/vault/b"}
	if got, want := ue.Error(), "unsupported: move /a -> /vault/b"; got != want {
		t.Errorf("UnsupportedError.Error() = %q, want %q", got, want)
	}
	if !errors.Is(ue, ErrUnsupported) {
		t.Error("UnsupportedError does not unwrap to ErrUnsupported")
	}
}

func TestErrorCheckers(t *testing.T) {
	genericErr := errors.New("generic error")

	tests := []struct {
		name string
		err  error
		fn   func(error) bool
		want bool
	}{
		{"IsValidationError with ValidationError", &ValidationError{Message: "test"}, IsValidationError, true},
		{"IsValidationError with other error", genericErr, IsValidationError, false},
		{"IsIOError with IOError", &IOError{Operation: "read"}, IsIOError, true},
		{"IsIOError with other error", genericErr, IsIOError, false},
		{"IsAuthenticationError with AuthenticationError", &AuthenticationError{Message: "test"}, IsAuthenticationError, true},
		{"IsAuthenticationError with other error", genericErr, IsAuthenticationError, false},
		{"IsHeaderError with HeaderError", &HeaderError{Message: "test"}, IsHeaderError, true},
		{"IsHeaderError with other error", genericErr, IsHeaderError, false},
		{"IsUnsupportedError with UnsupportedError", &UnsupportedError{Operation: "move"}, IsUnsupportedError, true},
		{"IsUnsupportedError with other error", genericErr, IsUnsupportedError, false},
		{"IsPathError with PathError", &PathError{Message: "test"}, IsPathError, true},
		{"IsPathError with other error", genericErr, IsPathError, false},
		{"IsIOError with nil", nil, IsIOError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.err); got != tt.want {
				t.Errorf("error checker = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorConstructors(t *testing.T) {
	t.Run("NewValidationError", func(t *testing.T) {
		err := NewValidationError("field", 123, "invalid value")
		ve, ok := err.(*ValidationError)
		if !ok {
			t.Fatal("NewValidationError should create ValidationError")
		}
		if ve.Field != "field" || ve.Value != 123 || ve.Message != "invalid value" {
			t.Errorf("NewValidationError fields incorrect: %+v", ve)
		}
	})

	t.Run("NewIOError", func(t *testing.T) {
		baseErr := errors.New("test")
		err := NewIOError("read", "/path", baseErr)
		ie, ok := err.(*IOError)
		if !ok {
			t.Fatal("NewIOError should create IOError")
		}
		if ie.Operation != "read" || ie.Path != "/path" || ie.Err != baseErr {
			t.Errorf("NewIOError fields incorrect: %+v", ie)
		}
	})

	t.Run("NewAuthenticationError", func(t *testing.T) {
		err := NewAuthenticationError("/path", ErrInvalidKey)
		var ae *AuthenticationError
		if !errors.As(err, &ae) {
			t.Fatal("NewAuthenticationError should create AuthenticationError")
		}
		if ae.ChunkIdx != -1 || !errors.Is(err, ErrInvalidKey) {
			t.Errorf("NewAuthenticationError fields incorrect: %+v", ae)
		}
	})

	t.Run("newChunkAuthError", func(t *testing.T) {
		err := newChunkAuthError("/path", 7, ErrAuthFailed)
		var ae *AuthenticationError
		if !errors.As(err, &ae) || ae.ChunkIdx != 7 || !errors.Is(err, ErrAuthFailed) {
			t.Errorf("newChunkAuthError = %v", err)
		}
	})

	t.Run("NewHeaderError", func(t *testing.T) {
		err := NewHeaderError("/path", "short")
		if !IsHeaderError(err) || !errors.Is(err, ErrInvalidHeader) {
			t.Errorf("NewHeaderError = %v", err)
		}
	})
}
