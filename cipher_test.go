package vaultfs

import (
	"bytes"
	"errors"
	"testing"
)

func TestCipherEngine_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		suite CipherSuite
	}{
		{"auto", CipherAuto},
		{"aes-gcm", CipherAES256GCM},
		{"chacha20", CipherChaCha20Poly1305},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewCipherEngine(tt.suite, testKey(t))
			if err != nil {
				t.Fatalf("NewCipherEngine failed: %v", err)
			}
			if engine.NonceSize() != aeadNonceSize || engine.Overhead() != aeadTagSize {
				t.Errorf("NonceSize %d Overhead %d", engine.NonceSize(), engine.Overhead())
			}

			nonce := make([]byte, engine.NonceSize())
			ad := []byte("associated")
			plaintext := []byte("Hello, World!")

			ct, err := engine.Encrypt(nonce, plaintext, ad)
			if err != nil {
				t.Fatalf("Encrypt failed: %v", err)
			}
			pt, err := engine.Decrypt(nonce, ct, ad)
			if err != nil {
				t.Fatalf("Decrypt failed: %v", err)
			}
			if !bytes.Equal(pt, plaintext) {
				t.Errorf("got %q, want %q", pt, plaintext)
			}

			if _, err := engine.Decrypt(nonce, ct, []byte("other")); !errors.Is(err, ErrAuthFailed) {
				t.Errorf("ad mismatch: expected ErrAuthFailed, got %v", err)
			}
			ct[0] ^= 0x01
			if _, err := engine.Decrypt(nonce, ct, ad); !errors.Is(err, ErrAuthFailed) {
				t.Errorf("tampered: expected ErrAuthFailed, got %v", err)
			}
			if _, err := engine.Encrypt(nonce[:4], plaintext, ad); err == nil {
				t.Error("Encrypt should reject a short nonce")
			}
		})
	}
}

func TestCipherEngine_InvalidKey(t *testing.T) {
	for _, size := range []int{0, 16, 31, 33, 64} {
		if _, err := NewAESGCMEngine(make([]byte, size)); err == nil {
			t.Errorf("AES-GCM accepted a %d-byte key", size)
		}
		if _, err := NewChaCha20Poly1305Engine(make([]byte, size)); err == nil {
			t.Errorf("ChaCha20-Poly1305 accepted a %d-byte key", size)
		}
	}
	if _, err := NewCipherEngine(CipherSuite(99), testKey(t)); !errors.Is(err, ErrUnsupportedCipher) {
		t.Errorf("expected ErrUnsupportedCipher, got %v", err)
	}
}

func TestParseCipherSuite(t *testing.T) {
	tests := []struct {
		in      string
		want    CipherSuite
		wantErr bool
	}{
		{"", CipherAuto, false},
		{"auto", CipherAuto, false},
		{"AES-256-GCM", CipherAES256GCM, false},
		{"chacha", CipherChaCha20Poly1305, false},
		{" chacha20-poly1305 ", CipherChaCha20Poly1305, false},
		{"des", CipherAuto, true},
	}
	for _, tt := range tests {
		got, err := ParseCipherSuite(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCipherSuite(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCipherSuite(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr && tt.want != CipherAuto {
			if back, _ := ParseCipherSuite(got.String()); back != got {
				t.Errorf("String %q does not parse back", got.String())
			}
		}
	}
}

func TestCryptor_Sizes(t *testing.T) {
	c := newTestCryptor(t, 4)

	tests := []struct {
		cleartext, stored int64
	}{
		{0, 78},
		{1, 78 + 29},
		{4, 78 + 32},
		{5, 78 + 32 + 29},
		{11, 78 + 32 + 32 + 31},
	}
	for _, tt := range tests {
		if got := c.CiphertextSize(tt.cleartext); got != tt.stored {
			t.Errorf("CiphertextSize(%d) = %d, want %d", tt.cleartext, got, tt.stored)
		}
		got, err := c.CleartextSize(tt.stored)
		if err != nil || got != tt.cleartext {
			t.Errorf("CleartextSize(%d) = (%d, %v), want %d", tt.stored, got, err, tt.cleartext)
		}
	}

	for n := int64(0); n < 50; n++ {
		if back, err := c.CleartextSize(c.CiphertextSize(n)); err != nil || back != n {
			t.Errorf("size %d does not round trip: (%d, %v)", n, back, err)
		}
	}

	for _, bad := range []int64{0, 77, 79, 78 + 28} {
		if _, err := c.CleartextSize(bad); err == nil {
			t.Errorf("CleartextSize(%d) should fail", bad)
		}
	}
}

func TestNewCryptor_Invalid(t *testing.T) {
	if _, err := NewCryptor(CipherAES256GCM, testKey(t), 0); !IsValidationError(err) {
		t.Errorf("chunk size 0: expected validation error, got %v", err)
	}
	if _, err := NewCryptor(CipherAES256GCM, testKey(t), MaxChunkSize+1); !IsValidationError(err) {
		t.Errorf("oversized chunk: expected validation error, got %v", err)
	}
	if _, err := NewCryptor(CipherAES256GCM, make([]byte, 7), 16); err == nil {
		t.Error("short header key accepted")
	}
}

func TestCalculateChunkCount(t *testing.T) {
	tests := []struct {
		size  int64
		chunk int
		want  int64
	}{
		{0, 4, 0},
		{1, 4, 1},
		{4, 4, 1},
		{11, 4, 3},
		{-5, 4, 0},
	}
	for _, tt := range tests {
		if got := CalculateChunkCount(tt.size, tt.chunk); got != tt.want {
			t.Errorf("CalculateChunkCount(%d, %d) = %d, want %d", tt.size, tt.chunk, got, tt.want)
		}
	}
}
