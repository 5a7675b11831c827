package vaultfs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func newTestHeaderCryptor(t *testing.T, suite CipherSuite) *HeaderCryptor {
	t.Helper()
	h, err := NewHeaderCryptor(suite, testKey(t))
	if err != nil {
		t.Fatalf("NewHeaderCryptor failed: %v", err)
	}
	return h
}

func TestHeaderCryptor_RoundTrip(t *testing.T) {
	for _, suite := range []CipherSuite{CipherAES256GCM, CipherChaCha20Poly1305} {
		t.Run(suite.String(), func(t *testing.T) {
			h := newTestHeaderCryptor(t, suite)
			hdr, err := h.Create(nil)
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if len(hdr.Nonce) != HeaderNonceSize || len(hdr.ContentKey) != KeySize {
				t.Fatalf("Create returned nonce %d bytes, key %d bytes", len(hdr.Nonce), len(hdr.ContentKey))
			}

			data, err := h.Encrypt(hdr)
			if err != nil {
				t.Fatalf("Encrypt failed: %v", err)
			}
			if len(data) != h.Size() || h.Size() != EncryptedHeaderSize {
				t.Errorf("encrypted header is %d bytes, Size() = %d, want %d", len(data), h.Size(), EncryptedHeaderSize)
			}
			if got := binary.LittleEndian.Uint32(data); got != HeaderMagic {
				t.Errorf("magic = %#x, want %#x", got, HeaderMagic)
			}
			if data[4] != HeaderVersion || CipherSuite(data[5]) != suite {
				t.Errorf("version %d cipher %d, want %d %d", data[4], data[5], HeaderVersion, suite)
			}
			if bytes.Contains(data, hdr.ContentKey) {
				t.Error("encrypted header contains the content key")
			}

			back, err := h.Decrypt(data)
			if err != nil {
				t.Fatalf("Decrypt failed: %v", err)
			}
			if !bytes.Equal(back.Nonce, hdr.Nonce) || !bytes.Equal(back.ContentKey, hdr.ContentKey) {
				t.Error("decrypted header does not match")
			}
		})
	}
}

func TestHeaderCryptor_FreshHeaders(t *testing.T) {
	h := newTestHeaderCryptor(t, CipherAES256GCM)
	a, _ := h.Create(nil)
	b, _ := h.Create(nil)
	if bytes.Equal(a.Nonce, b.Nonce) || bytes.Equal(a.ContentKey, b.ContentKey) {
		t.Error("two headers share a nonce or content key")
	}
}

func TestHeaderCryptor_Rejects(t *testing.T) {
	h := newTestHeaderCryptor(t, CipherAES256GCM)
	hdr, _ := h.Create(nil)
	data, err := h.Encrypt(hdr)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	t.Run("every byte", func(t *testing.T) {
		for pos := range data {
			tampered := bytes.Clone(data)
			tampered[pos] ^= 0x04
			_, err := h.Decrypt(tampered)
			if !IsHeaderError(err) || !errors.Is(err, ErrInvalidHeader) {
				t.Fatalf("byte %d: expected ErrInvalidHeader, got %v", pos, err)
			}
		}
	})

	t.Run("short", func(t *testing.T) {
		if _, err := h.Decrypt(data[:EncryptedHeaderSize-1]); !errors.Is(err, ErrInvalidHeader) {
			t.Errorf("expected ErrInvalidHeader, got %v", err)
		}
	})

	t.Run("newer version", func(t *testing.T) {
		tampered := bytes.Clone(data)
		tampered[4] = HeaderVersion + 1
		_, err := h.Decrypt(tampered)
		if !errors.Is(err, ErrUnsupportedVersion) || !errors.Is(err, ErrInvalidHeader) {
			t.Errorf("expected ErrUnsupportedVersion wrapped in ErrInvalidHeader, got %v", err)
		}
	})

	t.Run("other key", func(t *testing.T) {
		other := newTestHeaderCryptor(t, CipherAES256GCM)
		if _, err := other.Decrypt(data); !errors.Is(err, ErrInvalidHeader) {
			t.Errorf("expected ErrInvalidHeader, got %v", err)
		}
	})

	t.Run("other cipher", func(t *testing.T) {
		other := newTestHeaderCryptor(t, CipherChaCha20Poly1305)
		if _, err := other.Decrypt(data); !IsHeaderError(err) {
			t.Errorf("expected header error, got %v", err)
		}
	})

	t.Run("bad sizes", func(t *testing.T) {
		if _, err := h.Encrypt(&FileHeader{Nonce: []byte{1}, ContentKey: hdr.ContentKey}); !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
