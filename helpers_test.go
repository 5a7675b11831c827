package vaultfs

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/absfs/memfs"
)

func testKey(t testing.TB) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	return key
}

func newTestSession(t testing.TB) *Session {
	t.Helper()
	fs, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("Failed to create memfs: %v", err)
	}
	return NewSession(fs)
}

func newTestVault(t testing.TB, s *Session, root string, chunkSize int) *Vault {
	t.Helper()
	kp, err := NewRawKeyProvider(testKey(t))
	if err != nil {
		t.Fatalf("NewRawKeyProvider failed: %v", err)
	}
	v, err := CreateVault(s, root, kp, &Config{Cipher: CipherAES256GCM, ChunkSize: chunkSize})
	if err != nil {
		t.Fatalf("CreateVault(%s) failed: %v", root, err)
	}
	return v
}

// newTestEnv returns a registry with one vault at /vault on a fresh session.
func newTestEnv(t testing.TB, chunkSize int) (*Registry, *Session, *Vault) {
	t.Helper()
	s := newTestSession(t)
	v := newTestVault(t, s, "/vault", chunkSize)
	r := NewRegistry(nil)
	if err := r.Add(v); err != nil {
		t.Fatalf("Registry.Add failed: %v", err)
	}
	return r, s, v
}

func newTestCryptor(t testing.TB, chunkSize int) *Cryptor {
	t.Helper()
	c, err := NewCryptor(CipherAES256GCM, testKey(t), chunkSize)
	if err != nil {
		t.Fatalf("NewCryptor failed: %v", err)
	}
	return c
}

func newTestHeader(t testing.TB, c *Cryptor) *FileHeader {
	t.Helper()
	hdr, err := c.Header().Create(nil)
	if err != nil {
		t.Fatalf("Header.Create failed: %v", err)
	}
	return hdr
}

// encryptChunks returns the stored chunks for data, without a header.
func encryptChunks(t testing.TB, c *Cryptor, hdr *FileHeader, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := c.NewWriter(&buf, hdr, nil)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return buf.Bytes()
}

// writeRaw stores data at a storage path, bypassing every vault.
func writeRaw(t testing.TB, s *Session, p string, data []byte) {
	t.Helper()
	w, err := s.Write().Write(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("raw write %s failed: %v", p, err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("raw write %s failed: %v", p, err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("raw close %s failed: %v", p, err)
	}
}

func readRaw(t testing.TB, s *Session, p string) []byte {
	t.Helper()
	r, err := s.Read().Read(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("raw read %s failed: %v", p, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("raw read %s failed: %v", p, err)
	}
	return data
}

func writeFeature(t testing.TB, f WriteFeature, p string, data []byte, status *Status) {
	t.Helper()
	w, err := f.Write(context.Background(), p, status)
	if err != nil {
		t.Fatalf("Write(%s) failed: %v", p, err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write(%s) failed: %v", p, err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close(%s) failed: %v", p, err)
	}
}

func readFeature(f ReadFeature, p string, status *Status) ([]byte, error) {
	r, err := f.Read(context.Background(), p, status)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
