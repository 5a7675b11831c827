package vaultfs

import (
	"encoding/binary"
	"fmt"
)

// Stored chunk layout: nonce (12) | ciphertext | tag (16). Every chunk
// authenticates ad = big endian uint64(chunk index) | header nonce.
const (
	// DefaultChunkSize is the default plaintext chunk size (32 KB)
	DefaultChunkSize = 32 * 1024

	// MinChunkSize is the minimum allowed chunk size
	MinChunkSize = 1

	// MaxChunkSize is the maximum allowed chunk size (16 MB)
	MaxChunkSize = 16 * 1024 * 1024

	// ChunkOverhead is the number of bytes a chunk grows by when sealed
	ChunkOverhead = aeadNonceSize + aeadTagSize
)

// ContentCryptor seals and opens individual chunks.
type ContentCryptor struct {
	chunkSize int
}

// NewContentCryptor returns a chunk codec for the given plaintext chunk size.
func NewContentCryptor(chunkSize int) (*ContentCryptor, error) {
	if err := ValidateChunkSize(chunkSize); err != nil {
		return nil, err
	}
	return &ContentCryptor{chunkSize: chunkSize}, nil
}

// CleartextChunkSize is the plaintext size of every chunk but the last.
func (c *ContentCryptor) CleartextChunkSize() int {
	return c.chunkSize
}

// CiphertextChunkSize is the stored size of every chunk but the last.
func (c *ContentCryptor) CiphertextChunkSize() int {
	return c.chunkSize + ChunkOverhead
}

// EncryptChunk seals one chunk of cleartext at position index.
func (c *ContentCryptor) EncryptChunk(cleartext []byte, index uint64, hdr *FileHeader, nonces NonceGenerator) ([]byte, error) {
	if len(cleartext) > c.chunkSize {
		return nil, NewValidationError("cleartext", len(cleartext),
			fmt.Sprintf("chunk exceeds %d bytes", c.chunkSize))
	}
	nonce, err := nonces.NextNonce(hdr.engine.NonceSize())
	if err != nil {
		return nil, err
	}
	sealed, err := hdr.engine.Encrypt(nonce, cleartext, chunkAD(index, hdr.Nonce))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(sealed))
	out = append(out, nonce...)
	return append(out, sealed...), nil
}

// DecryptChunk opens one stored chunk. Truncated or altered chunks and
// chunks presented with the wrong index or header return ErrAuthFailed.
func (c *ContentCryptor) DecryptChunk(ciphertext []byte, index uint64, hdr *FileHeader) ([]byte, error) {
	ns := hdr.engine.NonceSize()
	if len(ciphertext) < ns+hdr.engine.Overhead() || len(ciphertext) > c.CiphertextChunkSize() {
		return nil, ErrAuthFailed
	}
	return hdr.engine.Decrypt(ciphertext[:ns], ciphertext[ns:], chunkAD(index, hdr.Nonce))
}

func chunkAD(index uint64, headerNonce []byte) []byte {
	ad := make([]byte, 8+len(headerNonce))
	binary.BigEndian.PutUint64(ad, index)
	copy(ad[8:], headerNonce)
	return ad
}

// ValidateChunkSize validates that a chunk size is within acceptable bounds
func ValidateChunkSize(size int) error {
	if size < MinChunkSize {
		return NewValidationError("chunk_size", size, fmt.Sprintf("below minimum %d", MinChunkSize))
	}
	if size > MaxChunkSize {
		return NewValidationError("chunk_size", size, fmt.Sprintf("above maximum %d", MaxChunkSize))
	}
	return nil
}

// CalculateChunkCount calculates how many chunks are needed for a given data size
func CalculateChunkCount(dataSize int64, chunkSize int) int64 {
	if dataSize <= 0 {
		return 0
	}
	return (dataSize + int64(chunkSize) - 1) / int64(chunkSize)
}
