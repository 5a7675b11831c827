package vaultfs

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the size of every content, header and master key.
const KeySize = 32

// CipherEngine provides AEAD encryption/decryption with associated data
type CipherEngine interface {
	// Encrypt seals plaintext with the given nonce, authenticating ad
	Encrypt(nonce, plaintext, ad []byte) ([]byte, error)

	// Decrypt opens ciphertext with the given nonce and ad
	Decrypt(nonce, ciphertext, ad []byte) ([]byte, error)

	// NonceSize returns the size of nonces in bytes
	NonceSize() int

	// Overhead returns the authentication tag size
	Overhead() int
}

// AEADEngine adapts a cipher.AEAD to CipherEngine.
type AEADEngine struct {
	suite CipherSuite
	aead  cipher.AEAD
}

// NewAESGCMEngine creates a new AES-256-GCM cipher engine
func NewAESGCMEngine(key []byte) (*AEADEngine, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("AES-256 requires a %d-byte key, got %d bytes", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AEADEngine{suite: CipherAES256GCM, aead: aead}, nil
}

// NewChaCha20Poly1305Engine creates a new ChaCha20-Poly1305 cipher engine
func NewChaCha20Poly1305Engine(key []byte) (*AEADEngine, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("ChaCha20-Poly1305 requires a %d-byte key, got %d bytes",
			chacha20poly1305.KeySize, len(key))
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	return &AEADEngine{suite: CipherChaCha20Poly1305, aead: aead}, nil
}

// NewCipherEngine creates a new cipher engine based on the cipher suite
func NewCipherEngine(suite CipherSuite, key []byte) (CipherEngine, error) {
	switch suite.resolve() {
	case CipherAES256GCM:
		return NewAESGCMEngine(key)
	case CipherChaCha20Poly1305:
		return NewChaCha20Poly1305Engine(key)
	default:
		return nil, ErrUnsupportedCipher
	}
}

// Suite reports which cipher suite backs the engine.
func (e *AEADEngine) Suite() CipherSuite {
	return e.suite
}

func (e *AEADEngine) Encrypt(nonce, plaintext, ad []byte) ([]byte, error) {
	if len(nonce) != e.NonceSize() {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", e.NonceSize(), len(nonce))
	}
	return e.aead.Seal(nil, nonce, plaintext, ad), nil
}

// Decrypt returns ErrAuthFailed for any ciphertext, nonce or ad mismatch.
func (e *AEADEngine) Decrypt(nonce, ciphertext, ad []byte) ([]byte, error) {
	if len(nonce) != e.NonceSize() {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", e.NonceSize(), len(nonce))
	}

	plaintext, err := e.aead.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

func (e *AEADEngine) NonceSize() int {
	return e.aead.NonceSize()
}

func (e *AEADEngine) Overhead() int {
	return e.aead.Overhead()
}
