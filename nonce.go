package vaultfs

import (
	"crypto/rand"
	"fmt"
	"io"
)

// NonceGenerator supplies nonces and fresh key material for headers and chunks.
type NonceGenerator interface {
	// NextNonce returns size unpredictable bytes that are never handed out twice.
	NextNonce(size int) ([]byte, error)
}

// RandomNonceGenerator draws from the process CSPRNG.
type RandomNonceGenerator struct {
	src io.Reader
}

// NewRandomNonceGenerator returns a generator backed by crypto/rand.
func NewRandomNonceGenerator() *RandomNonceGenerator {
	return &RandomNonceGenerator{src: rand.Reader}
}

func (g *RandomNonceGenerator) NextNonce(size int) ([]byte, error) {
	nonce := make([]byte, size)
	if _, err := io.ReadFull(g.src, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}
