package vaultfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Encrypted header layout:
//
//	magic (4, little endian) | version (1) | cipher (1) | nonce (12) |
//	AEAD(headerKey, headerNonce | contentKey, ad = first 6 bytes)
const (
	// HeaderMagic identifies vault file headers (ASCII "VLTH" on disk)
	HeaderMagic = uint32(0x48544C56)

	// HeaderVersion is the current header format version
	HeaderVersion = uint8(1)

	// HeaderNonceSize is the size of the per-file nonce bound into every chunk
	HeaderNonceSize = 12

	headerPrefixSize = 4 + 1 + 1
	aeadNonceSize    = 12
	aeadTagSize      = 16
	headerPayload    = HeaderNonceSize + KeySize

	// EncryptedHeaderSize is the stored size of a header
	EncryptedHeaderSize = headerPrefixSize + aeadNonceSize + headerPayload + aeadTagSize
)

// FileHeader is the per-file key material every chunk is bound to.
type FileHeader struct {
	Nonce      []byte // HeaderNonceSize bytes, part of every chunk's ad
	ContentKey []byte // KeySize bytes

	engine CipherEngine
}

// HeaderCryptor creates, encrypts and decrypts file headers.
type HeaderCryptor struct {
	suite  CipherSuite
	engine CipherEngine
	nonces NonceGenerator
}

// NewHeaderCryptor builds a header codec sealing headers under headerKey.
func NewHeaderCryptor(suite CipherSuite, headerKey []byte) (*HeaderCryptor, error) {
	suite = suite.resolve()
	engine, err := NewCipherEngine(suite, headerKey)
	if err != nil {
		return nil, fmt.Errorf("header cipher: %w", err)
	}
	return &HeaderCryptor{
		suite:  suite,
		engine: engine,
		nonces: NewRandomNonceGenerator(),
	}, nil
}

// Create returns a header with a fresh nonce and content key drawn from nonces.
func (h *HeaderCryptor) Create(nonces NonceGenerator) (*FileHeader, error) {
	if nonces == nil {
		nonces = h.nonces
	}
	nonce, err := nonces.NextNonce(HeaderNonceSize)
	if err != nil {
		return nil, err
	}
	key, err := nonces.NextNonce(KeySize)
	if err != nil {
		return nil, err
	}
	return h.newHeader(nonce, key)
}

func (h *HeaderCryptor) newHeader(nonce, key []byte) (*FileHeader, error) {
	engine, err := NewCipherEngine(h.suite, key)
	if err != nil {
		return nil, err
	}
	return &FileHeader{Nonce: nonce, ContentKey: key, engine: engine}, nil
}

// Size returns the stored size of an encrypted header.
func (h *HeaderCryptor) Size() int {
	return EncryptedHeaderSize
}

// Encrypt seals hdr into its stored form.
func (h *HeaderCryptor) Encrypt(hdr *FileHeader) ([]byte, error) {
	if hdr == nil || len(hdr.Nonce) != HeaderNonceSize || len(hdr.ContentKey) != KeySize {
		return nil, NewValidationError("header", nil, "header nonce or content key has the wrong size")
	}

	buf := new(bytes.Buffer)
	buf.Grow(EncryptedHeaderSize)
	if err := binary.Write(buf, binary.LittleEndian, HeaderMagic); err != nil {
		return nil, fmt.Errorf("failed to write magic bytes: %w", err)
	}
	buf.WriteByte(HeaderVersion)
	buf.WriteByte(byte(h.suite))
	prefix := append([]byte(nil), buf.Bytes()...)

	nonce, err := h.nonces.NextNonce(h.engine.NonceSize())
	if err != nil {
		return nil, err
	}
	payload := make([]byte, 0, headerPayload)
	payload = append(payload, hdr.Nonce...)
	payload = append(payload, hdr.ContentKey...)

	sealed, err := h.engine.Encrypt(nonce, payload, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to seal header: %w", err)
	}
	buf.Write(nonce)
	buf.Write(sealed)
	return buf.Bytes(), nil
}

// Decrypt parses and authenticates a stored header. Every failure is a
// *HeaderError.
func (h *HeaderCryptor) Decrypt(data []byte) (*FileHeader, error) {
	if len(data) < EncryptedHeaderSize {
		return nil, NewHeaderError("", fmt.Sprintf("header too short: %d bytes", len(data)))
	}
	data = data[:EncryptedHeaderSize]

	if binary.LittleEndian.Uint32(data[:4]) != HeaderMagic {
		return nil, NewHeaderError("", "bad magic bytes")
	}
	if data[4] > HeaderVersion {
		return nil, &HeaderError{Message: fmt.Sprintf("version %d", data[4]), Err: fmt.Errorf("%w: %w", ErrInvalidHeader, ErrUnsupportedVersion)}
	}
	if CipherSuite(data[5]) != h.suite {
		return nil, NewHeaderError("", fmt.Sprintf("header cipher %s does not match vault cipher %s",
			CipherSuite(data[5]), h.suite))
	}

	nonce := data[headerPrefixSize : headerPrefixSize+aeadNonceSize]
	payload, err := h.engine.Decrypt(nonce, data[headerPrefixSize+aeadNonceSize:], data[:headerPrefixSize])
	if err != nil {
		return nil, &HeaderError{Message: "header authentication failed", Err: fmt.Errorf("%w: %w", ErrInvalidHeader, err)}
	}
	return h.newHeader(payload[:HeaderNonceSize], payload[HeaderNonceSize:])
}
