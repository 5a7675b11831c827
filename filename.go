package vaultfs

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncryptedNameSuffix marks names produced by the name cipher.
const EncryptedNameSuffix = ".vlt"

var nameEncoding = base64.RawURLEncoding

// nameCipher encrypts single path components with AES-SIV, so equal
// names always map to equal ciphertext names.
type nameCipher struct {
	siv *SIVEngine
}

func newNameCipher(key []byte) (*nameCipher, error) {
	siv, err := NewSIVEngine(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create SIV engine: %w", err)
	}
	return &nameCipher{siv: siv}, nil
}

func (n *nameCipher) encrypt(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return "", NewValidationError("name", name, "not a single path component")
	}
	sealed, err := n.siv.Encrypt([]byte(name))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt name: %w", err)
	}
	return nameEncoding.EncodeToString(sealed) + EncryptedNameSuffix, nil
}

func (n *nameCipher) decrypt(name string) (string, error) {
	encoded, ok := strings.CutSuffix(name, EncryptedNameSuffix)
	if !ok {
		return "", &PathError{Path: name, Message: "missing " + EncryptedNameSuffix + " suffix", Err: ErrInvalidName}
	}
	sealed, err := nameEncoding.DecodeString(encoded)
	if err != nil {
		return "", &PathError{Path: name, Message: "bad encoding", Err: ErrInvalidName}
	}
	plain, err := n.siv.Decrypt(sealed)
	if err != nil {
		return "", &PathError{Path: name, Message: "name authentication failed", Err: err}
	}
	return string(plain), nil
}
