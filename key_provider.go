package vaultfs

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

const defaultSaltSize = 32

// PasswordKeyProvider implements KeyProvider using password-based key derivation
type PasswordKeyProvider struct {
	password     []byte
	useArgon2id  bool
	pbkdf2Params PBKDF2Params
	argon2Params Argon2idParams
}

// NewPasswordKeyProviderPBKDF2 creates a new password-based key provider using PBKDF2
func NewPasswordKeyProviderPBKDF2(password []byte, params PBKDF2Params) *PasswordKeyProvider {
	if params.Iterations == 0 {
		params.Iterations = 100000
	}
	if params.SaltSize == 0 {
		params.SaltSize = defaultSaltSize
	}
	if params.KeySize == 0 {
		params.KeySize = KeySize
	}

	return &PasswordKeyProvider{
		password:     password,
		pbkdf2Params: params,
	}
}

// NewPasswordKeyProvider creates a new password-based key provider using Argon2id (recommended)
func NewPasswordKeyProvider(password []byte, params Argon2idParams) *PasswordKeyProvider {
	if params.Memory == 0 {
		params.Memory = 64 * 1024 // 64 MB
	}
	if params.Iterations == 0 {
		params.Iterations = 3
	}
	if params.Parallelism == 0 {
		params.Parallelism = 4
	}
	if params.SaltSize == 0 {
		params.SaltSize = defaultSaltSize
	}
	if params.KeySize == 0 {
		params.KeySize = KeySize
	}

	return &PasswordKeyProvider{
		password:     password,
		useArgon2id:  true,
		argon2Params: params,
	}
}

// DeriveKey derives a master key from the password and salt
func (p *PasswordKeyProvider) DeriveKey(salt []byte) ([]byte, error) {
	if len(p.password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	if len(salt) == 0 {
		return nil, errors.New("salt cannot be empty")
	}

	if p.useArgon2id {
		return argon2.IDKey(
			p.password,
			salt,
			p.argon2Params.Iterations,
			p.argon2Params.Memory,
			p.argon2Params.Parallelism,
			uint32(p.argon2Params.KeySize),
		), nil
	}

	var hashFunc func() hash.Hash
	switch p.pbkdf2Params.HashFunc {
	case SHA256:
		hashFunc = sha256.New
	case SHA512:
		hashFunc = sha512.New
	default:
		return nil, fmt.Errorf("unsupported hash function: %v", p.pbkdf2Params.HashFunc)
	}

	return pbkdf2.Key(
		p.password,
		salt,
		p.pbkdf2Params.Iterations,
		p.pbkdf2Params.KeySize,
		hashFunc,
	), nil
}

// GenerateSalt generates a new random salt
func (p *PasswordKeyProvider) GenerateSalt() ([]byte, error) {
	saltSize := p.pbkdf2Params.SaltSize
	if p.useArgon2id {
		saltSize = p.argon2Params.SaltSize
	}
	return randomSalt(saltSize)
}

// RawKeyProvider returns a fixed master key and ignores the salt.
type RawKeyProvider struct {
	key []byte
}

// NewRawKeyProvider wraps a 32-byte master key.
func NewRawKeyProvider(key []byte) (*RawKeyProvider, error) {
	if err := ValidateKey(key, KeySize); err != nil {
		return nil, err
	}
	return &RawKeyProvider{key: append([]byte(nil), key...)}, nil
}

func (r *RawKeyProvider) DeriveKey([]byte) ([]byte, error) {
	return append([]byte(nil), r.key...), nil
}

func (r *RawKeyProvider) GenerateSalt() ([]byte, error) {
	return randomSalt(defaultSaltSize)
}

// EnvKeyProvider reads a hex or base64 encoded master key from an
// environment variable. The salt is ignored.
type EnvKeyProvider struct {
	envVar string
}

// NewEnvKeyProvider creates a new environment variable key provider
func NewEnvKeyProvider(envVar string) *EnvKeyProvider {
	return &EnvKeyProvider{envVar: envVar}
}

func (e *EnvKeyProvider) DeriveKey([]byte) ([]byte, error) {
	encoded := strings.TrimSpace(os.Getenv(e.envVar))
	if encoded == "" {
		return nil, fmt.Errorf("environment variable %s not set", e.envVar)
	}

	key, err := hex.DecodeString(encoded)
	if err != nil {
		key, err = base64.StdEncoding.DecodeString(encoded)
	}
	if err != nil {
		return nil, fmt.Errorf("environment variable %s is neither hex nor base64", e.envVar)
	}
	if err := ValidateKey(key, KeySize); err != nil {
		return nil, err
	}
	return key, nil
}

func (e *EnvKeyProvider) GenerateSalt() ([]byte, error) {
	return randomSalt(defaultSaltSize)
}

// MultiKeyProvider tries several providers when a vault is opened.
// The first provider is used when a vault is created.
type MultiKeyProvider struct {
	providers []KeyProvider
}

// NewMultiKeyProvider creates a new multi-key provider
func NewMultiKeyProvider(providers ...KeyProvider) (*MultiKeyProvider, error) {
	if len(providers) == 0 {
		return nil, ErrNilKeyProvider
	}
	return &MultiKeyProvider{providers: providers}, nil
}

// DeriveKey uses the primary provider
func (m *MultiKeyProvider) DeriveKey(salt []byte) ([]byte, error) {
	return m.providers[0].DeriveKey(salt)
}

// GenerateSalt uses the primary provider
func (m *MultiKeyProvider) GenerateSalt() ([]byte, error) {
	return m.providers[0].GenerateSalt()
}

// Providers returns the providers in the order they are tried.
func (m *MultiKeyProvider) Providers() []KeyProvider {
	return m.providers
}

func randomSalt(size int) ([]byte, error) {
	salt := make([]byte, size)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Subkey labels. Changing one makes every existing vault unreadable.
const (
	headerKeyInfo = "vaultfs header key v1"
	nameKeyInfo   = "vaultfs name key v1"
	checkKeyInfo  = "vaultfs key check v1"
)

func deriveSubkey(master []byte, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive %s: %w", info, err)
	}
	return key, nil
}
