package vaultfs

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// CipherSuite represents the content encryption algorithm of a vault
type CipherSuite uint8

const (
	// CipherAuto selects the default cipher when a vault is created
	CipherAuto CipherSuite = iota
	// CipherAES256GCM uses AES-256 with Galois/Counter Mode
	CipherAES256GCM
	// CipherChaCha20Poly1305 uses ChaCha20 stream cipher with Poly1305 MAC
	CipherChaCha20Poly1305
)

// String returns the string representation of the cipher suite
func (c CipherSuite) String() string {
	switch c {
	case CipherAuto:
		return "auto"
	case CipherAES256GCM:
		return "aes-256-gcm"
	case CipherChaCha20Poly1305:
		return "chacha20-poly1305"
	default:
		return "unknown"
	}
}

// resolve maps CipherAuto to the concrete default suite.
func (c CipherSuite) resolve() CipherSuite {
	if c == CipherAuto {
		return CipherAES256GCM
	}
	return c
}

// ParseCipherSuite parses the names produced by CipherSuite.String.
func ParseCipherSuite(name string) (CipherSuite, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return CipherAuto, nil
	case "aes-256-gcm", "aes":
		return CipherAES256GCM, nil
	case "chacha20-poly1305", "chacha":
		return CipherChaCha20Poly1305, nil
	}
	return CipherAuto, NewValidationError("cipher", name, ErrUnsupportedCipher.Error())
}

// HashFunc represents hash function types for PBKDF2
type HashFunc uint8

const (
	// SHA256 hash function
	SHA256 HashFunc = iota
	// SHA512 hash function
	SHA512
)

// PBKDF2Params contains parameters for PBKDF2 key derivation
type PBKDF2Params struct {
	Iterations int      // Number of iterations (minimum 100,000 recommended)
	HashFunc   HashFunc // Hash function to use
	SaltSize   int      // Salt size in bytes (default 32)
	KeySize    int      // Derived key size in bytes (default 32)
}

// Argon2idParams contains parameters for Argon2id key derivation
type Argon2idParams struct {
	Memory      uint32 // Memory in KiB (e.g., 64*1024 for 64MB)
	Iterations  uint32 // Number of iterations (time parameter)
	Parallelism uint8  // Degree of parallelism
	SaltSize    int    // Salt size in bytes (default 32)
	KeySize     int    // Derived key size in bytes (default 32)
}

// Config holds the settings used when a vault is created or unlocked.
type Config struct {
	// Cipher suite for new vaults. Opened vaults use the suite recorded
	// in their descriptor.
	Cipher CipherSuite

	// ChunkSize is the plaintext size of one content chunk.
	ChunkSize int

	// Logger receives registry and overlay diagnostics. Nil discards.
	Logger logrus.FieldLogger

	// Parallel controls the worker pool used by Verify.
	Parallel ParallelConfig
}

// DefaultConfig returns a configuration with the default cipher and chunk size.
func DefaultConfig() *Config {
	return &Config{
		Cipher:    CipherAES256GCM,
		ChunkSize: DefaultChunkSize,
		Parallel:  DefaultParallelConfig(),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	switch c.Cipher {
	case CipherAuto, CipherAES256GCM, CipherChaCha20Poly1305:
	default:
		return NewValidationError("cipher", c.Cipher, ErrUnsupportedCipher.Error())
	}
	if c.ChunkSize != 0 {
		if err := ValidateChunkSize(c.ChunkSize); err != nil {
			return err
		}
	}
	return c.Parallel.Validate()
}

func (c *Config) chunkSize() int {
	if c == nil || c.ChunkSize == 0 {
		return DefaultChunkSize
	}
	return c.ChunkSize
}

func (c *Config) logger() logrus.FieldLogger {
	if c == nil {
		return discardLogger()
	}
	return loggerOrDiscard(c.Logger)
}

func loggerOrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l != nil {
		return l
	}
	return discardLogger()
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// KeyProvider is an interface for providing vault master keys
type KeyProvider interface {
	// DeriveKey derives a master key from the given salt
	DeriveKey(salt []byte) ([]byte, error)

	// GenerateSalt generates a new random salt
	GenerateSalt() ([]byte, error)
}
