package vaultfs

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DescriptorName is the file below a vault root describing the vault.
const DescriptorName = "vault.json"

const descriptorVersion = 1

// Descriptor is the plaintext metadata stored next to a vault's data.
// Check authenticates the derived master key against the other fields.
type Descriptor struct {
	Version   int    `json:"version"`
	ID        string `json:"id"`
	Cipher    string `json:"cipher"`
	ChunkSize int    `json:"chunk_size"`
	Salt      string `json:"salt"`
	Check     string `json:"check"`
}

// CreateVault initialises a new vault at root: it writes the descriptor,
// creates the data directory and returns the unlocked vault.
func CreateVault(s *Session, root string, kp KeyProvider, cfg *Config) (*Vault, error) {
	if kp == nil {
		return nil, ErrNilKeyProvider
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	root, err := CleanPath(root)
	if err != nil {
		return nil, err
	}
	fs := s.FS()
	descPath := path.Join(root, DescriptorName)
	if _, err := fs.Stat(descPath); err == nil {
		return nil, fmt.Errorf("%s: %w", root, ErrVaultExists)
	}

	salt, err := kp.GenerateSalt()
	if err != nil {
		return nil, err
	}
	master, err := kp.DeriveKey(salt)
	if err != nil {
		return nil, err
	}

	vcfg := *cfg
	vcfg.Cipher = cfg.Cipher.resolve()
	vcfg.ChunkSize = cfg.chunkSize()
	v, err := NewVault(s, root, master, &vcfg)
	if err != nil {
		return nil, err
	}

	desc := Descriptor{
		Version:   descriptorVersion,
		ID:        v.id.String(),
		Cipher:    vcfg.Cipher.String(),
		ChunkSize: vcfg.ChunkSize,
		Salt:      base64.StdEncoding.EncodeToString(salt),
	}
	check, err := desc.checksum(master)
	if err != nil {
		return nil, err
	}
	desc.Check = base64.StdEncoding.EncodeToString(check)

	if err := fs.MkdirAll(v.DataRoot(), 0o755); err != nil {
		return nil, NewIOError("mkdir", v.DataRoot(), err)
	}
	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := writeFile(s, descPath, data); err != nil {
		return nil, err
	}

	v.log.WithFields(logrus.Fields{"id": desc.ID, "cipher": desc.Cipher}).Info("vault created")
	return v, nil
}

// OpenVault unlocks the vault at root. A key that does not match the
// descriptor yields an *AuthenticationError. A *MultiKeyProvider has
// each of its providers tried in order.
func OpenVault(s *Session, root string, kp KeyProvider, cfg *Config) (*Vault, error) {
	if kp == nil {
		return nil, ErrNilKeyProvider
	}
	root, err := CleanPath(root)
	if err != nil {
		return nil, err
	}
	desc, err := ReadDescriptor(s, root)
	if err != nil {
		return nil, err
	}
	if desc.Version > descriptorVersion {
		return nil, fmt.Errorf("descriptor version %d: %w", desc.Version, ErrUnsupportedVersion)
	}
	id, err := uuid.Parse(desc.ID)
	if err != nil {
		return nil, NewValidationError("id", desc.ID, "not a uuid")
	}
	suite, err := ParseCipherSuite(desc.Cipher)
	if err != nil {
		return nil, err
	}
	salt, err := base64.StdEncoding.DecodeString(desc.Salt)
	if err != nil {
		return nil, NewValidationError("salt", desc.Salt, "not base64")
	}
	check, err := base64.StdEncoding.DecodeString(desc.Check)
	if err != nil {
		return nil, NewValidationError("check", desc.Check, "not base64")
	}

	providers := []KeyProvider{kp}
	if m, ok := kp.(*MultiKeyProvider); ok {
		providers = m.Providers()
	}

	var master []byte
	for _, p := range providers {
		key, err := p.DeriveKey(salt)
		if err != nil {
			continue
		}
		want, err := desc.checksum(key)
		if err == nil && hmac.Equal(want, check) {
			master = key
			break
		}
	}
	if master == nil {
		return nil, NewAuthenticationError(path.Join(root, DescriptorName), ErrInvalidKey)
	}

	vcfg := Config{Cipher: suite, ChunkSize: desc.ChunkSize}
	if cfg != nil {
		vcfg.Logger = cfg.Logger
		vcfg.Parallel = cfg.Parallel
	}
	v, err := NewVault(s, root, master, &vcfg)
	if err != nil {
		return nil, err
	}
	v.id = id
	v.log.WithField("id", desc.ID).Debug("vault unlocked")
	return v, nil
}

// ReadDescriptor loads the descriptor of the vault at root.
func ReadDescriptor(s *Session, root string) (*Descriptor, error) {
	p := path.Join(root, DescriptorName)
	f, err := s.FS().Open(p)
	if err != nil {
		return nil, NewIOError("open", p, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, NewIOError("read", p, err)
	}
	var desc Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, &ValidationError{Field: "descriptor", Message: "malformed " + DescriptorName, Err: err}
	}
	return &desc, nil
}

// IsVault reports whether root holds a vault descriptor.
func IsVault(s *Session, root string) bool {
	_, err := s.FS().Stat(path.Join(root, DescriptorName))
	return err == nil
}

func (d *Descriptor) checksum(master []byte) ([]byte, error) {
	key, err := deriveSubkey(master, checkKeyInfo, KeySize)
	if err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%d\x00%s\x00%s\x00", d.Version, d.ID, d.Cipher)
	var size [8]byte
	binary.BigEndian.PutUint64(size[:], uint64(d.ChunkSize))
	mac.Write(size[:])
	mac.Write([]byte(d.Salt))
	return mac.Sum(nil), nil
}

func writeFile(s *Session, p string, data []byte) error {
	f, err := s.FS().OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return NewIOError("create", p, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return NewIOError("write", p, err)
	}
	if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return NewIOError("close", p, err)
	}
	return nil
}
