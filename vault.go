package vaultfs

import (
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DataDirName is the directory below a vault root holding ciphertext.
const DataDirName = "d"

// Vault maps a plaintext subtree of a session onto encrypted storage
// below the same root. A Vault is immutable and safe for concurrent use.
type Vault struct {
	id      uuid.UUID
	root    string
	session *Session
	cryptor *Cryptor
	names   *nameCipher
	log     logrus.FieldLogger
}

// NewVault builds a vault rooted at root from an unlocked master key.
// It does not touch storage; see CreateVault and OpenVault.
func NewVault(s *Session, root string, masterKey []byte, cfg *Config) (*Vault, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateKey(masterKey, KeySize); err != nil {
		return nil, err
	}
	root, err := CleanPath(root)
	if err != nil {
		return nil, err
	}

	headerKey, err := deriveSubkey(masterKey, headerKeyInfo, KeySize)
	if err != nil {
		return nil, err
	}
	nameKey, err := deriveSubkey(masterKey, nameKeyInfo, 2*KeySize)
	if err != nil {
		return nil, err
	}
	cryptor, err := NewCryptor(cfg.Cipher, headerKey, cfg.chunkSize())
	if err != nil {
		return nil, err
	}
	names, err := newNameCipher(nameKey)
	if err != nil {
		return nil, err
	}

	return &Vault{
		id:      uuid.New(),
		root:    root,
		session: s,
		cryptor: cryptor,
		names:   names,
		log:     cfg.logger().WithFields(logrus.Fields{"vault": root}),
	}, nil
}

func (v *Vault) ID() uuid.UUID { return v.id }
func (v *Vault) Root() string { return v.root }
func (v *Vault) Session() *Session { return v.session }
func (v *Vault) Cryptor() *Cryptor { return v.cryptor }

// DataRoot is the storage directory the vault root encrypts to.
func (v *Vault) DataRoot() string {
	return path.Join(v.root, DataDirName)
}

// Contains reports whether p lies in the vault's subtree. The root
// itself is contained; "/vaultx" is not contained by "/vault".
func (v *Vault) Contains(p string) bool {
	if !strings.HasPrefix(p, "/") {
		return false
	}
	p = path.Clean(p)
	if v.root == "/" || p == v.root {
		return true
	}
	return strings.HasPrefix(p, v.root+"/")
}

// Encrypt maps a contained plaintext path to its storage path.
func (v *Vault) Encrypt(p string) (string, error) {
	if !v.Contains(p) {
		return "", &PathError{Path: p, Message: "not inside vault " + v.root, Err: ErrNotInVault}
	}
	rel := strings.TrimPrefix(path.Clean(p), v.root)

	var b strings.Builder
	b.WriteString(v.DataRoot())
	for _, name := range strings.Split(rel, "/") {
		if name == "" {
			continue
		}
		enc, err := v.names.encrypt(name)
		if err != nil {
			return "", err
		}
		b.WriteByte('/')
		b.WriteString(enc)
	}
	return b.String(), nil
}

// Decrypt maps a storage path below DataRoot back to its plaintext path.
func (v *Vault) Decrypt(p string) (string, error) {
	p = path.Clean(p)
	data := v.DataRoot()
	if p != data && !strings.HasPrefix(p, data+"/") {
		return "", &PathError{Path: p, Message: "not below " + data, Err: ErrNotInVault}
	}

	plain := v.root
	for _, name := range strings.Split(strings.TrimPrefix(p, data), "/") {
		if name == "" {
			continue
		}
		dec, err := v.names.decrypt(name)
		if err != nil {
			return "", err
		}
		plain = path.Join(plain, dec)
	}
	return plain, nil
}

// EncryptName encrypts a single path component.
func (v *Vault) EncryptName(name string) (string, error) {
	return v.names.encrypt(name)
}

// DecryptName decrypts a single stored path component.
func (v *Vault) DecryptName(name string) (string, error) {
	return v.names.decrypt(name)
}

type strategy int

const (
	passthrough strategy = iota // no path in this vault
	sameVault                   // every path in this vault
	encrypting                  // only the target in this vault
	decrypting                  // only the source in this vault
)

func (s strategy) String() string {
	switch s {
	case sameVault:
		return "same-vault"
	case encrypting:
		return "encrypt"
	case decrypting:
		return "decrypt"
	default:
		return "passthrough"
	}
}

// route decides how an operation from source to target crosses this
// vault. Single path operations pass the same path twice.
func (v *Vault) route(source, target string) strategy {
	src, dst := v.Contains(source), v.Contains(target)
	switch {
	case src && dst:
		return sameVault
	case dst:
		return encrypting
	case src:
		return decrypting
	default:
		return passthrough
	}
}
