// Package vaultfs overlays encrypted vaults on an AbsFs filesystem.
//
// # Overview
//
// A vault is a subtree of a storage session whose file contents and
// path components are stored encrypted. Callers work with plaintext
// paths through features (read, write, copy, move, list, search,
// delete, mkdir, stat). A Registry resolves the vault governing each
// path and hands back either the vault overlay of a feature or the
// session's own implementation.
//
// # Basic Usage
//
//	base, _ := memfs.NewFS()
//	session := vaultfs.NewSession(base)
//
//	kp := vaultfs.NewPasswordKeyProvider([]byte("correct horse"), vaultfs.Argon2idParams{})
//	vault, err := vaultfs.CreateVault(session, "/vault", kp, vaultfs.DefaultConfig())
//	if err != nil {
//	    panic(err)
//	}
//
//	registry := vaultfs.NewRegistry(nil)
//	registry.Add(vault)
//
//	// Plaintext in, ciphertext stored below /vault/d
//	err = registry.Copy(session).Copy(ctx, "/notes.txt", "/vault/notes.txt", vaultfs.NewStatus())
//
// # Supported Cipher Suites
//
//   - AES-256-GCM
//   - ChaCha20-Poly1305
//
// Names are encrypted with AES-SIV so the same plaintext name always maps
// to the same stored name.
//
// # File Format
//
// A stored file is an encrypted header followed by chunks:
//   - Header: magic "VLTH", version, cipher, nonce and the sealed
//     header nonce and content key
//   - Chunk: nonce (12 bytes), ciphertext, tag (16 bytes)
//
// Each chunk authenticates its index and the header nonce, so chunks
// cannot be reordered, truncated from the middle or moved between files.
//
// # Vault Layout
//
//	/vault/vault.json   descriptor: id, cipher, chunk size, salt, key check
//	/vault/d/...        encrypted tree
//
// The vaultfs command in cmd/vaultfs exposes the same operations on a
// local directory tree.
//
// # Security Considerations
//
// Not Protected Against:
//   - Metadata leakage (file sizes, directory shape, access patterns)
//   - Truncation of a file at a chunk boundary
//   - Memory dumps while files are decrypted in memory
package vaultfs
