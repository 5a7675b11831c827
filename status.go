package vaultfs

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Status carries per-operation state between the component that starts
// an operation and the one that performs the storage write.
//
// A Status belongs to one logical transfer of one file.
type Status struct {
	// ID identifies the operation in logs.
	ID uuid.UUID

	// Offset and Length select a plaintext window for resumed reads.
	// A zero Length reads to the end.
	Offset int64
	Length int64

	// Header is the encrypted file header the writer must use. When nil,
	// a vault write creates one and stores it here. A header is bound to
	// the first file written with it; a write to any other file gets a
	// fresh header.
	Header []byte

	// Nonces supplies chunk nonces for the writer. When nil, a vault
	// write attaches a fresh RandomNonceGenerator.
	Nonces NonceGenerator

	headerPath  string
	transferred atomic.Int64
}

// NewStatus returns a status with a fresh operation id.
func NewStatus() *Status {
	return &Status{ID: uuid.New()}
}

// Transferred returns the number of plaintext bytes moved so far.
func (s *Status) Transferred() int64 {
	return s.transferred.Load()
}

func (s *Status) addTransferred(n int64) {
	s.transferred.Add(n)
}

// resetHeader drops the header and nonce source so the next vault write
// starts a new file.
func (s *Status) resetHeader() {
	s.Header = nil
	s.Nonces = nil
	s.headerPath = ""
}

// headerFor reports whether Header may be used for the file at p and
// binds an unbound header to p.
func (s *Status) headerFor(p string) bool {
	if s.Header == nil {
		return false
	}
	if s.headerPath == "" {
		s.headerPath = p
	}
	return s.headerPath == p
}

// orNew returns s, or a fresh status when s is nil.
func (s *Status) orNew() *Status {
	if s == nil {
		return NewStatus()
	}
	return s
}
