package vaultfs

import (
	"fmt"
	"io"
)

// Cryptor bundles the codecs a vault uses for file content.
type Cryptor struct {
	suite   CipherSuite
	header  *HeaderCryptor
	content *ContentCryptor
}

// NewCryptor builds a content engine. headerKey seals file headers.
func NewCryptor(suite CipherSuite, headerKey []byte, chunkSize int) (*Cryptor, error) {
	header, err := NewHeaderCryptor(suite, headerKey)
	if err != nil {
		return nil, err
	}
	content, err := NewContentCryptor(chunkSize)
	if err != nil {
		return nil, err
	}
	return &Cryptor{suite: suite.resolve(), header: header, content: content}, nil
}

func (c *Cryptor) Suite() CipherSuite { return c.suite }
func (c *Cryptor) Header() *HeaderCryptor { return c.header }
func (c *Cryptor) Content() *ContentCryptor { return c.content }
func (c *Cryptor) ChunkSize() int { return c.content.CleartextChunkSize() }
func (c *Cryptor) CiphertextChunkSize() int { return c.content.CiphertextChunkSize() }
func (c *Cryptor) HeaderSize() int { return c.header.Size() }

// CiphertextSize returns the stored size of a file holding n cleartext bytes.
func (c *Cryptor) CiphertextSize(n int64) int64 {
	cs := int64(c.ChunkSize())
	full, rem := n/cs, n%cs
	size := int64(c.HeaderSize()) + full*int64(c.CiphertextChunkSize())
	if rem > 0 {
		size += rem + ChunkOverhead
	}
	return size
}

// CleartextSize inverts CiphertextSize. Sizes no writer could produce are
// rejected.
func (c *Cryptor) CleartextSize(n int64) (int64, error) {
	body := n - int64(c.HeaderSize())
	if body < 0 {
		return 0, NewHeaderError("", fmt.Sprintf("file of %d bytes cannot hold a header", n))
	}
	ccs := int64(c.CiphertextChunkSize())
	full, rem := body/ccs, body%ccs
	if rem > 0 && rem <= ChunkOverhead {
		return 0, NewValidationError("size", n, "trailing chunk is shorter than its overhead")
	}
	size := full * int64(c.ChunkSize())
	if rem > 0 {
		size += rem - ChunkOverhead
	}
	return size, nil
}

// NewReader decrypts chunks read from src, starting at chunk index offset.
func (c *Cryptor) NewReader(src io.Reader, hdr *FileHeader, offset uint64) *DecryptingReader {
	return NewDecryptingReader(src, c.content, hdr, offset)
}

// NewWriter encrypts plaintext into dst. The header must already be written.
func (c *Cryptor) NewWriter(dst io.Writer, hdr *FileHeader, nonces NonceGenerator) *EncryptingWriter {
	return NewEncryptingWriter(dst, c.content, hdr, nonces)
}
