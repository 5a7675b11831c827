package vaultfs

import (
	"io"
)

// EncryptingWriter buffers plaintext into chunks and writes each sealed
// chunk to the sink. Close seals the final partial chunk.
type EncryptingWriter struct {
	dst     io.Writer
	content *ContentCryptor
	header  *FileHeader
	nonces  NonceGenerator
	index   uint64
	path    string

	buf    []byte
	err    error
	closed bool
}

// NewEncryptingWriter writes chunks starting at index 0. A nil nonces
// uses a fresh RandomNonceGenerator.
func NewEncryptingWriter(dst io.Writer, content *ContentCryptor, hdr *FileHeader, nonces NonceGenerator) *EncryptingWriter {
	if nonces == nil {
		nonces = NewRandomNonceGenerator()
	}
	return &EncryptingWriter{
		dst:     dst,
		content: content,
		header:  hdr,
		nonces:  nonces,
		buf:     make([]byte, 0, content.CleartextChunkSize()),
	}
}

// WithPath sets the path reported in errors.
func (w *EncryptingWriter) WithPath(p string) *EncryptingWriter {
	w.path = p
	return w
}

// ChunkIndex returns the index the next flushed chunk will carry.
func (w *EncryptingWriter) ChunkIndex() uint64 {
	return w.index
}

func (w *EncryptingWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if w.err != nil {
		return 0, w.err
	}
	var written int
	for len(p) > 0 {
		take := min(cap(w.buf)-len(w.buf), len(p))
		w.buf = append(w.buf, p[:take]...)
		p = p[take:]
		written += take
		if len(w.buf) == cap(w.buf) {
			if err := w.flush(); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

func (w *EncryptingWriter) flush() error {
	sealed, err := w.content.EncryptChunk(w.buf, w.index, w.header, w.nonces)
	if err != nil {
		w.err = err
		return err
	}
	if _, err := w.dst.Write(sealed); err != nil {
		w.err = NewIOError("write", w.path, err)
		return w.err
	}
	w.index++
	w.buf = w.buf[:0]
	return nil
}

// Close flushes pending plaintext and closes the sink when it is an io.Closer.
func (w *EncryptingWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var err error
	if w.err == nil && len(w.buf) > 0 {
		err = w.flush()
	}
	if c, ok := w.dst.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = NewIOError("close", w.path, cerr)
		}
	}
	if err == nil {
		err = w.err
	}
	return err
}
