package vaultfs

import (
	"errors"
	"io"
)

// DecryptingReader turns a stream of stored chunks into plaintext.
//
// Reads are served from the current chunk only, so a Read may return
// fewer bytes than requested. The stream ends when the source reports
// io.EOF on a chunk boundary. Errors are sticky.
type DecryptingReader struct {
	src     io.Reader
	content *ContentCryptor
	header  *FileHeader
	index   uint64
	path    string

	raw []byte
	buf []byte
	err error
}

// NewDecryptingReader reads chunks from src, which must be positioned at
// the start of chunk offset.
func NewDecryptingReader(src io.Reader, content *ContentCryptor, hdr *FileHeader, offset uint64) *DecryptingReader {
	return &DecryptingReader{
		src:     src,
		content: content,
		header:  hdr,
		index:   offset,
		raw:     make([]byte, content.CiphertextChunkSize()),
	}
}

// WithPath sets the path reported in errors.
func (r *DecryptingReader) WithPath(p string) *DecryptingReader {
	r.path = p
	return r
}

// ChunkIndex returns the index of the next chunk to be decrypted.
func (r *DecryptingReader) ChunkIndex() uint64 {
	return r.index
}

func (r *DecryptingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(r.buf) == 0 {
		if err := r.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *DecryptingReader) fill() error {
	for len(r.buf) == 0 {
		if r.err != nil {
			return r.err
		}
		n, err := io.ReadFull(r.src, r.raw)
		switch {
		case errors.Is(err, io.EOF):
			r.err = io.EOF
			return r.err
		case errors.Is(err, io.ErrUnexpectedEOF):
			// short final chunk
		case err != nil:
			r.err = NewIOError("read", r.path, err)
			return r.err
		}

		plain, err := r.content.DecryptChunk(r.raw[:n], r.index, r.header)
		if err != nil {
			r.err = newChunkAuthError(r.path, r.index, err)
			return r.err
		}
		r.index++
		r.buf = plain
	}
	return nil
}

// Skip decrypts and discards n plaintext bytes. It returns the number of
// bytes skipped, which is less than n only at end of stream or on error.
func (r *DecryptingReader) Skip(n int64) (int64, error) {
	var skipped int64
	for skipped < n {
		if len(r.buf) == 0 {
			if err := r.fill(); err != nil {
				if errors.Is(err, io.EOF) {
					return skipped, nil
				}
				return skipped, err
			}
		}
		step := min(int64(len(r.buf)), n-skipped)
		r.buf = r.buf[step:]
		skipped += step
	}
	return skipped, nil
}

// Close closes the source when it is an io.Closer.
func (r *DecryptingReader) Close() error {
	r.buf = nil
	if r.err == nil {
		r.err = ErrClosed
	}
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
