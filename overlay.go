package vaultfs

import (
	"context"
	"errors"
	"io"
	"path"

	"github.com/sirupsen/logrus"
)

// overlay is the vault-aware wrapper shared by every feature kind. The
// delegate receives storage paths; paths outside the vault pass through.
type overlay[F any] struct {
	vault    *Vault
	registry *Registry
	delegate F
	log      logrus.FieldLogger
}

func newOverlay[F any](r *Registry, v *Vault, delegate F) overlay[F] {
	return overlay[F]{vault: v, registry: r, delegate: delegate, log: v.log}
}

func (o overlay[F]) route(op, source, target string) strategy {
	st := o.vault.route(source, target)
	o.log.WithFields(logrus.Fields{
		"op":     op,
		"source": source,
		"target": target,
		"route":  st.String(),
	}).Debug("vault route")
	return st
}

func (o overlay[F]) encryptPair(source, target string) (string, string, error) {
	src, err := o.vault.Encrypt(source)
	if err != nil {
		return "", "", err
	}
	dst, err := o.vault.Encrypt(target)
	if err != nil {
		return "", "", err
	}
	return src, dst, nil
}

// plain is the byte-level copy whose ends resolve through the registry,
// so each side is encrypted or decrypted by whichever vault governs it.
func (o overlay[F]) plain() *StreamCopy {
	return o.registry.streamCopy(o.vault.session)
}

// vaultFeature builds the overlay of kind F for v around fallback. It
// reports false when F is not a feature kind vaults overlay.
func vaultFeature[F any](r *Registry, v *Vault, fallback F) (F, bool) {
	var f any
	switch any((*F)(nil)).(type) {
	case *ReadFeature:
		d, _ := any(fallback).(ReadFeature)
		f = &cryptoRead{newOverlay(r, v, d)}
	case *WriteFeature:
		d, _ := any(fallback).(WriteFeature)
		f = &cryptoWrite{newOverlay(r, v, d)}
	case *CopyFeature:
		d, _ := any(fallback).(CopyFeature)
		f = &cryptoCopy{newOverlay(r, v, d)}
	case *MoveFeature:
		d, _ := any(fallback).(MoveFeature)
		f = &cryptoMove{newOverlay(r, v, d)}
	case *ListFeature:
		d, _ := any(fallback).(ListFeature)
		f = &cryptoList{newOverlay(r, v, d)}
	case *SearchFeature:
		d, _ := any(fallback).(SearchFeature)
		f = &cryptoSearch{newOverlay(r, v, d)}
	case *DeleteFeature:
		d, _ := any(fallback).(DeleteFeature)
		f = &cryptoDelete{newOverlay(r, v, d)}
	case *DirectoryFeature:
		d, _ := any(fallback).(DirectoryFeature)
		f = &cryptoDirectory{newOverlay(r, v, d)}
	case *AttributesFeature:
		d, _ := any(fallback).(AttributesFeature)
		f = &cryptoAttributes{newOverlay(r, v, d)}
	}
	out, ok := f.(F)
	return out, ok
}

type cryptoRead struct{ overlay[ReadFeature] }

// Read decrypts the file at p. A status offset starts decryption at the
// chunk holding that offset.
func (o *cryptoRead) Read(ctx context.Context, p string, status *Status) (io.ReadCloser, error) {
	if o.route("read", p, p) == passthrough {
		return o.delegate.Read(ctx, p, status)
	}
	if err := ValidateStatus(status); err != nil {
		return nil, err
	}
	enc, err := o.vault.Encrypt(p)
	if err != nil {
		return nil, err
	}
	raw, err := o.delegate.Read(ctx, enc, nil)
	if err != nil {
		return nil, err
	}

	c := o.vault.cryptor
	hdr, err := readHeader(c, p, raw)
	if err != nil {
		raw.Close()
		return nil, err
	}

	var offset, length int64
	if status != nil {
		offset, length = status.Offset, status.Length
	}
	cs := int64(c.ChunkSize())
	chunk := offset / cs
	if chunk > 0 {
		skip := chunk * int64(c.CiphertextChunkSize())
		if err := skipRaw(raw, int64(c.HeaderSize())+skip, skip); err != nil {
			raw.Close()
			return nil, NewIOError("seek", p, err)
		}
	}

	dr := c.NewReader(raw, hdr, uint64(chunk)).WithPath(p)
	if rem := offset - chunk*cs; rem > 0 {
		if _, err := dr.Skip(rem); err != nil {
			dr.Close()
			return nil, err
		}
	}
	if length > 0 {
		return limitReadCloser(dr, length), nil
	}
	return dr, nil
}

func readHeader(c *Cryptor, p string, raw io.Reader) (*FileHeader, error) {
	buf := make([]byte, c.HeaderSize())
	if _, err := io.ReadFull(raw, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, NewHeaderError(p, "missing or truncated header")
		}
		return nil, NewIOError("read", p, err)
	}
	hdr, err := c.Header().Decrypt(buf)
	if err != nil {
		var he *HeaderError
		if errors.As(err, &he) {
			he.Path = p
		}
		return nil, err
	}
	return hdr, nil
}

// skipRaw advances raw to absolute offset abs, discarding rel bytes when
// raw cannot seek.
func skipRaw(raw io.Reader, abs, rel int64) error {
	if s, ok := raw.(io.Seeker); ok {
		_, err := s.Seek(abs, io.SeekStart)
		return err
	}
	_, err := io.CopyN(io.Discard, raw, rel)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

type cryptoWrite struct{ overlay[WriteFeature] }

// Write encrypts into the file at p. The header in status is reused when
// it belongs to p; otherwise a new one is created and recorded in status.
func (o *cryptoWrite) Write(ctx context.Context, p string, status *Status) (io.WriteCloser, error) {
	if o.route("write", p, p) == passthrough {
		return o.delegate.Write(ctx, p, status)
	}
	enc, err := o.vault.Encrypt(p)
	if err != nil {
		return nil, err
	}

	status = status.orNew()
	c := o.vault.cryptor
	var hdr *FileHeader
	if status.headerFor(path.Clean(p)) {
		hdr, err = c.Header().Decrypt(status.Header)
	} else {
		status.headerPath = ""
		hdr, err = newEncryptedHeader(c, status)
		status.headerFor(path.Clean(p))
	}
	if err != nil {
		return nil, err
	}
	if status.Nonces == nil {
		status.Nonces = NewRandomNonceGenerator()
	}

	raw, err := o.delegate.Write(ctx, enc, status)
	if err != nil {
		return nil, err
	}
	if _, err := raw.Write(status.Header); err != nil {
		raw.Close()
		return nil, NewIOError("write", p, err)
	}
	return c.NewWriter(raw, hdr, status.Nonces).WithPath(p), nil
}

// newEncryptedHeader creates a header and stores its encrypted form in status.
func newEncryptedHeader(c *Cryptor, status *Status) (*FileHeader, error) {
	hdr, err := c.Header().Create(status.Nonces)
	if err != nil {
		return nil, err
	}
	status.Header, err = c.Header().Encrypt(hdr)
	if err != nil {
		return nil, err
	}
	return hdr, nil
}
