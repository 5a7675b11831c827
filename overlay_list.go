package vaultfs

import (
	"context"
	"fmt"
	"path"

	"github.com/sirupsen/logrus"
)

type cryptoList struct{ overlay[ListFeature] }

// List lists the encrypted directory for dir and reports plaintext names
// and sizes. Stored names the vault did not produce are skipped.
func (o *cryptoList) List(ctx context.Context, dir string) ([]Entry, error) {
	if o.route("list", dir, dir) == passthrough {
		return o.delegate.List(ctx, dir)
	}
	enc, err := o.vault.Encrypt(dir)
	if err != nil {
		return nil, err
	}
	raw, err := o.delegate.List(ctx, enc)
	if err != nil {
		return nil, err
	}

	dir = path.Clean(dir)
	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		name, err := o.vault.DecryptName(e.Name)
		if err != nil {
			o.log.WithFields(logrus.Fields{"dir": dir, "name": e.Name}).Debug("skipping foreign entry")
			continue
		}
		e.Name, e.Path = name, path.Join(dir, name)
		if !e.IsDir {
			if err := o.cleartextSize(&e); err != nil {
				o.log.WithError(err).WithField("path", e.Path).Warn("stored size is not valid")
				e.Corrupt = true
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// cleartextSize converts e.Size from stored to plaintext bytes. On error
// e is left unchanged.
func (o overlay[F]) cleartextSize(e *Entry) error {
	size, err := o.vault.cryptor.CleartextSize(e.Size)
	if err != nil {
		return fmt.Errorf("%s: %w", e.Path, err)
	}
	e.Size = size
	return nil
}

type cryptoSearch struct{ overlay[SearchFeature] }

// Search walks the vault through the list overlay, so filter and listener
// see plaintext names.
func (o *cryptoSearch) Search(ctx context.Context, workdir string, filter Filter, listener ListListener, cache *Cache) ([]Entry, error) {
	if o.route("search", workdir, workdir) == passthrough {
		return o.delegate.Search(ctx, workdir, filter, listener, cache)
	}
	list := &cryptoList{newOverlay(o.registry, o.vault, o.vault.session.List())}
	return NewWalkSearch(list).Search(ctx, workdir, filter, listener, cache)
}

func (o *cryptoSearch) IsRecursive() bool {
	return o.delegate.IsRecursive()
}

type cryptoDelete struct{ overlay[DeleteFeature] }

func (o *cryptoDelete) Delete(ctx context.Context, p string) error {
	if o.route("delete", p, p) == passthrough {
		return o.delegate.Delete(ctx, p)
	}
	enc, err := o.vault.Encrypt(p)
	if err != nil {
		return err
	}
	return o.delegate.Delete(ctx, enc)
}

type cryptoDirectory struct{ overlay[DirectoryFeature] }

func (o *cryptoDirectory) Mkdir(ctx context.Context, p string) error {
	if o.route("mkdir", p, p) == passthrough {
		return o.delegate.Mkdir(ctx, p)
	}
	enc, err := o.vault.Encrypt(p)
	if err != nil {
		return err
	}
	return o.delegate.Mkdir(ctx, enc)
}

type cryptoAttributes struct{ overlay[AttributesFeature] }

func (o *cryptoAttributes) Stat(ctx context.Context, p string) (Entry, error) {
	if o.route("stat", p, p) == passthrough {
		return o.delegate.Stat(ctx, p)
	}
	enc, err := o.vault.Encrypt(p)
	if err != nil {
		return Entry{}, err
	}
	e, err := o.delegate.Stat(ctx, enc)
	if err != nil {
		return Entry{}, err
	}
	p = path.Clean(p)
	e.Path, e.Name = p, path.Base(p)
	if !e.IsDir {
		if err := o.cleartextSize(&e); err != nil {
			return Entry{}, err
		}
	}
	return e, nil
}
