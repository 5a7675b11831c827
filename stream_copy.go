package vaultfs

import (
	"context"
	"errors"
	"io"
	"path"
)

const copyBufferSize = 32 * 1024

// StreamCopy copies by reading the source through one set of features and
// writing the target through another. It never looks at the bytes, so
// it works across any encryption boundary the features implement.
type StreamCopy struct {
	read      ReadFeature
	write     WriteFeature
	list      ListFeature
	dir       DirectoryFeature
	attrs     AttributesFeature
	recursive bool
}

// NewStreamCopy returns a byte-level copy. When recursive is false a
// directory source only creates the target directory.
func NewStreamCopy(read ReadFeature, write WriteFeature, list ListFeature, dir DirectoryFeature, attrs AttributesFeature, recursive bool) *StreamCopy {
	return &StreamCopy{
		read:      read,
		write:     write,
		list:      list,
		dir:       dir,
		attrs:     attrs,
		recursive: recursive,
	}
}

func (c *StreamCopy) IsRecursive(string, string) bool { return c.recursive }

func (c *StreamCopy) IsSupported(source, target string) bool {
	return source != target
}

// Copy copies source to target. Status is used for the top level file
// only; files below a copied directory get a status of their own.
func (c *StreamCopy) Copy(ctx context.Context, source, target string, status *Status) error {
	e, err := c.attrs.Stat(ctx, source)
	if err != nil {
		return err
	}
	if !e.IsDir {
		return c.copyFile(ctx, source, target, status)
	}

	if err := c.dir.Mkdir(ctx, target); err != nil {
		return err
	}
	if !c.recursive {
		return nil
	}
	children, err := c.list.List(ctx, source)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := c.Copy(ctx, child.Path, path.Join(target, child.Name), NewStatus()); err != nil {
			return err
		}
	}
	return nil
}

func (c *StreamCopy) copyFile(ctx context.Context, source, target string, status *Status) error {
	status = status.orNew()
	r, err := c.read.Read(ctx, source, status)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := c.write.Write(ctx, target, status)
	if err != nil {
		return err
	}
	if err := copyWithContext(ctx, w, r, status); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// copyWithContext copies src to dst and checks ctx between buffers.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader, status *Status) error {
	buf := make([]byte, copyBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return err
			}
			status.addTransferred(int64(n))
		}
		if errors.Is(rerr, io.EOF) {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

// CopyTree copies source to target with cf, walking directories itself
// when cf is not recursive for the pair.
func CopyTree(ctx context.Context, cf CopyFeature, list ListFeature, attrs AttributesFeature, source, target string) error {
	if cf.IsRecursive(source, target) {
		return cf.Copy(ctx, source, target, NewStatus())
	}
	e, err := attrs.Stat(ctx, source)
	if err != nil {
		return err
	}
	if err := cf.Copy(ctx, source, target, NewStatus()); err != nil {
		return err
	}
	if !e.IsDir {
		return nil
	}
	children, err := list.List(ctx, source)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := CopyTree(ctx, cf, list, attrs, child.Path, path.Join(target, child.Name)); err != nil {
			return err
		}
	}
	return nil
}
