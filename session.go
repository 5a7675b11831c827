package vaultfs

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"sort"

	"github.com/absfs/absfs"
	"github.com/google/uuid"
)

// Session is one connection to a storage backend. Its features operate
// on storage paths directly and know nothing about vaults.
type Session struct {
	id uuid.UUID
	fs absfs.FileSystem
}

// NewSession wraps a filesystem.
func NewSession(fs absfs.FileSystem) *Session {
	return &Session{id: uuid.New(), fs: fs}
}

func (s *Session) ID() uuid.UUID { return s.id }
func (s *Session) FS() absfs.FileSystem { return s.fs }
func (s *Session) Read() ReadFeature { return sessionRead{s} }
func (s *Session) Write() WriteFeature { return sessionWrite{s} }
func (s *Session) Move() MoveFeature { return sessionMove{s} }
func (s *Session) List() ListFeature { return sessionList{s} }
func (s *Session) Delete() DeleteFeature { return sessionDelete{s} }
func (s *Session) Search() SearchFeature { return NewWalkSearch(s.List()) }
func (s *Session) Directory() DirectoryFeature { return sessionDirectory{s} }
func (s *Session) Attributes() AttributesFeature { return sessionAttributes{s} }

// Copy returns a recursive storage-side copy.
func (s *Session) Copy() CopyFeature {
	return NewStreamCopy(s.Read(), s.Write(), s.List(), s.Directory(), s.Attributes(), true)
}

type sessionRead struct{ s *Session }

func (f sessionRead) Read(ctx context.Context, p string, status *Status) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateStatus(status); err != nil {
		return nil, err
	}
	file, err := f.s.fs.Open(p)
	if err != nil {
		return nil, NewIOError("open", p, err)
	}
	if status == nil {
		return file, nil
	}
	if status.Offset > 0 {
		if _, err := file.Seek(status.Offset, io.SeekStart); err != nil {
			file.Close()
			return nil, NewIOError("seek", p, err)
		}
	}
	if status.Length > 0 {
		return limitReadCloser(file, status.Length), nil
	}
	return file, nil
}

type sessionWrite struct{ s *Session }

func (f sessionWrite) Write(ctx context.Context, p string, _ *Status) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return nil, NewIOError("mkdir", path.Dir(p), err)
	}
	file, err := f.s.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, NewIOError("create", p, err)
	}
	return file, nil
}

type sessionMove struct{ s *Session }

func (f sessionMove) Move(ctx context.Context, source, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.s.fs.MkdirAll(path.Dir(target), 0o755); err != nil {
		return NewIOError("mkdir", path.Dir(target), err)
	}
	if err := f.s.fs.Rename(source, target); err != nil {
		return NewIOError("rename", source, err)
	}
	return nil
}

func (sessionMove) IsSupported(source, target string) bool {
	return source != target
}

type sessionList struct{ s *Session }

func (f sessionList) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, err := f.s.fs.Open(dir)
	if err != nil {
		return nil, NewIOError("open", dir, err)
	}
	defer d.Close()

	infos, err := d.Readdir(-1)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, NewIOError("list", dir, err)
	}
	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		if fi.Name() == "." || fi.Name() == ".." {
			continue
		}
		entries = append(entries, entryFromInfo(dir, fi))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

type sessionDelete struct{ s *Session }

func (f sessionDelete) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := f.s.fs.Stat(p); err != nil {
		return NewIOError("stat", p, err)
	}
	if err := f.s.fs.RemoveAll(p); err != nil {
		return NewIOError("remove", p, err)
	}
	return nil
}

type sessionDirectory struct{ s *Session }

func (f sessionDirectory) Mkdir(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.s.fs.MkdirAll(p, 0o755); err != nil {
		return NewIOError("mkdir", p, err)
	}
	return nil
}

type sessionAttributes struct{ s *Session }

func (f sessionAttributes) Stat(ctx context.Context, p string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	fi, err := f.s.fs.Stat(p)
	if err != nil {
		return Entry{}, NewIOError("stat", p, err)
	}
	e := entryFromInfo(path.Dir(p), fi)
	e.Path, e.Name = p, path.Base(p)
	return e, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

func limitReadCloser(rc io.ReadCloser, n int64) io.ReadCloser {
	return readCloser{Reader: io.LimitReader(rc, n), Closer: rc}
}
