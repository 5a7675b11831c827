package vaultfs

import (
	"context"
	"io"
	"os"
	"path"
	"regexp"
	"time"
)

// The feature interfaces are the capabilities a Session offers and a
// vault overlays. Paths are absolute and slash separated.

// ReadFeature opens a file for reading.
type ReadFeature interface {
	Read(ctx context.Context, p string, status *Status) (io.ReadCloser, error)
}

// WriteFeature creates or truncates a file for writing.
type WriteFeature interface {
	Write(ctx context.Context, p string, status *Status) (io.WriteCloser, error)
}

// CopyFeature copies source to target.
type CopyFeature interface {
	Copy(ctx context.Context, source, target string, status *Status) error
	// IsRecursive reports whether Copy handles whole directory trees.
	IsRecursive(source, target string) bool
	IsSupported(source, target string) bool
}

// MoveFeature renames source to target.
type MoveFeature interface {
	Move(ctx context.Context, source, target string) error
	IsSupported(source, target string) bool
}

// ListFeature lists one directory.
type ListFeature interface {
	List(ctx context.Context, dir string) ([]Entry, error)
}

// SearchFeature finds entries below workdir accepted by filter. The
// listener, when not nil, sees every directory listing as it is read.
// Listings are looked up in and stored to cache when it is not nil.
type SearchFeature interface {
	Search(ctx context.Context, workdir string, filter Filter, listener ListListener, cache *Cache) ([]Entry, error)
	IsRecursive() bool
}

// DeleteFeature removes a file or directory tree.
type DeleteFeature interface {
	Delete(ctx context.Context, p string) error
}

// DirectoryFeature creates a directory and its parents.
type DirectoryFeature interface {
	Mkdir(ctx context.Context, p string) error
}

// AttributesFeature returns the attributes of one path.
type AttributesFeature interface {
	Stat(ctx context.Context, p string) (Entry, error)
}

// Entry describes a file or directory as seen by the caller.
type Entry struct {
	Path    string
	Name    string
	IsDir   bool
	Size    int64
	Mode    os.FileMode
	ModTime time.Time

	// Corrupt marks a vault file whose stored size no encrypted file can
	// have. Size is then the stored size.
	Corrupt bool
}

func entryFromInfo(dir string, fi os.FileInfo) Entry {
	return Entry{
		Path:    path.Join(dir, fi.Name()),
		Name:    fi.Name(),
		IsDir:   fi.IsDir(),
		Size:    fi.Size(),
		Mode:    fi.Mode(),
		ModTime: fi.ModTime(),
	}
}

// ListListener observes directory listings during a search.
type ListListener func(dir string, entries []Entry)

// Filter selects entries during a search.
type Filter interface {
	Accept(e Entry) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(Entry) bool

func (f FilterFunc) Accept(e Entry) bool { return f(e) }

// AcceptAll matches every entry.
var AcceptAll Filter = FilterFunc(func(Entry) bool { return true })

// GlobFilter matches entry names against a path.Match pattern.
func GlobFilter(pattern string) (Filter, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, NewValidationError("pattern", pattern, err.Error())
	}
	return FilterFunc(func(e Entry) bool {
		ok, _ := path.Match(pattern, e.Name)
		return ok
	}), nil
}

// RegexFilter matches entry names against a regular expression.
func RegexFilter(expr string) (Filter, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, NewValidationError("pattern", expr, err.Error())
	}
	return FilterFunc(func(e Entry) bool {
		return re.MatchString(e.Name)
	}), nil
}
