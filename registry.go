package vaultfs

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry knows which vaults are unlocked on which sessions and hands
// out features that route every call through the governing vault.
type Registry struct {
	mu     sync.RWMutex
	vaults []*Vault
	log    logrus.FieldLogger
}

// NewRegistry returns an empty registry. A nil logger discards.
func NewRegistry(log logrus.FieldLogger) *Registry {
	return &Registry{log: loggerOrDiscard(log)}
}

// Add registers v. Vaults on one session may not nest.
func (r *Registry) Add(v *Vault) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, other := range r.vaults {
		if other.session != v.session {
			continue
		}
		if other.Contains(v.root) || v.Contains(other.root) {
			return fmt.Errorf("%s and %s: %w", v.root, other.root, ErrVaultOverlap)
		}
	}
	r.vaults = append(r.vaults, v)
	r.log.WithFields(logrus.Fields{"vault": v.root, "id": v.id}).Info("vault registered")
	return nil
}

// Remove unregisters v and reports whether it was registered.
func (r *Registry) Remove(v *Vault) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, other := range r.vaults {
		if other == v {
			r.vaults = append(r.vaults[:i], r.vaults[i+1:]...)
			r.log.WithField("vault", v.root).Info("vault removed")
			return true
		}
	}
	return false
}

// Vaults returns the vaults registered for s.
func (r *Registry) Vaults(s *Session) []*Vault {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Vault
	for _, v := range r.vaults {
		if v.session == s {
			out = append(out, v)
		}
	}
	return out
}

// Find returns the vault governing p on s, or nil.
func (r *Registry) Find(s *Session, p string) *Vault {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.vaults {
		if v.session == s && v.Contains(p) {
			return v
		}
	}
	return nil
}

// findPair resolves a two-path operation by source, then by target.
func (r *Registry) findPair(s *Session, source, target string) *Vault {
	if v := r.Find(s, source); v != nil {
		return v
	}
	return r.Find(s, target)
}

// Feature returns the overlay of kind F for the vault governing p, built
// around fallback. Without a governing vault fallback is returned as is.
func Feature[F any](r *Registry, s *Session, p string, fallback F) F {
	return resolve(r, r.Find(s, p), p, fallback)
}

// PairFeature is Feature for two-path operations.
func PairFeature[F any](r *Registry, s *Session, source, target string, fallback F) F {
	return resolve(r, r.findPair(s, source, target), source, fallback)
}

func resolve[F any](r *Registry, v *Vault, p string, fallback F) F {
	if v == nil {
		return fallback
	}
	f, ok := vaultFeature(r, v, fallback)
	if !ok {
		r.log.WithFields(logrus.Fields{"vault": v.root, "path": p, "feature": fmt.Sprintf("%T", fallback)}).
			Debug("no vault overlay for feature")
		return fallback
	}
	return f
}

// streamCopy returns a non-recursive byte-level copy resolving each end
// through the registry.
func (r *Registry) streamCopy(s *Session) *StreamCopy {
	return NewStreamCopy(r.Read(s), r.Write(s), r.List(s), r.Directory(s), r.Attributes(s), false)
}

func (r *Registry) Read(s *Session) ReadFeature { return registryRead{r, s} }
func (r *Registry) Write(s *Session) WriteFeature { return registryWrite{r, s} }
func (r *Registry) Copy(s *Session) CopyFeature { return registryCopy{r, s} }
func (r *Registry) Move(s *Session) MoveFeature { return registryMove{r, s} }
func (r *Registry) List(s *Session) ListFeature { return registryList{r, s} }
func (r *Registry) Delete(s *Session) DeleteFeature { return registryDelete{r, s} }
func (r *Registry) Directory(s *Session) DirectoryFeature { return registryDirectory{r, s} }
func (r *Registry) Attributes(s *Session) AttributesFeature { return registryAttributes{r, s} }

// Search returns a search that resolves the vault governing the working
// directory and walks through registry-resolved listings elsewhere.
func (r *Registry) Search(s *Session) SearchFeature {
	return registrySearch{r: r, s: s, proxy: NewWalkSearch(r.List(s))}
}

type registryRead struct {
	r *Registry
	s *Session
}

func (f registryRead) Read(ctx context.Context, p string, status *Status) (io.ReadCloser, error) {
	return Feature(f.r, f.s, p, f.s.Read()).Read(ctx, p, status)
}

type registryWrite struct {
	r *Registry
	s *Session
}

func (f registryWrite) Write(ctx context.Context, p string, status *Status) (io.WriteCloser, error) {
	return Feature(f.r, f.s, p, f.s.Write()).Write(ctx, p, status)
}

type registryCopy struct {
	r *Registry
	s *Session
}

func (f registryCopy) feature(source, target string) CopyFeature {
	return PairFeature(f.r, f.s, source, target, f.s.Copy())
}

func (f registryCopy) Copy(ctx context.Context, source, target string, status *Status) error {
	return f.feature(source, target).Copy(ctx, source, target, status)
}

func (f registryCopy) IsRecursive(source, target string) bool {
	return f.feature(source, target).IsRecursive(source, target)
}

func (f registryCopy) IsSupported(source, target string) bool {
	return f.feature(source, target).IsSupported(source, target)
}

type registryMove struct {
	r *Registry
	s *Session
}

func (f registryMove) Move(ctx context.Context, source, target string) error {
	return PairFeature(f.r, f.s, source, target, f.s.Move()).Move(ctx, source, target)
}

func (f registryMove) IsSupported(source, target string) bool {
	return PairFeature(f.r, f.s, source, target, f.s.Move()).IsSupported(source, target)
}

type registryList struct {
	r *Registry
	s *Session
}

func (f registryList) List(ctx context.Context, dir string) ([]Entry, error) {
	return Feature(f.r, f.s, dir, f.s.List()).List(ctx, dir)
}

type registryDelete struct {
	r *Registry
	s *Session
}

func (f registryDelete) Delete(ctx context.Context, p string) error {
	return Feature(f.r, f.s, p, f.s.Delete()).Delete(ctx, p)
}

type registryDirectory struct {
	r *Registry
	s *Session
}

func (f registryDirectory) Mkdir(ctx context.Context, p string) error {
	return Feature(f.r, f.s, p, f.s.Directory()).Mkdir(ctx, p)
}

type registryAttributes struct {
	r *Registry
	s *Session
}

func (f registryAttributes) Stat(ctx context.Context, p string) (Entry, error) {
	return Feature(f.r, f.s, p, f.s.Attributes()).Stat(ctx, p)
}

type registrySearch struct {
	r     *Registry
	s     *Session
	proxy SearchFeature
}

func (f registrySearch) Search(ctx context.Context, workdir string, filter Filter, listener ListListener, cache *Cache) ([]Entry, error) {
	return Feature(f.r, f.s, workdir, f.proxy).Search(ctx, workdir, filter, listener, cache)
}

func (f registrySearch) IsRecursive() bool {
	return f.proxy.IsRecursive()
}
