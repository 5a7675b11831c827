package vaultfs

import (
	"context"
)

// WalkSearch searches by listing directories breadth first through a
// ListFeature. Matching sees whatever names the ListFeature reports.
type WalkSearch struct {
	list ListFeature
}

// NewWalkSearch returns a recursive search over list.
func NewWalkSearch(list ListFeature) *WalkSearch {
	return &WalkSearch{list: list}
}

func (w *WalkSearch) IsRecursive() bool { return true }

func (w *WalkSearch) Search(ctx context.Context, workdir string, filter Filter, listener ListListener, cache *Cache) ([]Entry, error) {
	if filter == nil {
		filter = AcceptAll
	}
	var found []Entry
	queue := []string{workdir}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return found, err
		}
		dir := queue[0]
		queue = queue[1:]

		entries, err := w.listing(ctx, dir, cache)
		if err != nil {
			return found, err
		}
		if listener != nil {
			listener(dir, entries)
		}
		for _, e := range entries {
			if filter.Accept(e) {
				found = append(found, e)
			}
			if e.IsDir {
				queue = append(queue, e.Path)
			}
		}
	}
	return found, nil
}

func (w *WalkSearch) listing(ctx context.Context, dir string, cache *Cache) ([]Entry, error) {
	if cache != nil {
		if entries, ok := cache.Get(dir); ok {
			return entries, nil
		}
	}
	entries, err := w.list.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		cache.Put(dir, entries)
	}
	return entries, nil
}
