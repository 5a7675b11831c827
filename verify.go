package vaultfs

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// VerifyReport lists the outcome of Verify.
type VerifyReport struct {
	Checked int
	Failed  map[string]error
}

// FailedPaths returns the failed paths in sorted order.
func (r *VerifyReport) FailedPaths() []string {
	paths := make([]string, 0, len(r.Failed))
	for p := range r.Failed {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Verify reads and authenticates every file below dir through the
// registry. Individual file failures are collected in the report; the
// returned error is reserved for failures of the walk itself.
func Verify(ctx context.Context, r *Registry, s *Session, dir string, cfg ParallelConfig) (*VerifyReport, error) {
	files, err := r.Search(s).Search(ctx, dir, FilterFunc(func(e Entry) bool { return !e.IsDir }), nil, nil)
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{Checked: len(files), Failed: make(map[string]error)}
	var mu sync.Mutex
	read := r.Read(s)

	err = runJobs(ctx, cfg, len(files), func(ctx context.Context, i int) {
		p := files[i].Path
		if err := verifyFile(ctx, read, p); err != nil {
			r.log.WithFields(logrus.Fields{"path": p}).WithError(err).Warn("verification failed")
			mu.Lock()
			report.Failed[p] = err
			mu.Unlock()
		}
	})
	return report, err
}

func verifyFile(ctx context.Context, read ReadFeature, p string) error {
	rc, err := read.Read(ctx, p, nil)
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(io.Discard, rc)
	return err
}
