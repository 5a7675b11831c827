package vaultfs

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ParallelConfig controls the worker pool used for whole-vault operations
type ParallelConfig struct {
	// Enabled enables parallel processing
	Enabled bool

	// MaxWorkers is the maximum number of worker goroutines
	// If 0, defaults to runtime.NumCPU()
	MaxWorkers int

	// MinJobsForParallel is the minimum number of jobs to use parallel processing
	// Below this threshold, sequential processing is used
	MinJobsForParallel int
}

// Validate checks if the parallel configuration is valid
func (p *ParallelConfig) Validate() error {
	if !p.Enabled {
		return nil
	}

	if p.MaxWorkers < 0 {
		return errors.New("parallel max workers cannot be negative")
	}
	if p.MaxWorkers > 1024 {
		return errors.New("parallel max workers must not exceed 1024")
	}
	if p.MinJobsForParallel < 1 {
		return errors.New("parallel min jobs threshold must be at least 1")
	}

	return nil
}

// DefaultParallelConfig returns the default parallel processing configuration
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		Enabled:            true,
		MaxWorkers:         runtime.NumCPU(),
		MinJobsForParallel: 4,
	}
}

// runJobs calls job for every index in [0, n). Jobs report their own
// failures; runJobs returns a context error or a recovered panic.
func runJobs(ctx context.Context, cfg ParallelConfig, n int, job func(ctx context.Context, i int)) error {
	if n == 0 {
		return nil
	}

	numWorkers := cfg.MaxWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = min(numWorkers, n)

	if !cfg.Enabled || n < cfg.MinJobsForParallel {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			job(ctx, i)
		}
		return nil
	}

	var wg sync.WaitGroup
	jobChan := make(chan int, n)
	errChan := make(chan error, numWorkers)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					select {
					case errChan <- fmt.Errorf("panic in worker: %v", r):
					default:
					}
				}
			}()
			for i := range jobChan {
				if ctx.Err() != nil {
					return
				}
				job(ctx, i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return err
	}
	return ctx.Err()
}
