// Package parallel splits index ranges across goroutines for the CPU kernels.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how work is split across goroutines.
type Config struct {
	Workers  int // Upper bound on goroutines; <= 1 runs inline.
	MinChunk int // Minimum indices per goroutine.
}

// DefaultConfig uses one worker per CPU.
func DefaultConfig() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		MinChunk: 16,
	}
}

// Sequential returns a Config that never spawns goroutines.
func Sequential() Config {
	return Config{Workers: 1, MinChunk: 1}
}

// Range calls f over disjoint half-open chunks [lo, hi) covering [0, n)
// and returns when every chunk is done. f must only write state owned by
// its own chunk.
func (c Config) Range(n int, f func(lo, hi int)) {
	if n <= 0 {
		return
	}
	minChunk := max(c.MinChunk, 1)
	if c.Workers <= 1 || n < 2*minChunk {
		f(0, n)
		return
	}

	chunk := max((n+c.Workers-1)/c.Workers, minChunk)

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			f(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// For calls f(i) for every i in [0, n).
func (c Config) For(n int, f func(i int)) {
	c.Range(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			f(i)
		}
	})
}
