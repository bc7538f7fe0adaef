// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
//
// Matrix products and the im2col convolution run on gonum BLAS. Kernels
// split work across goroutines; see NewWithConfig to bound them.
package cpu

import (
	internalcpu "github.com/born-ml/convnet/internal/backend/cpu"
	"github.com/born-ml/convnet/internal/parallel"
	"github.com/born-ml/convnet/tensor"
)

// Backend is the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// ParallelConfig bounds the goroutines a kernel may use.
type ParallelConfig = parallel.Config

// New creates a CPU backend using every available core.
//
// Example:
//
//	import (
//	    "github.com/born-ml/convnet/backend/cpu"
//	    "github.com/born-ml/convnet/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{8, 32, 32, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with explicit parallelism.
//
// Example:
//
//	backend := cpu.NewWithConfig(cpu.ParallelConfig{Workers: 1}) // single-threaded
func NewWithConfig(cfg ParallelConfig) *Backend {
	return internalcpu.NewWithConfig(cfg)
}
