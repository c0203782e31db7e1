// Copyright 2025 The DarkGo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU compute backend.
package cpu

import (
	internalcpu "github.com/darkgo-ml/darkgo/internal/backend/cpu"
	"github.com/darkgo-ml/darkgo/internal/parallel"
	"github.com/darkgo-ml/darkgo/tensor"
)

// Backend implements every tensor operation in pure Go, fanning the
// spatial operations out across goroutines and lowering convolution to
// a gonum matrix multiply.
type Backend = internalcpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// Config controls how the backend spreads work across goroutines.
type Config = parallel.Config

// DefaultConfig returns the parallelism settings New uses: one worker
// per CPU, enabled whenever more than one CPU is available.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}

// Sequential returns settings that keep all work on the calling
// goroutine. Useful for debugging and deterministic benchmarks.
func Sequential() Config {
	return parallel.Sequential()
}

// New creates a CPU backend with default parallelism.
//
// Example:
//
//	import (
//	    "github.com/darkgo-ml/darkgo/backend/cpu"
//	    "github.com/darkgo-ml/darkgo/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{1, 3, 416, 416}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with explicit parallelism
// settings.
func NewWithConfig(cfg Config) *Backend {
	return internalcpu.NewWithConfig(cfg)
}
