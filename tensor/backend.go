// Copyright 2025 The DarkGo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/darkgo-ml/darkgo/internal/tensor"

// Backend defines the interface that all compute backends must
// implement. The operation surface is what a Darknet-style detection
// network needs for inference: element-wise arithmetic with
// broadcasting, the spatial layer primitives, the activations the
// config format names, and the reshaping used by the detection decode.
//
// Backends panic on structurally invalid inputs (shape or dtype
// mismatches); those are programming errors rather than runtime
// conditions a caller could recover from.
//
// Example:
//
//	import (
//	    "github.com/darkgo-ml/darkgo/backend/cpu"
//	    "github.com/darkgo-ml/darkgo/tensor"
//	)
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y) // calls backend.Add under the hood
type Backend = tensor.Backend
