// Copyright 2025 The DarkGo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensor operations for DarkGo.
//
// # Overview
//
// Tensors are the data structure every DarkGo layer consumes and
// produces. This package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcasting for element-wise arithmetic
//   - The Backend interface compute devices implement
//   - Shape, DataType and Device definitions
//
// # Basic Usage
//
//	import (
//	    "github.com/darkgo-ml/darkgo/backend/cpu"
//	    "github.com/darkgo-ml/darkgo/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{1, 3, 416, 416}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{1, 3, 416, 416}, backend)
//
//	    z := x.Add(y)
//	    fmt.Println(z.Shape())
//	}
//
// The element type is fixed per tensor: detection inference runs in
// float32, the type the Darknet weight format stores.
package tensor
