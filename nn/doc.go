// Copyright 2025 The DarkGo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the neural network building blocks DarkGo
// assembles detection networks from.
//
// # Overview
//
// Each block is a Module: it transforms one tensor into another and
// exposes its parameters for the weight loader. The set matches what
// Darknet configuration files can express:
//   - Conv2D: 2D convolution with optional bias
//   - BatchNorm2D: per-channel normalization from stored statistics
//   - MaxPool2D: spatial max pooling
//   - Upsample: bilinear spatial upsampling
//   - LeakyReLU, Sigmoid: activations
//
// # Basic Usage
//
//	backend := cpu.New()
//	conv := nn.NewConv2D(3, 16, 3, 1, 1, false, backend)
//	bn := nn.NewBatchNorm2D(16, backend)
//	act := nn.NewLeakyReLU[*cpu.Backend](0.1)
//
//	x := tensor.Randn[float32](tensor.Shape{1, 3, 416, 416}, backend)
//	y := act.Forward(bn.Forward(conv.Forward(x)))
//
// Modules run in inference mode: BatchNorm2D always normalizes with its
// stored running statistics.
package nn
