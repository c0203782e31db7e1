// Copyright 2025 The DarkGo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/darkgo-ml/darkgo/internal/nn"
	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// Module is the common interface of all network building blocks.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a named tensor a module owns; the weight loader fills
// parameters by name-independent position.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// BatchNormEps is the constant added to the running variance before
// taking the square root.
const BatchNormEps = nn.BatchNormEps

// Layers

// Conv2D is a 2D convolutional layer with square kernels.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a 2D convolutional layer with Xavier-initialized
// weights.
//
// Example:
//
//	backend := cpu.New()
//	conv := nn.NewConv2D(3, 32, 3, 1, 1, true, backend) // 3 in, 32 out, 3x3 kernel
func NewConv2D[B tensor.Backend](
	inChannels, outChannels int,
	kernelSize, stride, padding int,
	useBias bool,
	backend B,
) *Conv2D[B] {
	return nn.NewConv2D(inChannels, outChannels, kernelSize, stride, padding, useBias, backend)
}

// BatchNorm2D normalizes each channel with stored statistics.
type BatchNorm2D[B tensor.Backend] = nn.BatchNorm2D[B]

// NewBatchNorm2D creates a batch normalization layer with identity
// statistics (zero mean, unit variance, unit scale, zero shift).
func NewBatchNorm2D[B tensor.Backend](numFeatures int, backend B) *BatchNorm2D[B] {
	return nn.NewBatchNorm2D(numFeatures, backend)
}

// MaxPool2D is a 2D max pooling layer.
type MaxPool2D[B tensor.Backend] = nn.MaxPool2D[B]

// NewMaxPool2D creates a max pooling layer.
//
// Example:
//
//	pool := nn.NewMaxPool2D(2, 2, backend) // halves height and width
func NewMaxPool2D[B tensor.Backend](kernelSize, stride int, backend B) *MaxPool2D[B] {
	return nn.NewMaxPool2D(kernelSize, stride, backend)
}

// Upsample enlarges feature maps bilinearly by an integer factor.
type Upsample[B tensor.Backend] = nn.Upsample[B]

// NewUpsample creates an upsampling layer with the given scale factor.
func NewUpsample[B tensor.Backend](scale int, backend B) *Upsample[B] {
	return nn.NewUpsample(scale, backend)
}

// Activations

// LeakyReLU is the leaky rectifier activation max(x, slope*x).
type LeakyReLU[B tensor.Backend] = nn.LeakyReLU[B]

// NewLeakyReLU creates a leaky rectifier with the given negative slope.
func NewLeakyReLU[B tensor.Backend](slope float64) *LeakyReLU[B] {
	return nn.NewLeakyReLU[B](slope)
}

// Sigmoid is the logistic activation 1/(1+exp(-x)).
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a sigmoid activation.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}
