// Package nn implements neural network modules for the DarkGo inference engine.
//
// This package provides the building blocks convolutional detection
// networks are assembled from:
//   - Module interface: Base interface for all NN components
//   - Parameter: Named weight tensors that can be filled from a weight file
//   - Conv2D: 2D convolution with optional bias
//   - BatchNorm2D: Inference-mode batch normalization using running statistics
//   - MaxPool2D, Upsample: Spatial resampling
//   - LeakyReLU: The activation used throughout Darknet backbones
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all parameters in weight-file order
//
// Modules can be composed to build complex architectures. Type parameter
// B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// The input tensor should have the appropriate shape for this module.
	// For example, Conv2D expects [batch, in_channels, height, width].
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all parameters of this module.
	//
	// Returns an empty slice for modules without parameters
	// (e.g., pooling and activation functions).
	Parameters() []*Parameter[B]
}
