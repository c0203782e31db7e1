package nn

import (
	"fmt"

	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// BatchNormEps is the denominator epsilon used by batch normalization.
// It matches the value baked into the reference training frameworks, so
// loaded networks reproduce their outputs.
const BatchNormEps = 1e-5

// BatchNorm2D is inference-mode batch normalization over the channel
// dimension of a [batch, channels, height, width] tensor:
//
//	out = gamma * (x - running_mean) / sqrt(running_var + eps) + beta
//
// The running statistics are fixed values loaded from a weight file, not
// computed from the batch. Freshly constructed layers start as the
// identity transform (gamma=1, beta=0, mean=0, var=1).
type BatchNorm2D[B tensor.Backend] struct {
	numFeatures int
	eps         float64

	gamma       *Parameter[B] // scale, [channels]
	beta        *Parameter[B] // shift, [channels]
	runningMean *Parameter[B] // [channels]
	runningVar  *Parameter[B] // [channels]

	backend B
}

// NewBatchNorm2D creates a batch normalization layer for the given
// channel count.
func NewBatchNorm2D[B tensor.Backend](numFeatures int, backend B) *BatchNorm2D[B] {
	if numFeatures <= 0 {
		panic(fmt.Sprintf("batchnorm2d: invalid feature count %d", numFeatures))
	}

	shape := tensor.Shape{numFeatures}
	return &BatchNorm2D[B]{
		numFeatures: numFeatures,
		eps:         BatchNormEps,
		gamma:       NewParameter("batchnorm2d.weight", Ones(shape, backend)),
		beta:        NewParameter("batchnorm2d.bias", Zeros(shape, backend)),
		runningMean: NewParameter("batchnorm2d.running_mean", Zeros(shape, backend)),
		runningVar:  NewParameter("batchnorm2d.running_var", Ones(shape, backend)),
		backend:     backend,
	}
}

// Forward normalizes the input using the stored running statistics.
//
// Input: [batch, channels, height, width] with channels == numFeatures.
func (bn *BatchNorm2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("batchnorm2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if inputShape[1] != bn.numFeatures {
		panic(fmt.Sprintf("batchnorm2d: input channels %d != expected %d", inputShape[1], bn.numFeatures))
	}

	outputRaw := bn.backend.BatchNorm2D(
		input.Raw(),
		bn.runningMean.Tensor().Raw(),
		bn.runningVar.Tensor().Raw(),
		bn.gamma.Tensor().Raw(),
		bn.beta.Tensor().Raw(),
		bn.eps,
	)
	return tensor.New[float32, B](outputRaw, bn.backend)
}

// Parameters returns the affine parameters gamma and beta.
func (bn *BatchNorm2D[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{bn.gamma, bn.beta}
}

// Gamma returns the scale parameter.
func (bn *BatchNorm2D[B]) Gamma() *Parameter[B] {
	return bn.gamma
}

// Beta returns the shift parameter.
func (bn *BatchNorm2D[B]) Beta() *Parameter[B] {
	return bn.beta
}

// RunningMean returns the running mean statistic.
func (bn *BatchNorm2D[B]) RunningMean() *Parameter[B] {
	return bn.runningMean
}

// RunningVar returns the running variance statistic.
func (bn *BatchNorm2D[B]) RunningVar() *Parameter[B] {
	return bn.runningVar
}

// NumFeatures returns the channel count the layer normalizes.
func (bn *BatchNorm2D[B]) NumFeatures() int {
	return bn.numFeatures
}

// String returns a string representation of the layer.
func (bn *BatchNorm2D[B]) String() string {
	return fmt.Sprintf("BatchNorm2D(num_features=%d, eps=%g)", bn.numFeatures, bn.eps)
}
