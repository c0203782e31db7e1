package nn

import (
	"fmt"

	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// Parameter represents a named weight tensor in a neural network.
//
// Parameters typically hold the weights and biases of layers. They are
// created with an initialized tensor and later overwritten in place when
// a pretrained weight file is loaded.
//
// Example:
//
//	weight := nn.NewParameter("conv2d.weight", weightTensor)
//	w := weight.Tensor()
//	err := weight.SetData(valuesFromWeightFile)
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
}

// NewParameter creates a new named parameter.
//
// The parameter tensor should be initialized before creating the Parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// NumElements returns the number of values the parameter holds.
func (p *Parameter[B]) NumElements() int {
	return p.tensor.NumElements()
}

// SetData overwrites the parameter values in place.
//
// The value count must match the parameter shape exactly; weight files
// store flat runs of floats, so a mismatch means the file and the network
// architecture disagree.
func (p *Parameter[B]) SetData(values []float32) error {
	data := p.tensor.Raw().AsFloat32()
	if len(values) != len(data) {
		return fmt.Errorf("parameter %s: expected %d values, got %d", p.name, len(data), len(values))
	}
	copy(data, values)
	return nil
}
