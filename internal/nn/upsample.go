package nn

import (
	"fmt"

	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// Upsample enlarges feature maps by an integer scale factor using
// bilinear interpolation. Detection networks use it to bring a deep,
// coarse feature map back to the resolution of an earlier one before
// concatenating the two.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, height*scale, width*scale]
type Upsample[B tensor.Backend] struct {
	scale   int
	backend B
}

// NewUpsample creates an upsampling layer with the given scale factor.
func NewUpsample[B tensor.Backend](scale int, backend B) *Upsample[B] {
	if scale <= 0 {
		panic(fmt.Sprintf("upsample: invalid scale factor %d", scale))
	}

	return &Upsample[B]{
		scale:   scale,
		backend: backend,
	}
}

// Forward performs the forward pass.
func (u *Upsample[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("upsample: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	outputRaw := u.backend.Upsample2D(input.Raw(), u.scale)
	return tensor.New[float32, B](outputRaw, u.backend)
}

// Parameters returns an empty slice (Upsample has no parameters).
func (u *Upsample[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{}
}

// Scale returns the scale factor.
func (u *Upsample[B]) Scale() int {
	return u.scale
}

// String returns a string representation of the layer.
func (u *Upsample[B]) String() string {
	return fmt.Sprintf("Upsample(scale_factor=%d)", u.scale)
}
