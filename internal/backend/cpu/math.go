package cpu

import (
	"fmt"
	"math"

	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// Exp computes element-wise exponential: exp(x).
func (cpu *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("exp: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = float32(math.Exp(float64(v)))
		}
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i, v := range src {
			dst[i] = math.Exp(v)
		}
	default:
		panic(fmt.Sprintf("exp: unsupported dtype %s", x.DType()))
	}

	return result
}

// Sigmoid computes the element-wise logistic function: 1/(1+exp(-x)).
//
// The detection decode applies this to box center offsets, objectness
// and class scores, so it is a dedicated backend op rather than a
// composition of Exp/Add/Div.
func (cpu *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sigmoid: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = float32(1.0 / (1.0 + math.Exp(float64(-v))))
		}
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i, v := range src {
			dst[i] = 1.0 / (1.0 + math.Exp(-v))
		}
	default:
		panic(fmt.Sprintf("sigmoid: unsupported dtype %s", x.DType()))
	}

	return result
}

// LeakyReLU computes element-wise max(x, slope*x).
// Darknet uses slope 0.1 for its "leaky" activation.
func (cpu *Backend) LeakyReLU(x *tensor.RawTensor, slope float64) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("leakyrelu: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		s := float32(slope)
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			if v > 0 {
				dst[i] = v
			} else {
				dst[i] = s * v
			}
		}
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i, v := range src {
			if v > 0 {
				dst[i] = v
			} else {
				dst[i] = slope * v
			}
		}
	default:
		panic(fmt.Sprintf("leakyrelu: unsupported dtype %s", x.DType()))
	}

	return result
}
