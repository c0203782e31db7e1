package cpu

import (
	"fmt"

	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// Scalar operations - element-wise operations with a scalar value.
// The scalar must match the tensor's dtype (float32 for Float32 tensors).

// AddScalar adds a scalar value to each element of the tensor.
func (cpu *Backend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("addScalar: failed to create result tensor: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		s := toFloat32Scalar("addScalar", scalar)
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i := range dst {
			dst[i] = src[i] + s
		}
	case tensor.Float64:
		s := toFloat64Scalar("addScalar", scalar)
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i := range dst {
			dst[i] = src[i] + s
		}
	default:
		panic(fmt.Sprintf("addScalar: unsupported dtype %v", x.DType()))
	}

	return result
}

// MulScalar multiplies each element of the tensor by a scalar value.
func (cpu *Backend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("mulScalar: failed to create result tensor: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		s := toFloat32Scalar("mulScalar", scalar)
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i := range dst {
			dst[i] = src[i] * s
		}
	case tensor.Float64:
		s := toFloat64Scalar("mulScalar", scalar)
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i := range dst {
			dst[i] = src[i] * s
		}
	default:
		panic(fmt.Sprintf("mulScalar: unsupported dtype %v", x.DType()))
	}

	return result
}

func toFloat32Scalar(op string, scalar any) float32 {
	v, ok := scalar.(float32)
	if !ok {
		panic(fmt.Sprintf("%s: scalar type %T does not match tensor dtype float32", op, scalar))
	}
	return v
}

func toFloat64Scalar(op string, scalar any) float64 {
	v, ok := scalar.(float64)
	if !ok {
		panic(fmt.Sprintf("%s: scalar type %T does not match tensor dtype float64", op, scalar))
	}
	return v
}
