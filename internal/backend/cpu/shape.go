package cpu

import (
	"fmt"

	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// Reshape returns a tensor with the same data but different shape.
func (cpu *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}

	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: incompatible shapes: %v -> %v (different number of elements)",
			t.Shape(), newShape))
	}

	result, err := tensor.NewRaw(newShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}

	copy(result.Data(), t.Data())
	return result
}

// Transpose transposes the tensor by permuting its dimensions.
// If axes is empty, all dimensions are reversed.
func (cpu *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(newShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	// For every source dimension, the stride its coordinate carries in
	// the destination layout.
	srcStrides := shape.ComputeStrides()
	dstStrides := newShape.ComputeStrides()
	mapStrides := make([]int, ndim)
	for dstDim, srcDim := range axes {
		mapStrides[srcDim] = dstStrides[dstDim]
	}

	switch t.DType() {
	case tensor.Float32:
		src := t.AsFloat32()
		dst := result.AsFloat32()
		for i := range src {
			dst[permutedIndex(i, srcStrides, mapStrides)] = src[i]
		}
	case tensor.Float64:
		src := t.AsFloat64()
		dst := result.AsFloat64()
		for i := range src {
			dst[permutedIndex(i, srcStrides, mapStrides)] = src[i]
		}
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}

	return result
}

// permutedIndex converts a flat source index into the flat destination
// index under the axis permutation encoded in mapStrides.
func permutedIndex(srcIdx int, srcStrides, mapStrides []int) int {
	dstIdx := 0
	for dim := 0; dim < len(srcStrides); dim++ {
		coord := srcIdx / srcStrides[dim]
		srcIdx %= srcStrides[dim]
		dstIdx += coord * mapStrides[dim]
	}
	return dstIdx
}
