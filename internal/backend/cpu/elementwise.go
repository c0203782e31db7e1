package cpu

import (
	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// Element-wise kernels. The float32 and float64 bodies are intentionally
// duplicated: a generic version would force an interface call per element.

func vectorizedFloat32(op string, dst, a, b []float32) {
	switch op {
	case "add":
		for i := range a {
			dst[i] = a[i] + b[i]
		}
	case "sub":
		for i := range a {
			dst[i] = a[i] - b[i]
		}
	case "mul":
		for i := range a {
			dst[i] = a[i] * b[i]
		}
	case "div":
		for i := range a {
			dst[i] = a[i] / b[i]
		}
	default:
		panic("unknown binary op " + op)
	}
}

func vectorizedFloat64(op string, dst, a, b []float64) {
	switch op {
	case "add":
		for i := range a {
			dst[i] = a[i] + b[i]
		}
	case "sub":
		for i := range a {
			dst[i] = a[i] - b[i]
		}
	case "mul":
		for i := range a {
			dst[i] = a[i] * b[i]
		}
	case "div":
		for i := range a {
			dst[i] = a[i] / b[i]
		}
	default:
		panic("unknown binary op " + op)
	}
}

func broadcastFloat32(op string, dst, a, b []float32, aShape, bShape, outShape tensor.Shape) {
	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStridesForShape(aShape, outShape)
	bStrides := computeBroadcastStridesForShape(bShape, outShape)

	n := outShape.NumElements()
	for i := 0; i < n; i++ {
		aIdx := computeFlatIndex(i, outStrides, aStrides)
		bIdx := computeFlatIndex(i, outStrides, bStrides)
		switch op {
		case "add":
			dst[i] = a[aIdx] + b[bIdx]
		case "sub":
			dst[i] = a[aIdx] - b[bIdx]
		case "mul":
			dst[i] = a[aIdx] * b[bIdx]
		case "div":
			dst[i] = a[aIdx] / b[bIdx]
		default:
			panic("unknown binary op " + op)
		}
	}
}

func broadcastFloat64(op string, dst, a, b []float64, aShape, bShape, outShape tensor.Shape) {
	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStridesForShape(aShape, outShape)
	bStrides := computeBroadcastStridesForShape(bShape, outShape)

	n := outShape.NumElements()
	for i := 0; i < n; i++ {
		aIdx := computeFlatIndex(i, outStrides, aStrides)
		bIdx := computeFlatIndex(i, outStrides, bStrides)
		switch op {
		case "add":
			dst[i] = a[aIdx] + b[bIdx]
		case "sub":
			dst[i] = a[aIdx] - b[bIdx]
		case "mul":
			dst[i] = a[aIdx] * b[bIdx]
		case "div":
			dst[i] = a[aIdx] / b[bIdx]
		default:
			panic("unknown binary op " + op)
		}
	}
}

// computeBroadcastStridesForShape computes strides for broadcasting a shape to outShape.
// Returns strides where dimensions of size 1 have stride 0 (for broadcasting).
func computeBroadcastStridesForShape(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	// Pad input shape with 1s on the left
	inDim := len(inShape)
	offset := outDim - inDim

	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0 || inIdx >= inDim:
			// Padded dimension, stride is 0
			strides[i] = 0
		case inShape[inIdx] == 1:
			// Broadcast dimension, stride is 0
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}

	return strides
}

// computeFlatIndex computes the flat index in the source array for a given output index.
// outStrides: strides of the output shape.
// inStrides: broadcast-adjusted strides of the input shape.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	ndim := len(outStrides)
	flatIdx := 0

	for i := 0; i < ndim; i++ {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flatIdx += coord * inStrides[i]
	}

	return flatIdx
}
