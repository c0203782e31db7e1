package cpu

import (
	"fmt"

	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// Cat concatenates tensors along the given dimension. All tensors must
// share dtype, rank and every dimension except the concatenated one.
// A negative dim counts from the end.
func (cpu *Backend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: no tensors to concatenate")
	}

	first := tensors[0]
	ndim := len(first.Shape())

	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("cat: invalid dim %d for %dD tensor", dim, ndim))
	}

	catSize := 0
	for i, t := range tensors {
		if t.DType() != first.DType() {
			panic(fmt.Sprintf("cat: dtype mismatch: %s vs %s", first.DType(), t.DType()))
		}
		shape := t.Shape()
		if len(shape) != ndim {
			panic(fmt.Sprintf("cat: rank mismatch: %d vs %d", ndim, len(shape)))
		}
		for d := 0; d < ndim; d++ {
			if d != dim && shape[d] != first.Shape()[d] {
				panic(fmt.Sprintf("cat: tensor %d has shape %v, incompatible with %v along dim %d",
					i, shape, first.Shape(), dim))
			}
		}
		catSize += shape[dim]
	}

	outShape := first.Shape().Clone()
	outShape[dim] = catSize

	result, err := tensor.NewRaw(outShape, first.DType(), first.Device())
	if err != nil {
		panic(fmt.Sprintf("cat: %v", err))
	}

	// Concatenation is pure data movement, so it works on raw bytes:
	// each tensor contributes one contiguous block per outer slice.
	outer := 1
	for d := 0; d < dim; d++ {
		outer *= outShape[d]
	}
	elemSize := first.DType().Size()

	outData := result.Data()
	outBlock := result.NumElements() / outer * elemSize

	offset := 0
	for _, t := range tensors {
		src := t.Data()
		block := t.NumElements() / outer * elemSize
		for o := 0; o < outer; o++ {
			copy(outData[o*outBlock+offset:], src[o*block:(o+1)*block])
		}
		offset += block
	}

	return result
}

// Narrow returns a copy of x restricted to [start, start+length) along dim.
func (cpu *Backend) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("narrow: invalid dim %d for %dD tensor", dim, ndim))
	}
	if length <= 0 {
		panic(fmt.Sprintf("narrow: length must be positive, got %d", length))
	}
	if start < 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dim %d of size %d",
			start, start+length, dim, shape[dim]))
	}

	outShape := shape.Clone()
	outShape[dim] = length

	result, err := tensor.NewRaw(outShape, x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("narrow: %v", err))
	}

	outer := 1
	for d := 0; d < dim; d++ {
		outer *= shape[d]
	}
	inner := 1
	for d := dim + 1; d < ndim; d++ {
		inner *= shape[d]
	}
	elemSize := x.DType().Size()

	srcData := x.Data()
	dstData := result.Data()
	srcRow := shape[dim] * inner * elemSize
	dstRow := length * inner * elemSize
	skip := start * inner * elemSize

	for o := 0; o < outer; o++ {
		copy(dstData[o*dstRow:], srcData[o*srcRow+skip:o*srcRow+skip+dstRow])
	}

	return result
}
