package tensor

import "fmt"

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend is a simple backend for testing the tensor package itself.
// It implements the element-wise and shape operations naively and panics
// on the spatial operations, which are exercised against the real CPU
// backend instead.
type MockBackend struct{}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return "mock"
}

// Device returns the device type.
func (m *MockBackend) Device() Device {
	return CPU
}

// Add performs element-wise addition with broadcasting.
func (m *MockBackend) Add(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (m *MockBackend) Sub(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (m *MockBackend) Mul(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (m *MockBackend) Div(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x / y })
}

// elementWise performs element-wise operations with broadcasting.
func (m *MockBackend) elementWise(a, b *RawTensor, op func(float64, float64) float64) *RawTensor {
	outShape, _, err := BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(err)
	}

	result, err := NewRaw(outShape, a.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	aData := m.toFloat64Slice(a)
	bData := m.toFloat64Slice(b)
	resultData := make([]float64, outShape.NumElements())

	for i := range resultData {
		aIdx := m.broadcastIndex(i, outShape, a.Shape())
		bIdx := m.broadcastIndex(i, outShape, b.Shape())
		resultData[i] = op(aData[aIdx], bData[bIdx])
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// broadcastIndex maps a flat output index to the flat index in a
// (possibly broadcast) input shape.
func (m *MockBackend) broadcastIndex(outIdx int, outShape, inShape Shape) int {
	outStrides := outShape.ComputeStrides()
	inStrides := inShape.ComputeStrides()
	offset := len(outShape) - len(inShape)

	inIdx := 0
	for d := 0; d < len(outShape); d++ {
		coord := outIdx / outStrides[d]
		outIdx %= outStrides[d]

		inDim := d - offset
		if inDim < 0 {
			continue
		}
		if inShape[inDim] == 1 {
			continue // Broadcast dimension, coordinate pinned to 0
		}
		inIdx += coord * inStrides[inDim]
	}
	return inIdx
}

func (m *MockBackend) toFloat64Slice(t *RawTensor) []float64 {
	switch t.DType() {
	case Float32:
		src := t.AsFloat32()
		dst := make([]float64, len(src))
		for i, v := range src {
			dst[i] = float64(v)
		}
		return dst
	case Float64:
		return t.AsFloat64()
	default:
		panic(fmt.Sprintf("mock: unsupported dtype %s", t.DType()))
	}
}

func (m *MockBackend) fromFloat64Slice(data []float64, t *RawTensor) {
	switch t.DType() {
	case Float32:
		dst := t.AsFloat32()
		for i, v := range data {
			dst[i] = float32(v)
		}
	case Float64:
		copy(t.AsFloat64(), data)
	default:
		panic(fmt.Sprintf("mock: unsupported dtype %s", t.DType()))
	}
}

// AddScalar adds a scalar to every element.
func (m *MockBackend) AddScalar(x *RawTensor, scalar any) *RawTensor {
	return m.scalarWise(x, scalar, func(v, s float64) float64 { return v + s })
}

// MulScalar multiplies every element by a scalar.
func (m *MockBackend) MulScalar(x *RawTensor, scalar any) *RawTensor {
	return m.scalarWise(x, scalar, func(v, s float64) float64 { return v * s })
}

func (m *MockBackend) scalarWise(x *RawTensor, scalar any, op func(v, s float64) float64) *RawTensor {
	var s float64
	switch v := scalar.(type) {
	case float32:
		s = float64(v)
	case float64:
		s = v
	default:
		panic(fmt.Sprintf("mock: unsupported scalar type %T", scalar))
	}

	result, err := NewRaw(x.Shape(), x.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	data := m.toFloat64Slice(x)
	for i := range data {
		data[i] = op(data[i], s)
	}
	m.fromFloat64Slice(data, result)
	return result
}

// Exp is not implemented in the mock backend.
func (m *MockBackend) Exp(*RawTensor) *RawTensor {
	panic("exp: not implemented in mock backend")
}

// Sigmoid is not implemented in the mock backend.
func (m *MockBackend) Sigmoid(*RawTensor) *RawTensor {
	panic("sigmoid: not implemented in mock backend")
}

// LeakyReLU is not implemented in the mock backend.
func (m *MockBackend) LeakyReLU(*RawTensor, float64) *RawTensor {
	panic("leakyrelu: not implemented in mock backend")
}

// Conv2D is not implemented in the mock backend.
func (m *MockBackend) Conv2D(_, _ *RawTensor, _, _ int) *RawTensor {
	panic("conv2d: not implemented in mock backend")
}

// MaxPool2D is not implemented in the mock backend.
func (m *MockBackend) MaxPool2D(*RawTensor, int, int) *RawTensor {
	panic("maxpool2d: not implemented in mock backend")
}

// Upsample2D is not implemented in the mock backend.
func (m *MockBackend) Upsample2D(*RawTensor, int) *RawTensor {
	panic("upsample2d: not implemented in mock backend")
}

// BatchNorm2D is not implemented in the mock backend.
func (m *MockBackend) BatchNorm2D(_, _, _, _, _ *RawTensor, _ float64) *RawTensor {
	panic("batchnorm2d: not implemented in mock backend")
}

// Reshape returns a tensor with the same data but a different shape.
func (m *MockBackend) Reshape(t *RawTensor, newShape Shape) *RawTensor {
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: incompatible shapes: %v -> %v", t.Shape(), newShape))
	}
	result, err := NewRaw(newShape, t.DType(), m.Device())
	if err != nil {
		panic(err)
	}
	copy(result.Data(), t.Data())
	return result
}

// Transpose is not implemented in the mock backend.
func (m *MockBackend) Transpose(*RawTensor, ...int) *RawTensor {
	panic("transpose: not implemented in mock backend")
}

// Cat concatenates tensors along dim 0 only (enough for tensor package tests).
func (m *MockBackend) Cat(tensors []*RawTensor, dim int) *RawTensor {
	if dim != 0 {
		panic("cat: mock backend only supports dim 0")
	}
	total := 0
	for _, t := range tensors {
		total += t.Shape()[0]
	}
	outShape := tensors[0].Shape().Clone()
	outShape[0] = total

	result, err := NewRaw(outShape, tensors[0].DType(), m.Device())
	if err != nil {
		panic(err)
	}

	offset := 0
	out := result.Data()
	for _, t := range tensors {
		copy(out[offset:], t.Data())
		offset += t.ByteSize()
	}
	return result
}

// Narrow is not implemented in the mock backend.
func (m *MockBackend) Narrow(*RawTensor, int, int, int) *RawTensor {
	panic("narrow: not implemented in mock backend")
}
