package tensor

import (
	"math"
	"strings"
	"testing"
)

func assertEqualFloat32(t *testing.T, expected, actual float32, msg string) {
	t.Helper()
	if math.Abs(float64(expected-actual)) > 1e-6 {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float32, 4},
		{Float64, 8},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(Shape{2, 3}) {
		t.Errorf("shape = %v, want [2 3]", raw.Shape())
	}
	if raw.ByteSize() != 24 {
		t.Errorf("byte size = %d, want 24", raw.ByteSize())
	}

	// Zero-initialized
	for i, v := range raw.AsFloat32() {
		if v != 0 {
			t.Fatalf("element %d = %v, want 0", i, v)
		}
	}
}

func TestNewRawInvalidShape(t *testing.T) {
	if _, err := NewRaw(Shape{2, 0}, Float32, CPU); err == nil {
		t.Error("NewRaw accepted zero dimension")
	}
}

func TestRawTensorDTypeGuard(t *testing.T) {
	raw, _ := NewRaw(Shape{2}, Float32, CPU)

	defer func() {
		if recover() == nil {
			t.Error("AsFloat64 on float32 tensor did not panic")
		}
	}()
	raw.AsFloat64()
}

func TestRawTensorCloneIsDeep(t *testing.T) {
	raw, _ := NewRaw(Shape{4}, Float32, CPU)
	raw.AsFloat32()[0] = 7

	clone := raw.Clone()
	clone.AsFloat32()[0] = 42

	if raw.AsFloat32()[0] != 7 {
		t.Errorf("mutating clone changed original: %v", raw.AsFloat32()[0])
	}
}

func TestFromSlice(t *testing.T) {
	backend := NewMockBackend()

	data := []float32{1, 2, 3, 4, 5, 6}
	x, err := FromSlice(data, Shape{2, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	assertEqualFloat32(t, 6, x.At(1, 2), "At(1,2)")

	// FromSlice copies: mutating the source slice must not change the tensor.
	data[0] = 100
	assertEqualFloat32(t, 1, x.At(0, 0), "At(0,0) after source mutation")
}

func TestFromSliceLengthMismatch(t *testing.T) {
	backend := NewMockBackend()
	if _, err := FromSlice([]float32{1, 2, 3}, Shape{2, 3}, backend); err == nil {
		t.Error("FromSlice accepted mismatched length")
	}
}

func TestAtSet(t *testing.T) {
	backend := NewMockBackend()
	x := Zeros[float32](Shape{3, 4}, backend)

	x.Set(2.5, 1, 2)
	assertEqualFloat32(t, 2.5, x.At(1, 2), "At after Set")
	assertEqualFloat32(t, 0, x.At(0, 0), "untouched element")
}

func TestAtOutOfBounds(t *testing.T) {
	backend := NewMockBackend()
	x := Zeros[float32](Shape{3, 4}, backend)

	defer func() {
		if recover() == nil {
			t.Error("At with out-of-range index did not panic")
		}
	}()
	x.At(3, 0)
}

func TestAddWithBroadcast(t *testing.T) {
	backend := NewMockBackend()

	x, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, backend)
	bias, _ := FromSlice([]float32{10, 20, 30}, Shape{1, 3}, backend)

	y := x.Add(bias)

	want := []float32{11, 22, 33, 14, 25, 36}
	for i, v := range y.Data() {
		assertEqualFloat32(t, want[i], v, "broadcast add")
	}
}

func TestScalarOps(t *testing.T) {
	backend := NewMockBackend()
	x, _ := FromSlice([]float32{1, 2, 3}, Shape{3}, backend)

	y := x.MulScalar(2).AddScalar(1)

	want := []float32{3, 5, 7}
	for i, v := range y.Data() {
		assertEqualFloat32(t, want[i], v, "scalar chain")
	}
}

func TestTensorCloneIsDeep(t *testing.T) {
	backend := NewMockBackend()
	x, _ := FromSlice([]float32{1, 2, 3}, Shape{3}, backend)

	y := x.Clone()
	y.Set(99, 0)

	assertEqualFloat32(t, 1, x.At(0), "original after clone mutation")
}

func TestCatDim0(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2}, Shape{1, 2}, backend)
	b, _ := FromSlice([]float32{3, 4}, Shape{1, 2}, backend)

	c := Cat([]*Tensor[float32, *MockBackend]{a, b}, 0)

	if !c.Shape().Equal(Shape{2, 2}) {
		t.Fatalf("cat shape = %v, want [2 2]", c.Shape())
	}
	want := []float32{1, 2, 3, 4}
	for i, v := range c.Data() {
		assertEqualFloat32(t, want[i], v, "cat data")
	}
}

func TestCatSingleClones(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2}, Shape{2}, backend)

	c := Cat([]*Tensor[float32, *MockBackend]{a}, 0)
	c.Set(50, 0)

	assertEqualFloat32(t, 1, a.At(0), "cat single must copy")
}

func TestTensorString(t *testing.T) {
	backend := NewMockBackend()
	x := Zeros[float32](Shape{2, 3}, backend)

	s := x.String()
	if !strings.Contains(s, "float32") || !strings.Contains(s, "[2 3]") {
		t.Errorf("unexpected String(): %q", s)
	}
}
