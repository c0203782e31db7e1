package cpu

import (
	"math"
	"testing"

	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// TestBackend_AddScalar tests scalar addition.
func TestBackend_AddScalar(t *testing.T) {
	backend := newTestBackend()

	x, _ := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, tensor.CPU)
	copy(x.AsFloat32(), []float32{1, 2, 3})

	result := backend.AddScalar(x, float32(10))

	expected := []float32{11, 12, 13}
	if !float32SliceEqual(result.AsFloat32(), expected) {
		t.Errorf("AddScalar failed: got %v, expected %v", result.AsFloat32(), expected)
	}
}

// TestBackend_MulScalar tests scalar multiplication.
func TestBackend_MulScalar(t *testing.T) {
	backend := newTestBackend()

	x, _ := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, tensor.CPU)
	copy(x.AsFloat32(), []float32{1, 2, 3})

	result := backend.MulScalar(x, float32(2.5))

	expected := []float32{2.5, 5, 7.5}
	if !float32SliceEqual(result.AsFloat32(), expected) {
		t.Errorf("MulScalar failed: got %v, expected %v", result.AsFloat32(), expected)
	}
}

// TestBackend_ScalarTypeMismatchPanics tests that a scalar whose type does
// not match the tensor dtype panics instead of silently converting.
func TestBackend_ScalarTypeMismatchPanics(t *testing.T) {
	backend := newTestBackend()

	x, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Float32, tensor.CPU)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for float64 scalar on float32 tensor")
		}
	}()

	backend.AddScalar(x, float64(1))
}

// TestBackend_Exp tests element-wise exponential.
func TestBackend_Exp(t *testing.T) {
	backend := newTestBackend()

	x, _ := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, tensor.CPU)
	copy(x.AsFloat32(), []float32{0, 1, -1})

	result := backend.Exp(x)

	expected := []float32{1, float32(math.E), float32(1 / math.E)}
	if !float32SliceEqual(result.AsFloat32(), expected) {
		t.Errorf("Exp failed: got %v, expected %v", result.AsFloat32(), expected)
	}
}

// TestBackend_Sigmoid tests the logistic function.
func TestBackend_Sigmoid(t *testing.T) {
	backend := newTestBackend()

	x, _ := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, tensor.CPU)
	copy(x.AsFloat32(), []float32{0, 100, -100})

	result := backend.Sigmoid(x)

	// sigmoid(0) = 0.5, saturates to 1 and 0 at the extremes.
	got := result.AsFloat32()
	if got[0] != 0.5 {
		t.Errorf("sigmoid(0): expected 0.5, got %v", got[0])
	}
	if got[1] < 0.9999 {
		t.Errorf("sigmoid(100): expected ~1, got %v", got[1])
	}
	if got[2] > 0.0001 {
		t.Errorf("sigmoid(-100): expected ~0, got %v", got[2])
	}
}

// TestBackend_LeakyReLU tests the leaky rectifier with the 0.1 slope
// used throughout detection networks.
func TestBackend_LeakyReLU(t *testing.T) {
	backend := newTestBackend()

	x, _ := tensor.NewRaw(tensor.Shape{4}, tensor.Float32, tensor.CPU)
	copy(x.AsFloat32(), []float32{-10, -1, 0, 5})

	result := backend.LeakyReLU(x, 0.1)

	expected := []float32{-1, -0.1, 0, 5}
	if !float32SliceEqual(result.AsFloat32(), expected) {
		t.Errorf("LeakyReLU failed: got %v, expected %v", result.AsFloat32(), expected)
	}
}

// TestBackend_LeakyReLUFloat64 tests the float64 path.
func TestBackend_LeakyReLUFloat64(t *testing.T) {
	backend := newTestBackend()

	x, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Float64, tensor.CPU)
	copy(x.AsFloat64(), []float64{-2, 3})

	result := backend.LeakyReLU(x, 0.1)

	got := result.AsFloat64()
	if math.Abs(got[0]-(-0.2)) > 1e-12 || got[1] != 3 {
		t.Errorf("LeakyReLU float64 failed: got %v", got)
	}
}
