package cpu

import (
	"testing"

	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// Helper to create test backend.
func newTestBackend() *Backend {
	return New()
}

// Helper to check float32 slices are equal within epsilon.
func float32SliceEqual(a, b []float32) bool {
	const epsilon = 1e-5
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > epsilon {
			return false
		}
	}
	return true
}

// TestBackend_New tests backend creation.
func TestBackend_New(t *testing.T) {
	backend := New()
	if backend == nil {
		t.Fatal("New() returned nil")
	}
	if backend.Name() != "CPU" {
		t.Errorf("Expected name 'CPU', got '%s'", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Expected device CPU, got %v", backend.Device())
	}
}

// TestBackend_Add tests element-wise addition.
func TestBackend_Add(t *testing.T) {
	backend := newTestBackend()

	t.Run("SameShape", func(t *testing.T) {
		a, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
		b, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)

		aData := a.AsFloat32()
		bData := b.AsFloat32()
		for i := range aData {
			aData[i] = float32(i + 1)  // 1, 2, 3, 4, 5, 6
			bData[i] = float32(i + 10) // 10, 11, 12, 13, 14, 15
		}

		result := backend.Add(a, b)

		expected := []float32{11, 13, 15, 17, 19, 21}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Add failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("InputsUntouched", func(t *testing.T) {
		a, _ := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, tensor.CPU)
		b, _ := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, tensor.CPU)

		aData := a.AsFloat32()
		bData := b.AsFloat32()
		aData[0], aData[1], aData[2] = 1, 2, 3
		bData[0], bData[1], bData[2] = 10, 20, 30

		result := backend.Add(a, b)

		if result == a || result == b {
			t.Fatal("Add must allocate a fresh result tensor")
		}
		if !float32SliceEqual(a.AsFloat32(), []float32{1, 2, 3}) {
			t.Errorf("Add modified its first operand: %v", a.AsFloat32())
		}
	})

	t.Run("Float64", func(t *testing.T) {
		a, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Float64, tensor.CPU)
		b, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Float64, tensor.CPU)
		a.AsFloat64()[0], a.AsFloat64()[1] = 1.5, 2.5
		b.AsFloat64()[0], b.AsFloat64()[1] = 0.25, 0.75

		result := backend.Add(a, b)

		got := result.AsFloat64()
		if got[0] != 1.75 || got[1] != 3.25 {
			t.Errorf("Add float64 failed: got %v", got)
		}
	})
}

// TestBackend_AddBroadcasting tests broadcasting addition, in particular
// the bias-over-feature-map pattern used by convolutional layers.
func TestBackend_AddBroadcasting(t *testing.T) {
	backend := newTestBackend()

	t.Run("RowPlusColumn", func(t *testing.T) {
		// [3, 1] + [4] -> [3, 4]
		a, _ := tensor.NewRaw(tensor.Shape{3, 1}, tensor.Float32, tensor.CPU)
		b, _ := tensor.NewRaw(tensor.Shape{4}, tensor.Float32, tensor.CPU)

		aData := a.AsFloat32()
		bData := b.AsFloat32()
		aData[0], aData[1], aData[2] = 1, 2, 3
		bData[0], bData[1], bData[2], bData[3] = 10, 20, 30, 40

		result := backend.Add(a, b)

		if !result.Shape().Equal(tensor.Shape{3, 4}) {
			t.Fatalf("Expected shape [3, 4], got %v", result.Shape())
		}

		expected := []float32{
			11, 21, 31, 41,
			12, 22, 32, 42,
			13, 23, 33, 43,
		}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Broadcast add failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("BiasOverFeatureMap", func(t *testing.T) {
		// [1, 2, 2, 2] + [1, 2, 1, 1] -> per-channel bias
		x, _ := tensor.NewRaw(tensor.Shape{1, 2, 2, 2}, tensor.Float32, tensor.CPU)
		bias, _ := tensor.NewRaw(tensor.Shape{1, 2, 1, 1}, tensor.Float32, tensor.CPU)

		xData := x.AsFloat32()
		for i := range xData {
			xData[i] = float32(i) // channel 0: 0..3, channel 1: 4..7
		}
		bias.AsFloat32()[0] = 100
		bias.AsFloat32()[1] = 200

		result := backend.Add(x, bias)

		expected := []float32{100, 101, 102, 103, 204, 205, 206, 207}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Bias broadcast failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})
}

// TestBackend_SubMulDiv tests the remaining element-wise operations.
func TestBackend_SubMulDiv(t *testing.T) {
	backend := newTestBackend()

	a, _ := tensor.NewRaw(tensor.Shape{4}, tensor.Float32, tensor.CPU)
	b, _ := tensor.NewRaw(tensor.Shape{4}, tensor.Float32, tensor.CPU)
	copy(a.AsFloat32(), []float32{10, 20, 30, 40})
	copy(b.AsFloat32(), []float32{2, 4, 5, 8})

	if got := backend.Sub(a, b).AsFloat32(); !float32SliceEqual(got, []float32{8, 16, 25, 32}) {
		t.Errorf("Sub failed: got %v", got)
	}
	if got := backend.Mul(a, b).AsFloat32(); !float32SliceEqual(got, []float32{20, 80, 150, 320}) {
		t.Errorf("Mul failed: got %v", got)
	}
	if got := backend.Div(a, b).AsFloat32(); !float32SliceEqual(got, []float32{5, 5, 6, 5}) {
		t.Errorf("Div failed: got %v", got)
	}
}

// TestBackend_DTypeMismatchPanics tests that mixing dtypes panics.
func TestBackend_DTypeMismatchPanics(t *testing.T) {
	backend := newTestBackend()

	a, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Float32, tensor.CPU)
	b, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Float64, tensor.CPU)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for dtype mismatch, but didn't panic")
		}
	}()

	backend.Add(a, b)
}

// TestBackend_IncompatibleShapesPanic tests that non-broadcastable shapes panic.
func TestBackend_IncompatibleShapesPanic(t *testing.T) {
	backend := newTestBackend()

	a, _ := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, tensor.CPU)
	b, _ := tensor.NewRaw(tensor.Shape{4}, tensor.Float32, tensor.CPU)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for incompatible shapes, but didn't panic")
		}
	}()

	backend.Add(a, b)
}
