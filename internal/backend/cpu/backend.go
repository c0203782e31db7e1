// Package cpu implements the CPU compute backend for the DarkGo runtime.
package cpu

import (
	"fmt"

	"github.com/darkgo-ml/darkgo/internal/parallel"
	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// Verify that Backend satisfies the tensor.Backend interface.
var _ tensor.Backend = (*Backend)(nil)

// Backend implements tensor operations on CPU. Spatial operations
// (convolution, pooling, upsampling, normalization) fan out across
// goroutines per channel plane; convolution lowers to a gonum matrix
// multiply via im2col.
type Backend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend with default parallelism.
func New() *Backend {
	return &Backend{
		device: tensor.CPU,
		par:    parallel.DefaultConfig(),
	}
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(cfg parallel.Config) *Backend {
	return &Backend{
		device: tensor.CPU,
		par:    cfg,
	}
}

// Name returns the backend name.
func (cpu *Backend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *Backend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *Backend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("add", a, b)
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *Backend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("sub", a, b)
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("mul", a, b)
}

// Div performs element-wise division with broadcasting.
func (cpu *Backend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("div", a, b)
}

// binaryOp allocates the broadcast result tensor and dispatches on dtype.
func (cpu *Backend) binaryOp(op string, a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", op, a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	result, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}

	switch a.DType() {
	case tensor.Float32:
		if !needsBroadcast && a.Shape().Equal(b.Shape()) {
			vectorizedFloat32(op, result.AsFloat32(), a.AsFloat32(), b.AsFloat32())
		} else {
			broadcastFloat32(op, result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), a.Shape(), b.Shape(), outShape)
		}
	case tensor.Float64:
		if !needsBroadcast && a.Shape().Equal(b.Shape()) {
			vectorizedFloat64(op, result.AsFloat64(), a.AsFloat64(), b.AsFloat64())
		} else {
			broadcastFloat64(op, result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), a.Shape(), b.Shape(), outShape)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}

	return result
}
