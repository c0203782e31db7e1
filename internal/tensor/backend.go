package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// The operation surface is the set a Darknet-style detection network
// needs for inference: element-wise arithmetic with broadcasting, the
// spatial layer primitives, the activations the config format names,
// and tensor reshaping for the detection decode.
//
// Backends panic on structurally invalid inputs (shape or dtype
// mismatches). Such conditions are programming errors, not runtime
// conditions a caller could recover from.
type Backend interface {
	// Element-wise binary operations (NumPy-style broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar operations (element-wise with scalar)
	AddScalar(x *RawTensor, scalar any) *RawTensor
	MulScalar(x *RawTensor, scalar any) *RawTensor

	// Math operations (element-wise): exponential, the logistic
	// function 1/(1+exp(-x)), and max(x, slope*x)
	Exp(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	LeakyReLU(x *RawTensor, slope float64) *RawTensor

	// Spatial operations on [N, C, H, W] tensors
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor
	MaxPool2D(input *RawTensor, kernelSize, stride int) *RawTensor
	Upsample2D(input *RawTensor, scale int) *RawTensor
	BatchNorm2D(x, mean, variance, gamma, beta *RawTensor, eps float64) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Manipulation operations: concatenation along a dimension and a
	// contiguous slice along a dimension
	Cat(tensors []*RawTensor, dim int) *RawTensor
	Narrow(x *RawTensor, dim, start, length int) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
