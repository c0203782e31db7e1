package darknet

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/darkgo-ml/darkgo/internal/backend/cpu"
	"github.com/darkgo-ml/darkgo/internal/tensor"
)

func TestNetwork_Forward_Detection(t *testing.T) {
	// One stride-1 convolution feeding a single-anchor, single-class
	// head: the grid matches the input resolution, so the output is one
	// box per pixel. On zero input the convolution emits zeros (fresh
	// batch normalization is the identity around zero), which makes
	// every decoded attribute a closed-form constant.
	net := buildFromConfig(t, `
[net]
width=416
height=416

[convolutional]
batch_normalize=1
filters=6
size=3
stride=1
pad=1
activation=leaky

[yolo]
mask = 0
anchors = 10,13
classes = 1
`)

	input := tensor.Zeros[float32](tensor.Shape{1, 3, 416, 416}, net.Backend())
	out := net.Forward(input)

	if out == nil {
		t.Fatal("Expected detections, got nil")
	}
	if !out.Shape().Equal(tensor.Shape{1, 416 * 416, 6}) {
		t.Fatalf("Expected shape [1 %d 6], got %v", 416*416, out.Shape())
	}

	// Box k sits at grid cell (k/416, k%416) with stride 1.
	checks := []struct {
		row, col int
	}{
		{0, 0},
		{0, 1},
		{5, 7},
		{415, 415},
	}
	for _, c := range checks {
		box := c.row*416 + c.col
		want := []float32{
			0.5 + float32(c.col),
			0.5 + float32(c.row),
			10, // exp(0) * anchor width
			13, // exp(0) * anchor height
			0.5,
			0.5,
		}
		got := out.Raw().AsFloat32()[box*6 : box*6+6]
		if !float32SliceEqual(got, want) {
			t.Errorf("Box (%d,%d): expected %v, got %v", c.row, c.col, want, got)
		}
	}
}

func TestNetwork_Forward_NoDetectionHead(t *testing.T) {
	net := buildFromConfig(t, `
[net]
width=8

[convolutional]
filters=4
size=1
stride=1
pad=0
activation=linear

[maxpool]
size=2
stride=2
`)

	input := tensor.Zeros[float32](tensor.Shape{1, 3, 8, 8}, net.Backend())
	if out := net.Forward(input); out != nil {
		t.Errorf("Expected nil without detection heads, got shape %v", out.Shape())
	}
}

func TestNetwork_Forward_WithUpsample(t *testing.T) {
	// Downsample with a strided convolution, then upsample back: the
	// head sees an 8x8 grid again.
	net := buildFromConfig(t, `
[net]
width=8

[convolutional]
filters=6
size=3
stride=2
pad=1
activation=linear

[upsample]
stride=2

[yolo]
mask=0
anchors=2,2
classes=1
`)

	input := tensor.Zeros[float32](tensor.Shape{1, 3, 8, 8}, net.Backend())
	out := net.Forward(input)

	if !out.Shape().Equal(tensor.Shape{1, 64, 6}) {
		t.Fatalf("Expected shape [1 64 6], got %v", out.Shape())
	}
	if got := out.At(0, 9, 0); got != 1.5 {
		t.Errorf("Expected box 9 at x=1.5, got %v", got)
	}
	if got := out.At(0, 9, 2); got != 2 {
		t.Errorf("Expected box width 2, got %v", got)
	}
}

func TestNetwork_Forward_MultipleHeads(t *testing.T) {
	// Two heads at different scales. The route steps back past the
	// first head's detections to the convolution's feature map, and the
	// final output lists the second head's boxes before the first's.
	net := buildFromConfig(t, `
[net]
width=8

[convolutional]
filters=6
size=1
stride=1
pad=0
activation=linear

[yolo]
mask=0
anchors=3,5
classes=1

[route]
layers=-2

[maxpool]
size=2
stride=2

[yolo]
mask=0
anchors=7,9
classes=1
`)

	input := tensor.Zeros[float32](tensor.Shape{1, 3, 8, 8}, net.Backend())
	out := net.Forward(input)

	// 16 coarse boxes (4x4 grid, stride 2) then 64 fine ones (8x8 grid,
	// stride 1).
	if !out.Shape().Equal(tensor.Shape{1, 80, 6}) {
		t.Fatalf("Expected shape [1 80 6], got %v", out.Shape())
	}

	if w, h := out.At(0, 0, 2), out.At(0, 0, 3); w != 7 || h != 9 {
		t.Errorf("Expected first box from the coarse head (7x9), got %vx%v", w, h)
	}
	if got := out.At(0, 0, 0); got != 1 {
		t.Errorf("Expected coarse box 0 at x=1, got %v", got)
	}

	if w, h := out.At(0, 16, 2), out.At(0, 16, 3); w != 3 || h != 5 {
		t.Errorf("Expected box 16 from the fine head (3x5), got %vx%v", w, h)
	}
	if got := out.At(0, 16, 0); got != 0.5 {
		t.Errorf("Expected fine box 0 at x=0.5, got %v", got)
	}
}

func TestNetwork_LoadWeights(t *testing.T) {
	// Zero kernels isolate the bias path: every output pixel carries
	// the per-filter bias, so each decoded attribute follows from one
	// loaded value.
	net := buildFromConfig(t, `
[net]
width=4

[convolutional]
filters=6
size=1
stride=1
pad=0
activation=linear

[yolo]
mask=0
anchors=2,3
classes=1
`)

	if got := net.WeightCount(); got != 24 {
		t.Fatalf("Expected 24 weights, got %d", got)
	}

	header := [5]int32{0, 2, 0, 1000, 0}
	bias := []float32{0.5, -0.5, 1, 0, 1, -1}
	floats := append(append([]float32{}, bias...), make([]float32, 18)...)

	if err := net.LoadWeights(weightStream(t, header, floats)); err != nil {
		t.Fatalf("LoadWeights failed: %v", err)
	}
	if net.WeightsHeader() != header {
		t.Errorf("Expected header %v, got %v", header, net.WeightsHeader())
	}

	input := tensor.Ones[float32](tensor.Shape{1, 3, 4, 4}, net.Backend())
	out := net.Forward(input)

	if !out.Shape().Equal(tensor.Shape{1, 16, 6}) {
		t.Fatalf("Expected shape [1 16 6], got %v", out.Shape())
	}

	// Cell (1,2) is box 6 on the 4x4 grid.
	want := []float32{
		sigmoid32(0.5) + 2,
		sigmoid32(-0.5) + 1,
		exp32(1) * 2,
		exp32(0) * 3,
		sigmoid32(1),
		sigmoid32(-1),
	}
	got := out.Raw().AsFloat32()[6*6 : 6*6+6]
	if !float32SliceEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestNetwork_LoadWeights_KernelApplied(t *testing.T) {
	// Uniform 0.1 kernels over an all-ones input add 0.3 to each bias,
	// which only holds if the kernel really is read after the bias.
	net := buildFromConfig(t, `
[net]
width=2

[convolutional]
filters=6
size=1
stride=1
pad=0
activation=linear

[yolo]
mask=0
anchors=1,1
classes=1
`)

	bias := []float32{0.5, -0.5, 1, 0, 1, -1}
	floats := append([]float32{}, bias...)
	for i := 0; i < 18; i++ {
		floats = append(floats, 0.1)
	}
	if err := net.LoadWeights(weightStream(t, [5]int32{}, floats)); err != nil {
		t.Fatalf("LoadWeights failed: %v", err)
	}

	input := tensor.Ones[float32](tensor.Shape{1, 3, 2, 2}, net.Backend())
	out := net.Forward(input)

	want := []float32{
		sigmoid32(bias[0] + 0.3),
		sigmoid32(bias[1] + 0.3),
		exp32(bias[2]+0.3) * 1,
		exp32(bias[3]+0.3) * 1,
		sigmoid32(bias[4] + 0.3),
		sigmoid32(bias[5] + 0.3),
	}
	got := out.Raw().AsFloat32()[0:6]
	if !float32SliceEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestNetwork_LoadWeights_BatchNorm(t *testing.T) {
	// The stream orders a normalized convolution as shift, scale,
	// running mean, running variance, kernel. Channel 4 (objectness)
	// gets values that would decode differently under any other order.
	net := buildFromConfig(t, `
[net]
width=2

[convolutional]
batch_normalize=1
filters=6
size=1
stride=1
pad=0
activation=linear

[yolo]
mask=0
anchors=1,1
classes=1
`)

	if got := net.WeightCount(); got != 42 {
		t.Fatalf("Expected 42 weights, got %d", got)
	}

	beta := []float32{0, 0, 0, 0, 2, 0}
	gamma := []float32{1, 1, 1, 1, 3, 1}
	mean := []float32{0, 0, 0, 0, 1, 0}
	variance := []float32{1, 1, 1, 1, 1, 1}

	floats := make([]float32, 0, 42)
	floats = append(floats, beta...)
	floats = append(floats, gamma...)
	floats = append(floats, mean...)
	floats = append(floats, variance...)
	floats = append(floats, make([]float32, 18)...)

	if err := net.LoadWeights(weightStream(t, [5]int32{}, floats)); err != nil {
		t.Fatalf("LoadWeights failed: %v", err)
	}

	input := tensor.Zeros[float32](tensor.Shape{1, 3, 2, 2}, net.Backend())
	out := net.Forward(input)

	// Convolution output is zero, so channel 4 normalizes to
	// 3*(0-1)/sqrt(1+eps) + 2.
	rawObj := float32(3*(0-1)/1.0000049999875+2) // sqrt(1+1e-5)
	if got, want := out.At(0, 0, 4), sigmoid32(rawObj); !float32SliceEqual([]float32{got}, []float32{want}) {
		t.Errorf("Expected objectness %v, got %v", want, got)
	}
	// Untouched channels keep identity statistics: sigmoid(0).
	if got := out.At(0, 0, 5); got != 0.5 {
		t.Errorf("Expected class score 0.5, got %v", got)
	}
}

func TestNetwork_Forward_RouteOrder(t *testing.T) {
	// The route concatenates the newer output first: attributes 0-2
	// must come from the second convolution, 3-5 from the first.
	net := buildFromConfig(t, `
[net]
width=4

[convolutional]
filters=3
size=1
stride=1
pad=0
activation=linear

[convolutional]
filters=3
size=1
stride=1
pad=0
activation=linear

[route]
layers=-1,-2

[yolo]
mask=0
anchors=1,1
classes=1
`)

	floats := make([]float32, 0, 24)
	floats = append(floats, 0, 5, -5)              // first conv bias
	floats = append(floats, make([]float32, 9)...) // first conv kernel
	floats = append(floats, 1, -1, 0)              // second conv bias
	floats = append(floats, make([]float32, 9)...) // second conv kernel

	if err := net.LoadWeights(weightStream(t, [5]int32{}, floats)); err != nil {
		t.Fatalf("LoadWeights failed: %v", err)
	}

	input := tensor.Zeros[float32](tensor.Shape{1, 3, 4, 4}, net.Backend())
	out := net.Forward(input)

	want := []float32{
		sigmoid32(1),  // x: second conv channel 0, cell (0,0)
		sigmoid32(-1), // y: second conv channel 1
		exp32(0),      // w: second conv channel 2
		exp32(0),      // h: first conv channel 0
		sigmoid32(5),  // objectness: first conv channel 1
		sigmoid32(-5), // class: first conv channel 2
	}
	got := out.Raw().AsFloat32()[0:6]
	if !float32SliceEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestNetwork_Forward_Shortcut(t *testing.T) {
	net := buildFromConfig(t, `
[net]
width=4

[convolutional]
filters=6
size=1
stride=1
pad=0
activation=linear

[convolutional]
filters=6
size=1
stride=1
pad=0
activation=linear

[shortcut]
from=-2
activation=linear

[yolo]
mask=0
anchors=2,3
classes=1
`)

	floats := make([]float32, 0, 66)
	floats = append(floats, 0.5, 0.5, 0.1, 0.1, 1, 1)    // first conv bias
	floats = append(floats, make([]float32, 18)...)      // first conv kernel
	floats = append(floats, 0.25, 0.25, 0.2, 0.2, 1, -3) // second conv bias
	floats = append(floats, make([]float32, 36)...)      // second conv kernel

	if err := net.LoadWeights(weightStream(t, [5]int32{}, floats)); err != nil {
		t.Fatalf("LoadWeights failed: %v", err)
	}

	input := tensor.Zeros[float32](tensor.Shape{1, 3, 4, 4}, net.Backend())
	out := net.Forward(input)

	// The shortcut adds the first convolution's map onto the second's.
	want := []float32{
		sigmoid32(0.75),
		sigmoid32(0.75),
		exp32(0.3) * 2,
		exp32(0.3) * 3,
		sigmoid32(2),
		sigmoid32(-2),
	}
	got := out.Raw().AsFloat32()[0:6]
	if !float32SliceEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestNetwork_Forward_LeakyActivation(t *testing.T) {
	net := buildFromConfig(t, `
[net]
width=1

[convolutional]
filters=6
size=1
stride=1
pad=0
activation=leaky

[yolo]
mask=0
anchors=4,6
classes=1
`)

	bias := []float32{-1, 1, -2, 0.5, 3, -0.5}
	floats := append(append([]float32{}, bias...), make([]float32, 18)...)
	if err := net.LoadWeights(weightStream(t, [5]int32{}, floats)); err != nil {
		t.Fatalf("LoadWeights failed: %v", err)
	}

	input := tensor.Zeros[float32](tensor.Shape{1, 3, 1, 1}, net.Backend())
	out := net.Forward(input)

	// Negative biases are scaled by the 0.1 slope before decoding.
	want := []float32{
		sigmoid32(-0.1) * 1,
		sigmoid32(1),
		exp32(-0.2) * 4,
		exp32(0.5) * 6,
		sigmoid32(3),
		sigmoid32(-0.05),
	}
	got := out.Raw().AsFloat32()
	if !float32SliceEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestNetwork_LoadWeights_Truncated(t *testing.T) {
	net := buildFromConfig(t, `
[net]
width=4

[convolutional]
filters=6
size=1
stride=1
pad=0
activation=linear
`)

	err := net.LoadWeights(weightStream(t, [5]int32{}, make([]float32, 10)))
	if err == nil {
		t.Fatal("Expected error for truncated stream")
	}

	var wfErr *WeightFormatError
	if !errors.As(err, &wfErr) {
		t.Fatalf("Expected *WeightFormatError, got %v", err)
	}
	if !strings.Contains(err.Error(), "layer 0") {
		t.Errorf("Expected error to name the failing layer: %v", err)
	}
}

func TestNetwork_LoadWeights_TrailingValuesIgnored(t *testing.T) {
	net := buildFromConfig(t, `
[net]
width=4

[convolutional]
filters=6
size=1
stride=1
pad=0
activation=linear
`)

	floats := make([]float32, net.WeightCount()+7)
	if err := net.LoadWeights(weightStream(t, [5]int32{}, floats)); err != nil {
		t.Errorf("Expected trailing values to be ignored, got %v", err)
	}
}

func TestNetwork_LoadWeights_Deterministic(t *testing.T) {
	cfg := `
[net]
width=4

[convolutional]
filters=6
size=1
stride=1
pad=0
activation=leaky

[yolo]
mask=0
anchors=2,3
classes=1
`
	floats := make([]float32, 24)
	for i := range floats {
		floats[i] = float32(i)*0.01 - 0.1
	}

	inputData := make([]float32, 3*4*4)
	for i := range inputData {
		inputData[i] = float32(i%7) * 0.25
	}

	outputs := make([][]float32, 2)
	for run := 0; run < 2; run++ {
		net := buildFromConfig(t, cfg)
		if err := net.LoadWeights(weightStream(t, [5]int32{}, floats)); err != nil {
			t.Fatalf("Run %d: LoadWeights failed: %v", run, err)
		}

		input := fromFloat32(t, net.Backend(), inputData, tensor.Shape{1, 3, 4, 4})
		outputs[run] = net.Forward(input).Raw().AsFloat32()
	}

	// Loaded weights replace every random initial value, so two fresh
	// networks must agree bit for bit.
	if len(outputs[0]) != len(outputs[1]) {
		t.Fatalf("Output sizes differ: %d vs %d", len(outputs[0]), len(outputs[1]))
	}
	for i := range outputs[0] {
		if outputs[0][i] != outputs[1][i] {
			t.Fatalf("Outputs diverge at %d: %v vs %v", i, outputs[0][i], outputs[1][i])
		}
	}
}

func TestNetwork_LoadWeightsFile(t *testing.T) {
	net := buildFromConfig(t, `
[net]
width=4

[convolutional]
filters=2
size=1
stride=1
pad=0
activation=linear
`)

	stream := weightStream(t, [5]int32{0, 2, 0, 1, 0}, make([]float32, net.WeightCount()))
	data := make([]byte, stream.Len())
	if _, err := stream.Read(data); err != nil {
		t.Fatalf("Failed to read stream: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.weights")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write weights file: %v", err)
	}

	if err := net.LoadWeightsFile(path); err != nil {
		t.Fatalf("LoadWeightsFile failed: %v", err)
	}
	if got := net.WeightsHeader(); got != [5]int32{0, 2, 0, 1, 0} {
		t.Errorf("Expected header [0 2 0 1 0], got %v", got)
	}

	if err := net.LoadWeightsFile(filepath.Join(t.TempDir(), "missing.weights")); err == nil {
		t.Errorf("Expected error for missing file")
	}
}

func TestLoadConfig(t *testing.T) {
	cfg := `
[net]
width=32

[convolutional]
filters=4
size=3
stride=1
pad=1
activation=leaky
`
	path := filepath.Join(t.TempDir(), "test.cfg")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	net, err := LoadConfig(path, cpu.New())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if net.NumLayers() != 1 {
		t.Errorf("Expected 1 layer, got %d", net.NumLayers())
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.cfg"), cpu.New()); err == nil {
		t.Errorf("Expected error for missing config file")
	}
}
