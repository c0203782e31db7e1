package darknet

import (
	"fmt"

	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// yoloLayer decodes a detection head's raw feature map into bounding
// boxes. It terminates a spatial branch: its output is a detection list,
// not a feature map, and downstream layers never consume it.
type yoloLayer[B tensor.Backend] struct {
	anchors  [][2]float32
	classes  int
	inputDim int
}

func (l *yoloLayer[B]) Forward(hist *History[B], x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return DecodeDetections(x, l.anchors, l.classes, l.inputDim)
}

func (l *yoloLayer[B]) WeightCount() int                { return 0 }
func (l *yoloLayer[B]) LoadWeights(*WeightReader) error { return nil }

func (l *yoloLayer[B]) String() string {
	return fmt.Sprintf("Yolo(anchors=%v, classes=%d)", l.anchors, l.classes)
}

// DecodeDetections transforms a raw detection feature map of shape
// [batch, anchors*(5+classes), grid, grid] into decoded boxes of shape
// [batch, anchors*grid*grid, 5+classes].
//
// Per box the attributes are center x, center y, width, height,
// objectness, then one score per class. Centers are squashed through a
// sigmoid, offset by their grid cell and scaled by the stride
// (input dimension / grid size) into input-pixel units. Width and height
// are exponentiated and multiplied by the anchor sizes, which are
// already in pixels. Objectness and class scores are squashed through a
// sigmoid.
//
// The transform is pure: the input tensor is left untouched.
func DecodeDetections[B tensor.Backend](
	x *tensor.Tensor[float32, B],
	anchors [][2]float32,
	numClasses, inputDim int,
) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("detection: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	if shape[2] != shape[3] {
		panic(fmt.Sprintf("detection: grid must be square, got %dx%d", shape[2], shape[3]))
	}

	batch := shape[0]
	grid := shape[2]
	numAnchors := len(anchors)
	attrs := 5 + numClasses

	if numAnchors == 0 || numClasses <= 0 {
		panic(fmt.Sprintf("detection: need anchors and classes, got %d and %d", numAnchors, numClasses))
	}
	if shape[1] != numAnchors*attrs {
		panic(fmt.Sprintf("detection: %d channels, want %d anchors x %d attributes",
			shape[1], numAnchors, attrs))
	}

	stride := inputDim / grid
	if stride <= 0 {
		panic(fmt.Sprintf("detection: grid %d larger than input dimension %d", grid, inputDim))
	}

	d := x.Reshape(batch, numAnchors, attrs, grid, grid)

	// Box centers: sigmoid into (0,1) within the cell, shift by the cell
	// coordinates, scale to input pixels.
	xy := d.Narrow(2, 0, 2).
		Sigmoid().
		Add(gridOffsets(grid, x.Backend())).
		MulScalar(float32(stride))

	// Box sizes: exponential scaling of the matching anchor box.
	wh := d.Narrow(2, 2, 2).
		Exp().
		Mul(anchorSizes(anchors, x.Backend()))

	// Objectness and class scores share one sigmoid.
	scores := d.Narrow(2, 4, 1+numClasses).Sigmoid()

	d = tensor.Cat([]*tensor.Tensor[float32, B]{xy, wh, scores}, 2)

	// [N, A, attrs, G, G] -> [N, A*G*G, attrs] with the box axis ordered
	// anchor-major, then row, then column.
	return d.Transpose(0, 2, 1, 3, 4).
		Reshape(batch, attrs, numAnchors*grid*grid).
		Transpose(0, 2, 1)
}

// gridOffsets builds the per-cell center offsets as a [1, 1, 2, grid, grid]
// tensor: channel 0 holds the column index, channel 1 the row index.
func gridOffsets[B tensor.Backend](grid int, backend B) *tensor.Tensor[float32, B] {
	data := make([]float32, 2*grid*grid)
	plane := grid * grid
	for row := 0; row < grid; row++ {
		for col := 0; col < grid; col++ {
			data[row*grid+col] = float32(col)
			data[plane+row*grid+col] = float32(row)
		}
	}

	t, err := tensor.FromSlice(data, tensor.Shape{1, 1, 2, grid, grid}, backend)
	if err != nil {
		panic(fmt.Sprintf("detection: grid offsets: %v", err))
	}
	return t
}

// anchorSizes lays the anchor (width, height) pairs out as a
// [1, anchors, 2, 1, 1] tensor for broadcasting over the grid.
func anchorSizes[B tensor.Backend](anchors [][2]float32, backend B) *tensor.Tensor[float32, B] {
	data := make([]float32, 0, 2*len(anchors))
	for _, a := range anchors {
		data = append(data, a[0], a[1])
	}

	t, err := tensor.FromSlice(data, tensor.Shape{1, len(anchors), 2, 1, 1}, backend)
	if err != nil {
		panic(fmt.Sprintf("detection: anchor sizes: %v", err))
	}
	return t
}
