package darknet

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// Network is an executable Darknet layer graph built from a parsed
// configuration. Build it with Build or LoadConfig, fill the parameters
// with LoadWeights, then call Forward.
type Network[B tensor.Backend] struct {
	layers      []Layer[B]
	outChannels []int
	inputDim    int
	header      [5]int32
	backend     B
}

// LoadConfig parses a configuration file and builds the network it
// describes.
func LoadConfig[B tensor.Backend](path string, backend B) (*Network[B], error) {
	blocks, err := ParseConfigFile(path)
	if err != nil {
		return nil, err
	}
	return Build(blocks, backend)
}

// Forward runs one pass over input, shaped [batch, 3, dim, dim]. Every
// layer's output is recorded so route and shortcut layers can reach
// back to it.
//
// The return value is the decoded output of all yolo heads concatenated
// along the box axis, shaped [batch, boxes, 5+classes], with the most
// recently executed head first. A network without yolo layers returns
// nil. Shape mismatches between connected layers mean the configuration
// does not describe a runnable graph and panic.
func (n *Network[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	hist := NewHistory[B](len(n.layers))
	x := input
	var detections *tensor.Tensor[float32, B]

	for _, layer := range n.layers {
		x = layer.Forward(hist, x)
		if _, ok := layer.(*yoloLayer[B]); ok {
			if detections == nil {
				detections = x
			} else {
				detections = tensor.Cat([]*tensor.Tensor[float32, B]{x, detections}, 1)
			}
		}
		hist.Append(x)
	}

	return detections
}

// LoadWeights reads a .weights stream into the network. The five-int32
// header is retained for inspection via WeightsHeader; the float32
// payload is handed to the layers in build order, each consuming its
// WeightCount values. Trailing values left after the last layer are
// ignored.
func (n *Network[B]) LoadWeights(r io.Reader) error {
	wr, err := NewWeightReader(r)
	if err != nil {
		return err
	}
	n.header = wr.Header()

	for i, layer := range n.layers {
		if err := layer.LoadWeights(wr); err != nil {
			return fmt.Errorf("layer %d (%s): %w", i, layer, err)
		}
	}
	return nil
}

// LoadWeightsFile reads a .weights file into the network.
func (n *Network[B]) LoadWeightsFile(path string) error {
	//nolint:gosec // G304: opening a caller-supplied weights path is the purpose here
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open weights: %w", err)
	}
	defer file.Close()

	return n.LoadWeights(file)
}

// InputDim returns the square input resolution declared by the net
// block.
func (n *Network[B]) InputDim() int {
	return n.inputDim
}

// NumLayers returns the number of layers in the graph.
func (n *Network[B]) NumLayers() int {
	return len(n.layers)
}

// OutChannels returns a copy of the per-layer output channel counts in
// build order.
func (n *Network[B]) OutChannels() []int {
	out := make([]int, len(n.outChannels))
	copy(out, n.outChannels)
	return out
}

// WeightCount returns the number of float32 values the network consumes
// from a weight stream.
func (n *Network[B]) WeightCount() int {
	total := 0
	for _, layer := range n.layers {
		total += layer.WeightCount()
	}
	return total
}

// WeightsHeader returns the header of the last loaded weight stream:
// the format version triple followed by the training image counter. It
// is the zero value until LoadWeights succeeds.
func (n *Network[B]) WeightsHeader() [5]int32 {
	return n.header
}

// Backend returns the backend the network executes on.
func (n *Network[B]) Backend() B {
	return n.backend
}

// Summary returns a one-line-per-layer description of the graph.
func (n *Network[B]) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "input %dx%dx%d, %d layers\n",
		inputChannels, n.inputDim, n.inputDim, len(n.layers))
	for i, layer := range n.layers {
		fmt.Fprintf(&sb, "%3d  %-52s -> %4d channels\n", i, layer, n.outChannels[i])
	}
	return sb.String()
}
