package darknet

import (
	"fmt"

	"github.com/darkgo-ml/darkgo/internal/nn"
	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// inputChannels is the channel count of the network input (RGB).
const inputChannels = 3

// Build converts parsed config blocks into an executable Network.
//
// The first block must be the net metadata and supply at least a
// positive width; every later block describes one layer. Build threads
// the channel count through the layer sequence: each layer's input
// channels are the previous layer's output channels, with route and
// shortcut blocks resolved against the record of already-built layers.
// Any validation failure returns a *ConfigError naming the block.
func Build[B tensor.Backend](blocks []Block, backend B) (*Network[B], error) {
	if len(blocks) == 0 {
		return nil, &ConfigError{Block: -1, Msg: "config has no blocks"}
	}

	net := &blocks[0]
	if net.Type != "net" && net.Type != "network" {
		return nil, configErrf(net.Index, "", "first block must be [net], got [%s]", net.Type)
	}
	width, err := positiveInt(net, "width")
	if err != nil {
		return nil, err
	}

	numLayers := len(blocks) - 1
	inChannels := inputChannels
	outChannels := make([]int, 0, numLayers)
	layers := make([]Layer[B], 0, numLayers)

	for pos := 0; pos < numLayers; pos++ {
		spec, outC, err := makeLayerSpec(&blocks[pos+1], pos, inChannels, width, outChannels)
		if err != nil {
			return nil, err
		}
		layers = append(layers, newLayer(spec, backend))
		outChannels = append(outChannels, outC)
		inChannels = outC
	}

	return &Network[B]{
		layers:      layers,
		outChannels: outChannels,
		inputDim:    width,
		backend:     backend,
	}, nil
}

// newLayer instantiates the executable layer for a validated spec.
func newLayer[B tensor.Backend](spec LayerSpec, backend B) Layer[B] {
	switch s := spec.(type) {
	case ConvolutionalSpec:
		return newConvolutionalLayer(s, backend)
	case ShortcutSpec:
		return &shortcutLayer[B]{from: s.From}
	case RouteSpec:
		return &routeLayer[B]{sources: s.Sources}
	case UpsampleSpec:
		return &upsampleLayer[B]{up: nn.NewUpsample(s.Scale, backend)}
	case MaxPoolSpec:
		return &maxPoolLayer[B]{pool: nn.NewMaxPool2D(s.Size, s.Stride, backend)}
	case YoloSpec:
		return &yoloLayer[B]{anchors: s.Anchors, classes: s.Classes, inputDim: s.InputDim}
	default:
		panic(fmt.Sprintf("unhandled layer spec %T", spec))
	}
}
