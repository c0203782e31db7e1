package darknet

import (
	"fmt"

	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// LayerIndex addresses one layer's output within a forward pass. It is a
// distinct type so resolved graph references cannot be mixed up with
// channel counts or weight-stream offsets.
type LayerIndex int

// History is the append-only record of every layer output produced
// during one forward pass, indexed by build position. Route and shortcut
// layers read earlier entries from it; it is discarded when the pass
// finishes.
type History[B tensor.Backend] struct {
	outputs []*tensor.Tensor[float32, B]
}

// NewHistory creates an empty history with room for n outputs.
func NewHistory[B tensor.Backend](n int) *History[B] {
	return &History[B]{outputs: make([]*tensor.Tensor[float32, B], 0, n)}
}

// Append records the next layer's output.
func (h *History[B]) Append(t *tensor.Tensor[float32, B]) {
	h.outputs = append(h.outputs, t)
}

// At returns the output of the layer at idx. The graph builder validates
// every reference against the build position, so an out-of-range index
// here means the network was not built through Build.
func (h *History[B]) At(idx LayerIndex) *tensor.Tensor[float32, B] {
	if idx < 0 || int(idx) >= len(h.outputs) {
		panic(fmt.Sprintf("history: layer index %d outside [0, %d)", idx, len(h.outputs)))
	}
	return h.outputs[idx]
}

// Len returns the number of outputs recorded so far.
func (h *History[B]) Len() int {
	return len(h.outputs)
}
