package darknet

import (
	"fmt"

	"github.com/darkgo-ml/darkgo/internal/nn"
	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// leakySlope is the negative slope of the leaky activation; Darknet
// hard-codes 0.1.
const leakySlope = 0.1

// Layer is one executable node of a built network.
//
// Forward receives the output history of all earlier layers along with
// the running tensor, so reference layers (route, shortcut) and in-line
// layers share one signature. WeightCount and LoadWeights describe the
// layer's slice of the flat weight stream; layers without parameters
// report zero and leave the cursor untouched.
type Layer[B tensor.Backend] interface {
	Forward(hist *History[B], x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
	WeightCount() int
	LoadWeights(r *WeightReader) error
	String() string
}

// convolutionalLayer is convolution, optional batch normalization and
// optional leaky activation, executed in that order.
type convolutionalLayer[B tensor.Backend] struct {
	conv *nn.Conv2D[B]
	bn   *nn.BatchNorm2D[B] // nil without batch_normalize
	act  *nn.LeakyReLU[B]   // nil for identity activation
}

func newConvolutionalLayer[B tensor.Backend](spec ConvolutionalSpec, backend B) *convolutionalLayer[B] {
	layer := &convolutionalLayer[B]{
		conv: nn.NewConv2D(spec.InChannels, spec.Filters,
			spec.KernelSize, spec.Stride, spec.Padding, !spec.BatchNorm, backend),
	}
	if spec.BatchNorm {
		layer.bn = nn.NewBatchNorm2D(spec.Filters, backend)
	}
	// Any activation other than leaky passes through unmodified.
	if spec.Activation == "leaky" {
		layer.act = nn.NewLeakyReLU[B](leakySlope)
	}
	return layer
}

func (l *convolutionalLayer[B]) Forward(hist *History[B], x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	x = l.conv.Forward(x)
	if l.bn != nil {
		x = l.bn.Forward(x)
	}
	if l.act != nil {
		x = l.act.Forward(x)
	}
	return x
}

func (l *convolutionalLayer[B]) WeightCount() int {
	kernel := l.conv.Weight().NumElements()
	if l.bn != nil {
		return 4*l.conv.OutChannels() + kernel
	}
	return l.conv.OutChannels() + kernel
}

// LoadWeights consumes the layer's parameters from the stream in the
// serialization order of the format: for batch-normalized convolutions
// the shift, scale, running mean and running variance (each one value
// per filter), otherwise the convolution bias; then the kernel weights.
func (l *convolutionalLayer[B]) LoadWeights(r *WeightReader) error {
	filters := l.conv.OutChannels()

	if l.bn != nil {
		stats := []*nn.Parameter[B]{
			l.bn.Beta(), l.bn.Gamma(), l.bn.RunningMean(), l.bn.RunningVar(),
		}
		for _, param := range stats {
			values, err := r.Next(filters)
			if err != nil {
				return err
			}
			if err := param.SetData(values); err != nil {
				return err
			}
		}
	} else {
		values, err := r.Next(filters)
		if err != nil {
			return err
		}
		if err := l.conv.Bias().SetData(values); err != nil {
			return err
		}
	}

	values, err := r.Next(l.conv.Weight().NumElements())
	if err != nil {
		return err
	}
	return l.conv.Weight().SetData(values)
}

func (l *convolutionalLayer[B]) String() string {
	s := l.conv.String()
	if l.bn != nil {
		s += " + BatchNorm"
	}
	if l.act != nil {
		s += " + LeakyReLU"
	}
	return s
}

// shortcutLayer adds an earlier layer's output to the running tensor.
// The two outputs must have identical shapes; a mismatch is a config
// bug and aborts the pass.
type shortcutLayer[B tensor.Backend] struct {
	from LayerIndex
}

func (l *shortcutLayer[B]) Forward(hist *History[B], x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.Add(hist.At(l.from))
}

func (l *shortcutLayer[B]) WeightCount() int                { return 0 }
func (l *shortcutLayer[B]) LoadWeights(*WeightReader) error { return nil }

func (l *shortcutLayer[B]) String() string {
	return fmt.Sprintf("Shortcut(from=%d)", l.from)
}

// routeLayer replaces the running tensor with one earlier output, or
// with the channel-wise concatenation of several, in the order listed.
type routeLayer[B tensor.Backend] struct {
	sources []LayerIndex
}

func (l *routeLayer[B]) Forward(hist *History[B], x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if len(l.sources) == 1 {
		return hist.At(l.sources[0])
	}

	outputs := make([]*tensor.Tensor[float32, B], len(l.sources))
	for i, src := range l.sources {
		outputs[i] = hist.At(src)
	}
	return tensor.Cat(outputs, 1)
}

func (l *routeLayer[B]) WeightCount() int                { return 0 }
func (l *routeLayer[B]) LoadWeights(*WeightReader) error { return nil }

func (l *routeLayer[B]) String() string {
	return fmt.Sprintf("Route(layers=%v)", l.sources)
}

// upsampleLayer enlarges the spatial dimensions bilinearly.
type upsampleLayer[B tensor.Backend] struct {
	up *nn.Upsample[B]
}

func (l *upsampleLayer[B]) Forward(hist *History[B], x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return l.up.Forward(x)
}

func (l *upsampleLayer[B]) WeightCount() int                { return 0 }
func (l *upsampleLayer[B]) LoadWeights(*WeightReader) error { return nil }
func (l *upsampleLayer[B]) String() string                  { return l.up.String() }

// maxPoolLayer downsamples spatially by max pooling.
type maxPoolLayer[B tensor.Backend] struct {
	pool *nn.MaxPool2D[B]
}

func (l *maxPoolLayer[B]) Forward(hist *History[B], x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return l.pool.Forward(x)
}

func (l *maxPoolLayer[B]) WeightCount() int                { return 0 }
func (l *maxPoolLayer[B]) LoadWeights(*WeightReader) error { return nil }
func (l *maxPoolLayer[B]) String() string                  { return l.pool.String() }
