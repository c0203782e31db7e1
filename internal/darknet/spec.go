package darknet

// LayerSpec is the validated, typed form of one layer block. Exactly one
// variant exists per supported block type; converting a Block into its
// variant is where every key presence, type and range check happens, so
// layers never see raw strings.
type LayerSpec interface {
	// BlockType returns the config block type the variant was derived from.
	BlockType() string
}

// ConvolutionalSpec describes a convolution stage: the convolution
// itself, optional batch normalization, and an optional activation.
// A batch-normalized convolution carries no learnable bias; the
// normalization's shift takes its place.
type ConvolutionalSpec struct {
	InChannels int
	Filters    int
	KernelSize int
	Stride     int
	Padding    int
	BatchNorm  bool
	Activation string
}

// ShortcutSpec adds an earlier layer's output to the current tensor.
// From is already resolved to an absolute layer index.
type ShortcutSpec struct {
	From LayerIndex
}

// RouteSpec re-routes earlier outputs: one source copies that layer's
// output, several concatenate along the channel axis in the order
// listed. Sources are already resolved to absolute indices.
type RouteSpec struct {
	Sources []LayerIndex
}

// UpsampleSpec enlarges the spatial dimensions by an integer factor.
type UpsampleSpec struct {
	Scale int
}

// MaxPoolSpec downsamples (or, with stride 1, locally smooths) the
// spatial dimensions by max pooling.
type MaxPoolSpec struct {
	Size   int
	Stride int
}

// YoloSpec describes a detection head: the anchor pairs selected by the
// block's mask, the class count, and the network input dimension the
// decoded boxes are scaled to.
type YoloSpec struct {
	Anchors  [][2]float32
	Classes  int
	InputDim int
}

func (ConvolutionalSpec) BlockType() string { return "convolutional" }
func (ShortcutSpec) BlockType() string      { return "shortcut" }
func (RouteSpec) BlockType() string         { return "route" }
func (UpsampleSpec) BlockType() string      { return "upsample" }
func (MaxPoolSpec) BlockType() string       { return "maxpool" }
func (YoloSpec) BlockType() string          { return "yolo" }

// makeLayerSpec converts a layer block at build position pos (0-based
// over the non-net blocks) into its typed spec and the layer's output
// channel count. inChannels is the channel count flowing into the layer;
// outChannels records the output channels of every already-built layer,
// which route and shortcut references are resolved and validated against.
func makeLayerSpec(block *Block, pos, inChannels, netWidth int, outChannels []int) (LayerSpec, int, error) {
	switch block.Type {
	case "convolutional":
		return makeConvolutionalSpec(block, inChannels)
	case "shortcut":
		return makeShortcutSpec(block, pos, inChannels)
	case "route":
		return makeRouteSpec(block, pos, outChannels)
	case "upsample":
		scale, err := positiveInt(block, "stride")
		if err != nil {
			return nil, 0, err
		}
		return UpsampleSpec{Scale: scale}, inChannels, nil
	case "maxpool":
		size, err := positiveInt(block, "size")
		if err != nil {
			return nil, 0, err
		}
		stride, err := positiveInt(block, "stride")
		if err != nil {
			return nil, 0, err
		}
		return MaxPoolSpec{Size: size, Stride: stride}, inChannels, nil
	case "yolo":
		return makeYoloSpec(block, inChannels, netWidth)
	default:
		return nil, 0, configErrf(block.Index, "", "unknown block type %q", block.Type)
	}
}

func makeConvolutionalSpec(block *Block, inChannels int) (LayerSpec, int, error) {
	filters, err := positiveInt(block, "filters")
	if err != nil {
		return nil, 0, err
	}
	size, err := positiveInt(block, "size")
	if err != nil {
		return nil, 0, err
	}
	stride, err := positiveInt(block, "stride")
	if err != nil {
		return nil, 0, err
	}
	pad, err := block.Int("pad")
	if err != nil {
		return nil, 0, err
	}
	activation, err := block.Str("activation")
	if err != nil {
		return nil, 0, err
	}

	padding := 0
	if pad != 0 {
		padding = (size - 1) / 2
	}

	spec := ConvolutionalSpec{
		InChannels: inChannels,
		Filters:    filters,
		KernelSize: size,
		Stride:     stride,
		Padding:    padding,
		BatchNorm:  block.Has("batch_normalize"),
		Activation: activation,
	}
	return spec, filters, nil
}

func makeShortcutSpec(block *Block, pos, inChannels int) (LayerSpec, int, error) {
	from, err := block.Int("from")
	if err != nil {
		return nil, 0, err
	}

	// The from offset is relative to the shortcut's own position even
	// when written as a positive number.
	idx := from + pos
	if idx < 0 || idx >= pos {
		return nil, 0, configErrf(block.Index, "from",
			"reference %d resolves to layer %d, outside [0, %d)", from, idx, pos)
	}
	return ShortcutSpec{From: LayerIndex(idx)}, inChannels, nil
}

func makeRouteSpec(block *Block, pos int, outChannels []int) (LayerSpec, int, error) {
	refs, err := block.Ints("layers")
	if err != nil {
		return nil, 0, err
	}
	if len(refs) == 0 {
		return nil, 0, configErrf(block.Index, "layers", "needs at least one layer index")
	}

	sources := make([]LayerIndex, len(refs))
	channels := 0
	for i, ref := range refs {
		idx := ref
		if idx < 0 {
			idx += pos
		}
		if idx < 0 || idx >= pos {
			return nil, 0, configErrf(block.Index, "layers",
				"reference %d resolves to layer %d, outside [0, %d)", ref, idx, pos)
		}
		sources[i] = LayerIndex(idx)
		channels += outChannels[idx]
	}
	return RouteSpec{Sources: sources}, channels, nil
}

func makeYoloSpec(block *Block, inChannels, netWidth int) (LayerSpec, int, error) {
	mask, err := block.Ints("mask")
	if err != nil {
		return nil, 0, err
	}
	anchorValues, err := block.Floats("anchors")
	if err != nil {
		return nil, 0, err
	}
	classes, err := positiveInt(block, "classes")
	if err != nil {
		return nil, 0, err
	}

	if len(anchorValues) == 0 || len(anchorValues)%2 != 0 {
		return nil, 0, configErrf(block.Index, "anchors",
			"expected width,height pairs, got %d values", len(anchorValues))
	}
	pairs := len(anchorValues) / 2

	anchors := make([][2]float32, len(mask))
	for i, m := range mask {
		if m < 0 || m >= pairs {
			return nil, 0, configErrf(block.Index, "mask",
				"anchor index %d outside [0, %d)", m, pairs)
		}
		anchors[i] = [2]float32{anchorValues[2*m], anchorValues[2*m+1]}
	}
	return YoloSpec{Anchors: anchors, Classes: classes, InputDim: netWidth}, inChannels, nil
}

func positiveInt(block *Block, key string) (int, error) {
	n, err := block.Int(key)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, configErrf(block.Index, key, "must be positive, got %d", n)
	}
	return n, nil
}
