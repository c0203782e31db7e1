package cpu

import (
	"fmt"
	"math"

	"github.com/darkgo-ml/darkgo/internal/parallel"
	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// Upsample2D enlarges the spatial dimensions by an integer scale factor
// using bilinear interpolation.
//
// Source coordinates follow the half-pixel convention (PyTorch's
// align_corners=false): src = (dst + 0.5)/scale - 0.5, clamped at the
// borders. Darknet route/shortcut graphs rely on the exact output size
// [N, C, H*scale, W*scale].
func (cpu *Backend) Upsample2D(input *tensor.RawTensor, scale int) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("upsample2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if scale <= 0 {
		panic(fmt.Sprintf("upsample2d: invalid scale factor %d", scale))
	}

	N := inputShape[0]
	C := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]
	HOut := H * scale
	WOut := W * scale

	output, err := tensor.NewRaw(tensor.Shape{N, C, HOut, WOut}, input.DType(), cpu.Device())
	if err != nil {
		panic(fmt.Sprintf("upsample2d: failed to create output: %v", err))
	}

	switch input.DType() {
	case tensor.Float32:
		cpu.upsample2dFloat32(output, input, N, C, H, W, HOut, WOut, scale)
	case tensor.Float64:
		cpu.upsample2dFloat64(output, input, N, C, H, W, HOut, WOut, scale)
	default:
		panic(fmt.Sprintf("upsample2d: unsupported dtype %v", input.DType()))
	}

	return output
}

// sourceCoord maps an output index to the interpolation source: the
// lower neighbor index, the upper neighbor index (border-clamped) and
// the fractional weight of the upper neighbor.
func sourceCoord(dst, scale, size int) (lo, hi int, frac float64) {
	src := (float64(dst)+0.5)/float64(scale) - 0.5
	if src < 0 {
		src = 0
	}
	lo = int(math.Floor(src))
	hi = lo + 1
	if hi > size-1 {
		hi = size - 1
	}
	return lo, hi, src - float64(lo)
}

func (cpu *Backend) upsample2dFloat32(output, input *tensor.RawTensor, N, C, H, W, HOut, WOut, scale int) {
	inputData := input.AsFloat32()
	outputData := output.AsFloat32()

	parallel.ForBatch(N, C, func(n, c int) {
		in := inputData[(n*C+c)*H*W : (n*C+c+1)*H*W]
		out := outputData[(n*C+c)*HOut*WOut : (n*C+c+1)*HOut*WOut]

		for oh := 0; oh < HOut; oh++ {
			h0, h1, hf := sourceCoord(oh, scale, H)
			row0 := in[h0*W : (h0+1)*W]
			row1 := in[h1*W : (h1+1)*W]

			for ow := 0; ow < WOut; ow++ {
				w0, w1, wf := sourceCoord(ow, scale, W)

				top := float64(row0[w0]) + wf*float64(row0[w1]-row0[w0])
				bottom := float64(row1[w0]) + wf*float64(row1[w1]-row1[w0])
				out[oh*WOut+ow] = float32(top + hf*(bottom-top))
			}
		}
	}, cpu.par)
}

func (cpu *Backend) upsample2dFloat64(output, input *tensor.RawTensor, N, C, H, W, HOut, WOut, scale int) {
	inputData := input.AsFloat64()
	outputData := output.AsFloat64()

	parallel.ForBatch(N, C, func(n, c int) {
		in := inputData[(n*C+c)*H*W : (n*C+c+1)*H*W]
		out := outputData[(n*C+c)*HOut*WOut : (n*C+c+1)*HOut*WOut]

		for oh := 0; oh < HOut; oh++ {
			h0, h1, hf := sourceCoord(oh, scale, H)
			row0 := in[h0*W : (h0+1)*W]
			row1 := in[h1*W : (h1+1)*W]

			for ow := 0; ow < WOut; ow++ {
				w0, w1, wf := sourceCoord(ow, scale, W)

				top := row0[w0] + wf*(row0[w1]-row0[w0])
				bottom := row1[w0] + wf*(row1[w1]-row1[w0])
				out[oh*WOut+ow] = top + hf*(bottom-top)
			}
		}
	}, cpu.par)
}
