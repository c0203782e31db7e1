package cpu

import (
	"fmt"
	"math"

	"github.com/darkgo-ml/darkgo/internal/parallel"
	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// MaxPool2D performs 2D max pooling with Darknet's implicit padding.
//
// Darknet pads the input by kernelSize-1 cells total, anchoring each
// window at -(kernelSize-1)/2, and ignores out-of-range cells when
// taking the maximum. Output spatial size is therefore
//
//	out = (in - 1) / stride + 1
//
// which keeps the spatial size for stride 1 and halves it (rounding up)
// for stride 2.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
func (cpu *Backend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	N := inputShape[0]
	C := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]

	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}

	HOut := (H-1)/stride + 1
	WOut := (W-1)/stride + 1
	offset := -(kernelSize - 1) / 2

	output, err := tensor.NewRaw(tensor.Shape{N, C, HOut, WOut}, input.DType(), cpu.Device())
	if err != nil {
		panic(fmt.Sprintf("maxpool2d: failed to create output: %v", err))
	}

	switch input.DType() {
	case tensor.Float32:
		cpu.maxpool2dFloat32(output, input, N, C, H, W, HOut, WOut, kernelSize, stride, offset)
	case tensor.Float64:
		cpu.maxpool2dFloat64(output, input, N, C, H, W, HOut, WOut, kernelSize, stride, offset)
	default:
		panic(fmt.Sprintf("maxpool2d: unsupported dtype %v", input.DType()))
	}

	return output
}

func (cpu *Backend) maxpool2dFloat32(output, input *tensor.RawTensor, N, C, H, W, HOut, WOut, kernelSize, stride, offset int) {
	inputData := input.AsFloat32()
	outputData := output.AsFloat32()

	parallel.ForBatch(N, C, func(n, c int) {
		channelData := inputData[(n*C+c)*H*W : (n*C+c+1)*H*W]
		outChannel := outputData[(n*C+c)*HOut*WOut : (n*C+c+1)*HOut*WOut]

		for outH := 0; outH < HOut; outH++ {
			hStart := outH*stride + offset
			for outW := 0; outW < WOut; outW++ {
				wStart := outW*stride + offset

				maxVal := float32(math.Inf(-1))
				for kh := 0; kh < kernelSize; kh++ {
					h := hStart + kh
					if h < 0 || h >= H {
						continue // Padding cell
					}
					rowData := channelData[h*W : (h+1)*W]
					for kw := 0; kw < kernelSize; kw++ {
						w := wStart + kw
						if w < 0 || w >= W {
							continue
						}
						if rowData[w] > maxVal {
							maxVal = rowData[w]
						}
					}
				}

				outChannel[outH*WOut+outW] = maxVal
			}
		}
	}, cpu.par)
}

func (cpu *Backend) maxpool2dFloat64(output, input *tensor.RawTensor, N, C, H, W, HOut, WOut, kernelSize, stride, offset int) {
	inputData := input.AsFloat64()
	outputData := output.AsFloat64()

	parallel.ForBatch(N, C, func(n, c int) {
		channelData := inputData[(n*C+c)*H*W : (n*C+c+1)*H*W]
		outChannel := outputData[(n*C+c)*HOut*WOut : (n*C+c+1)*HOut*WOut]

		for outH := 0; outH < HOut; outH++ {
			hStart := outH*stride + offset
			for outW := 0; outW < WOut; outW++ {
				wStart := outW*stride + offset

				maxVal := math.Inf(-1)
				for kh := 0; kh < kernelSize; kh++ {
					h := hStart + kh
					if h < 0 || h >= H {
						continue
					}
					rowData := channelData[h*W : (h+1)*W]
					for kw := 0; kw < kernelSize; kw++ {
						w := wStart + kw
						if w < 0 || w >= W {
							continue
						}
						if rowData[w] > maxVal {
							maxVal = rowData[w]
						}
					}
				}

				outChannel[outH*WOut+outW] = maxVal
			}
		}
	}, cpu.par)
}
