package cpu

import (
	"fmt"
	"math"

	"github.com/darkgo-ml/darkgo/internal/parallel"
	"github.com/darkgo-ml/darkgo/internal/tensor"
)

// BatchNorm2D applies per-channel batch normalization in inference mode:
//
//	out[n,c,h,w] = gamma[c] * (x[n,c,h,w] - mean[c]) / sqrt(variance[c] + eps) + beta[c]
//
// mean and variance are the running statistics stored in the weight
// file; no batch statistics are computed.
//
// x shape: [N, C, H, W]; mean, variance, gamma, beta shape: [C].
func (cpu *Backend) BatchNorm2D(x, mean, variance, gamma, beta *tensor.RawTensor, eps float64) *tensor.RawTensor {
	xShape := x.Shape()
	if len(xShape) != 4 {
		panic(fmt.Sprintf("batchnorm2d: expected 4D input [N,C,H,W], got %dD", len(xShape)))
	}

	N := xShape[0]
	C := xShape[1]
	plane := xShape[2] * xShape[3]

	for _, arg := range []struct {
		name string
		t    *tensor.RawTensor
	}{{"mean", mean}, {"variance", variance}, {"gamma", gamma}, {"beta", beta}} {
		if !arg.t.Shape().Equal(tensor.Shape{C}) {
			panic(fmt.Sprintf("batchnorm2d: %s shape %v, want [%d]", arg.name, arg.t.Shape(), C))
		}
		if arg.t.DType() != x.DType() {
			panic(fmt.Sprintf("batchnorm2d: %s dtype %s, want %s", arg.name, arg.t.DType(), x.DType()))
		}
	}

	output, err := tensor.NewRaw(xShape, x.DType(), cpu.Device())
	if err != nil {
		panic(fmt.Sprintf("batchnorm2d: failed to create output: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		cpu.batchnorm2dFloat32(output, x, mean, variance, gamma, beta, eps, N, C, plane)
	case tensor.Float64:
		cpu.batchnorm2dFloat64(output, x, mean, variance, gamma, beta, eps, N, C, plane)
	default:
		panic(fmt.Sprintf("batchnorm2d: unsupported dtype %v", x.DType()))
	}

	return output
}

func (cpu *Backend) batchnorm2dFloat32(output, x, mean, variance, gamma, beta *tensor.RawTensor, eps float64, N, C, plane int) {
	xData := x.AsFloat32()
	outData := output.AsFloat32()
	meanData := mean.AsFloat32()
	varData := variance.AsFloat32()
	gammaData := gamma.AsFloat32()
	betaData := beta.AsFloat32()

	// Fold the normalization into one multiply-add per element:
	// out = x*scale + shift with scale = gamma/sqrt(var+eps).
	scale := make([]float32, C)
	shift := make([]float32, C)
	for c := 0; c < C; c++ {
		s := float64(gammaData[c]) / math.Sqrt(float64(varData[c])+eps)
		scale[c] = float32(s)
		shift[c] = float32(float64(betaData[c]) - float64(meanData[c])*s)
	}

	parallel.ForBatch(N, C, func(n, c int) {
		in := xData[(n*C+c)*plane : (n*C+c+1)*plane]
		out := outData[(n*C+c)*plane : (n*C+c+1)*plane]
		for i, v := range in {
			out[i] = v*scale[c] + shift[c]
		}
	}, cpu.par)
}

func (cpu *Backend) batchnorm2dFloat64(output, x, mean, variance, gamma, beta *tensor.RawTensor, eps float64, N, C, plane int) {
	xData := x.AsFloat64()
	outData := output.AsFloat64()
	meanData := mean.AsFloat64()
	varData := variance.AsFloat64()
	gammaData := gamma.AsFloat64()
	betaData := beta.AsFloat64()

	scale := make([]float64, C)
	shift := make([]float64, C)
	for c := 0; c < C; c++ {
		scale[c] = gammaData[c] / math.Sqrt(varData[c]+eps)
		shift[c] = betaData[c] - meanData[c]*scale[c]
	}

	parallel.ForBatch(N, C, func(n, c int) {
		in := xData[(n*C+c)*plane : (n*C+c+1)*plane]
		out := outData[(n*C+c)*plane : (n*C+c+1)*plane]
		for i, v := range in {
			out[i] = v*scale[c] + shift[c]
		}
	}, cpu.par)
}
