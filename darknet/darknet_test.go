// Copyright 2025 The DarkGo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package darknet_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkgo-ml/darkgo/backend/cpu"
	"github.com/darkgo-ml/darkgo/darknet"
	"github.com/darkgo-ml/darkgo/tensor"
)

// tinyCfg is a one-head detection network small enough to verify by
// hand: a 1x1 convolution producing the 6 attributes of a single
// anchor (x, y, w, h, objectness, one class) over an 8x8 grid.
const tinyCfg = `[net]
width=8
height=8
channels=3

[convolutional]
filters=6
size=1
stride=1
pad=1
activation=linear

[yolo]
mask=0
anchors=4,6
classes=1
`

func writeConfig(t *testing.T, cfg string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.cfg")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func weightBytes(t *testing.T, header [5]int32, floats []float32) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, header))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, floats))
	return buf.Bytes()
}

func TestParseConfig(t *testing.T) {
	blocks, err := darknet.ParseConfig(strings.NewReader(tinyCfg))
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	assert.Equal(t, "net", blocks[0].Type)
	assert.Equal(t, "convolutional", blocks[1].Type)
	assert.Equal(t, "yolo", blocks[2].Type)

	filters, err := blocks[1].Int("filters")
	require.NoError(t, err)
	assert.Equal(t, 6, filters)
	assert.False(t, blocks[1].Has("batch_normalize"))

	anchors, err := blocks[2].Floats("anchors")
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 6}, anchors)
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
	}{
		{"pair before header", "width=8\n"},
		{"unterminated header", "[net\nwidth=8\n"},
		{"missing equals", "[net]\nwidth\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := darknet.ParseConfig(strings.NewReader(tt.cfg))
			require.Error(t, err)

			var cfgErr *darknet.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestBuild(t *testing.T) {
	blocks, err := darknet.ParseConfig(strings.NewReader(tinyCfg))
	require.NoError(t, err)

	net, err := darknet.Build(blocks, cpu.New())
	require.NoError(t, err)

	assert.Equal(t, 2, net.NumLayers())
	assert.Equal(t, 8, net.InputDim())
	assert.Equal(t, []int{6, 6}, net.OutChannels())
	// 6 biases + 6*3 1x1 kernel values; the yolo layer has none.
	assert.Equal(t, 24, net.WeightCount())

	summary := net.Summary()
	assert.Contains(t, summary, "Conv2D")
	assert.Contains(t, summary, "Yolo")
}

func TestBuild_BadConfig(t *testing.T) {
	blocks, err := darknet.ParseConfig(strings.NewReader("[net]\nheight=8\n"))
	require.NoError(t, err)

	_, err = darknet.Build(blocks, cpu.New())
	require.Error(t, err)

	var cfgErr *darknet.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "width", cfgErr.Key)
}

func TestLoadConfig(t *testing.T) {
	backend := cpu.New()
	net, err := darknet.LoadConfig(writeConfig(t, tinyCfg), backend)
	require.NoError(t, err)

	// A fresh network has zero biases, so a zero input leaves every
	// raw attribute at 0 and the decoded boxes are pure geometry:
	// x = (sigmoid(0)+cx)*stride, w = exp(0)*anchorW, and so on.
	input := tensor.Zeros[float32](tensor.Shape{1, 3, 8, 8}, backend)
	out := net.Forward(input)

	require.Equal(t, tensor.Shape{1, 64, 6}, out.Shape())

	first := []float32{0.5, 0.5, 4, 6, 0.5, 0.5}
	for attr, want := range first {
		assert.InDelta(t, want, out.At(0, 0, attr), 1e-5)
	}

	// Box 29 sits at row 3, column 5 of the grid.
	assert.InDelta(t, 5.5, out.At(0, 29, 0), 1e-5)
	assert.InDelta(t, 3.5, out.At(0, 29, 1), 1e-5)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := darknet.LoadConfig(filepath.Join(t.TempDir(), "nope.cfg"), cpu.New())
	require.Error(t, err)
}

func TestNetwork_LoadWeights(t *testing.T) {
	backend := cpu.New()
	net, err := darknet.LoadConfig(writeConfig(t, tinyCfg), backend)
	require.NoError(t, err)

	// Zero kernels keep the conv output equal to its bias, so the
	// objectness and class attributes decode to sigmoid(2) and
	// sigmoid(-2) in every cell.
	floats := make([]float32, net.WeightCount())
	copy(floats, []float32{0, 0, 0, 0, 2, -2})
	header := [5]int32{0, 2, 0, 32013, 0}

	require.NoError(t, net.LoadWeights(bytes.NewReader(weightBytes(t, header, floats))))
	assert.Equal(t, header, net.WeightsHeader())

	input := tensor.Zeros[float32](tensor.Shape{1, 3, 8, 8}, backend)
	out := net.Forward(input)
	require.Equal(t, tensor.Shape{1, 64, 6}, out.Shape())

	const (
		sigmoidPos2 = 0.8807970779778823
		sigmoidNeg2 = 0.11920292202211755
	)
	for _, box := range []int{0, 29, 63} {
		assert.InDelta(t, sigmoidPos2, out.At(0, box, 4), 1e-5)
		assert.InDelta(t, sigmoidNeg2, out.At(0, box, 5), 1e-5)
	}
}

func TestNetwork_LoadWeights_Truncated(t *testing.T) {
	net, err := darknet.LoadConfig(writeConfig(t, tinyCfg), cpu.New())
	require.NoError(t, err)

	// 10 floats cannot cover the 24 the convolution needs.
	stream := weightBytes(t, [5]int32{0, 2, 0, 0, 0}, make([]float32, 10))
	err = net.LoadWeights(bytes.NewReader(stream))
	require.Error(t, err)

	var wfErr *darknet.WeightFormatError
	assert.ErrorAs(t, err, &wfErr)
	assert.Contains(t, err.Error(), "layer 0")
}

func TestNewWeightReader(t *testing.T) {
	header := [5]int32{0, 2, 0, 500, 0}
	wr, err := darknet.NewWeightReader(bytes.NewReader(weightBytes(t, header, []float32{1, 2, 3})))
	require.NoError(t, err)

	assert.Equal(t, header, wr.Header())
	assert.Equal(t, 3, wr.Remaining())

	vals, err := wr.Next(2)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vals)
	assert.Equal(t, 1, wr.Remaining())
}

func TestDecodeDetections(t *testing.T) {
	backend := cpu.New()

	// One anchor on a 1x1 grid over an 8-pixel input: the cell offset
	// is 0 and the stride is the full input, so x = sigmoid(0)*8 = 4.
	raw, err := tensor.FromSlice(
		[]float32{0, 0, 0, 0, 2, -2},
		tensor.Shape{1, 6, 1, 1},
		backend,
	)
	require.NoError(t, err)

	out := darknet.DecodeDetections(raw, [][2]float32{{4, 6}}, 1, 8)
	require.Equal(t, tensor.Shape{1, 1, 6}, out.Shape())

	want := []float32{4, 4, 4, 6, 0.8807970779778823, 0.11920292202211755}
	for attr, v := range want {
		assert.InDelta(t, v, out.At(0, 0, attr), 1e-5)
	}
}
