// Copyright 2025 The DarkGo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package darknet loads and runs Darknet detection networks.
//
// # Overview
//
// A Darknet model ships as a plain-text configuration file listing the
// layers and a binary .weights file holding the trained parameters.
// This package parses the configuration, builds the network it
// describes, loads the weights, and runs inference:
//
//	backend := cpu.New()
//	net, err := darknet.LoadConfig("yolov3.cfg", backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := net.LoadWeightsFile("yolov3.weights"); err != nil {
//	    log.Fatal(err)
//	}
//
//	dim := net.InputDim()
//	input := tensor.Zeros[float32](tensor.Shape{1, 3, dim, dim}, backend)
//	detections := net.Forward(input)
//
// Forward returns the decoded boxes of every detection head as one
// [batch, boxes, 5+classes] tensor: center x, center y, width, height
// in input pixels, objectness, then per-class scores.
//
// Configuration problems surface as *ConfigError, malformed weight
// files as *WeightFormatError; both work with errors.As.
package darknet

import (
	"io"

	"github.com/darkgo-ml/darkgo/internal/darknet"
	"github.com/darkgo-ml/darkgo/tensor"
)

// Block is one [section] of a parsed configuration file.
type Block = darknet.Block

// LayerIndex addresses one layer's output within a forward pass.
type LayerIndex = darknet.LayerIndex

// LayerSpec is the validated, typed form of one layer block.
type LayerSpec = darknet.LayerSpec

// Typed layer specs, one per supported block type.
type (
	ConvolutionalSpec = darknet.ConvolutionalSpec
	ShortcutSpec      = darknet.ShortcutSpec
	RouteSpec         = darknet.RouteSpec
	UpsampleSpec      = darknet.UpsampleSpec
	MaxPoolSpec       = darknet.MaxPoolSpec
	YoloSpec          = darknet.YoloSpec
)

// Network is an executable Darknet layer graph.
type Network[B tensor.Backend] = darknet.Network[B]

// WeightReader is a cursor over a parsed .weights stream.
type WeightReader = darknet.WeightReader

// ConfigError describes a problem with a network configuration.
type ConfigError = darknet.ConfigError

// WeightFormatError describes a malformed weight file.
type WeightFormatError = darknet.WeightFormatError

// ParseConfig reads a Darknet config into its ordered block sequence.
func ParseConfig(r io.Reader) ([]Block, error) {
	return darknet.ParseConfig(r)
}

// ParseConfigFile reads and parses a Darknet config file.
func ParseConfigFile(path string) ([]Block, error) {
	return darknet.ParseConfigFile(path)
}

// Build converts parsed config blocks into an executable Network.
func Build[B tensor.Backend](blocks []Block, backend B) (*Network[B], error) {
	return darknet.Build(blocks, backend)
}

// LoadConfig parses a configuration file and builds the network it
// describes.
func LoadConfig[B tensor.Backend](path string, backend B) (*Network[B], error) {
	return darknet.LoadConfig(path, backend)
}

// NewWeightReader parses the header and float stream of a .weights
// blob. Most callers use Network.LoadWeights instead.
func NewWeightReader(r io.Reader) (*WeightReader, error) {
	return darknet.NewWeightReader(r)
}

// DecodeDetections transforms a raw detection feature map of shape
// [batch, anchors*(5+classes), grid, grid] into decoded boxes of shape
// [batch, anchors*grid*grid, 5+classes]. Network.Forward applies it to
// every yolo layer automatically; it is exported for running custom
// heads.
func DecodeDetections[B tensor.Backend](
	x *tensor.Tensor[float32, B],
	anchors [][2]float32,
	numClasses, inputDim int,
) *tensor.Tensor[float32, B] {
	return darknet.DecodeDetections(x, anchors, numClasses, inputDim)
}
