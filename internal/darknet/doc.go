// Package darknet loads and runs Darknet detection networks.
//
// A Darknet model ships as two files: a plain-text configuration that
// lists the layers section by section, and a binary .weights file that
// holds the trained parameters as one flat float32 stream. This package
// parses the configuration, builds the layer graph it describes, reads
// the weights into the graph in the order the format prescribes, and
// runs single-pass inference that decodes the raw detection heads into
// bounding boxes.
//
// Key components:
//   - Block: one [section] of a parsed configuration file
//   - LayerSpec: typed, validated description of a single layer
//   - Network: the executable layer graph
//   - WeightReader: cursor over the flat weight stream
//   - DecodeDetections: feature map to bounding box transform
//
// Supported layer types:
//   - convolutional (with optional batch normalization and leaky activation)
//   - shortcut (residual addition)
//   - route (reuse or concatenate earlier outputs)
//   - upsample (bilinear)
//   - maxpool
//   - yolo (detection head)
//
// Example usage:
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
//	// detections: [1, boxes, 5+classes], centers and sizes in input pixels.
package darknet
