package darknet

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Weight file format:
// [5 x int32: header, version and training metadata, kept but not interpreted]
// [remaining bytes: flat little-endian float32 stream]
//
// The stream carries no per-layer framing; how many floats each layer
// consumes follows entirely from the built network's parameter shapes.

// WeightReader holds a parsed weight file and a monotonically advancing
// read cursor into its float stream. The cursor never rewinds: each
// layer consumes its parameters left to right in build order.
type WeightReader struct {
	header [5]int32
	floats []float32
	ptr    int
}

// NewWeightReader parses the header and float stream from r.
func NewWeightReader(r io.Reader) (*WeightReader, error) {
	wr := &WeightReader{}
	if err := binary.Read(r, binary.LittleEndian, &wr.header); err != nil {
		return nil, fmt.Errorf("failed to read weight header: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read weight stream: %w", err)
	}
	if len(data)%4 != 0 {
		return nil, &WeightFormatError{
			Msg: fmt.Sprintf("stream length %d bytes is not a whole number of floats", len(data)),
		}
	}

	wr.floats = make([]float32, len(data)/4)
	for i := range wr.floats {
		wr.floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return wr, nil
}

// Header returns the opaque file header.
func (r *WeightReader) Header() [5]int32 {
	return r.header
}

// Next consumes the next n floats and advances the cursor. The returned
// slice aliases the stream; callers copy it into parameter storage.
func (r *WeightReader) Next(n int) ([]float32, error) {
	if r.ptr+n > len(r.floats) {
		return nil, &WeightFormatError{
			Offset: r.ptr,
			Msg:    fmt.Sprintf("need %d floats, only %d remain", n, len(r.floats)-r.ptr),
		}
	}
	values := r.floats[r.ptr : r.ptr+n]
	r.ptr += n
	return values, nil
}

// Offset returns the cursor position in floats from the stream start.
func (r *WeightReader) Offset() int {
	return r.ptr
}

// Remaining returns how many floats are left to consume.
func (r *WeightReader) Remaining() int {
	return len(r.floats) - r.ptr
}
