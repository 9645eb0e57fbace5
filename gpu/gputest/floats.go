package gputest

import (
	"encoding/binary"
	"math"
)

// Floats decodes little-endian float32 data such as Draw.Vertices.
func Floats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}
