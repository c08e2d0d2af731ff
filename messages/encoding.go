package messages

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

var (
	layerEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	layerDecoder, _ = zstd.NewReader(nil)
)

// EncodeLayer compresses a row-major byte layer.
func EncodeLayer(layer []byte) []byte {
	return layerEncoder.EncodeAll(layer, make([]byte, 0, len(layer)/8))
}

// DecodeLayer reverses EncodeLayer and checks the expected cell count.
func DecodeLayer(data []byte, cells int) ([]byte, error) {
	out, err := layerDecoder.DecodeAll(data, make([]byte, 0, cells))
	if err != nil {
		return nil, fmt.Errorf("decode layer: %w", err)
	}
	if len(out) != cells {
		return nil, fmt.Errorf("decode layer: got %d cells, want %d", len(out), cells)
	}
	return out, nil
}
