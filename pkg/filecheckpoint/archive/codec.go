package archive

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/checkpoint"
)

// DefaultCompressionLevel is zstd's default speed/ratio trade-off.
const DefaultCompressionLevel = int(zstd.SpeedDefault)

// Codec turns checkpoints into compressed blobs for a Store and back.
// A Codec is safe for concurrent use.
type Codec struct {
	level   zstd.EncoderLevel
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCodec creates a codec compressing at level, from 1 (fastest)
// to 4 (best compression).
func NewCodec(level int) (*Codec, error) {
	lvl := zstd.EncoderLevel(level)
	if lvl < zstd.SpeedFastest || lvl > zstd.SpeedBestCompression {
		return nil, fmt.Errorf("compression level %d out of range [%d, %d]",
			level, zstd.SpeedFastest, zstd.SpeedBestCompression)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(lvl))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Codec{level: lvl, encoder: encoder, decoder: decoder}, nil
}

// Level returns the configured compression level.
func (c *Codec) Level() int {
	return int(c.level)
}

// Encode serializes cp and compresses the result.
func (c *Codec) Encode(cp checkpoint.Checkpoint) ([]byte, error) {
	raw, err := cp.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal checkpoint: %w", err)
	}
	return c.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// Decode reverses Encode.
func (c *Codec) Decode(data []byte) (checkpoint.Checkpoint, error) {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return checkpoint.Checkpoint{}, fmt.Errorf("decompress checkpoint: %w", err)
	}
	cp, err := checkpoint.Unmarshal(raw)
	if err != nil {
		return checkpoint.Checkpoint{}, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return cp, nil
}

// Close releases the encoder and decoder.
func (c *Codec) Close() {
	c.encoder.Close()
	c.decoder.Close()
}
