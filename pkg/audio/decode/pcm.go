// ABOUTME: PCM audio decoder
// ABOUTME: Decodes little-endian 16-bit PCM to normalized float samples
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/harperreed/sportsbrief/pkg/audio"
)

// PCMDecoder decodes PCM audio
type PCMDecoder struct {
	format audio.Format
}

// NewPCM creates a new PCM decoder
func NewPCM(format audio.Format) (Decoder, error) {
	if format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}
	if format.Channels < 1 || format.SampleRate < 1 {
		return nil, fmt.Errorf("invalid PCM format: %dHz %dch", format.SampleRate, format.Channels)
	}

	return &PCMDecoder{
		format: format,
	}, nil
}

// Decode converts PCM bytes to float samples
func (d *PCMDecoder) Decode(data []byte) (*audio.Buffer, error) {
	frameSize := d.format.BytesPerFrame()
	if len(data)%frameSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrTruncated, len(data), frameSize)
	}

	numSamples := len(data) / 2
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = audio.SampleFromInt16(sample16)
	}

	return audio.NewBuffer(samples, d.format), nil
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	return nil
}
