// ABOUTME: PCM audio encoder
// ABOUTME: Encodes float samples to 16-bit little-endian PCM bytes
package encode

import (
	"encoding/binary"
	"fmt"

	"github.com/harperreed/sportsbrief/pkg/audio"
)

// PCMEncoder encodes PCM audio
type PCMEncoder struct {
	format audio.Format
}

// NewPCM creates a new PCM encoder
func NewPCM(format audio.Format) (Encoder, error) {
	if format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}

	return &PCMEncoder{
		format: format,
	}, nil
}

// Encode converts float samples to PCM bytes
func (e *PCMEncoder) Encode(buf *audio.Buffer) ([]byte, error) {
	if buf.Format.Channels != e.format.Channels || buf.Format.SampleRate != e.format.SampleRate {
		return nil, fmt.Errorf("buffer format %dHz/%dch does not match encoder %dHz/%dch",
			buf.Format.SampleRate, buf.Format.Channels, e.format.SampleRate, e.format.Channels)
	}

	output := make([]byte, len(buf.Samples)*2)
	for i, sample := range buf.Samples {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(audio.SampleToInt16(sample)))
	}
	return output, nil
}

// Close releases resources
func (e *PCMEncoder) Close() error {
	return nil
}
