// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes a complete MP3 stream to stereo float samples
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/harperreed/sportsbrief/pkg/audio"
)

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3() Decoder {
	return &MP3Decoder{}
}

// Decode converts a whole MP3 file to float samples.
// go-mp3 always yields 16-bit stereo at the stream's sample rate.
func (d *MP3Decoder) Decode(data []byte) (*audio.Buffer, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	// drop a trailing partial frame rather than fail the whole stream
	format := audio.Format{
		SampleRate: decoder.SampleRate(),
		Channels:   2,
		BitDepth:   16,
	}
	pcm = pcm[:len(pcm)-len(pcm)%format.BytesPerFrame()]

	pcmDecoder, err := NewPCM(format)
	if err != nil {
		return nil, err
	}
	return pcmDecoder.Decode(pcm)
}

// Close releases decoder resources
func (d *MP3Decoder) Close() error {
	return nil
}
