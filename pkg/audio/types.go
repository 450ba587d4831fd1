// ABOUTME: Audio type definitions
// ABOUTME: Defines the briefing PCM format and decoded float buffers
package audio

import "time"

const (
	// BriefingSampleRate is the fixed rate of synthesized briefing audio
	BriefingSampleRate = 24000
	// BriefingChannels is the fixed channel count of briefing audio (mono)
	BriefingChannels = 1
	// BriefingBitDepth is the bit depth of the encoded payload
	BriefingBitDepth = 16

	// int16 normalization divisor
	int16Scale = 32768.0
)

// Format describes a PCM stream format
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// BriefingFormat is the only format a briefing payload may use
var BriefingFormat = Format{
	SampleRate: BriefingSampleRate,
	Channels:   BriefingChannels,
	BitDepth:   BriefingBitDepth,
}

// BytesPerFrame returns the encoded size of one frame
func (f Format) BytesPerFrame() int {
	return f.Channels * f.BitDepth / 8
}

// Buffer represents decoded audio as normalized float32 samples
type Buffer struct {
	Samples []float32 // interleaved, each in [-1, 1]
	Format  Format
}

// NewBuffer wraps samples in a buffer of the given format
func NewBuffer(samples []float32, format Format) *Buffer {
	return &Buffer{
		Samples: samples,
		Format:  format,
	}
}

// Frames returns the number of frames in the buffer
func (b *Buffer) Frames() int {
	if b.Format.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// Seconds returns the buffer duration in seconds
func (b *Buffer) Seconds() float64 {
	if b.Format.SampleRate == 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.Format.SampleRate)
}

// Duration returns the buffer duration as a time.Duration
func (b *Buffer) Duration() time.Duration {
	return SecondsToDuration(b.Seconds())
}

// FrameAt returns the frame index for an offset in seconds, clamped to the buffer
func (b *Buffer) FrameAt(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	frame := int(seconds * float64(b.Format.SampleRate))
	if frame > b.Frames() {
		return b.Frames()
	}
	return frame
}

// SampleFromInt16 converts an int16 sample to a float in [-1, 1)
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / int16Scale
}

// SampleToInt16 converts a normalized float sample back to int16 with clipping
func SampleToInt16(sample float32) int16 {
	scaled := float64(sample) * int16Scale
	if scaled > 32767 {
		return 32767
	}
	if scaled < -32768 {
		return -32768
	}
	return int16(scaled)
}

// SecondsToDuration converts float seconds to a time.Duration
func SecondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
