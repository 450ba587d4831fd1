// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides the audio types shared by the briefing player.
//
// This package defines core types used throughout sportsbrief:
//   - Format: Describes a PCM stream (sample rate, channels, bit depth)
//   - Buffer: Decoded audio held as normalized float32 samples
//
// Briefing audio is always signed 16-bit little-endian PCM, mono, 24 kHz
// (BriefingFormat). Samples are normalized by dividing by 32768.
//
// Example:
//
//	buf := audio.NewBuffer(samples, audio.BriefingFormat)
//	fmt.Printf("%.2fs\n", buf.Seconds())
//
//	// Convert a 16-bit sample to a normalized float
//	f := audio.SampleFromInt16(sample16)
package audio
