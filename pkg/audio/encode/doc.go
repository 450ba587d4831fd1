// ABOUTME: Audio encoder package for exporting briefing audio
// ABOUTME: Provides Encoder interface plus PCM and WAV writers
// Package encode turns normalized float buffers back into bytes.
//
// Supports: 16-bit little-endian PCM, 16-bit WAV files
//
// Example:
//
//	encoder, err := encode.NewPCM(audio.BriefingFormat)
//	data, err := encoder.Encode(buf)
//
//	f, _ := os.Create("briefing.wav")
//	err = encode.WriteWAV(f, buf)
package encode
