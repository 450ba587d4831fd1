// ABOUTME: Audio decoder package for briefing payloads
// ABOUTME: Provides Decoder interface and implementations for PCM and MP3
// Package decode turns encoded audio into normalized float buffers.
//
// Supports: base64 briefing payloads (16-bit PCM), raw 16-bit PCM, MP3
//
// All decoders implement the Decoder interface and output audio.Buffer
// values whose samples lie in [-1, 1].
//
// Example:
//
//	buf, err := decode.Payload(briefing.AudioBase64)
//	if errors.Is(err, decode.ErrMalformedPayload) {
//	    // cannot play this briefing
//	}
package decode
