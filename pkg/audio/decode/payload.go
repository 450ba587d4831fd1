// ABOUTME: Briefing payload decoding
// ABOUTME: Turns a base64 s16le/24kHz/mono payload into a float buffer
package decode

import (
	"encoding/base64"
	"fmt"

	"github.com/harperreed/sportsbrief/pkg/audio"
)

// Payload decodes a base64 briefing payload into a mono 24 kHz buffer.
// No buffer is returned on error.
func Payload(payload string) (*audio.Buffer, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	decoder, err := NewPCM(audio.BriefingFormat)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()

	return decoder.Decode(raw)
}

// EncodePayload base64-encodes canonical briefing PCM bytes
func EncodePayload(pcm []byte) string {
	return base64.StdEncoding.EncodeToString(pcm)
}
