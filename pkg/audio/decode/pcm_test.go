// ABOUTME: Tests for PCM and payload decoding
// ABOUTME: Tests 16-bit PCM conversion, base64 payloads and failure modes
package decode

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/harperreed/sportsbrief/pkg/audio"
)

func TestNewPCM(t *testing.T) {
	decoder, err := NewPCM(audio.BriefingFormat)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	if decoder == nil {
		t.Fatal("expected decoder to be created")
	}
}

func TestPCMDecode16Bit(t *testing.T) {
	decoder, err := NewPCM(audio.BriefingFormat)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	// 0x00, 0x40 -> 0x4000 = 16384 -> 0.5
	// 0x00, 0xC0 -> 0xC000 = -16384 -> -0.5
	input := []byte{0x00, 0x40, 0x00, 0xC0}
	output, err := decoder.Decode(input)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(output.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(output.Samples))
	}
	if output.Samples[0] != 0.5 {
		t.Errorf("expected first sample 0.5, got %v", output.Samples[0])
	}
	if output.Samples[1] != -0.5 {
		t.Errorf("expected second sample -0.5, got %v", output.Samples[1])
	}
	if output.Format != audio.BriefingFormat {
		t.Errorf("expected briefing format, got %+v", output.Format)
	}
}

func TestPCMDecode_OddLength(t *testing.T) {
	decoder, err := NewPCM(audio.BriefingFormat)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	output, err := decoder.Decode([]byte{0x00, 0x01, 0x02})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if output != nil {
		t.Error("expected no buffer for truncated input")
	}
}

func TestNewPCM_UnsupportedBitDepth(t *testing.T) {
	format := audio.Format{SampleRate: 24000, Channels: 1, BitDepth: 24}

	decoder, err := NewPCM(format)
	if err == nil {
		t.Fatal("expected error for unsupported bit depth, got nil")
	}

	if decoder != nil {
		t.Fatal("expected decoder to be nil for unsupported bit depth")
	}

	expectedError := "unsupported bit depth: 24 (supported: 16)"
	if err.Error() != expectedError {
		t.Errorf("expected error %q, got %q", expectedError, err.Error())
	}
}

func TestPCMDecode_EmptyInput(t *testing.T) {
	decoder, err := NewPCM(audio.BriefingFormat)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	output, err := decoder.Decode([]byte{})
	if err != nil {
		t.Fatalf("decode failed with empty input: %v", err)
	}

	if len(output.Samples) != 0 {
		t.Errorf("expected 0 samples from empty input, got %d", len(output.Samples))
	}
}

func TestPayloadDuration(t *testing.T) {
	sizes := []int{0, 2, 480, 48000, 96002}

	for _, size := range sizes {
		payload := base64.StdEncoding.EncodeToString(make([]byte, size))

		buf, err := Payload(payload)
		if err != nil {
			t.Fatalf("payload of %d bytes failed: %v", size, err)
		}

		expected := float64(size/2) / 24000
		if buf.Seconds() != expected {
			t.Errorf("%d bytes: expected %vs, got %vs", size, expected, buf.Seconds())
		}
	}
}

func TestPayloadMalformedBase64(t *testing.T) {
	buf, err := Payload("not*base64!")
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
	if buf != nil {
		t.Error("expected no buffer for malformed payload")
	}
}

func TestPayloadTruncated(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03})

	if _, err := Payload(payload); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestEncodePayloadRoundTrip(t *testing.T) {
	pcm := []byte{0x00, 0x40, 0x00, 0xC0}

	buf, err := Payload(EncodePayload(pcm))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(buf.Samples) != 2 || buf.Samples[0] != 0.5 {
		t.Errorf("unexpected samples: %v", buf.Samples)
	}
}
