// ABOUTME: Tests for MP3 decoder
// ABOUTME: Tests MP3 decoder creation and rejection of non-MP3 data
package decode

import (
	"testing"
)

func TestNewMP3(t *testing.T) {
	decoder := NewMP3()
	if decoder == nil {
		t.Fatal("expected decoder to be created")
	}
	if err := decoder.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
}

func TestMP3Decode_InvalidData(t *testing.T) {
	decoder := NewMP3()

	buf, err := decoder.Decode([]byte("definitely not an mp3 stream"))
	if err == nil {
		t.Fatal("expected error for invalid mp3 data, got nil")
	}
	if buf != nil {
		t.Error("expected no buffer for invalid data")
	}
}

func TestMP3Decode_Empty(t *testing.T) {
	decoder := NewMP3()

	if _, err := decoder.Decode(nil); err == nil {
		t.Fatal("expected error for empty input, got nil")
	}
}
