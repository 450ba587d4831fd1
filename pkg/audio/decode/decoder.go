// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for all audio decoders
package decode

import (
	"errors"

	"github.com/harperreed/sportsbrief/pkg/audio"
)

var (
	// ErrMalformedPayload is returned when a payload is not valid base64
	ErrMalformedPayload = errors.New("malformed base64 payload")

	// ErrTruncated is returned when PCM data ends mid-frame
	ErrTruncated = errors.New("truncated sample data")
)

// Decoder decodes audio in various formats to normalized float samples
type Decoder interface {
	// Decode converts encoded audio data to a float buffer
	Decode(data []byte) (*audio.Buffer, error)

	// Close releases decoder resources
	Close() error
}
