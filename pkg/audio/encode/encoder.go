// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for all audio encoders
package encode

import "github.com/harperreed/sportsbrief/pkg/audio"

// Encoder encodes float buffers to a byte format
type Encoder interface {
	// Encode converts a decoded buffer to encoded audio data
	Encode(buf *audio.Buffer) ([]byte, error)

	// Close releases encoder resources
	Close() error
}
