// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for buffer playback devices with a monotonic clock
package output

import (
	"time"

	"github.com/harperreed/sportsbrief/pkg/audio"
)

// Device represents an audio output device
type Device interface {
	// Now returns the device clock. It is monotonic and never follows
	// wall-clock adjustments.
	Now() time.Duration

	// Start plays buf beginning offset seconds in. onEnded is called at
	// most once, never from inside Start or Stop, when the buffer has
	// played out. Implementations may also call it after Stop.
	Start(buf *audio.Buffer, offset float64, onEnded func()) (Voice, error)

	// Close stops every voice and releases the device
	Close() error
}

// Voice is one playing instance of a buffer
type Voice interface {
	// Stop halts output. Safe to call more than once.
	Stop()
}

// Factory opens a device
type Factory func() (Device, error)
