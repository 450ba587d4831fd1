// ABOUTME: Playback controller for a single briefing payload
// ABOUTME: Transport state machine with token-guarded end-of-track handling
package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/harperreed/sportsbrief/pkg/audio"
	"github.com/harperreed/sportsbrief/pkg/audio/decode"
	"github.com/harperreed/sportsbrief/pkg/audio/output"
	"github.com/rs/zerolog/log"
)

var (
	// ErrDecode is returned by Initialize when the payload cannot be decoded
	ErrDecode = errors.New("cannot play this briefing")

	// ErrNotReady is returned by Play when no buffer is loaded
	ErrNotReady = errors.New("no playable audio loaded")

	// ErrEmptyAudio is returned by Play for a zero-length buffer
	ErrEmptyAudio = errors.New("briefing audio is empty")

	// ErrDeviceUnavailable is returned by Play when there is no usable output
	ErrDeviceUnavailable = errors.New("audio device unavailable")

	// ErrClosed is returned after Close
	ErrClosed = errors.New("playback controller closed")
)

// Phase is the transport phase
type Phase int

const (
	PhaseStopped Phase = iota
	PhasePlaying
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// Progress is one progress report
type Progress struct {
	PositionSeconds float64
	Percent         float64
	Ended           bool // end-of-track transition; position and percent are 0
}

// State is a snapshot of the controller
type State struct {
	Phase           Phase
	PositionSeconds float64
	DurationSeconds float64
	Percent         float64
	Ready           bool
}

// Config holds controller configuration
type Config struct {
	// OpenDevice opens the output device on first Initialize
	OpenDevice output.Factory

	// Frames drives the progress loop. RequestFrame must not run its
	// callback synchronously. Nil disables progress reports.
	Frames FrameScheduler

	// OnProgress is called on every progress tick and on end of track
	OnProgress func(Progress)

	// OnPhaseChange is called after every phase transition
	OnPhaseChange func(Phase)
}

// Controller plays one decoded briefing buffer
type Controller struct {
	config Config

	mu        sync.Mutex
	device    output.Device
	deviceErr error
	buf       *audio.Buffer

	phase    Phase
	position float64       // authoritative unless Playing
	anchor   time.Duration // device clock at start, authoritative while Playing

	voice       output.Voice
	token       uint64 // bumped whenever the active playback is invalidated
	cancelFrame func()
	closed      bool
}

// NewController creates a controller with no audio loaded
func NewController(config Config) *Controller {
	return &Controller{
		config: config,
		phase:  PhaseStopped,
	}
}

// Initialize decodes payload and makes it the controller's buffer. Any
// current playback is stopped first. On error no buffer is kept and Play
// is rejected until a later Initialize succeeds.
func (c *Controller) Initialize(ctx context.Context, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	wasStopped := c.phase == PhaseStopped
	c.invalidateLocked()
	c.buf = nil
	c.phase = PhaseStopped
	c.position = 0
	gen := c.token
	c.mu.Unlock()

	if !wasStopped {
		c.notifyPhase(PhaseStopped)
	}

	buf, err := decode.Payload(payload)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to decode briefing audio")
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	c.acquireDevice()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	// a newer Initialize or a Close won the race
	if c.token != gen {
		return nil
	}

	c.buf = buf
	log.Debug().
		Int("frames", buf.Frames()).
		Float64("duration_s", buf.Seconds()).
		Msg("Briefing audio decoded")
	return nil
}

// acquireDevice opens the output device once per controller
func (c *Controller) acquireDevice() {
	c.mu.Lock()
	if c.device != nil || c.config.OpenDevice == nil {
		if c.config.OpenDevice == nil {
			c.deviceErr = errors.New("no output device configured")
		}
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	dev, err := c.config.OpenDevice()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("Audio output unavailable")
		c.deviceErr = err
		return
	}
	if c.closed || c.device != nil {
		_ = dev.Close()
		return
	}
	c.device = dev
	c.deviceErr = nil
}

// Play starts or resumes playback. It is a no-op while already playing.
func (c *Controller) Play() error {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.buf == nil {
		c.mu.Unlock()
		return ErrNotReady
	}
	if c.phase == PhasePlaying {
		c.mu.Unlock()
		return nil
	}
	if c.device == nil {
		err := c.deviceErr
		c.mu.Unlock()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
		}
		return ErrDeviceUnavailable
	}

	duration := c.buf.Seconds()
	if duration <= 0 {
		c.mu.Unlock()
		return ErrEmptyAudio
	}

	// a stored position at or past the end restarts from the top
	offset := math.Mod(c.position, duration)

	c.token++
	tok := c.token
	anchor := c.device.Now()

	voice, err := c.device.Start(c.buf, offset, func() { c.handleEnded(tok) })
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	c.voice = voice
	c.position = offset
	c.anchor = anchor
	c.phase = PhasePlaying
	c.requestFrameLocked(tok)
	c.mu.Unlock()

	log.Debug().Float64("offset_s", offset).Msg("Playback started")
	c.notifyPhase(PhasePlaying)
	return nil
}

// Pause stops output and remembers the position. No-op unless playing.
func (c *Controller) Pause() {
	c.mu.Lock()

	if c.phase != PhasePlaying {
		c.mu.Unlock()
		return
	}

	// cancel the loop and the completion callback before the device stops
	c.invalidateLocked()

	elapsed := (c.device.Now() - c.anchor).Seconds()
	c.position = clamp(c.position+elapsed, 0, c.buf.Seconds())
	c.phase = PhasePaused
	position := c.position
	c.mu.Unlock()

	log.Debug().Float64("position_s", position).Msg("Playback paused")
	c.notifyPhase(PhasePaused)
}

// Toggle pauses when playing and plays otherwise
func (c *Controller) Toggle() error {
	if c.State().Phase == PhasePlaying {
		c.Pause()
		return nil
	}
	return c.Play()
}

// State returns a snapshot, computing the live position while playing
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Phase: c.phase,
		Ready: c.buf != nil,
	}
	if c.buf == nil {
		return s
	}

	s.DurationSeconds = c.buf.Seconds()
	position := c.position
	if c.phase == PhasePlaying {
		position = clamp(position+(c.device.Now()-c.anchor).Seconds(), 0, s.DurationSeconds)
	}
	s.PositionSeconds = position
	if s.DurationSeconds > 0 {
		s.Percent = position / s.DurationSeconds * 100
	}
	return s
}

// Close stops any playback, cancels pending frames and releases the
// device. Safe to call more than once.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	wasStopped := c.phase == PhaseStopped
	c.invalidateLocked()
	c.phase = PhaseStopped
	c.buf = nil
	dev := c.device
	c.device = nil
	c.mu.Unlock()

	if !wasStopped {
		c.notifyPhase(PhaseStopped)
	}

	if dev != nil {
		if err := dev.Close(); err != nil {
			return fmt.Errorf("failed to close output device: %w", err)
		}
	}
	return nil
}

// handleEnded is the device's end-of-buffer callback for playback tok
func (c *Controller) handleEnded(tok uint64) {
	c.mu.Lock()
	if tok != c.token || c.phase != PhasePlaying {
		c.mu.Unlock()
		return
	}
	c.finishLocked()
	c.mu.Unlock()

	log.Debug().Msg("Playback reached end of buffer")
	c.notifyProgress(Progress{Ended: true})
	c.notifyPhase(PhaseStopped)
}

// onFrame is one progress-loop tick for playback tok
func (c *Controller) onFrame(tok uint64) {
	c.mu.Lock()
	if tok != c.token || c.phase != PhasePlaying {
		c.mu.Unlock()
		return
	}
	c.cancelFrame = nil

	duration := c.buf.Seconds()
	current := c.position + (c.device.Now() - c.anchor).Seconds()

	if current < duration {
		c.requestFrameLocked(tok)
		c.mu.Unlock()
		c.notifyProgress(Progress{
			PositionSeconds: current,
			Percent:         current / duration * 100,
		})
		return
	}

	c.finishLocked()
	c.mu.Unlock()

	log.Debug().Msg("Playback reached end of track")
	c.notifyProgress(Progress{Ended: true})
	c.notifyPhase(PhaseStopped)
}

// finishLocked performs the end-of-track transition (must hold c.mu)
func (c *Controller) finishLocked() {
	c.invalidateLocked()
	c.phase = PhaseStopped
	c.position = 0
}

// invalidateLocked retires the active token, cancels the pending frame and
// stops the voice (must hold c.mu)
func (c *Controller) invalidateLocked() {
	c.token++
	if c.cancelFrame != nil {
		c.cancelFrame()
		c.cancelFrame = nil
	}
	if c.voice != nil {
		c.voice.Stop()
		c.voice = nil
	}
}

// requestFrameLocked schedules the next progress tick (must hold c.mu)
func (c *Controller) requestFrameLocked(tok uint64) {
	if c.config.Frames == nil {
		return
	}
	c.cancelFrame = c.config.Frames.RequestFrame(func() { c.onFrame(tok) })
}

func (c *Controller) notifyProgress(p Progress) {
	if c.config.OnProgress != nil {
		c.config.OnProgress(p)
	}
}

func (c *Controller) notifyPhase(phase Phase) {
	if c.config.OnPhaseChange != nil {
		c.config.OnPhaseChange(phase)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
