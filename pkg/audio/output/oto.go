// ABOUTME: Oto-based audio output implementation
// ABOUTME: Plays float32 briefing buffers and detects end-of-buffer by polling
package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/harperreed/sportsbrief/pkg/audio"
	"github.com/rs/zerolog/log"
)

// how often voices check whether the player has drained
const endPollInterval = 10 * time.Millisecond

// ErrDeviceClosed is returned by Start after Close
var ErrDeviceClosed = errors.New("output device closed")

// oto allows one context per process, so every Oto device shares it
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func sharedContext() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   audio.BriefingSampleRate,
			ChannelCount: audio.BriefingChannels,
			Format:       oto.FormatFloat32LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan

		otoCtx = ctx
		log.Info().
			Int("sample_rate", audio.BriefingSampleRate).
			Int("channels", audio.BriefingChannels).
			Msg("Audio output initialized")
	})
	return otoCtx, otoErr
}

// Oto output implementation using oto library
type Oto struct {
	mu     sync.Mutex
	ctx    *oto.Context
	epoch  time.Time
	voices map[*otoVoice]struct{}
	closed bool
}

// NewOto opens an oto-backed device at the briefing format
func NewOto() (Device, error) {
	ctx, err := sharedContext()
	if err != nil {
		return nil, err
	}

	return &Oto{
		ctx:    ctx,
		epoch:  time.Now(),
		voices: make(map[*otoVoice]struct{}),
	}, nil
}

// Now returns time elapsed since the device was opened.
// time.Since reads the monotonic clock.
func (o *Oto) Now() time.Duration {
	return time.Since(o.epoch)
}

// Start plays buf from offset seconds
func (o *Oto) Start(buf *audio.Buffer, offset float64, onEnded func()) (Voice, error) {
	if buf.Format.SampleRate != audio.BriefingSampleRate || buf.Format.Channels != audio.BriefingChannels {
		return nil, fmt.Errorf("unsupported buffer format %dHz/%dch (device is %dHz/%dch)",
			buf.Format.SampleRate, buf.Format.Channels, audio.BriefingSampleRate, audio.BriefingChannels)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, ErrDeviceClosed
	}

	start := buf.FrameAt(offset) * buf.Format.Channels
	player := o.ctx.NewPlayer(newSampleReader(buf.Samples[start:]))

	v := &otoVoice{
		player: player,
		done:   make(chan struct{}),
		owner:  o,
	}
	o.voices[v] = struct{}{}

	player.Play()
	go v.watch(onEnded)

	return v, nil
}

// Close stops all voices started by this device
func (o *Oto) Close() error {
	o.mu.Lock()
	voices := make([]*otoVoice, 0, len(o.voices))
	for v := range o.voices {
		voices = append(voices, v)
	}
	o.closed = true
	o.mu.Unlock()

	for _, v := range voices {
		v.Stop()
	}
	return nil
}

func (o *Oto) forget(v *otoVoice) {
	o.mu.Lock()
	delete(o.voices, v)
	o.mu.Unlock()
}

// otoVoice is a single oto player over one buffer
type otoVoice struct {
	player   *oto.Player
	done     chan struct{}
	stopOnce sync.Once
	owner    *Oto
}

// Stop halts playback without waiting for the watcher
func (v *otoVoice) Stop() {
	v.stopOnce.Do(func() {
		close(v.done)
		v.player.Pause()
		v.owner.forget(v)
	})
}

// watch waits for the player to drain and reports natural end
func (v *otoVoice) watch(onEnded func()) {
	ticker := time.NewTicker(endPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-v.done:
			return
		case <-ticker.C:
			if v.player.IsPlaying() {
				continue
			}
			if err := v.player.Err(); err != nil {
				log.Error().Err(err).Msg("oto player error")
			}
			v.Stop()
			if onEnded != nil {
				onEnded()
			}
			return
		}
	}
}

// sampleReader streams float32 samples as little-endian bytes
type sampleReader struct {
	samples []float32
	pos     int
	pending []byte // partial sample left over from a short read
}

func newSampleReader(samples []float32) *sampleReader {
	return &sampleReader{samples: samples}
}

// Read fills p with float32LE bytes
func (r *sampleReader) Read(p []byte) (int, error) {
	n := 0
	if len(r.pending) > 0 {
		c := copy(p, r.pending)
		r.pending = r.pending[c:]
		n += c
	}

	var tmp [4]byte
	for n < len(p) && r.pos < len(r.samples) {
		binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(r.samples[r.pos]))
		r.pos++
		c := copy(p[n:], tmp[:])
		if c < 4 {
			r.pending = append(r.pending[:0], tmp[c:]...)
		}
		n += c
	}

	if n == 0 && r.pos >= len(r.samples) && len(r.pending) == 0 {
		return 0, io.EOF
	}
	return n, nil
}
