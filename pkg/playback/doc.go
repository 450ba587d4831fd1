// ABOUTME: Briefing playback controller package
// ABOUTME: Decode-once, play/pause/resume and progress reporting for one payload
// Package playback drives a single briefing's audio through an output device.
//
// A Controller owns one decoded buffer and a Stopped/Playing/Paused
// transport. Position is tracked from the device's monotonic clock: while
// Playing the anchor taken at start is authoritative, otherwise the stored
// position is. Every Play hands out a playback token; Pause, Close and
// re-initialization invalidate it, so a late end-of-buffer callback or a
// stale progress frame can never change state.
//
// Example:
//
//	ctrl := playback.NewController(playback.Config{
//	    OpenDevice: output.NewOto,
//	    Frames:     playback.NewTickerFrames(50 * time.Millisecond),
//	    OnProgress: func(p playback.Progress) {
//	        fmt.Printf("%.1fs (%.0f%%)\n", p.PositionSeconds, p.Percent)
//	    },
//	})
//	defer ctrl.Close()
//
//	if err := ctrl.Initialize(ctx, briefing.AudioBase64); err != nil {
//	    // cannot play this briefing
//	}
//	err = ctrl.Play()
//	ctrl.Pause()
package playback
