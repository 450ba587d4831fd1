// ABOUTME: Audio output package for playing briefing buffers
// ABOUTME: Provides Device/Voice interfaces and an oto implementation
// Package output provides audio playback devices.
//
// A Device plays whole decoded buffers from an offset and exposes a
// monotonic clock that the playback controller uses for position
// bookkeeping. Each Start returns a Voice that can be stopped; the device
// reports natural end-of-buffer through a callback.
//
// Currently supports oto for cross-platform audio output.
//
// Example:
//
//	dev, err := output.NewOto()
//	voice, err := dev.Start(buf, 0, func() { log.Print("done") })
//	voice.Stop()
//	dev.Close()
package output
