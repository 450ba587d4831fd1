// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts audio between sample rates and to the briefing format
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling, plus a down-mix to mono so
// any decoded TTS output can be normalized to the briefing format.
//
// Example:
//
//	r := resample.New(44100, 24000, 1)
//	outputSize := r.Resample(inputSamples, outputSamples)
//
//	mono24k := resample.ToBriefing(buf)
package resample
