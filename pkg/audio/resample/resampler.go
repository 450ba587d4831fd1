// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Used to normalize synthesized speech to the 24 kHz briefing rate
package resample

import "github.com/harperreed/sportsbrief/pkg/audio"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		position:   0.0,
	}
}

// Resample converts input samples to output sample rate using linear interpolation
// input: interleaved samples at inputRate
// output: interleaved samples at outputRate
func (r *Resampler) Resample(input []float32, output []float32) int {
	if len(input) == 0 {
		return 0
	}

	inputFrames := len(input) / r.channels
	outputFrames := len(output) / r.channels

	outIdx := 0

	for outIdx < outputFrames {
		inputIdx := int(r.position)

		// If we've consumed all input, stop
		if inputIdx >= inputFrames-1 {
			break
		}

		frac := r.position - float64(inputIdx)

		for ch := 0; ch < r.channels; ch++ {
			sample1 := input[inputIdx*r.channels+ch]
			sample2 := input[(inputIdx+1)*r.channels+ch]

			interpolated := float64(sample1)*(1.0-frac) + float64(sample2)*frac
			output[outIdx*r.channels+ch] = float32(interpolated)
		}

		outIdx++
		r.position += r.ratio
	}

	// Reset position for next chunk, keeping fractional part
	r.position -= float64(int(r.position))

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0.0
}

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames) / r.ratio)
	return outputFrames * r.channels
}

// InputSamplesNeeded calculates how many input samples are needed to produce output samples
func (r *Resampler) InputSamplesNeeded(outputSamples int) int {
	outputFrames := outputSamples / r.channels
	inputFrames := int(float64(outputFrames) * r.ratio)
	return inputFrames * r.channels
}

// Downmix averages interleaved channels into a single mono channel
func Downmix(buf *audio.Buffer) *audio.Buffer {
	channels := buf.Format.Channels
	if channels <= 1 {
		return buf
	}

	frames := buf.Frames()
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += buf.Samples[i*channels+ch]
		}
		mono[i] = sum / float32(channels)
	}

	format := buf.Format
	format.Channels = 1
	return audio.NewBuffer(mono, format)
}

// ToBriefing converts any decoded buffer to mono at the briefing sample rate
func ToBriefing(buf *audio.Buffer) *audio.Buffer {
	mono := Downmix(buf)
	if mono.Format.SampleRate == audio.BriefingSampleRate {
		return audio.NewBuffer(mono.Samples, audio.BriefingFormat)
	}

	r := New(mono.Format.SampleRate, audio.BriefingSampleRate, 1)
	out := make([]float32, r.OutputSamplesNeeded(len(mono.Samples)))
	n := r.Resample(mono.Samples, out)

	return audio.NewBuffer(out[:n], audio.BriefingFormat)
}
