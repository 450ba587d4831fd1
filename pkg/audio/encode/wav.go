// ABOUTME: WAV file writer
// ABOUTME: Exports a decoded buffer as a 16-bit PCM WAV file using go-audio
package encode

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/harperreed/sportsbrief/pkg/audio"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag
const wavFormatPCM = 1

// WriteWAV writes buf to out as a 16-bit PCM WAV file
func WriteWAV(out io.WriteSeeker, buf *audio.Buffer) error {
	data := make([]int, len(buf.Samples))
	for i, sample := range buf.Samples {
		data[i] = int(audio.SampleToInt16(sample))
	}

	intBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: buf.Format.Channels,
			SampleRate:  buf.Format.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	enc := wav.NewEncoder(out, buf.Format.SampleRate, 16, buf.Format.Channels, wavFormatPCM)
	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("failed to write wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav file: %w", err)
	}
	return nil
}

// WriteWAVFile writes buf to a new WAV file at path
func WriteWAVFile(path string, buf *audio.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}

	if err := WriteWAV(f, buf); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
