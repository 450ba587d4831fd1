// ABOUTME: Normalization of synthesized speech to the briefing PCM format
// ABOUTME: Dispatches on the inline data MIME type
package gemini

import (
	"fmt"
	"mime"
	"strconv"
	"strings"

	"github.com/harperreed/sportsbrief/pkg/audio"
	"github.com/harperreed/sportsbrief/pkg/audio/decode"
	"github.com/harperreed/sportsbrief/pkg/audio/encode"
	"github.com/harperreed/sportsbrief/pkg/audio/resample"
)

// NormalizeSpeech converts synthesized audio to s16le, 24 kHz, mono PCM.
// Raw little-endian PCM (audio/L16, audio/pcm) at 24 kHz mono passes
// through untouched; other rates and channel counts are converted; MP3 is
// decoded. Any other type is rejected.
func NormalizeSpeech(mimeType string, data []byte) ([]byte, error) {
	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return nil, fmt.Errorf("unsupported speech mime type %q: %w", mimeType, err)
	}

	var buf *audio.Buffer

	switch strings.ToLower(mediaType) {
	case "audio/l16", "audio/pcm":
		format := audio.Format{
			SampleRate: intParam(params, "rate", audio.BriefingSampleRate),
			Channels:   intParam(params, "channels", audio.BriefingChannels),
			BitDepth:   16,
		}
		if format == audio.BriefingFormat {
			if len(data)%2 != 0 {
				return nil, fmt.Errorf("%w: odd PCM length %d", decode.ErrTruncated, len(data))
			}
			return data, nil
		}

		pcmDecoder, err := decode.NewPCM(format)
		if err != nil {
			return nil, err
		}
		buf, err = pcmDecoder.Decode(data)
		if err != nil {
			return nil, err
		}

	case "audio/mpeg", "audio/mp3":
		buf, err = decode.NewMP3().Decode(data)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unsupported speech mime type %q", mimeType)
	}

	pcmEncoder, err := encode.NewPCM(audio.BriefingFormat)
	if err != nil {
		return nil, err
	}
	defer pcmEncoder.Close()

	return pcmEncoder.Encode(resample.ToBriefing(buf))
}

func intParam(params map[string]string, key string, fallback int) int {
	v, ok := params[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
