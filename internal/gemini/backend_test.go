// ABOUTME: Tests for the Gemini backend
// ABOUTME: Fakes the content API to cover response mapping and speech normalization
package gemini

import (
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/harperreed/sportsbrief/internal/catalog"
	"google.golang.org/genai"
)

// fakeModels returns a canned response and records the request
type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func newTestBackend(models *fakeModels) *Backend {
	return &Backend{
		config: Config{TextModel: "text-model", TTSModel: "tts-model", Voice: "Kore"},
		models: models,
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestSearchNews(t *testing.T) {
	resp := textResponse("Packers beat the Bears 24-10.")
	resp.Candidates[0].GroundingMetadata = &genai.GroundingMetadata{
		GroundingChunks: []*genai.GroundingChunk{
			{Web: &genai.GroundingChunkWeb{URI: "https://espn.example/gb", Title: "ESPN"}},
			{Web: &genai.GroundingChunkWeb{URI: "https://nfl.example/gb"}},
			{Web: &genai.GroundingChunkWeb{Title: "no uri"}},
			{},
		},
	}
	models := &fakeModels{resp: resp}

	news, err := newTestBackend(models).SearchNews(context.Background(), catalog.Team{Name: "Green Bay Packers"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if news.Summary != "Packers beat the Bears 24-10." {
		t.Errorf("unexpected summary %q", news.Summary)
	}
	if len(news.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %+v", news.Sources)
	}
	if news.Sources[1].Title != UnknownSourceTitle {
		t.Errorf("expected missing title to become %q, got %q", UnknownSourceTitle, news.Sources[1].Title)
	}

	if models.model != "text-model" {
		t.Errorf("expected text model, got %q", models.model)
	}
	if !strings.Contains(models.prompt, "Green Bay Packers from the last 24 hours") {
		t.Errorf("unexpected prompt %q", models.prompt)
	}
	if models.config == nil || len(models.config.Tools) != 1 || models.config.Tools[0].GoogleSearch == nil {
		t.Error("expected the google search tool")
	}
}

func TestSearchNewsErrors(t *testing.T) {
	b := newTestBackend(&fakeModels{err: errors.New("quota")})
	if _, err := b.SearchNews(context.Background(), catalog.Team{Name: "X"}); err == nil {
		t.Error("expected API error")
	}

	b = newTestBackend(&fakeModels{resp: &genai.GenerateContentResponse{}})
	if _, err := b.SearchNews(context.Background(), catalog.Team{Name: "X"}); err == nil {
		t.Error("expected empty response error")
	}
}

func TestSynthesizeJoinsItems(t *testing.T) {
	models := &fakeModels{resp: textResponse("Good morning!")}

	script, err := newTestBackend(models).Synthesize(context.Background(), []string{"A", "B"})
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}
	if script != "Good morning!" {
		t.Errorf("unexpected script %q", script)
	}
	if !strings.HasSuffix(models.prompt, "UPDATES:\nA\n---\nB") {
		t.Errorf("unexpected prompt tail %q", models.prompt)
	}
}

func TestRefineEmbedsScript(t *testing.T) {
	models := &fakeModels{resp: textResponse("short")}

	if _, err := newTestBackend(models).Refine(context.Background(), "long script"); err != nil {
		t.Fatalf("refine failed: %v", err)
	}
	if !strings.Contains(models.prompt, "---\nlong script\n---") {
		t.Errorf("expected script in prompt, got %q", models.prompt)
	}
}

func TestResponseTextSkipsThoughts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "Hello "},
				{Text: "world"},
			}},
		}},
	}
	if got := responseText(resp); got != "Hello world" {
		t.Errorf("expected 'Hello world', got %q", got)
	}
}

func TestSpeak(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	models := &fakeModels{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: "audio/L16;codec=pcm;rate=24000", Data: pcm}},
			}},
		}},
	}}

	out, err := newTestBackend(models).Speak(context.Background(), "script")
	if err != nil {
		t.Fatalf("speak failed: %v", err)
	}
	if string(out) != string(pcm) {
		t.Errorf("expected passthrough PCM, got %v", out)
	}

	if models.model != "tts-model" {
		t.Errorf("expected TTS model, got %q", models.model)
	}
	cfg := models.config
	if cfg == nil || len(cfg.ResponseModalities) != 1 || cfg.ResponseModalities[0] != "AUDIO" {
		t.Fatal("expected AUDIO response modality")
	}
	if cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName != "Kore" {
		t.Error("expected Kore voice")
	}
}

func TestSpeakWithoutAudio(t *testing.T) {
	b := newTestBackend(&fakeModels{resp: textResponse("sorry")})
	if _, err := b.Speak(context.Background(), "script"); err == nil {
		t.Error("expected error when no audio is returned")
	}
}

func s16le(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestNormalizeSpeech(t *testing.T) {
	tests := []struct {
		name       string
		mime       string
		data       []byte
		wantBytes  int
		wantErr    bool
		passthough bool
	}{
		{"L16 24k", "audio/L16;codec=pcm;rate=24000", s16le(1, 2, 3), 6, false, true},
		{"pcm no params", "audio/pcm", s16le(1, 2), 4, false, true},
		{"L16 48k halves", "audio/L16;rate=48000", s16le(make([]int16, 480)...), 480, false, false},
		{"L16 stereo downmix", "audio/L16;rate=24000;channels=2", s16le(100, 300, 100, 300), 4, false, false},
		{"odd length", "audio/L16;rate=24000", []byte{1, 2, 3}, 0, true, false},
		{"wav rejected", "audio/wav", s16le(1), 0, true, false},
		{"garbage mime", ";;", s16le(1), 0, true, false},
		{"bad mp3", "audio/mpeg", []byte("not an mp3"), 0, true, false},
	}

	for _, tt := range tests {
		out, err := NormalizeSpeech(tt.mime, tt.data)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error %v, got %v", tt.name, tt.wantErr, err)
			continue
		}
		if tt.wantErr {
			continue
		}
		if len(out) != tt.wantBytes {
			t.Errorf("%s: expected %d bytes, got %d", tt.name, tt.wantBytes, len(out))
		}
		if tt.passthough && string(out) != string(tt.data) {
			t.Errorf("%s: expected data passed through", tt.name)
		}
	}
}

func TestNormalizeSpeechDownmixAverages(t *testing.T) {
	out, err := NormalizeSpeech("audio/L16;rate=24000;channels=2", s16le(100, 300))
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if got := int16(binary.LittleEndian.Uint16(out)); got != 200 {
		t.Errorf("expected averaged sample 200, got %d", got)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Error("expected error without API key")
	}
}
