// ABOUTME: Gemini implementation of the briefing backend
// ABOUTME: Grounded news search, script synthesis and refinement, and speech synthesis
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/sportsbrief/internal/briefing"
	"github.com/harperreed/sportsbrief/internal/catalog"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// UnknownSourceTitle replaces a missing grounding title
const UnknownSourceTitle = "Unknown Source"

// Config holds backend configuration
type Config struct {
	APIKey    string
	TextModel string
	TTSModel  string
	Voice     string
}

// contentGenerator is the part of the genai client the backend uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Backend talks to the Gemini API. Build one per process and share it.
type Backend struct {
	config Config
	models contentGenerator
}

// New creates a backend with its own API client
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	log.Info().
		Str("text_model", config.TextModel).
		Str("tts_model", config.TTSModel).
		Str("voice", config.Voice).
		Msg("Gemini backend ready")

	return &Backend{config: config, models: client.Models}, nil
}

var _ briefing.Backend = (*Backend)(nil)

// SearchNews summarizes the last 24 hours of news for a team using the
// Google Search tool
func (b *Backend) SearchNews(ctx context.Context, team catalog.Team) (briefing.NewsResult, error) {
	prompt := fmt.Sprintf("Generate a concise summary of the most important news, game results, and updates for the %s from the last 24 hours. Focus on key events and outcomes.", team.Name)

	resp, err := b.models.GenerateContent(ctx, b.config.TextModel, genai.Text(prompt), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return briefing.NewsResult{}, fmt.Errorf("news search for %s: %w", team.Name, err)
	}

	summary := responseText(resp)
	if summary == "" {
		return briefing.NewsResult{}, fmt.Errorf("news search for %s: empty response", team.Name)
	}

	return briefing.NewsResult{
		Summary: summary,
		Sources: groundingSources(resp),
	}, nil
}

// Synthesize merges the per-team news into one anchor script
func (b *Backend) Synthesize(ctx context.Context, items []string) (string, error) {
	prompt := "You are a sports news anchor. Synthesize the following sports news updates into a single, cohesive, and engaging daily briefing script. " +
		"Start with a friendly greeting like \"Good morning! Here is your daily sports briefing.\" and then present the news clearly. \n\nUPDATES:\n" +
		strings.Join(items, "\n---\n")

	return b.generateText(ctx, "synthesize", prompt)
}

// Refine rewrites a script for a casual fan
func (b *Backend) Refine(ctx context.Context, script string) (string, error) {
	prompt := `Analyze the following sports news briefing. Your task is to refine it for a casual sports fan.
A casual fan is primarily interested in:
- Final game scores and significant outcomes.
- Major player news (significant injuries, record-breaking performances, trades).
- Major team news (e.g., coaching changes, playoff implications).
- They are NOT interested in minor details, deep statistical analysis, routine player quotes, or non-critical game previews.

Filter the content, retaining only the key updates that are highly relevant (with at least 80% confidence) to a casual fan.
Rewrite the briefing to be more concise and focused on these key highlights. The tone should remain engaging and informative.
Do not add any preamble like "Here is the refined briefing". Just provide the refined script directly.

Original Briefing:
---
` + script + `
---`

	return b.generateText(ctx, "refine", prompt)
}

// Speak renders script with the configured prebuilt voice and returns
// canonical s16le, 24 kHz, mono PCM
func (b *Backend) Speak(ctx context.Context, script string) ([]byte, error) {
	resp, err := b.models.GenerateContent(ctx, b.config.TTSModel, genai.Text(script), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: b.config.Voice},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}

	blob := inlineAudio(resp)
	if blob == nil || len(blob.Data) == 0 {
		return nil, errors.New("speech synthesis: no inline audio in response")
	}

	log.Debug().
		Str("mime", blob.MIMEType).
		Int("bytes", len(blob.Data)).
		Msg("Received synthesized speech")

	return NormalizeSpeech(blob.MIMEType, blob.Data)
}

func (b *Backend) generateText(ctx context.Context, step, prompt string) (string, error) {
	resp, err := b.models.GenerateContent(ctx, b.config.TextModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", step, err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%s: empty response", step)
	}
	return text, nil
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String())
}

// groundingSources maps grounding chunks to sources. Chunks without a web
// URI are dropped and a missing title becomes UnknownSourceTitle.
func groundingSources(resp *genai.GenerateContentResponse) []briefing.Source {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}

	var sources []briefing.Source
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = UnknownSourceTitle
		}
		sources = append(sources, briefing.Source{URI: chunk.Web.URI, Title: title})
	}
	return sources
}

// inlineAudio returns the first inline data part of the first candidate
func inlineAudio(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil {
			return part.InlineData
		}
	}
	return nil
}
