package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// Gemini провайдер на Google Generative AI
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

func NewGemini(ctx context.Context, cfg *Config) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   int32(cfg.MaxTokens),
	}, nil
}

func (g *Gemini) Name() string { return ProviderGemini }

func (g *Gemini) Complete(ctx context.Context, system, user string) (string, error) {
	m := g.client.GenerativeModel(g.model)
	if system != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}
	if g.temperature > 0 {
		m.SetTemperature(g.temperature)
	}
	if g.maxTokens > 0 {
		m.SetMaxOutputTokens(g.maxTokens)
	}

	resp, err := m.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}
