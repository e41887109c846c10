package generate

import (
	"context"
	"fmt"
	"sync/atomic"

	"google.golang.org/genai"

	"github.com/matthieukhl/buildright/internal/types"
)

// GeminiGenerator talks to the Gemini API through the genai SDK. Chat
// sessions are SDK chats, so conversation history lives in the SDK.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGeminiGenerator(ctx context.Context, model, apiKeyEnv, directAPIKey, baseURL string) (*GeminiGenerator, error) {
	apiKey := resolveAPIKey(apiKeyEnv, directAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in config or environment variable %s", apiKeyEnv)
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGenerator{
		client:      client,
		model:       model,
		temperature: 0.7,
	}, nil
}

func (g *GeminiGenerator) WithTemperature(t float64) *GeminiGenerator {
	g.temperature = float32(t)
	return g
}

func (g *GeminiGenerator) Complete(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if val, ok := opts["max_tokens"].(int); ok && val > 0 {
		cfg.MaxOutputTokens = int32(val)
	}
	if val, ok := opts["temperature"].(float64); ok {
		cfg.Temperature = genai.Ptr(float32(val))
	}
	if val, ok := opts["system"].(string); ok && val != "" {
		cfg.SystemInstruction = genai.NewContentFromText(val, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}

func (g *GeminiGenerator) NewSession(ctx context.Context, system string) (types.ChatSession, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	chat, err := g.client.Chats.Create(ctx, g.model, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI chat: %w", err)
	}
	return &geminiSession{chat: chat}, nil
}

func (g *GeminiGenerator) Model() string {
	return g.model
}

type geminiSession struct {
	chat   *genai.Chat
	closed atomic.Bool
}

func (s *geminiSession) Stream(ctx context.Context, text string) (<-chan string, <-chan error) {
	return pipe(ctx, func(emit func(string) bool) error {
		if s.closed.Load() {
			return ErrSessionClosed
		}
		for resp, err := range s.chat.SendMessageStream(ctx, genai.Part{Text: text}) {
			if err != nil {
				return fmt.Errorf("GenAI stream failed: %w", err)
			}
			chunk := resp.Text()
			if chunk == "" {
				continue
			}
			if !emit(chunk) {
				return ctx.Err()
			}
		}
		return nil
	})
}

// Close marks the chat unusable; the SDK holds no per-chat connection.
func (s *geminiSession) Close() error {
	s.closed.Store(true)
	return nil
}

// Compile-time interface check
var (
	_ types.Generator = (*GeminiGenerator)(nil)
	_ types.Chatter   = (*GeminiGenerator)(nil)
)
