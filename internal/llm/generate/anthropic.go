package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/matthieukhl/buildright/internal/types"
)

const defaultAnthropicBaseURL = "https://api.anthropic.com/v1"

type AnthropicGenerator struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	client      *http.Client
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
	Stream      bool               `json:"stream,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewAnthropicGenerator(model string, apiKeyEnv string, directAPIKey string) (*AnthropicGenerator, error) {
	apiKey := resolveAPIKey(apiKeyEnv, directAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in config or environment variable %s", apiKeyEnv)
	}

	return &AnthropicGenerator{
		apiKey:      apiKey,
		model:       model,
		baseURL:     defaultAnthropicBaseURL,
		temperature: 0.7,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

func (g *AnthropicGenerator) WithBaseURL(baseURL string) *AnthropicGenerator {
	if baseURL != "" {
		g.baseURL = strings.TrimRight(baseURL, "/")
	}
	return g
}

func (g *AnthropicGenerator) WithTemperature(t float64) *AnthropicGenerator {
	g.temperature = t
	return g
}

func (g *AnthropicGenerator) Complete(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	o := types.ParseOptions(opts, types.GenerationOptions{MaxTokens: 1024, Temperature: g.temperature})

	req := anthropicRequest{
		Model:       g.model,
		MaxTokens:   o.MaxTokens,
		Temperature: o.Temperature,
		Messages: []anthropicMessage{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}
	if val, ok := opts["system"].(string); ok && val != "" {
		req.System = val
	}

	resp, err := g.post(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var response anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(response.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	return response.Content[0].Text, nil
}

func (g *AnthropicGenerator) NewSession(ctx context.Context, system string) (types.ChatSession, error) {
	return &anthropicSession{g: g, system: system}, nil
}

func (g *AnthropicGenerator) Model() string {
	return g.model
}

func (g *AnthropicGenerator) post(ctx context.Context, req anthropicRequest) (*http.Response, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", g.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("Anthropic API error %d: %s", resp.StatusCode, string(body))
	}
	return resp, nil
}

type anthropicSession struct {
	g       *AnthropicGenerator
	system  string
	mu      sync.Mutex
	history []anthropicMessage
	closed  bool
}

func (s *anthropicSession) Stream(ctx context.Context, text string) (<-chan string, <-chan error) {
	return pipe(ctx, func(emit func(string) bool) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return ErrSessionClosed
		}

		user := anthropicMessage{Role: "user", Content: text}
		messages := append(append([]anthropicMessage(nil), s.history...), user)

		resp, err := s.g.post(ctx, anthropicRequest{
			Model:       s.g.model,
			MaxTokens:   1024,
			Messages:    messages,
			System:      s.system,
			Temperature: s.g.temperature,
			Stream:      true,
		})
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		var reply strings.Builder
		err = readSSE(resp.Body, func(data string) (bool, error) {
			var event anthropicStreamEvent
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				return false, fmt.Errorf("failed to decode stream event: %w", err)
			}
			switch event.Type {
			case "error":
				msg := "unknown error"
				if event.Error != nil {
					msg = event.Error.Message
				}
				return false, fmt.Errorf("Anthropic stream error: %s", msg)
			case "message_stop":
				return false, nil
			case "content_block_delta":
				if event.Delta.Text == "" {
					return true, nil
				}
				reply.WriteString(event.Delta.Text)
				if !emit(event.Delta.Text) {
					return false, ctx.Err()
				}
			}
			return true, nil
		})
		if err != nil {
			return fmt.Errorf("stream error: %w", err)
		}

		s.history = append(s.history, user, anthropicMessage{Role: "assistant", Content: reply.String()})
		return nil
	})
}

func (s *anthropicSession) Close() error {
	s.mu.Lock()
	s.history = nil
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Compile-time interface check
var (
	_ types.Generator = (*AnthropicGenerator)(nil)
	_ types.Chatter   = (*AnthropicGenerator)(nil)
)
