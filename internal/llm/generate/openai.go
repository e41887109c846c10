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

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

type OpenAIGenerator struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	client      *http.Client
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
	TopP        float64         `json:"top_p,omitempty"`
	Stop        []string        `json:"stop,omitempty"`
	Stream      bool            `json:"stream,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type openAIStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAIGenerator(model string, apiKeyEnv string, directAPIKey string) (*OpenAIGenerator, error) {
	apiKey := resolveAPIKey(apiKeyEnv, directAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in config or environment variable %s", apiKeyEnv)
	}

	return &OpenAIGenerator{
		apiKey:      apiKey,
		model:       model,
		baseURL:     defaultOpenAIBaseURL,
		temperature: 0.7,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// WithBaseURL points the generator at a compatible endpoint
func (g *OpenAIGenerator) WithBaseURL(baseURL string) *OpenAIGenerator {
	if baseURL != "" {
		g.baseURL = strings.TrimRight(baseURL, "/")
	}
	return g
}

func (g *OpenAIGenerator) WithTemperature(t float64) *OpenAIGenerator {
	g.temperature = t
	return g
}

func (g *OpenAIGenerator) Complete(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	o := types.ParseOptions(opts, types.GenerationOptions{MaxTokens: 1024, Temperature: g.temperature})

	var messages []openAIMessage
	if val, ok := opts["system"].(string); ok && val != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: val})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: prompt})

	req := openAIRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   o.MaxTokens,
		Temperature: o.Temperature,
		TopP:        o.TopP,
		Stop:        o.Stop,
	}

	resp, err := g.post(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var response openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return response.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) NewSession(ctx context.Context, system string) (types.ChatSession, error) {
	return &openAISession{g: g, system: system}, nil
}

func (g *OpenAIGenerator) Model() string {
	return g.model
}

func (g *OpenAIGenerator) post(ctx context.Context, req openAIRequest) (*http.Response, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.apiKey))
	if req.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("OpenAI API error %d: %s", resp.StatusCode, string(body))
	}
	return resp, nil
}

// openAISession keeps the conversation client-side and replays it each turn
type openAISession struct {
	g       *OpenAIGenerator
	system  string
	mu      sync.Mutex
	history []openAIMessage
	closed  bool
}

func (s *openAISession) Stream(ctx context.Context, text string) (<-chan string, <-chan error) {
	return pipe(ctx, func(emit func(string) bool) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return ErrSessionClosed
		}

		user := openAIMessage{Role: "user", Content: text}
		messages := make([]openAIMessage, 0, len(s.history)+2)
		if s.system != "" {
			messages = append(messages, openAIMessage{Role: "system", Content: s.system})
		}
		messages = append(messages, s.history...)
		messages = append(messages, user)

		resp, err := s.g.post(ctx, openAIRequest{
			Model:       s.g.model,
			Messages:    messages,
			Temperature: s.g.temperature,
			Stream:      true,
		})
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		var reply strings.Builder
		err = readSSE(resp.Body, func(data string) (bool, error) {
			if data == "[DONE]" {
				return false, nil
			}
			var chunk openAIStreamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				return false, fmt.Errorf("failed to decode stream chunk: %w", err)
			}
			if chunk.Error != nil {
				return false, fmt.Errorf("OpenAI stream error: %s", chunk.Error.Message)
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				reply.WriteString(choice.Delta.Content)
				if !emit(choice.Delta.Content) {
					return false, ctx.Err()
				}
			}
			return true, nil
		})
		if err != nil {
			return fmt.Errorf("stream error: %w", err)
		}

		s.history = append(s.history, user, openAIMessage{Role: "assistant", Content: reply.String()})
		return nil
	})
}

func (s *openAISession) Close() error {
	s.mu.Lock()
	s.history = nil
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Compile-time interface check
var (
	_ types.Generator = (*OpenAIGenerator)(nil)
	_ types.Chatter   = (*OpenAIGenerator)(nil)
)
