package llm

import (
	"context"
	"fmt"

	"github.com/matthieukhl/buildright/internal/config"
	"github.com/matthieukhl/buildright/internal/llm/generate"
	"github.com/matthieukhl/buildright/internal/types"
)

// NewProvider creates the text-generation backend named by cfg.Provider
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (types.Provider, error) {
	switch cfg.Provider {
	case "gemini", "":
		g, err := generate.NewGeminiGenerator(ctx, cfg.Model, cfg.APIKeyEnv, cfg.APIKey, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		return g.WithTemperature(cfg.Temperature), nil
	case "openai":
		g, err := generate.NewOpenAIGenerator(cfg.Model, cfg.APIKeyEnv, cfg.APIKey)
		if err != nil {
			return nil, err
		}
		return g.WithBaseURL(cfg.BaseURL).WithTemperature(cfg.Temperature), nil
	case "anthropic":
		g, err := generate.NewAnthropicGenerator(cfg.Model, cfg.APIKeyEnv, cfg.APIKey)
		if err != nil {
			return nil, err
		}
		return g.WithBaseURL(cfg.BaseURL).WithTemperature(cfg.Temperature), nil
	case "mock":
		return generate.NewMockGenerator(cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
