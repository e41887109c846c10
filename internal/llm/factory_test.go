package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthieukhl/buildright/internal/config"
)

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	mock, err := NewProvider(ctx, &config.LLMConfig{Provider: "mock", Model: "canned"})
	require.NoError(t, err)
	assert.Equal(t, "canned-mock", mock.Model())

	openai, err := NewProvider(ctx, &config.LLMConfig{Provider: "openai", Model: "gpt-4o-mini", APIKey: "sk"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", openai.Model())

	anthropic, err := NewProvider(ctx, &config.LLMConfig{Provider: "anthropic", Model: "claude", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "claude", anthropic.Model())

	gemini, err := NewProvider(ctx, &config.LLMConfig{Provider: "gemini", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", gemini.Model())
}

func TestNewProviderErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewProvider(ctx, &config.LLMConfig{Provider: "palm"})
	assert.Error(t, err)

	_, err = NewProvider(ctx, &config.LLMConfig{Provider: "openai", APIKeyEnv: "BUILDRIGHT_UNSET_KEY"})
	assert.Error(t, err)
}
