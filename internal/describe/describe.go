package describe

import (
	"context"

	"go.uber.org/zap"

	"github.com/matthieukhl/buildright/internal/prompts"
	"github.com/matthieukhl/buildright/internal/types"
)

const (
	FallbackDescription = "Could not generate description at this time."
	EmptyDescription    = "No description generated."
)

// Describer drafts product copy with a single non-streaming call. It never
// returns an error: failures collapse into FallbackDescription.
type Describer struct {
	generator types.Generator
	logger    *zap.Logger
}

func New(generator types.Generator, logger *zap.Logger) *Describer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Describer{generator: generator, logger: logger}
}

func (d *Describer) Describe(ctx context.Context, name, category string) string {
	prompt := prompts.ProductDescription(name, category)

	text, err := d.generator.Complete(ctx, prompt, map[string]any{
		"max_tokens": 200,
	})
	if err != nil {
		d.logger.Error("description generation failed",
			zap.String("name", name),
			zap.String("category", category),
			zap.String("model", d.generator.Model()),
			zap.Error(err))
		return FallbackDescription
	}
	if text == "" {
		return EmptyDescription
	}
	return text
}
