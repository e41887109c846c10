package types

import "context"

// Generator produces text completions from prompts
type Generator interface {
	Complete(ctx context.Context, prompt string, opts map[string]any) (string, error)
	Model() string
}

// Chatter opens stateful conversations with a text-generation provider
type Chatter interface {
	NewSession(ctx context.Context, system string) (ChatSession, error)
	Model() string
}

// Provider is a text-generation backend serving both bridges
type Provider interface {
	Generator
	Chatter
}

// ChatSession is one provider conversation. Context from earlier turns is
// kept by the session, so the same session must be reused across turns.
type ChatSession interface {
	// Stream sends a user turn and yields reply fragments in order. The
	// content channel closes when the reply is complete; at most one error
	// is delivered on the error channel before it closes.
	Stream(ctx context.Context, text string) (<-chan string, <-chan error)
	Close() error
}

// GenerationOptions contains options for text generation
type GenerationOptions struct {
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// ParseOptions reads the loosely typed opts map used by Generator.Complete
func ParseOptions(opts map[string]any, defaults GenerationOptions) GenerationOptions {
	out := defaults
	if val, ok := opts["max_tokens"].(int); ok && val > 0 {
		out.MaxTokens = val
	}
	if val, ok := opts["temperature"].(float64); ok {
		out.Temperature = val
	}
	if val, ok := opts["top_p"].(float64); ok {
		out.TopP = val
	}
	if val, ok := opts["stop"].([]string); ok {
		out.Stop = val
	}
	return out
}
