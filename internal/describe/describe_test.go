package describe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthieukhl/buildright/internal/llm/generate"
)

type stubGenerator struct {
	text  string
	err   error
	calls int
}

func (s *stubGenerator) Complete(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	s.calls++
	return s.text, s.err
}

func (s *stubGenerator) Model() string { return "stub" }

func TestDescribeReturnsTextVerbatim(t *testing.T) {
	gen := &stubGenerator{text: "  Heavy duty. Built to last.\n"}
	d := New(gen, nil)

	assert.Equal(t, "  Heavy duty. Built to last.\n", d.Describe(context.Background(), "Hammer", "Tools"))
}

func TestDescribeFallbackWithoutRetry(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	d := New(gen, nil)

	assert.Equal(t, FallbackDescription, d.Describe(context.Background(), "Hammer", "Tools"))
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "Could not generate description at this time.", FallbackDescription)
}

func TestDescribeEmptyResult(t *testing.T) {
	d := New(&stubGenerator{}, nil)
	assert.Equal(t, EmptyDescription, d.Describe(context.Background(), "Hammer", "Tools"))
}

func TestDescribeWithMockProvider(t *testing.T) {
	mock := generate.NewMockGenerator("canned")
	d := New(mock, nil)

	out := d.Describe(context.Background(), "Impact Wrench", "Tools")
	assert.Contains(t, out, "Impact Wrench")

	prompts := mock.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], `"Tools"`)
	assert.Contains(t, prompts[0], "under 50 words")
}
