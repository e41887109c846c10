package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/matthieukhl/buildright/internal/types"
)

var ErrMockFailure = errors.New("mock provider failure")

// MockGenerator answers from canned hardware-store replies. It never touches
// the network and can be told to fail, which makes it the test double for
// both bridges.
type MockGenerator struct {
	model string

	mu        sync.Mutex
	failAfter int // fragments delivered before a stream fails; -1 disables
	failErr   error
	prompts   []string
}

func NewMockGenerator(model string) *MockGenerator {
	return &MockGenerator{model: model, failAfter: -1}
}

// FailWith makes Complete fail and streams fail after n fragments
func (g *MockGenerator) FailWith(err error, n int) *MockGenerator {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		err = ErrMockFailure
	}
	g.failErr = err
	g.failAfter = n
	return g
}

// Recover clears a previous FailWith
func (g *MockGenerator) Recover() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failErr = nil
	g.failAfter = -1
}

// Prompts returns every prompt or chat turn received, in order
func (g *MockGenerator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

func (g *MockGenerator) Complete(ctx context.Context, prompt string, opts map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	failErr := g.failErr
	g.mu.Unlock()

	if failErr != nil {
		return "", failErr
	}

	lower := strings.ToLower(prompt)
	if strings.Contains(lower, "product description") {
		return g.generateDescription(prompt), nil
	}
	return g.Reply(prompt), nil
}

func (g *MockGenerator) NewSession(ctx context.Context, system string) (types.ChatSession, error) {
	return &mockSession{g: g}, nil
}

func (g *MockGenerator) Model() string {
	return g.model + "-mock"
}

// Reply picks the canned answer for a user turn
func (g *MockGenerator) Reply(text string) string {
	text = strings.ToLower(text)

	switch {
	case strings.Contains(text, "leak") || strings.Contains(text, "pipe") || strings.Contains(text, "tap"):
		return "For a small leak, shut off the water first. Dry the joint, wrap the thread with PTFE tape and retighten with an adjustable wrench. If the fitting is cracked, replace it with a matching brass elbow."
	case strings.Contains(text, "shelf") || strings.Contains(text, "drill") || strings.Contains(text, "wall"):
		return "To hang a shelf you'll need a cordless drill, a spirit level, wall plugs and wood screws. Mark the holes level, drill to the plug length, tap the plugs in and screw the brackets down."
	case strings.Contains(text, "concrete") || strings.Contains(text, "cement"):
		return "Mix Portland cement with sand and gravel at roughly 1:2:3 and add water gradually. Wear gloves and eye protection, and keep the slab damp for a few days while it cures."
	default:
		return "Happy to help! Tell me a bit more about your project and I'll suggest the tools and materials you'll need. Always wear safety glasses when cutting or drilling."
	}
}

func (g *MockGenerator) generateDescription(prompt string) string {
	name := "this product"
	if start := strings.Index(prompt, `"`); start >= 0 {
		if end := strings.Index(prompt[start+1:], `"`); end > 0 {
			name = prompt[start+1 : start+1+end]
		}
	}
	return fmt.Sprintf("The %s is built to last, with heavy-duty construction that stands up to daily use on site and at home. Reliable, practical and easy to handle, it gets the job done right the first time.", name)
}

// chunk splits a reply into word fragments, keeping the separators so the
// concatenation equals the reply
func chunk(reply string) []string {
	var out []string
	for len(reply) > 0 {
		i := strings.IndexByte(reply, ' ')
		if i < 0 {
			out = append(out, reply)
			break
		}
		out = append(out, reply[:i+1])
		reply = reply[i+1:]
	}
	return out
}

type mockSession struct {
	g      *MockGenerator
	mu     sync.Mutex
	turns  []string
	closed bool
}

// Turns returns the user turns this session has seen
func (s *mockSession) Turns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.turns...)
}

func (s *mockSession) Stream(ctx context.Context, text string) (<-chan string, <-chan error) {
	return pipe(ctx, func(emit func(string) bool) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return ErrSessionClosed
		}
		s.turns = append(s.turns, text)

		g := s.g
		g.mu.Lock()
		g.prompts = append(g.prompts, text)
		failAfter, failErr := g.failAfter, g.failErr
		g.mu.Unlock()

		for i, fragment := range chunk(g.Reply(text)) {
			if failErr != nil && i >= failAfter {
				return failErr
			}
			if !emit(fragment) {
				return ctx.Err()
			}
		}
		if failErr != nil {
			return failErr
		}
		return nil
	})
}

func (s *mockSession) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Compile-time interface check
var (
	_ types.Generator = (*MockGenerator)(nil)
	_ types.Chatter   = (*MockGenerator)(nil)
)
