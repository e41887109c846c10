package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/matthieukhl/buildright/internal/events"
	"github.com/matthieukhl/buildright/internal/models"
	"github.com/matthieukhl/buildright/internal/prompts"
	"github.com/matthieukhl/buildright/internal/types"
)

const (
	Greeting        = "Hi! I'm BuildBuddy. Need help finding a tool or advice on a project?"
	FallbackMessage = "Sorry, I'm having trouble connecting to the toolbox right now."
)

var (
	ErrEmptyInput      = errors.New("message is empty")
	ErrBusy            = errors.New("a reply is already in progress")
	ErrClosed          = errors.New("chat widget is closed")
	ErrSessionNotFound = errors.New("chat session not found")
)

type Options struct {
	ID         string
	System     string // defaults to the BuildBuddy persona
	Logger     *zap.Logger
	Dispatcher events.Dispatcher
}

// Widget is one chat conversation: a transcript plus the provider session
// that carries context between turns. The session is opened once by
// NewWidget and released by Close.
type Widget struct {
	id         string
	session    types.ChatSession
	logger     *zap.Logger
	dispatcher events.Dispatcher

	mu         sync.Mutex
	transcript []models.ChatMessage
	loading    bool
	closed     bool
	observers  map[int]func([]models.ChatMessage)
	nextObs    int
}

func NewWidget(ctx context.Context, chatter types.Chatter, opts Options) (*Widget, error) {
	if opts.System == "" {
		opts.System = prompts.ChatSystemInstruction
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = events.Nop{}
	}

	session, err := chatter.NewSession(ctx, opts.System)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat session: %w", err)
	}

	return &Widget{
		id:         opts.ID,
		session:    session,
		logger:     opts.Logger.With(zap.String("chat_session", opts.ID)),
		dispatcher: opts.Dispatcher,
		transcript: []models.ChatMessage{{Role: models.RoleModel, Text: Greeting}},
		observers:  make(map[int]func([]models.ChatMessage)),
	}, nil
}

func (w *Widget) ID() string { return w.id }

// Transcript returns a copy of the conversation so far
func (w *Widget) Transcript() []models.ChatMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Loading reports whether a reply is being awaited
func (w *Widget) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// CanSend mirrors the send button: disabled while loading or for blank input
func (w *Widget) CanSend(input string) bool {
	return strings.TrimSpace(input) != "" && !w.Loading()
}

// OnUpdate registers fn to receive the transcript after every change. The
// returned func removes the observer.
func (w *Widget) OnUpdate(fn func([]models.ChatMessage)) func() {
	w.mu.Lock()
	id := w.nextObs
	w.nextObs++
	w.observers[id] = fn
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		delete(w.observers, id)
		w.mu.Unlock()
	}
}

// Send runs one turn. Blank input and a turn already in flight are refused;
// provider failures are absorbed into FallbackMessage and not returned.
func (w *Widget) Send(ctx context.Context, input string) error {
	done, err := w.Start(ctx, input)
	if err != nil {
		return err
	}
	<-done
	return nil
}

// Start claims the widget for one turn and runs it in the background. The
// refusal errors of Send are returned before anything changes; once Start
// succeeds the user message is in the transcript and done closes when the
// turn has finished.
func (w *Widget) Start(ctx context.Context, input string) (<-chan struct{}, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, ErrEmptyInput
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, ErrClosed
	}
	if w.loading {
		w.mu.Unlock()
		return nil, ErrBusy
	}
	w.loading = true
	w.transcript = append(w.transcript, models.ChatMessage{Role: models.RoleUser, Text: text})
	w.mu.Unlock()
	w.notify()

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.run(ctx, text)
	}()
	return done, nil
}

func (w *Widget) run(ctx context.Context, text string) {
	content, errc := w.session.Stream(ctx, text)

	w.mu.Lock()
	w.transcript = append(w.transcript, models.ChatMessage{Role: models.RoleModel})
	reply := len(w.transcript) - 1
	w.mu.Unlock()
	w.notify()

	var full strings.Builder
	for chunk := range content {
		full.WriteString(chunk)
		w.mu.Lock()
		w.transcript[reply].Text = full.String()
		w.mu.Unlock()
		w.notify()
	}
	err := <-errc

	w.mu.Lock()
	if err != nil {
		w.transcript[reply].Text = FallbackMessage
	}
	w.loading = false
	w.mu.Unlock()
	w.notify()

	if err != nil {
		w.logger.Error("chat turn failed", zap.Error(err))
	} else {
		w.logger.Debug("chat turn completed", zap.Int("reply_len", full.Len()))
	}
	_ = w.dispatcher.Dispatch(events.ChatTurnCompleted{
		SessionID: w.id,
		Failed:    err != nil,
		ReplyLen:  full.Len(),
	})
}

// Close releases the provider session. Further sends fail with ErrClosed.
func (w *Widget) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.observers = make(map[int]func([]models.ChatMessage))
	w.mu.Unlock()

	return w.session.Close()
}

func (w *Widget) snapshotLocked() []models.ChatMessage {
	out := make([]models.ChatMessage, len(w.transcript))
	copy(out, w.transcript)
	return out
}

func (w *Widget) notify() {
	w.mu.Lock()
	snapshot := w.snapshotLocked()
	fns := make([]func([]models.ChatMessage), 0, len(w.observers))
	for _, fn := range w.observers {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
