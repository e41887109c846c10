package assistant

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matthieukhl/buildright/internal/events"
	"github.com/matthieukhl/buildright/internal/types"
)

// Registry owns the chat widgets opened over HTTP, keyed by session id
type Registry struct {
	chatter    types.Chatter
	logger     *zap.Logger
	dispatcher events.Dispatcher

	mu      sync.Mutex
	widgets map[string]*Widget
}

func NewRegistry(chatter types.Chatter, logger *zap.Logger, dispatcher events.Dispatcher) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		chatter:    chatter,
		logger:     logger,
		dispatcher: dispatcher,
		widgets:    make(map[string]*Widget),
	}
}

// Create opens a new widget with a fresh provider session
func (r *Registry) Create(ctx context.Context) (*Widget, error) {
	id := uuid.NewString()
	w, err := NewWidget(ctx, r.chatter, Options{
		ID:         id,
		Logger:     r.logger,
		Dispatcher: r.dispatcher,
	})
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.widgets[id] = w
	r.mu.Unlock()

	r.logger.Info("chat session opened", zap.String("chat_session", id))
	return w, nil
}

func (r *Registry) Get(id string) (*Widget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.widgets[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return w, nil
}

// Close disposes the widget and its provider session
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	w, ok := r.widgets[id]
	delete(r.widgets, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	r.logger.Info("chat session closed", zap.String("chat_session", id))
	return w.Close()
}

// CloseAll disposes every widget, used on shutdown
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	widgets := r.widgets
	r.widgets = make(map[string]*Widget)
	r.mu.Unlock()

	var errs []error
	for _, w := range widgets {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.widgets)
}
