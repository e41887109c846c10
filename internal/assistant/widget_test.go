package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthieukhl/buildright/internal/events"
	"github.com/matthieukhl/buildright/internal/llm/generate"
	"github.com/matthieukhl/buildright/internal/models"
	"github.com/matthieukhl/buildright/internal/types"
)

// scriptedSession replays fixed fragments and an optional trailing error
type scriptedSession struct {
	fragments []string
	err       error
	release   chan struct{} // when set, the stream waits for it before finishing
	systems   []string
	turns     []string
	closed    bool
}

func (s *scriptedSession) Stream(ctx context.Context, text string) (<-chan string, <-chan error) {
	s.turns = append(s.turns, text)
	content := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer close(content)
		for _, f := range s.fragments {
			content <- f
		}
		if s.release != nil {
			<-s.release
		}
		if s.err != nil {
			errc <- s.err
		}
	}()
	return content, errc
}

func (s *scriptedSession) Close() error {
	s.closed = true
	return nil
}

type scriptedChatter struct {
	session  *scriptedSession
	sessions int
	err      error
}

func (c *scriptedChatter) NewSession(ctx context.Context, system string) (types.ChatSession, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.sessions++
	c.session.systems = append(c.session.systems, system)
	return c.session, nil
}

func (c *scriptedChatter) Model() string { return "scripted" }

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Dispatch(e events.Event) error {
	d.mu.Lock()
	d.events = append(d.events, e)
	d.mu.Unlock()
	return nil
}

func newWidget(t *testing.T, s *scriptedSession) (*Widget, *scriptedChatter) {
	t.Helper()
	chatter := &scriptedChatter{session: s}
	w, err := NewWidget(context.Background(), chatter, Options{ID: "w1"})
	require.NoError(t, err)
	return w, chatter
}

func TestNewWidgetStartsWithGreeting(t *testing.T) {
	w, chatter := newWidget(t, &scriptedSession{})

	assert.Equal(t, []models.ChatMessage{{Role: models.RoleModel, Text: Greeting}}, w.Transcript())
	assert.False(t, w.Loading())
	assert.Equal(t, 1, chatter.sessions)
	assert.Contains(t, chatter.session.systems[0], "BuildBuddy")
	assert.Equal(t, "w1", w.ID())
}

func TestNewWidgetSessionError(t *testing.T) {
	_, err := NewWidget(context.Background(), &scriptedChatter{err: errors.New("no key")}, Options{})
	assert.Error(t, err)
}

func TestSendAccumulatesCumulativeText(t *testing.T) {
	s := &scriptedSession{fragments: []string{"Use ", "a ", "level."}}
	w, _ := newWidget(t, s)

	var seen []string
	var loading []bool
	w.OnUpdate(func(tr []models.ChatMessage) {
		last := tr[len(tr)-1]
		if last.Role == models.RoleModel {
			seen = append(seen, last.Text)
		}
	})
	w.OnUpdate(func([]models.ChatMessage) { loading = append(loading, w.Loading()) })

	require.NoError(t, w.Send(context.Background(), "  how do I hang a shelf?  "))

	tr := w.Transcript()
	require.Len(t, tr, 3)
	assert.Equal(t, models.ChatMessage{Role: models.RoleUser, Text: "how do I hang a shelf?"}, tr[1])
	assert.Equal(t, models.ChatMessage{Role: models.RoleModel, Text: "Use a level."}, tr[2])
	assert.Equal(t, []string{"", "Use ", "Use a ", "Use a level.", "Use a level."}, seen)
	assert.False(t, w.Loading())
	assert.True(t, loading[0], "loading while awaiting the reply")
	assert.False(t, loading[len(loading)-1])
	assert.Equal(t, []string{"how do I hang a shelf?"}, s.turns)
}

func TestSendReusesOneSessionAcrossTurns(t *testing.T) {
	s := &scriptedSession{fragments: []string{"ok"}}
	w, chatter := newWidget(t, s)

	require.NoError(t, w.Send(context.Background(), "first"))
	require.NoError(t, w.Send(context.Background(), "second"))

	assert.Equal(t, 1, chatter.sessions)
	assert.Equal(t, []string{"first", "second"}, s.turns)
	assert.Len(t, w.Transcript(), 5)
}

func TestSendFailureUsesFallback(t *testing.T) {
	s := &scriptedSession{fragments: []string{"Partial ", "answer"}, err: errors.New("connection reset")}
	d := &recordingDispatcher{}
	w, err := NewWidget(context.Background(), &scriptedChatter{session: s}, Options{ID: "w2", Dispatcher: d})
	require.NoError(t, err)

	require.NoError(t, w.Send(context.Background(), "help"))

	tr := w.Transcript()
	require.Len(t, tr, 3)
	assert.Equal(t, models.RoleModel, tr[2].Role)
	assert.Equal(t, FallbackMessage, tr[2].Text)
	assert.False(t, w.Loading())

	require.Len(t, d.events, 1)
	done := d.events[0].(events.ChatTurnCompleted)
	assert.True(t, done.Failed)
	assert.Equal(t, "w2", done.SessionID)
}

func TestSendFailureWithMockProvider(t *testing.T) {
	mock := generate.NewMockGenerator("canned").FailWith(nil, 3)
	w, err := NewWidget(context.Background(), mock, Options{})
	require.NoError(t, err)

	require.NoError(t, w.Send(context.Background(), "my tap leaks"))
	tr := w.Transcript()
	assert.Equal(t, FallbackMessage, tr[len(tr)-1].Text)
	assert.False(t, w.Loading())

	mock.Recover()
	require.NoError(t, w.Send(context.Background(), "my tap leaks"))
	tr = w.Transcript()
	assert.Equal(t, mock.Reply("my tap leaks"), tr[len(tr)-1].Text)
	assert.Len(t, tr, 5)
}

func TestSendRejectsBlankInput(t *testing.T) {
	w, _ := newWidget(t, &scriptedSession{})

	for _, in := range []string{"", "   ", "\n\t"} {
		assert.ErrorIs(t, w.Send(context.Background(), in), ErrEmptyInput)
		assert.False(t, w.CanSend(in))
	}
	assert.Len(t, w.Transcript(), 1)
	assert.True(t, w.CanSend("hello"))
}

func TestSendRejectsConcurrentTurn(t *testing.T) {
	release := make(chan struct{})
	s := &scriptedSession{fragments: []string{"slow"}, release: release}
	w, _ := newWidget(t, s)

	started := make(chan struct{})
	var once sync.Once
	w.OnUpdate(func(tr []models.ChatMessage) {
		if tr[len(tr)-1].Text == "slow" {
			once.Do(func() { close(started) })
		}
	})

	done := make(chan error)
	go func() { done <- w.Send(context.Background(), "first") }()

	<-started
	assert.True(t, w.Loading())
	assert.False(t, w.CanSend("second"))
	assert.ErrorIs(t, w.Send(context.Background(), "second"), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, w.Loading())

	for _, m := range w.Transcript() {
		assert.NotEqual(t, "second", m.Text)
	}
}

func TestTranscriptIsAppendOnly(t *testing.T) {
	s := &scriptedSession{fragments: []string{"a"}}
	w, _ := newWidget(t, s)

	prev := w.Transcript()
	for _, in := range []string{"one", "two", "three"} {
		require.NoError(t, w.Send(context.Background(), in))
		cur := w.Transcript()
		require.Greater(t, len(cur), len(prev))
		assert.Equal(t, prev, cur[:len(prev)])
		prev = cur
	}
}

func TestObserverRemoval(t *testing.T) {
	w, _ := newWidget(t, &scriptedSession{fragments: []string{"x"}})

	calls := 0
	stop := w.OnUpdate(func([]models.ChatMessage) { calls++ })
	require.NoError(t, w.Send(context.Background(), "hi"))
	after := calls
	require.Greater(t, after, 0)

	stop()
	require.NoError(t, w.Send(context.Background(), "again"))
	assert.Equal(t, after, calls)
}

func TestCloseReleasesSession(t *testing.T) {
	s := &scriptedSession{}
	w, _ := newWidget(t, s)

	require.NoError(t, w.Close())
	assert.True(t, s.closed)
	assert.ErrorIs(t, w.Send(context.Background(), "hi"), ErrClosed)
	assert.NoError(t, w.Close())
}

func TestRegistry(t *testing.T) {
	mock := generate.NewMockGenerator("canned")
	r := NewRegistry(mock, nil, nil)

	a, err := r.Create(context.Background())
	require.NoError(t, err)
	b, err := r.Create(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, r.Len())

	got, err := r.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	require.NoError(t, r.Close(a.ID()))
	_, err = r.Get(a.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, r.Close(a.ID()), ErrSessionNotFound)

	require.NoError(t, r.CloseAll())
	assert.Equal(t, 0, r.Len())
	assert.ErrorIs(t, b.Send(context.Background(), "hi"), ErrClosed)
}

func TestWidgetKeepsWhitespaceFragments(t *testing.T) {
	s := &scriptedSession{fragments: []string{"Line one.", "\n", "Line two."}}
	w, _ := newWidget(t, s)
	require.NoError(t, w.Send(context.Background(), "go"))

	tr := w.Transcript()
	assert.Equal(t, "Line one.\nLine two.", tr[len(tr)-1].Text)
}

func TestStartClaimsTurnSynchronously(t *testing.T) {
	release := make(chan struct{})
	s := &scriptedSession{fragments: []string{"ok"}, release: release}
	w, _ := newWidget(t, s)

	done, err := w.Start(context.Background(), "first")
	require.NoError(t, err)

	// the claim is visible as soon as Start returns
	assert.True(t, w.Loading())
	tr := w.Transcript()
	assert.Equal(t, models.ChatMessage{Role: models.RoleUser, Text: "first"}, tr[1])

	_, err = w.Start(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = w.Start(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	close(release)
	<-done
	assert.False(t, w.Loading())
	assert.Len(t, w.Transcript(), 3)
	assert.Equal(t, "ok", w.Transcript()[2].Text)
}
