package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matthieukhl/buildright/internal/assistant"
	"github.com/matthieukhl/buildright/internal/models"
)

type messageRequest struct {
	Text string `json:"text"`
}

type chatView struct {
	ID         string               `json:"id"`
	Transcript []models.ChatMessage `json:"transcript"`
	Loading    bool                 `json:"loading"`
}

func viewOf(w *assistant.Widget) chatView {
	return chatView{ID: w.ID(), Transcript: w.Transcript(), Loading: w.Loading()}
}

func (s *Server) createChat(c *gin.Context) {
	w, err := s.deps.Chats.Create(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to open chat session", zap.Error(err))
		fail(c, http.StatusBadGateway, "CHAT_UNAVAILABLE", assistant.FallbackMessage, nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": viewOf(w)})
}

func (s *Server) getChat(c *gin.Context) {
	w, found := s.widget(c)
	if !found {
		return
	}
	ok(c, viewOf(w))
}

func (s *Server) closeChat(c *gin.Context) {
	if err := s.deps.Chats.Close(c.Param("id")); err != nil {
		s.chatError(c, err)
		return
	}
	ok(c, gin.H{"closed": true})
}

// sendChatMessage runs one turn and streams every transcript change as an
// SSE "transcript" event, followed by "done"
func (s *Server) sendChatMessage(c *gin.Context) {
	w, found := s.widget(c)
	if !found {
		return
	}

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid message", err.Error())
		return
	}

	// the turn finishes even if the client goes away
	turnCtx := context.WithoutCancel(c.Request.Context())
	done, err := w.Start(turnCtx, req.Text)
	if err != nil {
		s.chatError(c, err)
		return
	}

	updates := make(chan []models.ChatMessage, 64)
	unsubscribe := w.OnUpdate(func(transcript []models.ChatMessage) {
		select {
		case updates <- transcript:
		default:
		}
	})
	defer unsubscribe()

	// snapshots are cumulative, so one taken after subscribing covers any
	// change made before the observer was in place
	c.SSEvent("transcript", w.Transcript())

	c.Stream(func(out io.Writer) bool {
		select {
		case transcript := <-updates:
			c.SSEvent("transcript", transcript)
			return true
		case <-done:
			c.SSEvent("transcript", w.Transcript())
			c.SSEvent("done", gin.H{"loading": w.Loading()})
			return false
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (s *Server) widget(c *gin.Context) (*assistant.Widget, bool) {
	w, err := s.deps.Chats.Get(c.Param("id"))
	if err != nil {
		s.chatError(c, err)
		return nil, false
	}
	return w, true
}

func (s *Server) chatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, assistant.ErrSessionNotFound):
		fail(c, http.StatusNotFound, "NOT_FOUND", "Chat session not found", nil)
	case errors.Is(err, assistant.ErrEmptyInput):
		fail(c, http.StatusBadRequest, "EMPTY_MESSAGE", "Message must not be blank", nil)
	case errors.Is(err, assistant.ErrBusy):
		fail(c, http.StatusConflict, "BUSY", "A reply is still being generated", nil)
	case errors.Is(err, assistant.ErrClosed):
		fail(c, http.StatusGone, "CLOSED", "Chat session is closed", nil)
	default:
		s.logger.Error("chat request failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Chat request failed", nil)
	}
}
