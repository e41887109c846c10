package generate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "streamGenerateContent") {
			w.Header().Set("Content-Type", "text/event-stream")
			for _, text := range []string{"Measure ", "twice, ", "cut once."} {
				fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"role\":\"model\",\"parts\":[{\"text\":%q}]}}]}\n\n", text)
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Solid steel, built to last."}]}}]}`)
	}))
}

func TestGeminiComplete(t *testing.T) {
	srv := geminiServer(t)
	defer srv.Close()

	g, err := NewGeminiGenerator(context.Background(), "", "", "test-key", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", g.Model())

	out, err := g.Complete(context.Background(), "describe a hammer", map[string]any{"max_tokens": 80})
	require.NoError(t, err)
	assert.Equal(t, "Solid steel, built to last.", out)
}

func TestGeminiChatStream(t *testing.T) {
	srv := geminiServer(t)
	defer srv.Close()

	g, err := NewGeminiGenerator(context.Background(), "gemini-2.5-flash", "", "test-key", srv.URL)
	require.NoError(t, err)

	session, err := g.NewSession(context.Background(), "persona")
	require.NoError(t, err)

	fragments, err := drain(session.Stream(context.Background(), "any advice?"))
	require.NoError(t, err)
	assert.Equal(t, "Measure twice, cut once.", strings.Join(fragments, ""))

	require.NoError(t, session.Close())
	_, err = drain(session.Stream(context.Background(), "again"))
	assert.ErrorIs(t, err, ErrSessionClosed)
}
