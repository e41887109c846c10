package generate

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"
)

var ErrSessionClosed = errors.New("chat session closed")

// pipe runs produce on its own goroutine and surfaces its fragments and
// final error on the channel pair used by types.ChatSession. emit reports
// false once ctx is done; produce should then stop.
func pipe(ctx context.Context, produce func(emit func(string) bool) error) (<-chan string, <-chan error) {
	content := make(chan string, 16)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(content)

		emit := func(s string) bool {
			select {
			case content <- s:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if err := produce(emit); err != nil {
			errc <- err
			return
		}
		if err := ctx.Err(); err != nil {
			errc <- err
		}
	}()

	return content, errc
}

// readSSE calls fn with the payload of each "data:" line. fn returns false to
// stop reading early.
func readSSE(r io.Reader, fn func(data string) (bool, error)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		more, err := fn(data)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return scanner.Err()
}

func resolveAPIKey(apiKeyEnv, directAPIKey string) string {
	if directAPIKey != "" {
		return directAPIKey
	}
	if apiKeyEnv != "" {
		return os.Getenv(apiKeyEnv)
	}
	return ""
}
