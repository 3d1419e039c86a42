// Package logging provides zerolog-based loggers for deckhand components.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	root zerolog.Logger = newDefault()
)

func newDefault() zerolog.Logger {
	return zerolog.New(writerFor(os.Stderr)).With().Timestamp().Logger()
}

func writerFor(out *os.File) io.Writer {
	if isatty.IsTerminal(out.Fd()) {
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return out
}

// Setup configures the global log level and output. Unknown levels fall
// back to info.
func Setup(level string, out *os.File) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	mu.Lock()
	defer mu.Unlock()
	if out == nil {
		out = os.Stderr
	}
	root = zerolog.New(writerFor(out)).Level(parsed).With().Timestamp().Logger()
}

// Component returns a logger tagged with the component name.
func Component(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With().Str("component", name).Logger()
}
