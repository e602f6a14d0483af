package logger

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
)

// NewDiscardLogger returns a Logger that drops everything.
// Use it in tests that do not inspect log output.
func NewDiscardLogger() Logger {
	return &moduleLogger{
		logger: slog.New(slog.DiscardHandler),
		level:  slog.LevelError + 1,
	}
}

// NewBufferLogger returns a text Logger writing to w at the given level
func NewBufferLogger(w io.Writer, level LogLevel) Logger {
	slevel := parseLogLevel(string(level))
	return &moduleLogger{
		logger: slog.New(newTextHandler(w, slevel)),
		level:  slevel,
	}
}

// SyncBuffer is a goroutine-safe bytes.Buffer for capturing log output in tests
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
