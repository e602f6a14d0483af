package logger

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"
)

const (
	// defaultBufferSize batches file writes
	defaultBufferSize = 32 * 1024

	// defaultFlushInterval bounds how long a record can sit in the buffer
	defaultFlushInterval = 5 * time.Second

	// LogFilePermissions restricts log files to the owner
	LogFilePermissions = 0o600
)

// bufferedFileWriter is a goroutine-safe buffered writer with periodic flushing
type bufferedFileWriter struct {
	mu        sync.Mutex
	file      *os.File
	writer    *bufio.Writer
	stopFlush chan struct{}
	flushDone chan struct{}
	closed    bool
}

func newBufferedFileWriter(path string, flushInterval time.Duration) (*bufferedFileWriter, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermissions) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	w := &bufferedFileWriter{
		file:      file,
		writer:    bufio.NewWriterSize(file, defaultBufferSize),
		stopFlush: make(chan struct{}),
		flushDone: make(chan struct{}),
	}

	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}
	go w.autoFlushLoop(flushInterval)

	return w, nil
}

func (w *bufferedFileWriter) autoFlushLoop(interval time.Duration) {
	defer close(w.flushDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = w.Flush()
		case <-w.stopFlush:
			return
		}
	}
}

// Write implements io.Writer
func (w *bufferedFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, os.ErrClosed
	}
	return w.writer.Write(p)
}

// Flush writes buffered data to the OS
func (w *bufferedFileWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	return w.writer.Flush()
}

// Close stops the flush loop, flushes, syncs and closes the file
func (w *bufferedFileWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stopFlush)
	<-w.flushDone

	w.mu.Lock()
	defer w.mu.Unlock()

	flushErr := w.writer.Flush()
	syncErr := w.file.Sync()
	closeErr := w.file.Close()

	switch {
	case flushErr != nil:
		return fmt.Errorf("flush log file: %w", flushErr)
	case syncErr != nil:
		return fmt.Errorf("sync log file: %w", syncErr)
	case closeErr != nil:
		return fmt.Errorf("close log file: %w", closeErr)
	}
	return nil
}
