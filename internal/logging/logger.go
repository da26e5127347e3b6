// Package logging writes timestamped lines to a file for front ends that
// own the terminal.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Logger appends timestamped lines to the planner log file.
type Logger struct {
	mu   sync.Mutex
	file *os.File
}

// New creates (or reuses) the log file at path.
func New(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{file: f}, nil
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Printf writes a single timestamped line to the log file.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.file == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	line = strings.TrimRight(line, "\n")
	timestamp := time.Now().Format(time.RFC3339)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.file, "[%s] %s\n", timestamp, line)
}

// Write lets the Logger back the standard log package. Each call becomes
// one timestamped line.
func (l *Logger) Write(p []byte) (int, error) {
	l.Printf("%s", p)
	return len(p), nil
}

// Redirect sends the standard logger's output to l, without its own
// timestamp prefix.
func (l *Logger) Redirect() {
	log.SetFlags(0)
	log.SetOutput(l)
}
