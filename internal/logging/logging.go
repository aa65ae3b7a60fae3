package logging

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Logger is the diagnostic channel: one JSON object per line, matching the
// request-log format. Failures that must never reach the user (session
// corruption, cache misses, archive errors) go here.
type Logger interface {
	Log(event string, fields map[string]any)
}

// JSONLogger writes events as single-line JSON to an io.Writer.
type JSONLogger struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLogger creates a logger writing to w; nil w means stdout.
func NewJSONLogger(w io.Writer) *JSONLogger {
	if w == nil {
		w = os.Stdout
	}
	return &JSONLogger{enc: json.NewEncoder(w)}
}

func (l *JSONLogger) Log(event string, fields map[string]any) {
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": "info",
		"event": event,
	}
	for k, v := range fields {
		entry[k] = v
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(entry); err != nil {
		log.Printf("failed to encode log entry: %v", err)
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) Log(string, map[string]any) {}
