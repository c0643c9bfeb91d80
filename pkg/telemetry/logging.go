package telemetry

import (
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"
)

// LogWriter turns log lines into one-object-per-line JSON records. It
// satisfies io.Writer so it can back a *log.Logger; lines written that way
// may start with an uppercase "LEVEL " token to set the level, anything
// else logs at INFO.
type LogWriter struct {
	mu      sync.Mutex
	service string
	out     io.Writer
}

func NewLogWriter(service string, out io.Writer) *LogWriter {
	return &LogWriter{service: service, out: out}
}

func (w *LogWriter) Write(p []byte) (int, error) {
	level, message := splitLevel(strings.TrimSpace(string(p)))
	w.Emit(level, message, "")
	return len(p), nil
}

// Emit writes one record. Failures to encode or write are dropped: logging
// must never take a service down.
func (w *LogWriter) Emit(level, message, traceID string) {
	record := map[string]string{
		"time":    time.Now().UTC().Format(time.RFC3339Nano),
		"level":   level,
		"service": w.service,
		"message": message,
	}
	if traceID != "" {
		record["trace_id"] = traceID
	}

	data, err := json.Marshal(record)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = w.out.Write(append(data, '\n'))
}

func splitLevel(line string) (string, string) {
	token, rest, found := strings.Cut(line, " ")
	if found {
		switch token {
		case "DEBUG", "INFO", "WARN", "ERROR":
			return token, strings.TrimSpace(rest)
		}
	}
	return "INFO", line
}
