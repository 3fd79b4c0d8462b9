package llmcall

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Recorder appends Calls to a JSONL stream. Safe for use from a single
// run goroutine; writes are serialized anyway in case callers fan out.
type Recorder struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	logger *slog.Logger

	document string
}

// NewRecorder creates a recorder writing to w.
func NewRecorder(w io.Writer, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{w: w, logger: logger}
}

// Open creates a recorder appending to the JSONL file at path.
func Open(path string, logger *slog.Logger) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open call log: %w", err)
	}
	r := NewRecorder(f, logger)
	r.closer = f
	return r, nil
}

// SetDocument tags subsequent calls with the document being processed.
func (r *Recorder) SetDocument(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.document = title
}

// Record appends one call. Logging failures are reported, not fatal;
// the run should not die because the audit log did.
func (r *Recorder) Record(call *Call) {
	if r == nil || call == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if call.Document == "" {
		call.Document = r.document
	}

	line, err := json.Marshal(call)
	if err != nil {
		r.logger.Error("failed to encode call record", "error", err)
		return
	}
	if _, err := r.w.Write(append(line, '\n')); err != nil {
		r.logger.Error("failed to write call record", "error", err)
	}
}

// Close closes the underlying file, if any.
func (r *Recorder) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
