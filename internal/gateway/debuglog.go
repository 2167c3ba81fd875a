package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DebugBackend wraps another backend and appends every request/response pair
// to an append-only JSON-lines file for offline inspection (--debug-llm).
// Log failures are reported to stderr but never fail the translation call.
type DebugBackend struct {
	inner Backend
	path  string
	runID string
	mu    sync.Mutex
}

func NewDebugBackend(inner Backend, path string) *DebugBackend {
	return &DebugBackend{inner: inner, path: path, runID: uuid.New().String()}
}

type debugRecord struct {
	RunID     string    `json:"run_id"`
	CallID    string    `json:"call_id"`
	Timestamp time.Time `json:"timestamp"`
	System    string    `json:"system"`
	User      string    `json:"user"`
	Response  string    `json:"response,omitempty"`
	Error     string    `json:"error,omitempty"`
	Elapsed   string    `json:"elapsed"`
}

func (d *DebugBackend) Translate(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	resp, err := d.inner.Translate(ctx, system, user)

	rec := debugRecord{
		RunID:     d.runID,
		CallID:    uuid.New().String(),
		Timestamp: start,
		System:    system,
		User:      user,
		Response:  resp,
		Elapsed:   time.Since(start).String(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	d.append(rec)

	return resp, err
}

func (d *DebugBackend) append(rec debugRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := os.OpenFile(d.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "debug-llm: cannot open %s: %v\n", d.path, err)
		return
	}
	defer f.Close()

	line, err := json.Marshal(rec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "debug-llm: cannot marshal record: %v\n", err)
		return
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "debug-llm: write failed: %v\n", err)
	}
}
