package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cwbudde/bestfit/internal/opt"
	"github.com/cwbudde/bestfit/internal/store"
)

// ProgressEvent is one accepted improvement during a streamed fit.
type ProgressEvent struct {
	Trial     int       `json:"trial"`
	Index     int       `json:"index"`
	Score     *float64  `json:"score,omitempty"`
	Params    []float64 `json:"params"`
	Timestamp time.Time `json:"timestamp"`
}

// handleFitStream handles POST /api/v1/fit/stream. It runs the same fit as
// POST /api/v1/fit but answers with server-sent events: one "progress" event
// per improvement, then a "result" event carrying the record or an "error"
// event carrying the message.
func (s *Server) handleFitStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := FitRequest{Options: s.opts}
	if !decodeJSON(w, r, &req) {
		return
	}

	// Get flusher
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	sent := 0
	req.Observer = func(step opt.Step) {
		// The search cannot be interrupted; stop writing once the client is gone.
		if ctx.Err() != nil {
			return
		}
		event := ProgressEvent{
			Trial:     step.Trial,
			Index:     step.Index,
			Score:     store.Finite(step.Cost),
			Params:    step.Params,
			Timestamp: time.Now(),
		}
		if err := writeSSEEvent(w, "progress", event); err != nil {
			slog.Debug("Failed to write SSE event", "error", err)
			return
		}
		flusher.Flush()
		sent++
	}

	rec, err := s.runFit(req)
	if err != nil {
		writeSSEEvent(w, "error", map[string]string{"error": err.Error()})
	} else {
		writeSSEEvent(w, "result", rec)
	}
	flusher.Flush()

	slog.Debug("SSE fit finished", "events", sent, "failed", err != nil)
}

// writeSSEEvent writes a named event in SSE format
func writeSSEEvent(w http.ResponseWriter, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
