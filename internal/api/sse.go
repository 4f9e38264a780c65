package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/mailblast/internal/dispatch"
)

// =====================================================
// Server-Sent Events
// =====================================================

func runIDParam(r *http.Request) string {
	return chi.URLParam(r, "runID")
}

// HandleRunEvents streams a run's progress events over SSE. The stream ends
// when the run finishes or aborts, or when the client disconnects.
func (h *Handlers) HandleRunEvents(w http.ResponseWriter, r *http.Request) {
	runID := runIDParam(r)
	if runID == "" {
		respondError(w, http.StatusBadRequest, "Missing run ID")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	events, cancel := h.hub.Subscribe(128)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if e.RunID != runID {
				continue
			}
			payload, err := json.Marshal(e)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, payload)
			flusher.Flush()
			if e.Type == dispatch.EventFinished || e.Type == dispatch.EventAborted {
				return
			}
		}
	}
}
