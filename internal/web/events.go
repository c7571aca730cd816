package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/casemaster/internal/core"
	"github.com/JonMunkholm/casemaster/internal/logging"
	"github.com/JonMunkholm/casemaster/internal/ui"
	"github.com/JonMunkholm/casemaster/internal/web/views"
)

// heartbeatInterval keeps idle event streams open through proxies.
const heartbeatInterval = 15 * time.Second

// handleEvents streams one "state" event per transition, starting with the
// current state.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, r, core.UnknownError("web.events", fmt.Errorf("streaming not supported")), http.StatusInternalServerError)
		return
	}

	// Subscribe first so no transition falls between the snapshot and the stream.
	updates, cancel := s.machine.Subscribe()
	defer cancel()

	var current ui.View
	if err := s.loop.Call(r.Context(), func() { current = s.machine.View() }); err != nil {
		s.respondError(w, r, core.UnknownError("web.events", err), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	logger := logging.FromContext(r.Context())
	id := 0
	send := func(v ui.View) bool {
		data, err := views.EncodeEvent(r.Context(), v)
		if err != nil {
			logger.Error("encode state event", "error", err)
			return true
		}
		id++
		if _, err := fmt.Fprintf(w, "id: %d\nevent: state\ndata: %s\n\n", id, data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(current) {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case v, ok := <-updates:
			if !ok {
				fmt.Fprint(w, "event: close\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			if !send(v) {
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
