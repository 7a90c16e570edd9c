package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/focushive/hivetimer/internal/domain"
)

// handleUserEvents streams the caller's timer events over SSE. Every device
// a user has open holds one of these; a lifecycle change on any device
// shows up on all of them.
func (s *Server) handleUserEvents(w http.ResponseWriter, r *http.Request) {
	s.streamEvents(w, r, domain.UserChannel(userID(r)))
}

// handleHiveEvents streams a hive's shared event feed.
func (s *Server) handleHiveEvents(w http.ResponseWriter, r *http.Request) {
	s.streamEvents(w, r, domain.HiveChannel(r.PathValue("id")))
}

func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request, channel string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	sub := s.hub.Subscribe(channel)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Tell the client the stream is live before the first event arrives.
	fmt.Fprintf(w, ": connected %s\n\n", channel)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				s.logger.Warn("failed to encode event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			flusher.Flush()
		}
	}
}
