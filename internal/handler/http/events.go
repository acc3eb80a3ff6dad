package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/workspace"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/handler/http/response"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/sse"
)

const keepaliveInterval = 30 * time.Second

type EventHandler interface {
	// Stream handles GET /sessions/{sessionID}/events
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventHandlerImpl struct {
	workspaceService workspace.WorkspaceService
	hub              *sse.Hub
	keepalive        time.Duration
}

func NewEventHandler(workspaceService workspace.WorkspaceService, hub *sse.Hub) EventHandler {
	return &eventHandlerImpl{
		workspaceService: workspaceService,
		hub:              hub,
		keepalive:        keepaliveInterval,
	}
}

// Stream implements EventHandler. The stream ends when the client leaves or the
// session is deleted.
func (h *eventHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if _, err := h.workspaceService.Get(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	// Check if streaming is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(id)
	defer cleanup()

	// Send initial connection event
	if err := sse.Write(w, sse.Event{Event: "connected", Data: map[string]string{"status": "connected", "session_id": id}}); err != nil {
		return
	}
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := sse.Write(w, event); err != nil {
				slog.Warn("Failed to write event", "session_id", id, "event", event.Event, "error", err)
				return
			}
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
