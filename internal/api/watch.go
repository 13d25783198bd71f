package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"adforge/pkg/model"
)

// StatusChecker advances and reports job state.
type StatusChecker interface {
	CheckStatus(ctx context.Context, jobID string) model.JobView
}

// WatchHandler streams job status over a websocket. Each tick runs the same
// lazy status check the polling endpoint uses; the socket is just another
// caller, so state still only advances on request.
type WatchHandler struct {
	jobs     StatusChecker
	interval time.Duration

	upgrader websocket.Upgrader
}

// NewWatchHandler creates a new WatchHandler.
func NewWatchHandler(jobs StatusChecker, interval time.Duration) *WatchHandler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &WatchHandler{
		jobs:     jobs,
		interval: interval,
		upgrader: websocket.Upgrader{
			// Same-origin enforcement is the frontend proxy's concern.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWatch handles GET /api/ads/watch/{job_id}
func (h *WatchHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "job_id", jobID, "error", err)
		return
	}
	defer conn.Close()

	// Reader loop: detects client close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		view := h.jobs.CheckStatus(r.Context(), jobID)
		if err := conn.WriteJSON(view); err != nil {
			slog.Debug("Websocket write failed", "job_id", jobID, "error", err)
			return
		}
		if view.Status.Terminal() || view.Status == model.StatusNotFound {
			// Final state delivered; close the stream cleanly.
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(view.Status)))
			return
		}

		select {
		case <-ticker.C:
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
