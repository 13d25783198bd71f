package api

import (
	"errors"
	"log/slog"
	"net/http"

	"adforge/pkg/store"
)

// VideoFiles locates persisted videos on disk.
type VideoFiles interface {
	Path(key string) (string, error)
}

// VideoHandler serves generated video files.
type VideoHandler struct {
	files VideoFiles
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(files VideoFiles) *VideoHandler {
	return &VideoHandler{files: files}
}

// HandleVideo handles GET /api/ads/video/{filename}
func (h *VideoHandler) HandleVideo(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	path, err := h.files.Path(filename)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "video not found")
			return
		}
		slog.Error("Failed to locate video", "filename", filename, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to serve video")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, path)
}
