package prompt

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// History appends synthesized prompts to a log file for later inspection.
// A zero-value path disables recording.
type History struct {
	mu   sync.Mutex
	path string
}

// NewHistory creates a History writing to path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Record appends one prompt entry. Failures are logged, never propagated;
// prompt archiving must not interfere with job handling.
func (h *History) Record(jobID, promptText string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.path == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		slog.Error("Failed to create prompt log directory", "error", err)
		return
	}

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Error("Failed to open prompt log", "error", err)
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	entry := fmt.Sprintf("[%s] JOB: %s\n%s\n%s\n", timestamp, jobID, promptText, strings.Repeat("-", 80))

	if _, err := f.WriteString(entry); err != nil {
		slog.Error("Failed to write prompt log", "error", err)
	}
}
