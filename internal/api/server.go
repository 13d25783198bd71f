package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"adforge/pkg/version"
)

// NewServer creates and configures the HTTP server.
func NewServer(addr string, ads *AdHandler, products *ProductHandler, videos *VideoHandler, watch *WatchHandler, stats *StatsHandler) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 2. Version Endpoint
	mux.HandleFunc("GET /api/version", handleVersion)

	// 3. Stats Endpoint
	mux.Handle("GET /api/stats", stats)

	// 4. Ad Generation Endpoints
	mux.HandleFunc("POST /api/ads/generate", ads.HandleGenerate)
	mux.HandleFunc("GET /api/ads/status/{job_id}", ads.HandleStatus)
	mux.HandleFunc("POST /api/ads/validate", ads.HandleValidate)

	// 5. Video Retrieval Endpoint
	mux.HandleFunc("GET /api/ads/video/{filename}", videos.HandleVideo)

	// 6. Status Stream Endpoint
	if watch != nil {
		mux.HandleFunc("GET /api/ads/watch/{job_id}", watch.HandleWatch)
	}

	// 7. Catalog Search Endpoint
	mux.HandleFunc("GET /api/products/search", products.HandleSearch)

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
