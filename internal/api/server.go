package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"airwavego/pkg/logging"
	"airwavego/pkg/version"
)

// NewServer creates and configures the HTTP server.
// shutdown is invoked by POST /api/shutdown for a graceful exit.
func NewServer(addr string, jobsH *JobsHandler, stats *StatsHandler, history *HistoryHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health and version
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Diagnostics
	mux.Handle("GET /api/stats", stats)
	if history != nil {
		mux.HandleFunc("GET /api/history", history.HandleHistory)
	}

	// 3. Job endpoints
	mux.HandleFunc("POST /v1/jobs", jobsH.HandleSubmit)
	mux.HandleFunc("GET /v1/jobs/{jobId}", jobsH.HandleStatus)
	mux.HandleFunc("GET /v1/jobs/{jobId}/audio", jobsH.HandleAudio)

	// 4. Shutdown endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow the response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return &http.Server{
		Addr:         addr,
		Handler:      withCORS(withRequestLog(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(`{"ok": true}`)); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}

// withCORS allows any origin; the API serves a local dashboard and
// development frontends on other ports.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if logging.RequestLogger != nil {
			logging.RequestLogger.Info("request",
				"method", r.Method, "path", r.URL.Path,
				"remote", r.RemoteAddr, "duration", time.Since(start))
		}
	})
}
