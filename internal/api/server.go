// Package api is the HTTP shell around the processor: routing, CORS,
// the error envelope, and request logging.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/contactkeval/option-analytics/internal/apperrors"
	"github.com/contactkeval/option-analytics/internal/logger"
	"github.com/contactkeval/option-analytics/internal/processor"
	"github.com/contactkeval/option-analytics/internal/timeutil"
)

// Server routes analytics requests to a Processor.
type Server struct {
	proc *processor.Processor
}

func NewServer(proc *processor.Processor) *Server {
	return &Server{proc: proc}
}

// Router builds the HTTP mux: the analytics endpoint, a health check,
// and preflight handling, all behind CORS and request logging.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware, requestLogMiddleware)

	r.HandleFunc("/options-analytics", s.handleOptionsAnalytics).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodOptions)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.WithFields(logger.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"ticker":     r.URL.Query().Get("ticker"),
			"status":     rec.status,
			"bytes":      rec.bytes,
			"duration":   time.Since(start).String(),
		}).Info("request completed")
	})
}

// statusRecorder captures the status and size for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// errorEnvelope is the failure body for every endpoint.
type errorEnvelope struct {
	Error     string         `json:"error"`
	ErrorType string         `json:"errorType"`
	Timestamp string         `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

func (s *Server) handleOptionsAnalytics(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		ticker = processor.DefaultTicker
	}

	snapshot, err := s.proc.BuildSnapshot(r.Context(), ticker)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, processor.ToResponse(snapshot))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": timeutil.FormatTimestamp(timeutil.Now()),
	})
}

func writeError(w http.ResponseWriter, err error) {
	appErr := apperrors.From(err)
	status := apperrors.HTTPStatus(appErr.Kind)

	if status >= http.StatusInternalServerError {
		logger.Errorf("request failed: %v", err)
	}

	writeJSON(w, status, errorEnvelope{
		Error:     appErr.Message,
		ErrorType: string(appErr.Kind),
		Timestamp: timeutil.FormatTimestamp(appErr.Timestamp),
		Details:   appErr.SafeDetails(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Errorf("writeJSON: failed to encode response: %v", err)
	}
}
