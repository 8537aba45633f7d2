package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cwbudde/bestfit/internal/fit"
	"github.com/cwbudde/bestfit/internal/store"
)

// maxBodyBytes bounds request bodies; datasets are posted inline.
const maxBodyBytes = 8 << 20

// Server represents the HTTP server
type Server struct {
	store  store.Store
	opts   fit.Options
	addr   string
	server *http.Server
}

// NewServer creates a new HTTP server. Requests start from opts and may
// override its numeric settings. A nil store keeps records in memory.
func NewServer(addr string, st store.Store, opts fit.Options) *Server {
	if st == nil {
		st = store.NewMemoryStore()
	}
	s := &Server{
		store: st,
		opts:  opts,
		addr:  addr,
	}
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}
	return s
}

// SetTimeouts sets the read and write timeouts. Call it before Start.
// Fits run inside the request, so the write timeout bounds the longest fit.
func (s *Server) SetTimeouts(read, write time.Duration) {
	s.server.ReadTimeout = read
	s.server.WriteTimeout = write
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Register UI routes
	mux.HandleFunc("/", s.handleIndex)

	// Register API routes
	mux.HandleFunc("/api/v1/fit", s.handleFit)
	mux.HandleFunc("/api/v1/fit/stream", s.handleFitStream)
	mux.HandleFunc("/api/v1/auto", s.handleAuto)
	mux.HandleFunc("/api/v1/eval", s.handleEval)
	mux.HandleFunc("/api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("/api/v1/fits", s.handleFits)
	mux.HandleFunc("/api/v1/fits/", s.handleFitsWithID)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
