package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sharipovr/aws-url-shortener/internal/endpoint"
	"github.com/sharipovr/aws-url-shortener/internal/metrics"
)

// Options configures the HTTP server
type Options struct {
	Port           string
	Verbose        bool
	MetricsEnabled bool
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
}

// Server represents the HTTP server
type Server struct {
	handler *Handler
	server  *http.Server
	port    string
	logger  *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(endpoints *endpoint.Endpoints, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewUnregistered()
	}

	handler := NewHandler(endpoints, opts.Logger)

	server := &http.Server{
		Addr:         ":" + opts.Port,
		Handler:      NewRouter(handler, opts),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		handler: handler,
		server:  server,
		port:    opts.Port,
		logger:  opts.Logger,
	}
}

// NewRouter builds the routes and wraps them with the middleware chain
func NewRouter(handler *Handler, opts Options) http.Handler {
	r := mux.NewRouter()
	r.Use(Metrics(opts.Metrics))

	r.HandleFunc("/healthz", handler.Health).Methods(http.MethodGet)
	if opts.MetricsEnabled {
		r.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	// API endpoints
	r.HandleFunc("/urls", handler.CreateLink).Methods(http.MethodPost)
	r.HandleFunc("/urls/{short_code}", handler.GetLinkInfo).Methods(http.MethodGet)

	// Redirect endpoints
	r.HandleFunc("/", handler.Redirect).Methods(http.MethodGet)
	r.HandleFunc("/{short_code}", handler.Redirect).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(handler.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handler.MethodNotAllowed)

	return Chain(
		RequestID,
		Logging(opts.Logger, opts.Verbose),
		Recovery(opts.Logger),
	)(r)
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("port", s.port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// Port returns the server port
func (s *Server) Port() string {
	return s.port
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
