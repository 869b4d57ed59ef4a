package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hx-hudson/Music-datbase/internal/models"
	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for self-routing HTTP handlers.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Queries is the read side the API serves. [queries.Engine] implements it.
type Queries interface {
	TopProlificArtists(ctx context.Context, n int, years models.YearRange) ([]models.ArtistCount, error)
	LastSingleYearArtists(ctx context.Context, year int) ([]string, error)
	TopGenres(ctx context.Context, n int) ([]models.GenreCount, error)
	AlbumAndSingleArtists(ctx context.Context) ([]string, error)
	TopRatedSongs(ctx context.Context, years models.YearRange, n int) ([]models.SongRatingCount, error)
	MostEngagedUsers(ctx context.Context, years models.YearRange, n int) ([]models.UserCount, error)
	Report(ctx context.Context, req models.ReportRequest) (*models.Report, error)
}

// HTTPRecorder receives per-request metrics. [metrics.Manager] implements it.
type HTTPRecorder interface {
	RecordHTTPRequest(route, method string, status int, elapsed time.Duration)
}

// Options configures a [Server].
type Options struct {
	Config   shared.ServerConfig
	Queries  Queries
	Logger   *log.Logger
	Recorder HTTPRecorder
	Metrics  http.Handler // served on /metrics when set
	Clock    func() time.Time
}

// Server is the HTTP server for the analytics API.
type Server struct {
	config shared.ServerConfig
	router *ChiRouter
	logger *log.Logger
	server *http.Server
}

// NewServer wires middleware and routes.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	s := &Server{
		config: opts.Config,
		router: NewChiRouter(),
		logger: logger,
	}

	if opts.Recorder != nil {
		s.router.UseGlobal(RecordRequests(opts.Recorder))
	}
	s.router.Use(RequestLogger(logger))
	if opts.Config.RateLimit > 0 {
		s.router.Use(RateLimit(opts.Config.RateLimit, opts.Config.Burst))
	}

	s.router.Handler(HealthHandler{})
	if opts.Metrics != nil {
		s.router.Handle(http.MethodGet, "/metrics", opts.Metrics)
	}

	api := &apiHandler{queries: opts.Queries, logger: logger, clock: clock}
	api.register(s.router)

	return s
}

// Router returns the underlying router for testing.
func (s *Server) Router() *ChiRouter {
	return s.router
}

// Serve listens on the configured address until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is done.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errc <- s.server.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("server shutting down")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
