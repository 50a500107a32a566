package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chartx/internal/metrics"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own their route patterns.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the [http.ServeMux] patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// NewRouter wires the trigger, /healthz and /metrics behind logging and panic recovery.
func NewRouter(runner Runner, m *metrics.Metrics, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger))

	router.Handler(NewTriggerHandler(runner, logger))
	router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	router.Handle(http.MethodGet, "/metrics", m.Handler())
	return router
}

// New creates an [http.Server] with conservative header timeouts. Write timeouts are left open
// because a triggered run may take minutes.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// shutdownGrace is how long in-flight runs may finish after shutdown starts.
var shutdownGrace = 30 * time.Second

type lifetimeKey struct{}

// lifetimeContext returns the server-lifetime context stored on a request, if any.
func lifetimeContext(ctx context.Context) (context.Context, bool) {
	base, ok := ctx.Value(lifetimeKey{}).(context.Context)
	return base, ok
}

// ListenAndServe listens on srv.Addr and calls [Serve].
func ListenAndServe(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return Serve(ctx, srv, ln, logger)
}

// Serve runs srv on ln until ctx is done, then shuts it down gracefully.
//
// Requests carry a server-lifetime context that a client disconnect does not cancel. When in-flight
// requests outlast the shutdown grace period that context is cancelled, which aborts triggered runs.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, logger *log.Logger) error {
	lifetime, cancelRuns := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelRuns()
	srv.BaseContext = func(net.Listener) context.Context {
		return context.WithValue(lifetime, lifetimeKey{}, lifetime)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("grace period expired, cancelling in-flight runs", "grace", shutdownGrace)
		cancelRuns()
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
