// Package httpserver wires the task runner HTTP endpoints into a single server.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/config"
	derrors "github.com/22f3002289/Mayank-s-first-LLM-Project/internal/errors"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/llm"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/server/handlers"
	smw "github.com/22f3002289/Mayank-s-first-LLM-Project/internal/server/middleware"
)

// Server manages the task runner HTTP endpoints.
type Server struct {
	httpServer   *http.Server
	cfg          *config.Config
	errorAdapter *derrors.HTTPErrorAdapter

	// Handler modules
	taskHandlers       *handlers.TaskHandlers
	solveHandlers      *handlers.SolveHandlers
	monitoringHandlers *handlers.MonitoringHandlers

	// metrics exposition
	registry *prom.Registry

	// middleware chain
	mchain func(http.Handler) http.Handler
}

// New constructs the HTTP server wiring instance. A nil registry disables the
// metrics endpoint's registry scoping and serves an empty exposition.
func New(cfg *config.Config, runner handlers.TaskRunner, solver llm.Client, registry *prom.Registry) *Server {
	if registry == nil {
		registry = prom.NewRegistry()
	}
	s := &Server{
		cfg:                cfg,
		errorAdapter:       derrors.NewHTTPErrorAdapter(slog.Default()),
		taskHandlers:       handlers.NewTaskHandlers(runner),
		solveHandlers:      handlers.NewSolveHandlers(solver),
		monitoringHandlers: handlers.NewMonitoringHandlers(time.Now()),
		registry:           registry,
	}
	s.mchain = smw.Chain(slog.Default(), s.errorAdapter)
	return s
}

// Handler builds the routed and middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.monitoringHandlers.HandleRoot)
	mux.HandleFunc("POST /upload-task", s.taskHandlers.HandleUploadTask)
	mux.HandleFunc("GET /solve", s.solveHandlers.HandleSolve)
	mux.HandleFunc("GET /healthz", s.monitoringHandlers.HandleHealthCheck)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return s.mchain(mux)
}

// Start binds the listen port and begins serving. The port is pre-bound so an
// 'address already in use' failure surfaces before the server goroutine runs.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("http startup failed: %w", err)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("HTTP server started", slog.Int("port", s.cfg.Server.Port))
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
