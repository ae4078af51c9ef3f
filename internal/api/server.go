package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lumastack/pixeld/internal/controller"
	"github.com/lumastack/pixeld/internal/infrastructure/config"
	"github.com/lumastack/pixeld/internal/infrastructure/logging"
	"github.com/lumastack/pixeld/internal/store"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// ComponentHealth reports one backing component's health for the
// /api/v1/health endpoint.
type ComponentHealth interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config config.ServerConfig
	WS     config.WebSocketConfig
	Auth   config.AuthConfig
	Logger *logging.Logger

	// Actor dispatches every control operation.
	Actor *controller.Actor

	// Store backs /api/v1/ops. Optional.
	Store *store.Store

	// Health components, keyed by name. Optional.
	Components map[string]ComponentHealth

	// ExternalHub, when set, is used instead of creating a hub. The
	// caller owns its lifecycle.
	ExternalHub *Hub

	Version string
}

// Server is the pixeld HTTP server.
//
// It carries two surfaces: the original control routes at the router
// root and the service routes under /api/v1, including the WebSocket
// event hub.
type Server struct {
	cfg        config.ServerConfig
	wsCfg      config.WebSocketConfig
	authCfg    config.AuthConfig
	logger     *logging.Logger
	actor      *controller.Actor
	store      *store.Store
	components map[string]ComponentHealth
	version    string

	server      *http.Server
	hub         *Hub
	externalHub bool
	cancel      context.CancelFunc
}

// New creates an API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Actor == nil {
		return nil, fmt.Errorf("actor is required")
	}

	s := &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		authCfg:    deps.Auth,
		logger:     deps.Logger,
		actor:      deps.Actor,
		store:      deps.Store,
		components: deps.Components,
		version:    deps.Version,
	}

	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
		s.externalHub = true
	}

	return s, nil
}

// Hub returns the server's event hub, creating it if needed. Useful
// when the hub must be wired as an event sink before Start().
func (s *Server) Hub() *Hub {
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	return s.hub
}

// Start begins listening for HTTP connections.
//
// It builds the router, starts the WebSocket hub, and launches the
// listener in a background goroutine. The server is stopped with
// Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	s.logger.Info("http server started", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the server.
//
// It waits up to 10 seconds for in-flight requests to complete, then
// forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// HealthCheck verifies the server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
