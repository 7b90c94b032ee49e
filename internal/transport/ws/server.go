package ws

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"accessworld-server-go/internal/utils"
)

// ServerConfig stores the settings required to expose the websocket transport.
type ServerConfig struct {
	Path             string
	HandshakeTimeout time.Duration
}

// Server coordinates the websocket router, hub and lifecycle management. It
// is mounted on the HTTP engine instead of listening on its own port.
type Server struct {
	cfg    ServerConfig
	hub    *Hub
	router *Router
	logger *utils.Logger
}

// NewServer builds a websocket transport server.
func NewServer(cfg ServerConfig, logger *utils.Logger) *Server {
	if cfg.Path == "" {
		cfg.Path = "/ws/analyze"
	}
	hub := NewHub(logger)
	return &Server{
		cfg:    cfg,
		hub:    hub,
		router: NewRouter(hub, logger, RouterOptions{HandshakeTimeout: cfg.HandshakeTimeout}),
		logger: logger,
	}
}

// SetHandlerBuilder wires the handler construction callback.
func (s *Server) SetHandlerBuilder(builder HandlerBuilder) {
	s.router.SetHandlerBuilder(builder)
}

// Mount registers the upgrade endpoint on engine, behind middlewares.
func (s *Server) Mount(engine *gin.Engine, middlewares ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, middlewares...), gin.WrapF(s.router.Handle))
	engine.GET(s.cfg.Path, handlers...)
	s.logger.InfoTag("WebSocket", "注册路径 %s", s.cfg.Path)
}

// Shutdown closes all active sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.hub.CloseAll(ErrSessionShutdown)
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Count exposes the number of active sessions.
func (s *Server) Count() int {
	return s.hub.Count()
}
