package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/campuslink/campuslink-be/internal/auth"
	"github.com/campuslink/campuslink-be/internal/cache"
	"github.com/campuslink/campuslink-be/internal/config"
	"github.com/campuslink/campuslink-be/internal/http/handlers"
	"github.com/campuslink/campuslink-be/internal/middleware"
	"github.com/campuslink/campuslink-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server. The group
// cache may be nil when Redis is not configured.
func New(cfg config.Config, store storage.Store, groupCache *cache.GroupCache, logger *zap.Logger) *Server {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL())
	requireAuth := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireAuth(tokens, store, logger, next)
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), store).Register(mux)
	handlers.NewAuthHandler(store, tokens, logger, requireAuth).Register(mux)
	handlers.NewGroupHandler(store, groupCache, logger, requireAuth).Register(mux)
	handlers.NewMessageHandler(store, logger, requireAuth).Register(mux)

	handler := middleware.CORS(cfg.CORSOrigins(), middleware.Logging(logger, mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
