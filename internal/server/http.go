// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the search aggregator and the user library over
// HTTP using gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/search"
	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

const defaultShutdownTimeout = 10 * time.Second

// Searcher runs one aggregated search. *search.Aggregator satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string, filters types.SearchFilters) (search.SearchOutput, error)
}

// Library stores saved papers and search history. *library.Store
// satisfies it.
type Library interface {
	SavePaper(ctx context.Context, p types.SavedPaper) (types.SavedPaper, error)
	DeleteSavedPaper(ctx context.Context, userID, paperID string) error
	ListSavedPapers(ctx context.Context, userID string) ([]types.SavedPaper, error)
	RecordSearch(ctx context.Context, userID, query string, filters *types.SearchFilters, resultsCount int) (types.SearchHistoryEntry, error)
	ListHistory(ctx context.Context, userID string, limit int) ([]types.SearchHistoryEntry, error)
}

// HTTPServer wraps the gin router in an http.Server with graceful stop.
type HTTPServer struct {
	server          *http.Server
	logger          *zap.Logger
	shutdownTimeout time.Duration
}

// NewHTTPServer builds the router and binds it to cfg.Host:cfg.Port. lib
// may be nil, in which case the library routes are not registered and
// searches are not recorded.
func NewHTTPServer(cfg types.ServerConfig, logger *zap.Logger, searcher Searcher, lib Library) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	if logger == nil {
		logger = zap.NewNop()
	}
	shutdown := cfg.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = defaultShutdownTimeout
	}

	return &HTTPServer{
		server: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port)),
			Handler:           NewRouter(logger, searcher, lib),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:          logger,
		shutdownTimeout: shutdown,
	}
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(logger *zap.Logger, searcher Searcher, lib Library) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	sh := NewSearchHandler(searcher, lib, logger)
	router.POST("/search", OptionalUser(), sh.Search)

	if lib != nil {
		lh := NewLibraryHandler(lib, logger)
		authed := router.Group("/", RequireUser())
		authed.POST("/saved-papers", lh.Save)
		authed.DELETE("/saved-papers", lh.Delete)
		authed.GET("/saved-papers", lh.List)
		authed.GET("/history", lh.History)
	}

	return router
}

// Addr returns the listen address.
func (s *HTTPServer) Addr() string { return s.server.Addr }

// Start blocks serving requests until Stop is called.
func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests, giving up after the shutdown timeout.
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// LoggerMiddleware logs one line per request.
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// RecoveryMiddleware turns a handler panic into a generic 500 response and
// logs the panic value.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("handler panicked",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	})
}
