// Package api exposes the addon endpoints and the reference data API over
// HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/reelcove/reelcove/internal/addon"
	"github.com/reelcove/reelcove/internal/config"
	"github.com/reelcove/reelcove/internal/tmdb"
)

// Server handles HTTP requests for the ReelCove addon and API.
type Server struct {
	echo    *echo.Echo
	cfg     *config.Config
	logger  zerolog.Logger
	builder *addon.Builder
	configs addon.ConfigResolver
	tmdb    *tmdb.Client
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, builder *addon.Builder, configs addon.ConfigResolver, tmdbClient *tmdb.Client, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		cfg:     cfg,
		logger:  logger,
		builder: builder,
		configs: configs,
		tmdb:    tmdbClient,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	// CORS: addon clients are browser-hosted and install from any origin
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Request logging
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	// Gzip compression
	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", s.healthCheck)

	// Reference data for configuration UIs
	api := s.echo.Group("/api/v1")
	api.GET("/health", s.healthCheck)
	ref := api.Group("/reference")
	ref.GET("/languages", s.getLanguages)
	ref.GET("/genres", s.getGenres)
	ref.GET("/sort-options", s.getSortOptions)

	// Addon endpoints. The client appends ".json" to the last path
	// segment; Echo's router keeps it inside the param, so handlers trim
	// it themselves.
	s.echo.GET("/:configID/manifest.json", s.getManifest)
	s.echo.GET("/:configID/catalog/:type/:id", s.getCatalog)
	s.echo.GET("/:configID/catalog/:type/:id/:extras", s.getCatalogWithExtras)
}

// Start begins listening on the given address.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "reelcove",
	})
}
