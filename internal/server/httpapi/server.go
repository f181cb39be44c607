// Package httpapi exposes the sync, upload, and account endpoints over HTTP.
// Every route except /health requires a bearer token; the token's user id
// scopes all reads and writes.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/logging"
	"github.com/daybook-app/daybook/internal/server/auth"
	sc "github.com/daybook-app/daybook/internal/server/config"
)

// CategoryStore is the persistence surface the handlers need for categories.
type CategoryStore interface {
	Upsert(ctx context.Context, userID string, rec api.Category) error
	SelectUpdated(ctx context.Context, userID, since string) ([]api.Category, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}

// EntryStore is the persistence surface the handlers need for day entries.
type EntryStore interface {
	Upsert(ctx context.Context, userID string, rec api.Entry) error
	SelectUpdated(ctx context.Context, userID, since string) ([]api.Entry, error)
	PhotoKeys(ctx context.Context, userID string) ([]string, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}

// ConfigStore is the persistence surface the handlers need for config rows.
type ConfigStore interface {
	Upsert(ctx context.Context, userID string, rec api.Config) error
	SelectUpdated(ctx context.Context, userID, since string) ([]api.Config, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}

// ObjectStorage signs photo uploads and deletes stored photos.
type ObjectStorage interface {
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, userID string) error
}

// Stores bundles the per-collection repositories the server works with.
type Stores struct {
	Categories CategoryStore
	Entries    EntryStore
	Configs    ConfigStore
}

// Server hosts the HTTP endpoints.
type Server struct {
	echo    *echo.Echo
	stores  Stores
	storage ObjectStorage
	config  *sc.Config
	log     logging.Logger
}

// NewServer wires middleware and routes. It does not start listening.
func NewServer(stores Stores, storage ObjectStorage, cfg *sc.Config, log logging.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			log.Info(c.Request().Context(), "http request",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", c.Response().Status,
				"duration", time.Since(start),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)

			return err
		}
	})

	s := &Server{
		echo:    e,
		stores:  stores,
		storage: storage,
		config:  cfg,
		log:     log,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	authed := s.echo.Group("", s.bearerAuth)
	authed.POST("/sync/push", s.handleSyncPush)
	authed.POST("/sync/pull", s.handleSyncPull)
	authed.POST("/upload/presigned-url", s.handlePresignUpload)
	authed.DELETE("/upload/images/:userID/:file", s.handleDeleteImage)
	authed.DELETE("/account", s.handleDeleteAccount)
}

const userIDKey = "userID"

// bearerAuth verifies the Authorization header and stashes the token's user
// id in the request context.
func (s *Server) bearerAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "missing bearer token"})
		}

		userID, err := auth.GetUserIDFromToken(token, []byte(s.config.SecretKey))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid token"})
		}

		c.Set(userIDKey, userID)
		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", false
	}
	return header[len(prefix):], true
}

func userID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

// Start begins serving on the configured address. It blocks until the
// listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info(context.Background(), "starting http server", "addr", s.config.EndpointAddr)
	return s.echo.Start(s.config.EndpointAddr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
