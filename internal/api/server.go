// Package api exposes the farm management JSON API over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/logger"
	"github.com/hollowoak/farmhand/internal/notify"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	DB       *gorm.DB
	Host     string
	Port     int
	Log      *logger.Logger
	Notifier notify.Notifier
}

// Start launches the HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("api: db is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}

	router := NewRouter(opts.DB, opts.Log, opts.Notifier)

	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	opts.Log.Info("api listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

// NewRouter builds the Gin engine with all routes registered. Split out
// from Start so tests can drive it with httptest.
func NewRouter(db *gorm.DB, log *logger.Logger, notifier notify.Notifier) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &server{db: db, log: log, notifier: notifier}
	s.registerRoutes(router)
	return router
}

type server struct {
	db       *gorm.DB
	log      *logger.Logger
	notifier notify.Notifier
}

// announce pushes an event to the notifier, if one is configured.
// Notification failures are logged, never surfaced to API clients.
func (s *server) announce(ctx context.Context, event notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, event); err != nil {
		s.log.Warn("notification failed", "kind", event.Kind, "error", err)
	}
}
