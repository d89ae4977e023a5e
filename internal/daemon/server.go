// Package daemon exposes the tracking core over a local HTTP API. The
// browser extension posts tab events and completed sessions here; the popup
// and dashboard read summaries back.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/runnerr0/protrackr/internal/config"
	"github.com/runnerr0/protrackr/internal/logging"
	"github.com/runnerr0/protrackr/internal/tracking"
)

// Server is the local ingest/read HTTP service.
type Server struct {
	manager *tracking.Manager
	tracker *tracking.Tracker
	cfg     *config.Config
	log     *logging.Logger
}

// NewServer creates a Server over the shared manager and tracker.
func NewServer(manager *tracking.Manager, tracker *tracking.Tracker, cfg *config.Config, log *logging.Logger) *Server {
	return &Server{manager: manager, tracker: tracker, cfg: cfg, log: log}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// Health check (no auth required)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	v1.Use(authMiddleware(s.cfg.Daemon.AuthToken))
	{
		v1.POST("/sessions", s.postSession)
		v1.POST("/events", s.postEvent)
		v1.GET("/summary", s.getSummaryToday)
		v1.GET("/summary/:date", s.getSummary)
		v1.GET("/history", s.getHistory)
		v1.GET("/status", s.getStatus)
		v1.POST("/maintenance", s.postMaintenance)
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Daemon.Host, s.cfg.Daemon.Port)
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("daemon listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
