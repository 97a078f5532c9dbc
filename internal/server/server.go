// Package server hosts the session backend: a gin HTTP API over the
// SQLite session store.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calegria/focus-cli/internal/ports"
)

// Server is the backend HTTP server.
type Server struct {
	addr     string
	storage  ports.Storage
	logger   Logger
	engine   *gin.Engine
	shutdown chan struct{}
}

// New assembles a server listening on addr, backed by the given storage.
func New(addr string, storage ports.Storage, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		addr:     addr,
		storage:  storage,
		logger:   logger,
		shutdown: make(chan struct{}, 1),
	}
	s.engine = s.buildRouter()
	return s
}

// Router returns the HTTP handler, exposed for tests.
func (s *Server) Router() http.Handler {
	return s.engine
}

func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	repo := s.storage.Sessions()
	api := r.Group("/api")
	{
		api.POST("/sessions", PostSession(repo, s.logger))
		api.GET("/sessions", GetSessions(repo, s.logger))
		api.POST("/sessions/:id/complete", CompleteSession(repo, s.logger))
		api.DELETE("/sessions/:id", DeleteSession(repo, s.logger))
		api.GET("/dates", GetDates(repo, s.logger))
		api.POST("/shutdown", PostShutdown(s.shutdown, s.logger))
	}
	return r
}

// Run serves until POST /api/shutdown or an interrupt signal, then drains
// in-flight requests and closes the storage.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Infof("listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		return err
	case <-s.shutdown:
		s.logger.Info("shutting down")
	case sig := <-sigc:
		s.logger.Infof("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	return s.storage.Close()
}
