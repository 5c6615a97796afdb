// Package admin provides a read-only HTTP introspection surface for a
// running engine: health, a session listing, and a metrics snapshot.
// Grounded on the teacher's server/api.go (an echo.Echo wrapped in a
// small struct with a registerRoutes pass and a context-driven Run),
// trimmed to the endpoints this engine actually needs and stripped of
// everything that mutates state — this surface never writes anything.
package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"lurkd/server"
)

// engineView is the subset of *server.Server the admin surface consults.
// Declared as an interface so tests can serve a fake without standing up
// a real TCP listener.
type engineView interface {
	IsRunning() bool
	Metrics() server.Snapshot
	Registry() *server.Registry
}

// Server is the admin HTTP surface. It never enqueues to or pops from the
// write queue and never takes the behavior mutex: Metrics reads atomic
// counters plus the queue depth under the queue's own short-held lock, and
// Registry.Snapshot copies its data after releasing the registry's read lock.
type Server struct {
	engine engineView
	echo   *echo.Echo
	addr   string
}

// New builds an admin Server bound to engine, listening on addr once
// Start is called.
func New(engine engineView, addr string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{engine: engine, echo: e, addr: addr}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.handleHealthz)
	s.echo.GET("/api/sessions", s.handleSessions)
	s.echo.GET("/api/metrics", s.handleMetrics)
}

// Start runs the HTTP listener in the foreground; callers typically call
// it from its own goroutine and use Stop to end it.
func (s *Server) Start() error {
	err := s.echo.Start(s.addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the HTTP listener down within the bound of ctx.
func (s *Server) Stop(ctx context.Context) error {
	shutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutCtx)
}

type healthzResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealthz(c echo.Context) error {
	status := "ok"
	if !s.engine.IsRunning() {
		status = "stopped"
	}
	return c.JSON(http.StatusOK, healthzResponse{Status: status})
}

type sessionResponse struct {
	ID           string `json:"id"`
	InactivityMS int64  `json:"inactivity_ms"`
	Started      bool   `json:"started"`
}

func (s *Server) handleSessions(c echo.Context) error {
	snap := s.engine.Registry().Snapshot()
	resp := make([]sessionResponse, 0, len(snap))
	for _, sess := range snap {
		resp = append(resp, sessionResponse{
			ID:           sess.ID.String(),
			InactivityMS: sess.InactivityMS,
			Started:      sess.Started,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, s.engine.Metrics())
}
