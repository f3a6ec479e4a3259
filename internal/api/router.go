package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// NewRouter wires the habit routes. tokens maps bearer tokens to user ids.
func NewRouter(svc *habits.Service, store Pinger, tokens map[string]string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware())

	h := NewHandler(svc, store)
	router.GET("/healthz", h.Health)

	api := router.Group("/api", AuthMiddleware(tokens), ProvisionMiddleware(svc))
	{
		api.POST("/habits", h.CreateHabit)
		api.GET("/habits", h.ListHabits)
		api.GET("/habits/:id", h.GetHabit)
		api.PATCH("/habits/:id", h.UpdateHabit)
		api.DELETE("/habits/:id", h.DeleteHabit)
		api.GET("/habits/:id/stats", h.HabitStats)
		api.GET("/habits/:id/week", h.HabitWeek)
		api.GET("/habits/:id/entries", h.HabitEntries)

		api.POST("/entries", h.CreateEntry)
		api.PATCH("/entries/:id", h.UpdateEntry)
	}

	return router
}

type Server struct {
	srv *http.Server
}

func NewServer(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("api shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
