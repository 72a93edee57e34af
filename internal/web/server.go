// Package web exposes a small status HTTP surface for the running bot.
package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Alex-Ander214/Discord-Bot-lyla/internal/history"
)

const version = "1.0.0"

// StatusSource supplies live bot identity data.
type StatusSource interface {
	BotName() string
	Ready() bool
}

// LogLine is one entry of the application's in-process log ring.
type LogLine struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

// LogSource supplies recent log lines, newest last.
type LogSource interface {
	RecentLogs(limit int) []LogLine
}

const defaultLogLimit = 100

// Server serves /, /health, /stats and /logs.
type Server struct {
	addr   string
	source StatusSource
	stats  history.Stats // nil when the durable tier is unavailable
	logs   LogSource     // nil disables /logs
	engine *gin.Engine
}

// New creates a status server. stats and logs may be nil.
func New(addr string, source StatusSource, stats history.Stats, logs LogSource) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		addr:   addr,
		source: source,
		stats:  stats,
		logs:   logs,
		engine: engine,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.home)
	s.engine.GET("/health", s.health)
	s.engine.GET("/stats", s.globalStats)
	s.engine.GET("/logs", s.recentLogs)
}

// Handler returns the underlying HTTP handler, used in tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
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

func (s *Server) home(c *gin.Context) {
	name := s.source.BotName()
	if !s.source.Ready() {
		name = "Bot not ready"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "Bot is running",
		"bot_name": name,
		"version":  version,
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"bot_ready": s.source.Ready(),
	})
}

func (s *Server) globalStats(c *gin.Context) {
	if !s.source.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Bot not ready"})
		return
	}
	if s.stats == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Statistics unavailable"})
		return
	}

	global, err := s.stats.Global(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bot_name":      s.source.BotName(),
		"conversations": global.Conversations,
		"users":         global.Users,
		"communities":   global.Communities,
	})
}

func (s *Server) recentLogs(c *gin.Context) {
	if s.logs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Logs unavailable"})
		return
	}

	limit := defaultLogLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	lines := s.logs.RecentLogs(limit)
	if lines == nil {
		lines = []LogLine{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": lines})
}
