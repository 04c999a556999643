// Package api serves the collected aggregate as a read-only JSON feed.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/jobtrend/internal/collector"
	"github.com/amishk599/jobtrend/internal/filter"
	"github.com/amishk599/jobtrend/internal/model"
)

const shutdownTimeout = 10 * time.Second

// Feed is the read side of the aggregate cache. *collector.Cached implements it.
type Feed interface {
	Get(ctx context.Context) collector.Result
	Peek() collector.Result
}

// Server exposes the feed over HTTP.
type Server struct {
	router  *gin.Engine
	feed    Feed
	sources []string
	logger  *slog.Logger
}

// JobsResponse is the body of GET /api/jobs.
type JobsResponse struct {
	Count       int               `json:"count"`
	CollectedAt *time.Time        `json:"collected_at,omitempty"`
	Hit         bool              `json:"hit"`
	Stale       bool              `json:"stale"`
	Jobs        []model.JobRecord `json:"jobs"`
}

// SourceInfo is one element of GET /api/sources.
type SourceInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NewServer builds the router. sources lists the enabled source tags in
// collection order.
func NewServer(feed Feed, sources []string, logger *slog.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		router:  router,
		feed:    feed,
		sources: sources,
		logger:  logger,
	}
	s.routes()
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.health)
	s.router.GET("/api/jobs", s.jobs)
	s.router.GET("/api/sources", s.listSources)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("feed api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("feed api stopped")
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// jobs serves the aggregate, optionally narrowed by ?source= and ?q=
// (comma-separated keywords, any may match).
func (s *Server) jobs(c *gin.Context) {
	source := strings.TrimSpace(c.Query("source"))
	if source != "" && !model.IsKnownSource(source) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source", "source": source})
		return
	}

	var sources []string
	if source != "" {
		sources = []string{source}
	}
	f := filter.NewKeywordFilter(splitQuery(c.Query("q")), sources)

	res := s.feed.Get(c.Request.Context())
	jobs := filter.Apply(f, res.Records)

	resp := JobsResponse{
		Count: len(jobs),
		Hit:   res.Hit,
		Stale: res.Stale,
		Jobs:  jobs,
	}
	if !res.CollectedAt.IsZero() {
		at := res.CollectedAt.UTC()
		resp.CollectedAt = &at
	}
	c.JSON(http.StatusOK, resp)
}

// listSources reports per-source counts from the cache without triggering a run.
func (s *Server) listSources(c *gin.Context) {
	counts := make(map[string]int)
	for _, r := range s.feed.Peek().Records {
		counts[r.Source]++
	}

	out := make([]SourceInfo, 0, len(s.sources))
	for _, name := range s.sources {
		out = append(out, SourceInfo{Name: name, Count: counts[name]})
	}
	c.JSON(http.StatusOK, out)
}

func splitQuery(q string) []string {
	if strings.TrimSpace(q) == "" {
		return nil
	}
	return strings.Split(q, ",")
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
