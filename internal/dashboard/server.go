// Package dashboard serves the control panel API: pipeline status, scraping,
// reply generation, the review walk and comment performance.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/replybot/internal/models"
	"github.com/spacesedan/replybot/internal/review"
	"github.com/spacesedan/replybot/internal/store"
)

// DefaultScrapeLimit is the dashboard's default post count.
const DefaultScrapeLimit = 5

type Scraper interface {
	ScrapeToFile(ctx context.Context, subreddit string, limit int, path string) ([]models.ScrapedPost, error)
}

type Drafter interface {
	GenerateFromFile(ctx context.Context, in, out string) ([]models.PostWithReply, error)
}

type Reporter interface {
	AnalyzeAll(ctx context.Context, commentIDs []string) ([]models.CommentReport, error)
}

type Files struct {
	ScrapedPosts     string
	PostsWithReplies string
	HeatmapDir       string
}

// Deps are the collaborators behind the routes. A nil collaborator makes
// the routes that need it answer 503.
type Deps struct {
	Scraper  Scraper
	Drafter  Drafter
	Reporter Reporter
	Tracker  store.Tracker
	Poster   review.Poster
	Marker   review.Marker
	Files    Files
}

type Server struct {
	deps Deps

	// mu serializes review commands; gin serves requests concurrently.
	mu       sync.Mutex
	workflow *review.Workflow
}

func New(deps Deps) *Server {
	return &Server{deps: deps}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.deps.Files.HeatmapDir != "" {
		r.Static("/heatmaps", s.deps.Files.HeatmapDir)
	}

	api := r.Group("/api")
	api.GET("/status", s.status)
	api.POST("/scrape", s.scrape)
	api.POST("/generate", s.generate)
	api.GET("/review", s.reviewState)
	api.POST("/review/:action", s.reviewCommand)
	api.GET("/performance", s.performance)
	return r
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("[Dashboard] Listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("[Dashboard] server failed: %w", err)
	case <-ctx.Done():
		slog.Info("[Dashboard] Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("[Dashboard] Request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)))
	}
}

func unavailable(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": what + " is not configured"})
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrMissingInput):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidInput):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, review.ErrReviewDone):
		status = http.StatusConflict
	case errors.Is(err, review.ErrPostFailed):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
