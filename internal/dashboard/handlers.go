package dashboard

import (
	"errors"
	"net/http"
	"path/filepath"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/replybot/internal/models"
	"github.com/spacesedan/replybot/internal/review"
	"github.com/spacesedan/replybot/internal/store"
)

type statusResponse struct {
	Files []store.FileStatus `json:"files"`
}

func (s *Server) status(c *gin.Context) {
	files := []store.FileStatus{
		store.JSONArrayStatus(s.deps.Files.ScrapedPosts),
		store.JSONArrayStatus(s.deps.Files.PostsWithReplies),
	}
	tracked := store.FileStatus{Name: "tracked_comments"}
	if s.deps.Tracker != nil {
		if list, err := s.deps.Tracker.List(c.Request.Context()); err == nil {
			tracked.Exists = true
			tracked.Count = len(list)
		}
	}
	c.JSON(http.StatusOK, statusResponse{Files: append(files, tracked)})
}

type scrapeRequest struct {
	Subreddit string `json:"subreddit"`
	Limit     int    `json:"limit"`
}

func (s *Server) scrape(c *gin.Context) {
	if s.deps.Scraper == nil {
		unavailable(c, "scraping")
		return
	}
	req := scrapeRequest{Limit: DefaultScrapeLimit}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	posts, err := s.deps.Scraper.ScrapeToFile(c.Request.Context(), req.Subreddit, req.Limit, s.deps.Files.ScrapedPosts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(posts), "posts": posts})
}

func (s *Server) generate(c *gin.Context) {
	if s.deps.Drafter == nil {
		unavailable(c, "reply generation")
		return
	}
	drafted, err := s.deps.Drafter.GenerateFromFile(c.Request.Context(), s.deps.Files.ScrapedPosts, s.deps.Files.PostsWithReplies)
	if err != nil {
		writeError(c, err)
		return
	}

	// fresh drafts start a fresh review
	s.mu.Lock()
	s.workflow = nil
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"count": len(drafted), "posts": drafted})
}

// loadWorkflow must be called with s.mu held.
func (s *Server) loadWorkflow() (*review.Workflow, error) {
	if s.workflow != nil {
		return s.workflow, nil
	}
	posts, err := store.LoadPostsWithReplies(s.deps.Files.PostsWithReplies, "generate replies first")
	if err != nil {
		return nil, err
	}
	var opts []review.Option
	if s.deps.Marker != nil {
		opts = append(opts, review.WithRepliedMarker(s.deps.Marker))
	}
	s.workflow = review.NewWorkflow(posts, s.deps.Poster, s.deps.Tracker, opts...)
	return s.workflow, nil
}

func (s *Server) reviewState(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.loadWorkflow()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w.State())
}

type editRequest struct {
	Text string `json:"text" binding:"required"`
}

type commandResponse struct {
	Outcome review.Outcome `json:"outcome"`
	State   review.State   `json:"state"`
	Warning string         `json:"warning,omitempty"`
}

func (s *Server) reviewCommand(c *gin.Context) {
	name := c.Param("action")

	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "restart" {
		s.workflow = nil
		w, err := s.loadWorkflow()
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, commandResponse{State: w.State()})
		return
	}

	action, ok := review.ParseAction(name)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown review action " + name})
		return
	}
	if action == review.Accept && (s.deps.Poster == nil || s.deps.Tracker == nil) {
		unavailable(c, "posting")
		return
	}

	cmd := review.Command{Action: action}
	if action == review.Edit {
		var req editRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cmd.Text = req.Text
	}

	w, err := s.loadWorkflow()
	if err != nil {
		writeError(c, err)
		return
	}

	out, err := w.Apply(c.Request.Context(), cmd)
	resp := commandResponse{Outcome: out, State: w.State()}
	switch {
	case errors.Is(err, review.ErrTrackingFailed):
		resp.Warning = err.Error()
	case err != nil:
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type performanceEntry struct {
	models.CommentReport
	ReplyText string `json:"reply_text,omitempty"`
	PostID    string `json:"post_id,omitempty"`
}

// performance analyzes tracked comments most recent first. Heatmap paths
// are returned as URLs under /heatmaps.
func (s *Server) performance(c *gin.Context) {
	if s.deps.Reporter == nil || s.deps.Tracker == nil {
		unavailable(c, "performance analysis")
		return
	}

	tracked, err := s.deps.Tracker.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	slices.Reverse(tracked)

	ids := make([]string, len(tracked))
	for i, t := range tracked {
		ids[i] = t.CommentID
	}
	reports, err := s.deps.Reporter.AnalyzeAll(c.Request.Context(), ids)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	entries := make([]performanceEntry, len(reports))
	for i, rep := range reports {
		for j := range rep.Replies {
			if p := rep.Replies[j].HeatmapPath; p != "" {
				rep.Replies[j].HeatmapPath = "/heatmaps/" + filepath.Base(p)
			}
		}
		entries[i] = performanceEntry{CommentReport: rep}
		if i < len(tracked) {
			entries[i].ReplyText = tracked[i].ReplyText
			entries[i].PostID = tracked[i].PostID
		}
	}
	c.JSON(http.StatusOK, gin.H{"comments": entries})
}
