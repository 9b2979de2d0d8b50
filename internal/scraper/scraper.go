// Package scraper collects the newest posts of a subreddit for reply drafting.
package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/replybot/internal/models"
	"github.com/spacesedan/replybot/internal/store"
)

const (
	DefaultSubreddit = "onepiece"
	DefaultLimit     = 4
	MaxLimit         = 50
)

type Lister interface {
	NewPosts(ctx context.Context, subreddit string, limit int) ([]models.ScrapedPost, error)
}

// Deduper reports posts that already received a reply.
type Deduper interface {
	IsReplied(ctx context.Context, postID string) (bool, error)
}

type Scraper struct {
	lister  Lister
	deduper Deduper
}

// New returns a Scraper. deduper may be nil.
func New(lister Lister, deduper Deduper) *Scraper {
	return &Scraper{lister: lister, deduper: deduper}
}

// ClampLimit keeps limit within 1..MaxLimit, substituting DefaultLimit for
// non-positive values.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func (s *Scraper) Scrape(ctx context.Context, subreddit string, limit int) ([]models.ScrapedPost, error) {
	if subreddit == "" {
		subreddit = DefaultSubreddit
	}
	limit = ClampLimit(limit)

	slog.Info("[Scraper] Fetching posts",
		slog.String("subreddit", subreddit),
		slog.Int("limit", limit))

	posts, err := s.lister.NewPosts(ctx, subreddit, limit)
	if err != nil {
		return nil, fmt.Errorf("[Scraper] failed to list r/%s: %w", subreddit, err)
	}
	if s.deduper == nil {
		return posts, nil
	}

	fresh := make([]models.ScrapedPost, 0, len(posts))
	for _, p := range posts {
		replied, err := s.deduper.IsReplied(ctx, p.ID)
		if err != nil {
			slog.Warn("[Scraper] Dedupe lookup failed, keeping post",
				slog.String("post_id", p.ID),
				slog.String("error", err.Error()))
		}
		if replied {
			slog.Debug("[Scraper] Skipping post already replied to", slog.String("post_id", p.ID))
			continue
		}
		fresh = append(fresh, p)
	}
	return fresh, nil
}

// ScrapeToFile scrapes and writes the result to path.
func (s *Scraper) ScrapeToFile(ctx context.Context, subreddit string, limit int, path string) ([]models.ScrapedPost, error) {
	posts, err := s.Scrape(ctx, subreddit, limit)
	if err != nil {
		return nil, err
	}
	if err := store.SaveScrapedPosts(path, posts); err != nil {
		return nil, err
	}
	slog.Info("[Scraper] Saved posts",
		slog.Int("count", len(posts)),
		slog.String("file", path))
	return posts, nil
}
