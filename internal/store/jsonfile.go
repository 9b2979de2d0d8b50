// Package store persists the pipeline's hand-off files: scraped posts,
// drafted replies and the list of tracked comments.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spacesedan/replybot/internal/models"
)

var (
	ErrMissingInput = errors.New("missing input file")
	ErrInvalidInput = errors.New("invalid input file")
)

func SaveScrapedPosts(path string, posts []models.ScrapedPost) error {
	return saveJSON(path, posts)
}

// LoadScrapedPosts reads scraped_posts.json. hint tells the operator which
// step produces the file when it is missing.
func LoadScrapedPosts(path, hint string) ([]models.ScrapedPost, error) {
	var posts []models.ScrapedPost
	if err := loadJSON(path, hint, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func SavePostsWithReplies(path string, posts []models.PostWithReply) error {
	return saveJSON(path, posts)
}

func LoadPostsWithReplies(path, hint string) ([]models.PostWithReply, error) {
	var posts []models.PostWithReply
	if err := loadJSON(path, hint, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("[Store] failed to marshal %s: %w", filepath.Base(path), err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("[Store] failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("[Store] failed to write %s: %w", path, err)
	}
	return nil
}

func loadJSON(path, hint string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if hint != "" {
			return fmt.Errorf("%w: %s not found, %s", ErrMissingInput, path, hint)
		}
		return fmt.Errorf("%w: %s not found", ErrMissingInput, path)
	}
	if err != nil {
		return fmt.Errorf("[Store] failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidInput, path, err)
	}
	return nil
}

// FileStatus describes one pipeline file for status displays.
type FileStatus struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
	Count  int    `json:"count"`
}

// JSONArrayStatus reports whether path exists and how many elements its
// top-level array holds. Unreadable content counts as zero.
func JSONArrayStatus(path string) FileStatus {
	st := FileStatus{Name: filepath.Base(path)}
	data, err := os.ReadFile(path)
	if err != nil {
		return st
	}
	st.Exists = true
	var items []json.RawMessage
	if json.Unmarshal(data, &items) == nil {
		st.Count = len(items)
	}
	return st
}
