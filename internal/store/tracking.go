package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spacesedan/replybot/internal/models"
)

// Tracker is the append-only record of comments we posted.
type Tracker interface {
	Append(ctx context.Context, c models.TrackedComment) error
	List(ctx context.Context) ([]models.TrackedComment, error)
}

var (
	shortHeader    = []string{"comment_id", "post_date"}
	extendedHeader = []string{"comment_id", "post_id", "reply_text", "timestamp"}
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// CSVTracker keeps tracked comments in a CSV file. It reads both the short
// (comment_id,post_date) and the extended
// (comment_id,post_id,reply_text,timestamp) layouts, appends in whichever
// layout the file already uses, and starts new files in the extended one.
type CSVTracker struct {
	path string
	hint string
}

func NewCSVTracker(path, hint string) *CSVTracker {
	return &CSVTracker{path: path, hint: hint}
}

func (t *CSVTracker) Path() string { return t.path }

func (t *CSVTracker) Append(ctx context.Context, c models.TrackedComment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	header, err := t.header()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(t.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("[CSVTracker] failed to create %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("[CSVTracker] failed to open %s: %w", t.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if header == nil {
		header = extendedHeader
		if err := w.Write(header); err != nil {
			return fmt.Errorf("[CSVTracker] failed to write header: %w", err)
		}
	}

	ts := c.PostDate.Format(time.RFC3339)
	row := []string{c.CommentID, ts}
	if len(header) >= len(extendedHeader) {
		row = []string{c.CommentID, c.PostID, c.ReplyText, ts}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("[CSVTracker] failed to write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("[CSVTracker] failed to flush %s: %w", t.path, err)
	}

	slog.Info("[CSVTracker] Comment saved for future analysis",
		slog.String("comment_id", c.CommentID),
		slog.String("file", t.path))
	return nil
}

// header returns the existing header row, or nil when the file is absent or
// empty.
func (t *CSVTracker) header() ([]string, error) {
	f, err := os.Open(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[CSVTracker] failed to open %s: %w", t.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	row, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidInput, t.path, err)
	}
	return row, nil
}

func (t *CSVTracker) List(ctx context.Context) ([]models.TrackedComment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		if t.hint != "" {
			return nil, fmt.Errorf("%w: %s not found, %s", ErrMissingInput, t.path, t.hint)
		}
		return nil, fmt.Errorf("%w: %s not found", ErrMissingInput, t.path)
	}
	if err != nil {
		return nil, fmt.Errorf("[CSVTracker] failed to open %s: %w", t.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidInput, t.path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	extended := len(rows[0]) >= len(extendedHeader)
	var out []models.TrackedComment
	for _, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		c := models.TrackedComment{CommentID: strings.TrimSpace(row[0])}
		switch {
		case extended && len(row) >= 4:
			c.PostID = row[1]
			c.ReplyText = row[2]
			c.PostDate = parseTimestamp(row[3])
		case len(row) >= 2:
			c.PostDate = parseTimestamp(row[len(row)-1])
		}
		out = append(out, c)
	}
	return out, nil
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
