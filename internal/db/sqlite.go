// Package db holds the database-backed trackers for posted comments.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spacesedan/replybot/internal/models"
)

// SQLiteTracker keeps tracked comments in a local SQLite file.
type SQLiteTracker struct {
	db *sql.DB
}

func NewSQLiteTracker(dbPath string) (*SQLiteTracker, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("[SQLiteTracker] failed to create %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("[SQLiteTracker] failed to open %s: %w", dbPath, err)
	}
	// one writer
	db.SetMaxOpenConns(1)

	t := &SQLiteTracker{db: db}
	if err := t.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("[SQLiteTracker] Database ready", slog.String("path", dbPath))
	return t, nil
}

func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}

func (t *SQLiteTracker) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tracked_comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		comment_id TEXT NOT NULL,
		post_id TEXT NOT NULL DEFAULT '',
		reply_text TEXT NOT NULL DEFAULT '',
		post_date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tracked_comments_post_date ON tracked_comments(post_date);
	`
	if _, err := t.db.Exec(schema); err != nil {
		return fmt.Errorf("[SQLiteTracker] migration failed: %w", err)
	}
	return nil
}

func (t *SQLiteTracker) Append(ctx context.Context, c models.TrackedComment) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO tracked_comments (comment_id, post_id, reply_text, post_date) VALUES (?, ?, ?, ?)`,
		c.CommentID, c.PostID, c.ReplyText, c.PostDate.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("[SQLiteTracker] failed to insert %s: %w", c.CommentID, err)
	}
	slog.Info("[SQLiteTracker] Comment saved for future analysis", slog.String("comment_id", c.CommentID))
	return nil
}

// List returns tracked comments in insertion order.
func (t *SQLiteTracker) List(ctx context.Context) ([]models.TrackedComment, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT comment_id, post_id, reply_text, post_date FROM tracked_comments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("[SQLiteTracker] query failed: %w", err)
	}
	defer rows.Close()

	var out []models.TrackedComment
	for rows.Next() {
		var (
			c  models.TrackedComment
			ts string
		)
		if err := rows.Scan(&c.CommentID, &c.PostID, &c.ReplyText, &ts); err != nil {
			return nil, fmt.Errorf("[SQLiteTracker] scan failed: %w", err)
		}
		c.PostDate, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[SQLiteTracker] rows failed: %w", err)
	}
	return out, nil
}
