// Package performance polls our posted comments and scores the sentiment of
// the replies they drew.
package performance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/replybot/internal/attribution"
	"github.com/spacesedan/replybot/internal/models"
)

// MaxReplyChars is how much of a reply body is analyzed.
const MaxReplyChars = 512

type Platform interface {
	Me(ctx context.Context) (string, error)
	Comment(ctx context.Context, id string) (models.CommentSnapshot, error)
}

type Analyzer interface {
	AttributeAndRender(ctx context.Context, text, path string) (attribution.Result, error)
}

// Sink receives every finished report.
type Sink interface {
	Publish(ctx context.Context, report models.CommentReport) error
}

type Reporter struct {
	platform   Platform
	analyzer   Analyzer
	heatmapDir string
	sinks      []Sink
}

func NewReporter(platform Platform, analyzer Analyzer, heatmapDir string, sinks ...Sink) *Reporter {
	return &Reporter{
		platform:   platform,
		analyzer:   analyzer,
		heatmapDir: heatmapDir,
		sinks:      sinks,
	}
}

func HeatmapName(commentID, replyID string) string {
	return fmt.Sprintf("heatmap_%s_%s.png", commentID, replyID)
}

// TruncateChars cuts s to at most n runes.
func TruncateChars(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// AnalyzeAll reports on every comment id in order. Only a failure to
// identify our own account aborts the run; per-comment failures are recorded
// on that comment's report.
func (r *Reporter) AnalyzeAll(ctx context.Context, commentIDs []string) ([]models.CommentReport, error) {
	me, err := r.platform.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("[Reporter] failed to identify account: %w", err)
	}

	start := time.Now()
	reports := make([]models.CommentReport, 0, len(commentIDs))
	for _, id := range commentIDs {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report := r.AnalyzeComment(ctx, id, me)
		r.publish(ctx, report)
		reports = append(reports, report)
	}

	slog.Info("[Reporter] Analysis complete",
		slog.Int("comments", len(reports)),
		slog.Duration("elapsed", time.Since(start)))
	return reports, nil
}

// AnalyzeComment refreshes one comment and analyzes each reply not written
// by me.
func (r *Reporter) AnalyzeComment(ctx context.Context, commentID, me string) models.CommentReport {
	report := models.CommentReport{CommentID: commentID}

	snap, err := r.platform.Comment(ctx, commentID)
	if err != nil {
		slog.Error("[Reporter] Failed to fetch comment",
			slog.String("comment_id", commentID),
			slog.String("error", err.Error()))
		report.Error = err.Error()
		return report
	}
	report.Karma = snap.Score
	report.Body = snap.Body

	for i, reply := range snap.Replies {
		if me != "" && strings.EqualFold(reply.Author, me) {
			report.Skipped++
			continue
		}
		report.Replies = append(report.Replies, r.analyzeReply(ctx, commentID, i+1, reply))
	}

	slog.Info("[Reporter] Comment analyzed",
		slog.String("comment_id", commentID),
		slog.Int("karma", report.Karma),
		slog.Int("replies", len(snap.Replies)),
		slog.Int("skipped", report.Skipped))
	return report
}

func (r *Reporter) analyzeReply(ctx context.Context, commentID string, index int, reply models.Reply) models.ReplyReport {
	rr := models.ReplyReport{
		Index:   index,
		ReplyID: reply.ID,
		Author:  reply.Author,
		Body:    TruncateChars(reply.Body, MaxReplyChars),
	}
	name := reply.ID
	if name == "" {
		name = strconv.Itoa(index)
	}
	path := filepath.Join(r.heatmapDir, HeatmapName(commentID, name))

	res, err := r.analyzer.AttributeAndRender(ctx, rr.Body, path)
	switch {
	case err == nil:
		rr.HeatmapPath = path
	case errors.Is(err, attribution.ErrRenderFailed):
		slog.Warn("[Reporter] Heatmap not rendered",
			slog.String("reply_id", reply.ID),
			slog.String("error", err.Error()))
		rr.Error = err.Error()
	case errors.Is(err, attribution.ErrNothingToAnalyze):
		return rr
	default:
		slog.Error("[Reporter] Failed to analyze reply",
			slog.String("reply_id", reply.ID),
			slog.String("error", err.Error()))
		rr.Error = err.Error()
		return rr
	}

	mood := MoodFor(res.BaseScore)
	rr.Analyzed = true
	rr.Score = res.BaseScore
	rr.Mood = mood.Name
	rr.Emoji = mood.Emoji
	rr.Words = res.Words
	return rr
}

func (r *Reporter) publish(ctx context.Context, report models.CommentReport) {
	for _, s := range r.sinks {
		if err := s.Publish(ctx, report); err != nil {
			slog.Warn("[Reporter] Failed to publish report",
				slog.String("comment_id", report.CommentID),
				slog.String("error", err.Error()))
		}
	}
}

// WriteReport prints the operator summary of one comment.
func WriteReport(w io.Writer, report models.CommentReport) {
	if report.Error != "" {
		fmt.Fprintf(w, "❌ Error analyzing %s: %s\n", report.CommentID, report.Error)
		return
	}
	fmt.Fprintf(w, "\n📊 Comment %s | Karma: %d | Replies: %d\n",
		report.CommentID, report.Karma, len(report.Replies)+report.Skipped)
	for _, rr := range report.Replies {
		if !rr.Analyzed {
			continue
		}
		fmt.Fprintf(w, "   Reply %d: %.2f %s\n", rr.Index, rr.Score, rr.Emoji)
	}
}
