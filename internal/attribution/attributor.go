// Package attribution estimates how much each word of a text contributes to
// its sentiment by classifying the text once per word with that word removed.
package attribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/replybot/internal/models"
	"github.com/spacesedan/replybot/internal/sentiment"
)

var (
	ErrNothingToAnalyze = errors.New("[Attributor] nothing to analyze")
	ErrRenderFailed     = errors.New("[Attributor] heatmap rendering failed")
)

type Result struct {
	BaseScore float64
	Words     []models.WordImportance
}

type Renderer interface {
	Render(path string, words []models.WordImportance) error
}

type Attributor struct {
	classifier sentiment.Classifier
	renderer   Renderer
}

// New returns an Attributor. A nil renderer selects the PNG heat strip.
func New(classifier sentiment.Classifier, renderer Renderer) *Attributor {
	if renderer == nil {
		renderer = NewHeatmapRenderer()
	}
	return &Attributor{classifier: classifier, renderer: renderer}
}

// Attribute performs leave-one-out attribution over the whitespace tokens of
// text. It calls the classifier once for the full text and once per token
// whose removal leaves something to classify. A token whose removal leaves
// an empty text contributes 0, so a single-word text reports 0 for its only
// word. Any classifier error aborts the whole attribution.
func (a *Attributor) Attribute(ctx context.Context, text string) (Result, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return Result{}, ErrNothingToAnalyze
	}

	start := time.Now()
	base, err := a.score(ctx, text)
	if err != nil {
		return Result{}, fmt.Errorf("[Attributor] failed to classify text: %w", err)
	}

	importance := make([]models.WordImportance, len(words))
	for i, word := range words {
		importance[i].Word = word

		variant := leaveOneOut(words, i)
		if strings.TrimSpace(variant) == "" {
			continue
		}

		score, err := a.score(ctx, variant)
		if err != nil {
			return Result{}, fmt.Errorf("[Attributor] failed to classify variant without word %d: %w", i, err)
		}
		importance[i].Contribution = clamp(base - score)
	}

	slog.Debug("[Attributor] Attribution complete",
		slog.Int("words", len(words)),
		slog.Float64("base_score", base),
		slog.Duration("elapsed", time.Since(start)))

	return Result{BaseScore: base, Words: importance}, nil
}

// AttributeAndRender attributes text and writes the heat strip to path. A
// rendering failure still returns the attribution, wrapped in ErrRenderFailed.
func (a *Attributor) AttributeAndRender(ctx context.Context, text, path string) (Result, error) {
	result, err := a.Attribute(ctx, text)
	if err != nil {
		return Result{}, err
	}
	if err := a.renderer.Render(path, result.Words); err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrRenderFailed, path, err)
	}
	return result, nil
}

func (a *Attributor) score(ctx context.Context, text string) (float64, error) {
	out, err := a.classifier.Classify(ctx, text)
	if err != nil {
		return 0, err
	}
	return sentiment.Score(out), nil
}

func leaveOneOut(words []string, skip int) string {
	kept := make([]string, 0, len(words)-1)
	kept = append(kept, words[:skip]...)
	kept = append(kept, words[skip+1:]...)
	return strings.Join(kept, " ")
}

// clamp keeps contributions inside [-1, 1]; a full polarity flip would
// otherwise reach 2.
func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
