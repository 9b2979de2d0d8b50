//go:build ORT

package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// HugotClassifier runs a text-classification ONNX model in process through
// onnxruntime. Build with -tags ORT.
type HugotClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

func NewHugotClassifier(model, modelDir string) (*HugotClassifier, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("[HugotClassifier] failed to create model directory: %w", err)
	}

	modelPath := filepath.Join(modelDir, strings.ReplaceAll(model, "/", "_"))
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		slog.Info("[HugotClassifier] Model not found, downloading...", slog.String("model", model))
		modelPath, err = hugot.DownloadModel(model, modelDir, hugot.NewDownloadOptions())
		if err != nil {
			return nil, fmt.Errorf("[HugotClassifier] failed to download model: %w", err)
		}
		slog.Info("[HugotClassifier] Model downloaded successfully", slog.String("path", modelPath))
	} else {
		slog.Info("[HugotClassifier] Using existing model", slog.String("path", modelPath))
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("[HugotClassifier] failed to initialize session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "replySentimentPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("[HugotClassifier] failed to initialize pipeline: %w", err)
	}

	return &HugotClassifier{session: session, pipeline: pipeline}, nil
}

func (h *HugotClassifier) Classify(ctx context.Context, text string) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	result, err := h.pipeline.RunPipeline([]string{text})
	if err != nil {
		return Output{}, fmt.Errorf("[HugotClassifier] pipeline failed: %w", err)
	}
	if len(result.ClassificationOutputs) == 0 {
		return Output{}, nil
	}

	classes := result.ClassificationOutputs[0]
	sort.SliceStable(classes, func(i, j int) bool { return classes[i].Score > classes[j].Score })

	ranked := make([]Output, 0, len(classes))
	for _, c := range classes {
		ranked = append(ranked, Record(c.Label, float64(c.Score)))
	}
	return Ranking(ranked...), nil
}

func (h *HugotClassifier) Close() error {
	return h.session.Destroy()
}
