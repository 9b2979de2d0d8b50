//go:build !ORT

package sentiment

import (
	"context"
	"errors"
)

var ErrHugotUnavailable = errors.New("[HugotClassifier] binary built without onnxruntime support, rebuild with -tags ORT")

type HugotClassifier struct{}

func NewHugotClassifier(model, modelDir string) (*HugotClassifier, error) {
	return nil, ErrHugotUnavailable
}

func (h *HugotClassifier) Classify(ctx context.Context, text string) (Output, error) {
	return Output{}, ErrHugotUnavailable
}

func (h *HugotClassifier) Close() error { return nil }
