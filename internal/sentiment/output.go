package sentiment

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/spacesedan/replybot/internal/models"
)

// Output is what a classifier returns for one input: either a single record
// or a ranking list ordered best first. Classifiers commonly wrap their
// answer in one or two such lists.
type Output struct {
	Result *models.SentimentResult
	Ranked []Output
}

type Classifier interface {
	Classify(ctx context.Context, text string) (Output, error)
}

type ClassifierFunc func(ctx context.Context, text string) (Output, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) (Output, error) {
	return f(ctx, text)
}

func Record(label string, confidence float64) Output {
	return Output{Result: &models.SentimentResult{Label: label, Confidence: confidence}}
}

func Ranking(outs ...Output) Output {
	return Output{Ranked: outs}
}

// UnmarshalJSON accepts an object, an array of outputs, or anything else,
// which decodes to an empty (and therefore neutral) Output.
func (o *Output) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*o = Output{}
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '{':
		var rec models.SentimentResult
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		o.Result = &rec
	case '[':
		var ranked []Output
		if err := json.Unmarshal(data, &ranked); err != nil {
			return err
		}
		o.Ranked = ranked
	}
	return nil
}
