package sentiment

import (
	"math"
	"strings"

	"github.com/spacesedan/replybot/internal/models"
)

// maxUnwrap is how many ranking lists Score looks through before it treats
// the output as malformed.
const maxUnwrap = 2

// Score collapses a classifier output into a signed value in [-1, 1]:
// +confidence for a positive label, -confidence for a negative one, and 0
// for neutral, unknown or malformed output.
func Score(out Output) float64 {
	rec, ok := normalize(out)
	if !ok {
		return 0
	}
	label := strings.ToUpper(rec.Label)
	switch {
	case strings.Contains(label, "POSITIVE"):
		return rec.Confidence
	case strings.Contains(label, "NEGATIVE"):
		return -rec.Confidence
	default:
		return 0
	}
}

func normalize(out Output) (models.SentimentResult, bool) {
	for depth := 0; ; depth++ {
		if out.Result != nil {
			rec := *out.Result
			if math.IsNaN(rec.Confidence) || rec.Confidence < 0 || rec.Confidence > 1 {
				return models.SentimentResult{}, false
			}
			return rec, true
		}
		if len(out.Ranked) == 0 || depth >= maxUnwrap {
			return models.SentimentResult{}, false
		}
		out = out.Ranked[0]
	}
}
