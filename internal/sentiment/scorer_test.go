package sentiment

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreLabels(t *testing.T) {
	tests := []struct {
		name string
		out  Output
		want float64
	}{
		{"positive", Record("POSITIVE", 0.9), 0.9},
		{"positive lowercase", Record("positive", 0.4), 0.4},
		{"negative", Record("NEGATIVE", 0.75), -0.75},
		{"negative mixed case", Record("Negative", 0.3), -0.3},
		{"label containing positive", Record("LABEL_POSITIVE_2", 0.5), 0.5},
		{"neutral", Record("neutral", 0.99), 0},
		{"unknown label", Record("LABEL_1", 0.8), 0},
		{"zero confidence", Record("POSITIVE", 0), 0},
		{"full confidence negative", Record("NEGATIVE", 1), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.out))
		})
	}
}

func TestScoreUnwrapsRankingLists(t *testing.T) {
	assert.Equal(t, 0.8, Score(Ranking(Record("positive", 0.8))))
	assert.Equal(t, -0.6, Score(Ranking(Ranking(Record("negative", 0.6), Record("neutral", 0.3)))))
	// best-first ranking: the first record wins
	assert.Equal(t, 0.7, Score(Ranking(Record("positive", 0.7), Record("negative", 0.2))))
}

func TestScoreMalformed(t *testing.T) {
	tests := []struct {
		name string
		out  Output
	}{
		{"empty output", Output{}},
		{"empty ranking", Ranking()},
		{"empty nested ranking", Ranking(Ranking())},
		{"nested too deep", Ranking(Ranking(Ranking(Record("positive", 0.9))))},
		{"nan confidence", Record("positive", math.NaN())},
		{"confidence above one", Record("positive", 1.5)},
		{"negative confidence", Record("negative", -0.2)},
		{"missing label", Record("", 0.9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0.0, Score(tt.out))
		})
	}
}

func TestScoreStaysInRange(t *testing.T) {
	for c := 0.0; c <= 1.0; c += 0.05 {
		for _, label := range []string{"POSITIVE", "NEGATIVE", "NEUTRAL"} {
			s := Score(Record(label, c))
			assert.False(t, math.IsNaN(s))
			assert.LessOrEqual(t, s, 1.0)
			assert.GreaterOrEqual(t, s, -1.0)
		}
	}
}

func TestOutputUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"single record", `{"label":"POSITIVE","score":0.91}`, 0.91},
		{"hosted inference shape", `[[{"label":"negative","score":0.8},{"label":"neutral","score":0.15}]]`, -0.8},
		{"pipeline shape", `[{"label":"positive","score":0.5}]`, 0.5},
		{"missing fields", `{}`, 0},
		{"null", `null`, 0},
		{"scalar", `42`, 0},
		{"empty list", `[]`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out Output
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &out))
			assert.Equal(t, tt.want, Score(out))
		})
	}
}
