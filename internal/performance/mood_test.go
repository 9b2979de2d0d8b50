package performance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoodFor(t *testing.T) {
	cases := []struct {
		score float64
		want  Mood
	}{
		{1, Jubilant},
		{0.61, Jubilant},
		{0.6, Pleased},
		{0.21, Pleased},
		{0.2, Neutral},
		{0, Neutral},
		{-0.19, Neutral},
		{-0.2, Upset},
		{-0.59, Upset},
		{-0.6, Furious},
		{-1, Furious},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MoodFor(tc.score), "score %v", tc.score)
	}
}
