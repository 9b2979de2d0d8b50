package attribution

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/replybot/internal/models"
	"github.com/spacesedan/replybot/internal/sentiment"
)

type fakeClassifier struct {
	answers map[string]sentiment.Output
	calls   []string
	failOn  string
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (sentiment.Output, error) {
	f.calls = append(f.calls, text)
	if f.failOn != "" && text == f.failOn {
		return sentiment.Output{}, errors.New("model unavailable")
	}
	if out, ok := f.answers[text]; ok {
		return out, nil
	}
	return sentiment.Record("NEUTRAL", 0.5), nil
}

type recordingRenderer struct {
	path  string
	words []models.WordImportance
	err   error
}

func (r *recordingRenderer) Render(path string, words []models.WordImportance) error {
	r.path = path
	r.words = words
	return r.err
}

func luffyClassifier() *fakeClassifier {
	return &fakeClassifier{answers: map[string]sentiment.Output{
		"Luffy is overpowered": sentiment.Ranking(sentiment.Record("POSITIVE", 0.9)),
		"is overpowered":       sentiment.Ranking(sentiment.Record("POSITIVE", 0.9)),
		"Luffy overpowered":    sentiment.Ranking(sentiment.Record("POSITIVE", 0.7)),
		"Luffy is":             sentiment.Ranking(sentiment.Record("POSITIVE", 0.95)),
	}}
}

func TestAttribute_LeaveOneOut(t *testing.T) {
	c := luffyClassifier()
	a := New(c, &recordingRenderer{})

	res, err := a.Attribute(context.Background(), "Luffy is overpowered")
	require.NoError(t, err)

	assert.InDelta(t, 0.9, res.BaseScore, 1e-9)
	require.Len(t, res.Words, 3)
	assert.Equal(t, "Luffy", res.Words[0].Word)
	assert.Equal(t, "is", res.Words[1].Word)
	assert.Equal(t, "overpowered", res.Words[2].Word)
	assert.InDelta(t, 0.0, res.Words[0].Contribution, 1e-9)
	assert.InDelta(t, 0.2, res.Words[1].Contribution, 1e-9)
	assert.InDelta(t, -0.05, res.Words[2].Contribution, 1e-9)

	assert.Len(t, c.calls, 4)
}

func TestAttribute_SingleWord(t *testing.T) {
	c := &fakeClassifier{answers: map[string]sentiment.Output{
		"great": sentiment.Record("POSITIVE", 0.99),
	}}
	res, err := New(c, &recordingRenderer{}).Attribute(context.Background(), "great")
	require.NoError(t, err)

	require.Len(t, res.Words, 1)
	assert.Equal(t, 0.0, res.Words[0].Contribution)
	assert.Equal(t, []string{"great"}, c.calls)
}

func TestAttribute_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := New(&fakeClassifier{}, &recordingRenderer{}).Attribute(context.Background(), text)
		assert.ErrorIs(t, err, ErrNothingToAnalyze)
	}
}

func TestAttribute_ClassifierErrorAborts(t *testing.T) {
	c := luffyClassifier()
	c.failOn = "Luffy overpowered"

	res, err := New(c, &recordingRenderer{}).Attribute(context.Background(), "Luffy is overpowered")
	require.Error(t, err)
	assert.Empty(t, res.Words)
	assert.Len(t, c.calls, 3)
}

func TestAttribute_Deterministic(t *testing.T) {
	a := New(luffyClassifier(), &recordingRenderer{})
	first, err := a.Attribute(context.Background(), "Luffy is overpowered")
	require.NoError(t, err)
	second, err := a.Attribute(context.Background(), "Luffy is overpowered")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAttribute_PolarityFlipIsClamped(t *testing.T) {
	c := &fakeClassifier{answers: map[string]sentiment.Output{
		"not bad": sentiment.Record("POSITIVE", 1),
		"bad":     sentiment.Record("NEGATIVE", 1),
		"not":     sentiment.Record("NEGATIVE", 0.6),
	}}
	res, err := New(c, &recordingRenderer{}).Attribute(context.Background(), "not bad")
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Words[0].Contribution)
	assert.InDelta(t, 1.0, res.Words[1].Contribution, 1e-9)
	for _, w := range res.Words {
		assert.LessOrEqual(t, w.Contribution, 1.0)
		assert.GreaterOrEqual(t, w.Contribution, -1.0)
	}
}

func TestAttributeAndRender(t *testing.T) {
	r := &recordingRenderer{}
	path := filepath.Join(t.TempDir(), "heatmap_c1_r1.png")

	res, err := New(luffyClassifier(), r).AttributeAndRender(context.Background(), "Luffy is overpowered", path)
	require.NoError(t, err)
	assert.Equal(t, path, r.path)
	assert.Equal(t, res.Words, r.words)
}

func TestAttributeAndRender_RenderFailureKeepsResult(t *testing.T) {
	r := &recordingRenderer{err: errors.New("disk full")}

	res, err := New(luffyClassifier(), r).AttributeAndRender(context.Background(), "Luffy is overpowered", "x.png")
	require.ErrorIs(t, err, ErrRenderFailed)
	assert.Len(t, res.Words, 3)
	assert.InDelta(t, 0.9, res.BaseScore, 1e-9)
}
