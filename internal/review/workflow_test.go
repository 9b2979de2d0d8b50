package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/replybot/internal/models"
)

type fakePoster struct {
	posted []string
	err    error
	next   int
}

func (f *fakePoster) Reply(_ context.Context, postID, text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.next++
	f.posted = append(f.posted, postID+":"+text)
	return "c" + string(rune('0'+f.next)), nil
}

type fakeRecorder struct {
	records []models.TrackedComment
	err     error
}

func (f *fakeRecorder) Append(_ context.Context, c models.TrackedComment) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, c)
	return nil
}

type fakeMarker []string

func (f *fakeMarker) MarkReplied(_ context.Context, id string) error {
	*f = append(*f, id)
	return nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func threePosts() []models.PostWithReply {
	return []models.PostWithReply{
		{ScrapedPost: models.ScrapedPost{ID: "p1", Title: "one"}, GeneratedReply: "first draft"},
		{ScrapedPost: models.ScrapedPost{ID: "p2", Title: "two"}, GeneratedReply: "second draft"},
		{ScrapedPost: models.ScrapedPost{ID: "p3", Title: "three"}, GeneratedReply: "third draft"},
	}
}

func newTestWorkflow(posts []models.PostWithReply, p *fakePoster, r *fakeRecorder, opts ...Option) *Workflow {
	return NewWorkflow(posts, p, r, append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func TestWorkflow_InitialState(t *testing.T) {
	w := newTestWorkflow(threePosts(), &fakePoster{}, &fakeRecorder{})
	st := w.State()
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, 3, st.Total)
	assert.False(t, st.Done)
	assert.Equal(t, "first draft", st.Reply)
	assert.Equal(t, 2, st.Words)
}

func TestWorkflow_EmptyStartsDone(t *testing.T) {
	w := newTestWorkflow(nil, &fakePoster{}, &fakeRecorder{})
	assert.True(t, w.Done())
	_, err := w.Apply(context.Background(), Command{Action: Skip})
	assert.ErrorIs(t, err, ErrReviewDone)
}

func TestWorkflow_AcceptPostsAndTracks(t *testing.T) {
	p, r := &fakePoster{}, &fakeRecorder{}
	m := &fakeMarker{}
	w := newTestWorkflow(threePosts(), p, r, WithRepliedMarker(m))

	out, err := w.Apply(context.Background(), Command{Action: Accept})
	require.NoError(t, err)
	assert.True(t, out.Advanced)
	assert.Equal(t, "c1", out.CommentID)

	assert.Equal(t, []string{"p1:first draft"}, p.posted)
	require.Len(t, r.records, 1)
	assert.Equal(t, models.TrackedComment{CommentID: "c1", PostID: "p1", ReplyText: "first draft", PostDate: fixedNow}, r.records[0])
	assert.Equal(t, []string{"p1"}, []string(*m))
	assert.Equal(t, 1, w.State().Index)
}

func TestWorkflow_FailedPostDoesNotAdvance(t *testing.T) {
	p, r := &fakePoster{err: errors.New("RATELIMIT")}, &fakeRecorder{}
	w := newTestWorkflow(threePosts(), p, r)

	_, err := w.Apply(context.Background(), Command{Action: Accept})
	require.ErrorIs(t, err, ErrPostFailed)
	assert.Empty(t, r.records)
	assert.Equal(t, 0, w.State().Index)

	p.err = nil
	_, err = w.Apply(context.Background(), Command{Action: Accept})
	require.NoError(t, err)
	assert.Len(t, r.records, 1)
}

func TestWorkflow_TrackingFailureStillAdvances(t *testing.T) {
	p, r := &fakePoster{}, &fakeRecorder{err: errors.New("disk full")}
	w := newTestWorkflow(threePosts(), p, r)

	out, err := w.Apply(context.Background(), Command{Action: Accept})
	require.ErrorIs(t, err, ErrTrackingFailed)
	assert.Equal(t, "c1", out.CommentID)
	assert.Equal(t, 1, w.State().Index)
}

func TestWorkflow_EditResetSkip(t *testing.T) {
	p, r := &fakePoster{}, &fakeRecorder{}
	w := newTestWorkflow(threePosts(), p, r)
	ctx := context.Background()

	out, err := w.Apply(ctx, Command{Action: Edit, Text: "better\nreply"})
	require.NoError(t, err)
	assert.False(t, out.Advanced)
	assert.Equal(t, "better\nreply", w.State().Reply)
	assert.Equal(t, 0, w.State().Index)

	_, err = w.Apply(ctx, Command{Action: Reset})
	require.NoError(t, err)
	assert.Equal(t, "first draft", w.State().Reply)

	_, err = w.Apply(ctx, Command{Action: Reject})
	require.NoError(t, err)
	_, err = w.Apply(ctx, Command{Action: Edit, Text: "edited second"})
	require.NoError(t, err)
	_, err = w.Apply(ctx, Command{Action: Accept})
	require.NoError(t, err)
	_, err = w.Apply(ctx, Command{Action: Skip})
	require.NoError(t, err)

	assert.True(t, w.Done())
	assert.Equal(t, []string{"p2:edited second"}, p.posted)
	assert.Len(t, r.records, 1)

	_, err = w.Apply(ctx, Command{Action: Accept})
	assert.ErrorIs(t, err, ErrReviewDone)
}

func TestWorkflow_RestartDiscardsEdits(t *testing.T) {
	w := newTestWorkflow(threePosts(), &fakePoster{}, &fakeRecorder{})
	ctx := context.Background()

	_, _ = w.Apply(ctx, Command{Action: Edit, Text: "scratch"})
	_, _ = w.Apply(ctx, Command{Action: Skip})
	_, _ = w.Apply(ctx, Command{Action: Skip})
	w.Restart()

	st := w.State()
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, "first draft", st.Reply)
}

func TestParseAction(t *testing.T) {
	for _, a := range []Action{Accept, Edit, Reject, Skip, Reset} {
		got, ok := ParseAction(a.String())
		require.True(t, ok)
		assert.Equal(t, a, got)
	}
	_, ok := ParseAction("restart")
	assert.False(t, ok)
}
