// Package review walks an operator through drafted replies one post at a
// time. The walk is a state machine driven by Commands, so the console and
// the dashboard share the same transitions.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/replybot/internal/models"
)

var (
	ErrReviewDone     = errors.New("[Review] review is done")
	ErrPostFailed     = errors.New("[Review] posting reply failed")
	ErrTrackingFailed = errors.New("[Review] reply posted but tracking failed")
)

type Poster interface {
	Reply(ctx context.Context, postID, text string) (string, error)
}

type Recorder interface {
	Append(ctx context.Context, c models.TrackedComment) error
}

// Marker remembers posts that got a reply.
type Marker interface {
	MarkReplied(ctx context.Context, postID string) error
}

type Action int

const (
	Accept Action = iota
	Edit
	Reject
	Skip
	Reset
)

func (a Action) String() string {
	switch a {
	case Accept:
		return "accept"
	case Edit:
		return "edit"
	case Reject:
		return "reject"
	case Skip:
		return "skip"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ParseAction maps a command name to its Action.
func ParseAction(s string) (Action, bool) {
	for _, a := range []Action{Accept, Edit, Reject, Skip, Reset} {
		if a.String() == s {
			return a, true
		}
	}
	return 0, false
}

// Command is one operator decision. Text is only read by Edit.
type Command struct {
	Action Action
	Text   string
}

// State is a snapshot of the walk. Post and Reply are zero once Done.
type State struct {
	Index int                  `json:"index"`
	Total int                  `json:"total"`
	Done  bool                 `json:"done"`
	Post  models.PostWithReply `json:"post"`
	Reply string               `json:"current_reply"`
	Words int                  `json:"word_count"`
}

// Outcome reports what a command did.
type Outcome struct {
	Advanced  bool   `json:"advanced"`
	CommentID string `json:"comment_id,omitempty"`
}

type Option func(*Workflow)

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

func WithRepliedMarker(m Marker) Option {
	return func(w *Workflow) { w.marker = m }
}

type Workflow struct {
	posts    []models.PostWithReply
	poster   Poster
	recorder Recorder
	marker   Marker
	now      func() time.Time

	index   int
	current string
}

// NewWorkflow starts at the first post, or Done for an empty list.
func NewWorkflow(posts []models.PostWithReply, poster Poster, recorder Recorder, opts ...Option) *Workflow {
	w := &Workflow{
		posts:    posts,
		poster:   poster,
		recorder: recorder,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.Restart()
	return w
}

// Restart returns to the first post and discards every edit.
func (w *Workflow) Restart() {
	w.index = 0
	w.current = ""
	if len(w.posts) > 0 {
		w.current = w.posts[0].GeneratedReply
	}
}

func (w *Workflow) Done() bool {
	return w.index >= len(w.posts)
}

func (w *Workflow) State() State {
	st := State{Index: w.index, Total: len(w.posts), Done: w.Done()}
	if !st.Done {
		st.Post = w.posts[w.index]
		st.Reply = w.current
		st.Words = len(strings.Fields(w.current))
	}
	return st
}

// Apply runs one command against the current post. A failed post leaves the
// state untouched. A post that succeeds but cannot be tracked still advances
// and returns ErrTrackingFailed.
func (w *Workflow) Apply(ctx context.Context, cmd Command) (Outcome, error) {
	if w.Done() {
		return Outcome{}, ErrReviewDone
	}
	post := w.posts[w.index]

	switch cmd.Action {
	case Edit:
		w.current = cmd.Text
		return Outcome{}, nil

	case Reset:
		w.current = post.GeneratedReply
		return Outcome{}, nil

	case Reject, Skip:
		slog.Info("[Review] Skipping post",
			slog.String("post_id", post.ID),
			slog.String("action", cmd.Action.String()))
		w.advance()
		return Outcome{Advanced: true}, nil

	case Accept:
		return w.accept(ctx, post)

	default:
		return Outcome{}, fmt.Errorf("[Review] unknown action %v", cmd.Action)
	}
}

func (w *Workflow) accept(ctx context.Context, post models.PostWithReply) (Outcome, error) {
	text := w.current
	commentID, err := w.poster.Reply(ctx, post.ID, text)
	if err != nil {
		slog.Error("[Review] Failed to post reply",
			slog.String("post_id", post.ID),
			slog.String("error", err.Error()))
		return Outcome{}, fmt.Errorf("%w: %w", ErrPostFailed, err)
	}

	out := Outcome{Advanced: true, CommentID: commentID}
	w.advance()

	if w.marker != nil {
		if err := w.marker.MarkReplied(ctx, post.ID); err != nil {
			slog.Warn("[Review] Failed to mark post as replied",
				slog.String("post_id", post.ID),
				slog.String("error", err.Error()))
		}
	}

	tracked := models.TrackedComment{
		CommentID: commentID,
		PostID:    post.ID,
		ReplyText: text,
		PostDate:  w.now(),
	}
	if err := w.recorder.Append(ctx, tracked); err != nil {
		slog.Error("[Review] Failed to track posted comment",
			slog.String("comment_id", commentID),
			slog.String("error", err.Error()))
		return out, fmt.Errorf("%w: %s: %w", ErrTrackingFailed, commentID, err)
	}

	slog.Info("[Review] Reply posted and tracked",
		slog.String("post_id", post.ID),
		slog.String("comment_id", commentID))
	return out, nil
}

func (w *Workflow) advance() {
	w.index++
	w.current = ""
	if !w.Done() {
		w.current = w.posts[w.index].GeneratedReply
	}
}
