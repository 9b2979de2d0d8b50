package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := New(context.Background(), time.UTC)
	err := s.AddJob("poll", "not a schedule", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestAddJob_Next(t *testing.T) {
	s := New(context.Background(), time.UTC)
	require.NoError(t, s.AddJob("poll", "@every 6h", func(context.Context) error { return nil }))

	_, ok := s.Next("missing")
	assert.False(t, ok)
	_, ok = s.Next("poll")
	assert.True(t, ok)
}

func TestRunNow(t *testing.T) {
	s := New(context.Background(), time.UTC)
	ran := false
	require.NoError(t, s.RunNow("poll", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		ran = true
		return nil
	}))
	assert.True(t, ran)

	boom := errors.New("boom")
	assert.ErrorIs(t, s.RunNow("poll", func(context.Context) error { return boom }), boom)
}

func TestRun_FiresAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, time.UTC)

	fired := make(chan struct{}, 10)
	require.NoError(t, s.AddJob("tick", "@every 1s", func(context.Context) error {
		fired <- struct{}{}
		return nil
	}))

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("job never fired")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
