package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spacesedan/replybot/config"
	"github.com/spacesedan/replybot/internal/attribution"
	"github.com/spacesedan/replybot/internal/clients"
	"github.com/spacesedan/replybot/internal/db"
	"github.com/spacesedan/replybot/internal/performance"
	"github.com/spacesedan/replybot/internal/replies"
	"github.com/spacesedan/replybot/internal/scraper"
	"github.com/spacesedan/replybot/internal/sentiment"
	"github.com/spacesedan/replybot/internal/store"
)

// app builds collaborators from configuration on first use and releases
// them on close.
type app struct {
	cfg config.Config
	in  *bufio.Scanner
	out io.Writer

	readSession    *clients.RedditSession
	accountSession *clients.RedditSession
	valkey         *clients.ValkeyClient
	valkeyTried    bool
	tracker        store.Tracker
	closers        []func()
}

func newApp(cfg config.Config, in io.Reader, out io.Writer) *app {
	return &app{cfg: cfg, in: bufio.NewScanner(in), out: out}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// reddit returns a session; account sessions can post and read our own
// comments.
func (a *app) reddit(ctx context.Context, account bool) (*clients.RedditSession, error) {
	if err := a.cfg.RequireReddit(account); err != nil {
		return nil, err
	}
	if account && a.accountSession != nil {
		return a.accountSession, nil
	}
	if !account {
		if a.accountSession != nil {
			return a.accountSession, nil
		}
		if a.readSession != nil {
			return a.readSession, nil
		}
	}

	cfg := a.cfg.Reddit
	if !account {
		cfg.Username, cfg.Password = "", ""
	}
	rs, err := clients.NewRedditSession(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, rs.Close)
	if account {
		a.accountSession = rs
	} else {
		a.readSession = rs
	}
	return rs, nil
}

// replied returns the Valkey dedupe client, or nil when it is not configured
// or unreachable.
func (a *app) replied(ctx context.Context) *clients.ValkeyClient {
	if a.valkeyTried {
		return a.valkey
	}
	a.valkeyTried = true
	if a.cfg.Valkey.Address == "" {
		return nil
	}
	vc, err := clients.NewValkeyClient(ctx, a.cfg.Valkey)
	if err != nil {
		slog.Warn("[App] Replied-post dedupe disabled", slog.String("error", err.Error()))
		return nil
	}
	a.closers = append(a.closers, vc.Close)
	a.valkey = vc
	return vc
}

func (a *app) scraper(ctx context.Context) (*scraper.Scraper, error) {
	rs, err := a.reddit(ctx, false)
	if err != nil {
		return nil, err
	}
	if vc := a.replied(ctx); vc != nil {
		return scraper.New(rs, vc), nil
	}
	return scraper.New(rs, nil), nil
}

func (a *app) generator(ctx context.Context) (replies.Generator, error) {
	if err := a.cfg.RequireLLM(); err != nil {
		return nil, err
	}
	switch a.cfg.LLM.Provider {
	case config.LLMProviderGemini:
		return clients.NewGeminiClient(ctx, a.cfg.LLM.GeminiAPIKey, a.cfg.LLM.GeminiModel)
	default:
		return clients.NewOpenAIClient(a.cfg.LLM.OpenAIAPIKey, a.cfg.LLM.OpenAIModel), nil
	}
}

func (a *app) drafter(ctx context.Context) (*replies.Drafter, error) {
	gen, err := a.generator(ctx)
	if err != nil {
		return nil, err
	}
	return replies.NewDrafter(gen, a.cfg.LLM.Persona), nil
}

func (a *app) classifier() (sentiment.Classifier, error) {
	if err := a.cfg.RequireSentiment(); err != nil {
		return nil, err
	}
	switch a.cfg.Sentiment.Backend {
	case config.SentimentVader:
		return sentiment.NewVaderClassifier(), nil
	case config.SentimentHugot:
		hc, err := sentiment.NewHugotClassifier(a.cfg.Sentiment.HugotModel, a.cfg.Sentiment.HugotModelDir)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { hc.Close() })
		return hc, nil
	default:
		return clients.NewHuggingFaceClient(a.cfg.Sentiment.HFToken, a.cfg.Sentiment.HFModel, nil), nil
	}
}

func (a *app) trackerStore(ctx context.Context) (store.Tracker, error) {
	if a.tracker != nil {
		return a.tracker, nil
	}
	if err := a.cfg.RequireTracking(); err != nil {
		return nil, err
	}

	var t store.Tracker
	switch a.cfg.Storage.Backend {
	case config.TrackingSQLite:
		st, err := db.NewSQLiteTracker(a.cfg.DataPath(config.TrackingDBFile))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { st.Close() })
		t = st
	case config.TrackingDynamoDB:
		client, err := clients.NewDynamoDBClient(ctx, a.cfg.Storage)
		if err != nil {
			return nil, err
		}
		t = db.NewDynamoTracker(client, a.cfg.Storage.DynamoDBTable)
	default:
		t = store.NewCSVTracker(a.cfg.DataPath(config.TrackedCommentsFile), "post a reply through review first")
	}
	a.tracker = t
	return t, nil
}

func (a *app) sinks() []performance.Sink {
	if a.cfg.Kafka.Broker == "" {
		return nil
	}
	kp, err := clients.NewKafkaPublisher(a.cfg.Kafka.Broker, a.cfg.Kafka.ReportTopic)
	if err != nil {
		slog.Warn("[App] Report publishing disabled", slog.String("error", err.Error()))
		return nil
	}
	a.closers = append(a.closers, kp.Close)
	return []performance.Sink{kp}
}

func (a *app) reporter(ctx context.Context) (*performance.Reporter, error) {
	rs, err := a.reddit(ctx, true)
	if err != nil {
		return nil, err
	}
	cls, err := a.classifier()
	if err != nil {
		return nil, err
	}
	return performance.NewReporter(rs, attribution.New(cls, nil), a.cfg.Storage.HeatmapDir, a.sinks()...), nil
}

func (a *app) trackedIDs(ctx context.Context) ([]string, error) {
	t, err := a.trackerStore(ctx)
	if err != nil {
		return nil, err
	}
	tracked, err := t.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(tracked))
	for i, c := range tracked {
		ids[i] = c.CommentID
	}
	return ids, nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
