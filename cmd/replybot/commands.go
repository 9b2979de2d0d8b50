package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacesedan/replybot/config"
	"github.com/spacesedan/replybot/internal/dashboard"
	"github.com/spacesedan/replybot/internal/performance"
	"github.com/spacesedan/replybot/internal/replies"
	"github.com/spacesedan/replybot/internal/review"
	"github.com/spacesedan/replybot/internal/scheduler"
	"github.com/spacesedan/replybot/internal/scraper"
	"github.com/spacesedan/replybot/internal/store"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "replybot",
		Short:         "Draft, review and post Reddit replies, then track how they land",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)

	root.AddCommand(
		newScrapeCmd(a),
		newGenerateCmd(a),
		newReviewCmd(a),
		newAnalyzeCmd(a),
		newRunCmd(a),
		newPollCmd(a),
		newServeCmd(a),
		newMenuCmd(a),
	)
	return root
}

func newScrapeCmd(a *app) *cobra.Command {
	var (
		subreddit string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch the newest posts of a subreddit into " + config.ScrapedPostsFile,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.scrape(cmd.Context(), subreddit, limit)
		},
	}
	cmd.Flags().StringVarP(&subreddit, "subreddit", "s", scraper.DefaultSubreddit, "subreddit to scrape")
	cmd.Flags().IntVarP(&limit, "limit", "n", scraper.DefaultLimit, fmt.Sprintf("number of posts (1-%d)", scraper.MaxLimit))
	return cmd
}

func newGenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Draft a reply for every scraped post",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.generate(cmd.Context())
		},
	}
}

func newReviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Accept, edit, reject or skip each drafted reply",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.review(cmd.Context())
		},
	}
}

func newAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Report karma and reply sentiment for tracked comments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.analyze(cmd.Context())
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	var (
		subreddit string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape, generate and review in one go",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.fullWorkflow(cmd.Context(), subreddit, limit)
		},
	}
	cmd.Flags().StringVarP(&subreddit, "subreddit", "s", scraper.DefaultSubreddit, "subreddit to scrape")
	cmd.Flags().IntVarP(&limit, "limit", "n", scraper.DefaultLimit, "number of posts")
	return cmd
}

func newPollCmd(a *app) *cobra.Command {
	var schedule string
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Run the performance analysis on a schedule until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.poll(cmd.Context(), schedule)
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", a.cfg.PollSchedule, "cron schedule")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", a.cfg.DashboardAddr, "listen address")
	return cmd
}

func (a *app) scrape(ctx context.Context, subreddit string, limit int) error {
	s, err := a.scraper(ctx)
	if err != nil {
		return err
	}
	posts, err := s.ScrapeToFile(ctx, subreddit, limit, a.cfg.DataPath(config.ScrapedPostsFile))
	if err != nil {
		return err
	}
	a.printf("✅ Saved %d posts to %s\n", len(posts), config.ScrapedPostsFile)
	return nil
}

func (a *app) generate(ctx context.Context) error {
	d, err := a.drafter(ctx)
	if err != nil {
		return err
	}
	drafted, err := d.GenerateFromFile(ctx, a.cfg.DataPath(config.ScrapedPostsFile), a.cfg.DataPath(config.PostsWithReplies))
	if err != nil {
		return err
	}
	replies.Preview(a.out, drafted)
	a.printf("\n🎉 Generated %d replies\n", len(drafted))
	return nil
}

func (a *app) review(ctx context.Context) error {
	posts, err := store.LoadPostsWithReplies(a.cfg.DataPath(config.PostsWithReplies), "run generate first")
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		a.printf("No replies found in %s.\n", config.PostsWithReplies)
		return nil
	}

	rs, err := a.reddit(ctx, true)
	if err != nil {
		return err
	}
	t, err := a.trackerStore(ctx)
	if err != nil {
		return err
	}

	var opts []review.Option
	if vc := a.replied(ctx); vc != nil {
		opts = append(opts, review.WithRepliedMarker(vc))
	}
	w := review.NewWorkflow(posts, rs, t, opts...)
	return review.NewScannerConsole(a.in, a.out).Run(ctx, w)
}

func (a *app) analyze(ctx context.Context) error {
	ids, err := a.trackedIDs(ctx)
	if err != nil {
		return err
	}
	rep, err := a.reporter(ctx)
	if err != nil {
		return err
	}
	return a.analyzeWith(ctx, rep, ids)
}

func (a *app) analyzeWith(ctx context.Context, rep *performance.Reporter, ids []string) error {
	reports, err := rep.AnalyzeAll(ctx, ids)
	for _, r := range reports {
		performance.WriteReport(a.out, r)
	}
	if err != nil {
		return err
	}
	a.printf("\n✅ Analyzed %d comments\n", len(reports))
	return nil
}

func (a *app) fullWorkflow(ctx context.Context, subreddit string, limit int) error {
	a.printf("🔄 Step 1: Scraping posts...\n")
	if err := a.scrape(ctx, subreddit, limit); err != nil {
		return err
	}
	a.printf("🔄 Step 2: Generating replies...\n")
	if err := a.generate(ctx); err != nil {
		return err
	}
	a.printf("🔄 Step 3: Review and post...\n")
	return a.review(ctx)
}

func (a *app) poll(ctx context.Context, schedule string) error {
	rep, err := a.reporter(ctx)
	if err != nil {
		return err
	}

	job := func(ctx context.Context) error {
		ids, err := a.trackedIDs(ctx)
		if err != nil {
			return err
		}
		return a.analyzeWith(ctx, rep, ids)
	}

	s := scheduler.New(ctx, time.Local)
	if err := s.AddJob("analyze", schedule, job); err != nil {
		return err
	}
	if err := s.RunNow("analyze", job); err != nil {
		slog.Error("[Poll] Initial analysis failed", slog.String("error", err.Error()))
	}
	s.Run(ctx)
	return nil
}

func (a *app) serve(ctx context.Context, addr string) error {
	return a.dashboard(ctx).Run(ctx, addr)
}

// dashboard wires whatever the configuration allows; missing pieces answer 503.
func (a *app) dashboard(ctx context.Context) *dashboard.Server {
	deps := dashboard.Deps{
		Files: dashboard.Files{
			ScrapedPosts:     a.cfg.DataPath(config.ScrapedPostsFile),
			PostsWithReplies: a.cfg.DataPath(config.PostsWithReplies),
			HeatmapDir:       a.cfg.Storage.HeatmapDir,
		},
	}

	if s, err := a.scraper(ctx); err == nil {
		deps.Scraper = s
	} else {
		slog.Warn("[Dashboard] Scraping disabled", slog.String("error", err.Error()))
	}
	if d, err := a.drafter(ctx); err == nil {
		deps.Drafter = d
	} else {
		slog.Warn("[Dashboard] Reply generation disabled", slog.String("error", err.Error()))
	}
	if t, err := a.trackerStore(ctx); err == nil {
		deps.Tracker = t
	} else {
		slog.Warn("[Dashboard] Tracking disabled", slog.String("error", err.Error()))
	}
	if rs, err := a.reddit(ctx, true); err == nil {
		deps.Poster = rs
	} else {
		slog.Warn("[Dashboard] Posting disabled", slog.String("error", err.Error()))
	}
	if vc := a.replied(ctx); vc != nil {
		deps.Marker = vc
	}
	if rep, err := a.reporter(ctx); err == nil {
		deps.Reporter = rep
	} else {
		slog.Warn("[Dashboard] Performance analysis disabled", slog.String("error", err.Error()))
	}

	return dashboard.New(deps)
}
