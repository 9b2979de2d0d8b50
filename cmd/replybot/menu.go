package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spacesedan/replybot/internal/scraper"
)

func newMenuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive control panel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.menu(cmd.Context())
		},
	}
}

func (a *app) showMenu() {
	a.printf("\n%s\n", strings.Repeat("=", 40))
	a.printf("🤖 Reddit AI Bot Control Panel 🤖\n")
	a.printf("%s\n", strings.Repeat("=", 40))
	a.printf("1. Scrape a Subreddit\n")
	a.printf("2. Generate LLM Replies for Scraped Posts\n")
	a.printf("3. Review, Edit, and Post Replies\n")
	a.printf("4. Analyze Performance of Posted Comments\n")
	a.printf("5. Run Full Workflow (1 -> 2 -> 3)\n")
	a.printf("6. Launch Dashboard\n")
	a.printf("7. Exit\n")
	a.printf("%s\n", strings.Repeat("-", 40))
}

// menu loops until the operator exits, input ends or ctx is done. A failing
// step is reported and the menu shown again.
func (a *app) menu(ctx context.Context) error {
	var stopDashboard context.CancelFunc
	defer func() {
		if stopDashboard != nil {
			stopDashboard()
		}
	}()

	for ctx.Err() == nil {
		a.showMenu()
		choice, ok := a.prompt("Enter your choice (1-7): ")
		if !ok {
			return nil
		}

		var err error
		switch choice {
		case "1":
			sub, _ := a.prompt("Enter the name of the subreddit to scrape (e.g., onepiece): ")
			err = a.scrape(ctx, orDefault(sub, scraper.DefaultSubreddit), scraper.DefaultLimit)
		case "2":
			a.printf("\n--- Starting LLM Reply Generation ---\n")
			err = a.generate(ctx)
		case "3":
			a.printf("\n--- Starting Interactive Review Workflow ---\n")
			err = a.review(ctx)
		case "4":
			a.printf("\n--- Starting Performance Analysis ---\n")
			err = a.analyze(ctx)
		case "5":
			a.printf("\n--- Running Full Workflow ---\n")
			sub, _ := a.prompt("Enter the name of the subreddit to scrape (e.g., onepiece): ")
			err = a.fullWorkflow(ctx, orDefault(sub, scraper.DefaultSubreddit), scraper.DefaultLimit)
		case "6":
			if stopDashboard != nil {
				a.printf("🌐 Dashboard already running on %s\n", a.cfg.DashboardAddr)
				continue
			}
			srv := a.dashboard(ctx)
			var dctx context.Context
			dctx, stopDashboard = context.WithCancel(ctx)
			go func() {
				if err := srv.Run(dctx, a.cfg.DashboardAddr); err != nil {
					slog.Error("[Menu] Dashboard stopped", slog.String("error", err.Error()))
				}
			}()
			a.printf("🌐 Dashboard running on %s until you exit the menu\n", a.cfg.DashboardAddr)
		case "7":
			a.printf("👋 Exiting the control panel. Goodbye!\n")
			return nil
		default:
			a.printf("⚠️ Invalid choice. Please enter a number between 1 and 7.\n")
		}

		if err != nil {
			a.printf("❌ %v\n", err)
		}
	}
	return ctx.Err()
}

func (a *app) prompt(label string) (string, bool) {
	fmt.Fprint(a.out, label)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
