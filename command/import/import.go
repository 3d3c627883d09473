package cmdimport

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"contrib-stats/command/visualize"
	"contrib-stats/connectors/config"
	ccsv "contrib-stats/connectors/csv"
	cg "contrib-stats/connectors/github"
	gh "contrib-stats/domain/github"

	lo "github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
)

// CalendarFetcher reads one window of a user's contribution calendar.
type CalendarFetcher interface {
	ContributionCalendar(ctx context.Context, login string, w gh.Window) (gh.ContributionCalendar, error)
}

// Importer fetches contribution calendars and writes them as a contributions table.
type Importer struct {
	Fetcher CalendarFetcher
	// Progress receives the progress bar. Nil disables it.
	Progress io.Writer
}

// Run executes the import subcommand. It expects flag arguments like: -user, -years, -out.
func Run(args []string) error {
	env, cfg, err := config.FromEnvironment()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	user := fs.String("user", cfg.GitHub.Username, "GitHub login (optional if GITHUB_USER or github.username is set)")
	years := fs.Int("years", cfg.GitHub.Years, "number of one-year windows to fetch, newest first")
	out := fs.String("out", cfg.Files.Input, "CSV file receiving Date,Contributions rows (overwritten)")
	render := fs.Bool("visualize", false, "run the visualize pipeline on the imported file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *user == "" {
		fmt.Fprintln(os.Stderr, "-user is required when neither GITHUB_USER nor github.username is set")
		slog.Error("import.validation.error", "reason", "missing user")
		return fmt.Errorf("missing required -user")
	}
	if *years <= 0 {
		return fmt.Errorf("-years must be positive, got %d", *years)
	}
	if env.GitHubToken == "" {
		fmt.Fprintln(os.Stderr, "GITHUB_TOKEN environment variable is required.")
		slog.Error("import.validation.error", "reason", "missing GITHUB_TOKEN")
		return fmt.Errorf("missing GITHUB_TOKEN")
	}

	imp := Importer{Fetcher: cg.New(nil, env.GitHubToken), Progress: os.Stderr}
	windows := gh.YearWindows(time.Now(), *years)
	if _, err := imp.Import(context.Background(), *user, windows, *out); err != nil {
		return err
	}
	fmt.Printf("Contribution data written to %s\n", *out)

	if !*render {
		return nil
	}
	_, err = visualize.Execute(visualize.Options{
		Input:       *out,
		Output:      cfg.Files.Output,
		Charts:      cfg.Files.Charts,
		PreviewRows: cfg.Preview.Rows,
		Label:       *user,
	})
	return err
}

// Import fetches every window, merges the days (later windows win on overlap),
// writes the non-zero days to out and verifies the written file. It returns the
// number of rows written.
func (im Importer) Import(ctx context.Context, login string, windows []gh.Window, out string) (int, error) {
	slog.Info("import.start", "login", login, "windows", len(windows), "out", out)

	var bar *progressbar.ProgressBar
	if im.Progress != nil {
		bar = progressbar.NewOptions(len(windows),
			progressbar.OptionSetWriter(im.Progress),
			progressbar.OptionSetDescription("fetching contribution calendars"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	days := map[string]int{}
	for _, w := range windows {
		cal, err := im.Fetcher.ContributionCalendar(ctx, login, w)
		if err != nil {
			slog.Error("import.window.fetch.error", "login", login, "from", w.From, "to", w.To, "error", err)
			return 0, fmt.Errorf("fetch contributions %s..%s: %w", w.From.Format(time.DateOnly), w.To.Format(time.DateOnly), err)
		}
		calDays := cal.Days()
		slog.Info("import.window.fetch",
			"from", w.From.Format(time.DateOnly),
			"to", w.To.Format(time.DateOnly),
			"days", len(calDays),
			"contributions", lo.SumBy(calDays, func(d gh.ContributionDay) int { return d.ContributionCount }))
		for _, d := range calDays {
			if d.Date == "" || d.ContributionCount == 0 {
				slog.Debug("import.day.skip", "date", d.Date, "contributions", d.ContributionCount)
			}
		}
		ccsv.MergeDays(days, calDays)
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	n, err := ccsv.WriteContributions(out, days)
	if err != nil {
		slog.Error("import.csv.write.error", "path", out, "error", err)
		return 0, fmt.Errorf("write %s: %w", out, err)
	}
	if err := ccsv.VerifyContributions(out); err != nil {
		return 0, fmt.Errorf("verify %s: %w", out, err)
	}
	slog.Info("import.done", "login", login, "rows", n, "out", out)
	return n, nil
}
