package visualize

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"contrib-stats/connectors/charts"
	"contrib-stats/connectors/config"
	ccsv "contrib-stats/connectors/csv"
	"contrib-stats/domain/contributions"
)

// Options names the files of one pipeline run.
type Options struct {
	Input       string
	Output      string
	Charts      string
	PreviewRows int
	// Caption prefix for the chart banner, usually the GitHub login.
	Label string
	// Stdout receives the table preview. Defaults to os.Stdout.
	Stdout io.Writer
}

// Report holds every view derived from one input file.
type Report struct {
	Series     contributions.DailySeries
	Cumulative []contributions.CumulativePoint
	Monthly    []contributions.MonthlyTotal
	Weekday    [7]contributions.WeekdayTotal
	Summary    contributions.Summary
}

// Run executes the visualize command.
//
// Usage:
//
//	contrib-stats visualize [-in contributions.csv] [-out cumulative_contributions_table.csv] [-charts contribution_charts.png] [-preview 10]
func Run(args []string) error {
	_, cfg, err := config.FromEnvironment()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("visualize", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	in := fs.String("in", cfg.Files.Input, "input CSV with Date and Contributions columns")
	out := fs.String("out", cfg.Files.Output, "output CSV for the cumulative table (overwritten)")
	chartsPath := fs.String("charts", cfg.Files.Charts, "PNG file receiving the three chart panels")
	preview := fs.Int("preview", cfg.Preview.Rows, "number of rows printed as a preview")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("visualize: unexpected arguments %v", fs.Args())
	}

	_, err = Execute(Options{
		Input:       *in,
		Output:      *out,
		Charts:      *chartsPath,
		PreviewRows: *preview,
		Label:       cfg.GitHub.Username,
	})
	return err
}

// Execute loads opts.Input, renders the charts, prints the preview and writes
// the cumulative table. Nothing is rendered or written when loading fails.
func Execute(opts Options) (Report, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	slog.Info("visualize.start", "in", opts.Input, "out", opts.Output, "charts", opts.Charts)

	records, err := ccsv.ReadContributions(opts.Input)
	if err != nil {
		slog.Error("visualize.load.error", "path", opts.Input, "error", err)
		return Report{}, err
	}
	slog.Info("visualize.load.done", "rows", len(records))

	rep, err := Build(records)
	if err != nil {
		slog.Error("visualize.normalize.error", "error", err)
		return Report{}, fmt.Errorf("%s: %w", opts.Input, err)
	}
	slog.Info("visualize.aggregate.done",
		"days", rep.Summary.Days,
		"active_days", rep.Summary.ActiveDays,
		"total", rep.Summary.Total,
		"months", len(rep.Monthly))

	if err := charts.WriteFile(opts.Charts, rep.Panels(opts.Label)); err != nil {
		slog.Error("visualize.render.error", "path", opts.Charts, "error", err)
		return Report{}, fmt.Errorf("render charts: %w", err)
	}
	slog.Info("visualize.render.done", "path", opts.Charts)

	if err := ccsv.WritePreview(opts.Stdout, rep.Cumulative, opts.PreviewRows); err != nil {
		return Report{}, err
	}
	if err := ccsv.WriteCumulative(opts.Output, rep.Cumulative); err != nil {
		slog.Error("visualize.export.error", "path", opts.Output, "error", err)
		return Report{}, fmt.Errorf("write cumulative table: %w", err)
	}
	slog.Info("visualize.done", "out", opts.Output, "rows", len(rep.Cumulative))
	return rep, nil
}

// Build normalizes the records and derives every aggregate.
func Build(records []contributions.Record) (Report, error) {
	series, err := contributions.Normalize(records)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Series:     series,
		Cumulative: contributions.Cumulative(series),
		Monthly:    contributions.Monthly(series),
		Weekday:    contributions.ByWeekday(series),
		Summary:    contributions.Summarize(series),
	}, nil
}

// Panels adapts the report to the chart renderer.
func (r Report) Panels(label string) charts.Panels {
	return charts.Panels{
		Caption:    Caption(label, r.Summary),
		Cumulative: r.Cumulative,
		Monthly:    r.Monthly,
		Weekday:    r.Weekday,
	}
}

// Caption summarises the run in one banner line.
func Caption(label string, s contributions.Summary) string {
	text := fmt.Sprintf("%s to %s | %d contributions | %d active days of %d | best day %s (%d) | longest streak %d days",
		s.First.Format(contributions.DateLayout),
		s.Last.Format(contributions.DateLayout),
		s.Total,
		s.ActiveDays,
		s.Days,
		s.BestDay.Date.Format(contributions.DateLayout),
		s.BestDay.Contributions,
		s.LongestStreak)
	if label != "" {
		text = label + ": " + text
	}
	return text
}
