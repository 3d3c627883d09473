package main

import (
	cmdimport "contrib-stats/command/import"
	cmdvisualize "contrib-stats/command/visualize"
	cmdweb "contrib-stats/command/web"
	"contrib-stats/connectors/config"
	"fmt"
	"log/slog"
	"os"
)

// GitHub contribution statistics.
// Usage:
//   contrib-stats [visualize] [-in contributions.csv] [-out cumulative_contributions_table.csv] [-charts contribution_charts.png]
//   GITHUB_TOKEN=ghp_xxx contrib-stats import -user octocat [-years 5] [-visualize]
//   contrib-stats web [-addr :8080] [-data .]
// Notes:
// - visualize fills missing days with zero, then writes the cumulative table and a PNG
//   with the cumulative line, monthly bars and weekday pie.
// - import queries the GraphQL contribution calendar one year at a time.

func main() {
	level := slog.LevelInfo
	if env, err := config.LoadEnv(); err == nil {
		level = config.ParseLevel(env.LogLevel)
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))

	sub := "visualize"
	var rest []string
	if len(os.Args) > 1 {
		sub = os.Args[1]
		rest = append([]string{}, os.Args[2:]...)
	}
	var err error
	switch sub {
	case "visualize":
		err = cmdvisualize.Run(rest)
	case "import":
		err = cmdimport.Run(rest)
	case "web":
		err = cmdweb.Run(rest)
	default:
		fmt.Fprintln(os.Stderr, "usage: contrib-stats [visualize [-in <csv>] [-out <csv>] [-charts <png>] [-preview <n>]] | import -user <login> [-years <n>] [-out <csv>] [-visualize] | web [-addr :8080] [-data .]\nENV: CONFIG_PATH (default ./config.yml), GITHUB_TOKEN, GITHUB_USER, LOG_LEVEL")
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
