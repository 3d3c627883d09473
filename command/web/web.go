package web

import (
	"bytes"
	"errors"
	"flag"
	"net/http"
	"os"
	"path/filepath"

	"contrib-stats/command/visualize"
	"contrib-stats/connectors/charts"
	"contrib-stats/connectors/config"
	ccsv "contrib-stats/connectors/csv"
	"contrib-stats/domain/contributions"
	dc "contrib-stats/domain/config"

	"github.com/labstack/echo/v4"
	lo "github.com/samber/lo"
)

// Run starts a small Echo web server exposing the CSV files and the derived
// aggregates as JSON, plus the chart image.
//
// Usage:
//
//	contrib-stats web [-addr :8080] [-data .]
//
// Endpoints:
//
//	GET /api/contributions  -> <data>/contributions.csv
//	GET /api/cumulative     -> <data>/cumulative_contributions_table.csv
//	GET /api/monthly        -> monthly totals computed from <data>/contributions.csv
//	GET /api/weekday        -> weekday totals computed from <data>/contributions.csv
//	GET /charts.png         -> the three chart panels rendered from <data>/contributions.csv
func Run(args []string) error {
	_, cfg, err := config.FromEnvironment()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Web.Addr, "http listen address (host:port)")
	dataDir := fs.String("data", cfg.Web.DataDir, "directory containing CSV files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return New(*dataDir, cfg).Start(*addr)
}

type monthlyResponse struct {
	Month         string `json:"month"`
	Contributions int    `json:"contributions"`
}

type weekdayResponse struct {
	Weekday       string `json:"weekday"`
	Contributions int    `json:"contributions"`
}

// New builds the Echo instance serving files found under dataDir.
func New(dataDir string, cfg *dc.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	input := filepath.Join(dataDir, filepath.Base(cfg.Files.Input))
	output := filepath.Join(dataDir, filepath.Base(cfg.Files.Output))

	// Helper to register a GET endpoint serving a specific CSV file
	serveCSV := func(route string, path string) {
		e.GET(route, func(c echo.Context) error {
			rows, err := ccsv.ReadTable(path)
			if err != nil {
				return fileError(c, path, err, "failed to read CSV")
			}
			return c.JSON(http.StatusOK, rows)
		})
	}

	// Helper to register a GET endpoint computed from the input file
	serveReport := func(route string, respond func(c echo.Context, rep visualize.Report) error) {
		e.GET(route, func(c echo.Context) error {
			records, err := ccsv.ReadContributions(input)
			if err != nil {
				return fileError(c, input, err, "failed to read contributions")
			}
			rep, err := visualize.Build(records)
			if err != nil {
				return fileError(c, input, err, "failed to aggregate contributions")
			}
			return respond(c, rep)
		})
	}

	serveCSV("/api/contributions", input)
	serveCSV("/api/cumulative", output)

	serveReport("/api/monthly", func(c echo.Context, rep visualize.Report) error {
		return c.JSON(http.StatusOK, lo.Map(rep.Monthly, func(m contributions.MonthlyTotal, _ int) monthlyResponse {
			return monthlyResponse{Month: m.Label(), Contributions: m.Total}
		}))
	})
	serveReport("/api/weekday", func(c echo.Context, rep visualize.Report) error {
		return c.JSON(http.StatusOK, lo.Map(rep.Weekday[:], func(w contributions.WeekdayTotal, _ int) weekdayResponse {
			return weekdayResponse{Weekday: w.Weekday.String(), Contributions: w.Total}
		}))
	})
	serveReport("/charts.png", func(c echo.Context, rep visualize.Report) error {
		var buf bytes.Buffer
		if err := charts.Render(&buf, rep.Panels(cfg.GitHub.Username)); err != nil {
			return fileError(c, input, err, "failed to render charts")
		}
		return c.Blob(http.StatusOK, "image/png", buf.Bytes())
	})

	return e
}

func fileError(c echo.Context, path string, err error, message string) error {
	if errors.Is(err, os.ErrNotExist) {
		return c.JSON(http.StatusNotFound, map[string]any{
			"error":   "file not found",
			"path":    path,
			"message": "CSV file is missing",
		})
	}
	return c.JSON(http.StatusInternalServerError, map[string]any{
		"error":   err.Error(),
		"path":    path,
		"message": message,
	})
}
