package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"contrib-stats/domain/contributions"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	PanelWidth   = 1500
	PanelHeight  = 600
	BannerHeight = 28

	// room under the bars for the rotated YYYY-MM labels
	monthlyBottomPadding = 80
	// band above the pie reserved for its title
	pieTitleBand = 60
)

var (
	lineColor = drawing.ColorFromHex("2ca02c")
	barColor  = drawing.ColorFromHex("1f77b4")
	// matplotlib "Paired"
	pieColors = [7]drawing.Color{
		drawing.ColorFromHex("a6cee3"),
		drawing.ColorFromHex("1f78b4"),
		drawing.ColorFromHex("b2df8a"),
		drawing.ColorFromHex("33a02c"),
		drawing.ColorFromHex("fb9a99"),
		drawing.ColorFromHex("e31a1c"),
		drawing.ColorFromHex("fdbf6f"),
	}
)

// Panels is the input of the three stacked charts.
type Panels struct {
	Caption    string
	Cumulative []contributions.CumulativePoint
	Monthly    []contributions.MonthlyTotal
	Weekday    [7]contributions.WeekdayTotal
}

// WriteFile renders p and writes the PNG to path, replacing any existing file.
func WriteFile(path string, p Panels) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Render(&buf, p); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Render draws the cumulative line chart, the monthly bar chart and the weekday
// pie chart stacked top to bottom under a caption banner, and encodes them as PNG.
func Render(w io.Writer, p Panels) error {
	line, err := renderCumulative(p.Cumulative)
	if err != nil {
		return fmt.Errorf("cumulative chart: %w", err)
	}
	bars, err := renderMonthly(p.Monthly)
	if err != nil {
		return fmt.Errorf("monthly chart: %w", err)
	}
	pie, err := renderWeekday(p.Weekday)
	if err != nil {
		return fmt.Errorf("weekday chart: %w", err)
	}
	return png.Encode(w, compose(p.Caption, line, bars, pie))
}

func renderCumulative(points []contributions.CumulativePoint) (image.Image, error) {
	if len(points) == 0 {
		return nil, contributions.ErrEmptyInput
	}
	xs := make([]time.Time, 0, len(points)+1)
	ys := make([]float64, 0, len(points)+1)
	for _, p := range points {
		xs = append(xs, p.Date)
		ys = append(ys, float64(p.Total))
	}
	// a single day would give a zero-width x range
	if len(xs) == 1 {
		xs = append(xs, xs[0].AddDate(0, 0, 1))
		ys = append(ys, ys[0])
	}
	ch := chart.Chart{
		Title:      "Cumulative GitHub Contributions Over Time",
		TitleStyle: chart.Style{FontSize: 16},
		Width:      PanelWidth,
		Height:     PanelHeight,
		Background: chart.Style{Padding: chart.Box{Top: 60, Left: 20, Right: 30, Bottom: 20}},
		XAxis:      chart.XAxis{Name: "Date", ValueFormatter: chart.TimeDateValueFormatter},
		YAxis: chart.YAxis{
			Name:           "Cumulative Contributions",
			Range:          &chart.ContinuousRange{Min: 0, Max: math.Max(ys[len(ys)-1], 1)},
			ValueFormatter: intFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Cumulative Contributions",
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: lineColor, StrokeWidth: 2},
			},
		},
	}
	return renderPNG(ch)
}

func renderMonthly(months []contributions.MonthlyTotal) (image.Image, error) {
	if len(months) == 0 {
		return nil, contributions.ErrEmptyInput
	}
	bars := make([]chart.Value, 0, len(months))
	top := 1.0
	for _, m := range months {
		top = math.Max(top, float64(m.Total))
		bars = append(bars, chart.Value{
			Label: m.Label(),
			Value: float64(m.Total),
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor, StrokeWidth: 1},
		})
	}
	slot := max((PanelWidth-160)/len(bars), 2)
	bc := chart.BarChart{
		Title:      "Monthly GitHub Contributions",
		TitleStyle: chart.Style{FontSize: 16},
		Width:      PanelWidth,
		Height:     PanelHeight,
		Background: chart.Style{Padding: chart.Box{Top: 60, Left: 20, Right: 30, Bottom: monthlyBottomPadding}},
		BarWidth:   max(slot*3/4, 1),
		BarSpacing: max(slot/4, 1),
		XAxis:      chart.Style{TextRotationDegrees: 90},
		YAxis: chart.YAxis{
			Name:           "Contributions",
			Range:          &chart.ContinuousRange{Min: 0, Max: top},
			ValueFormatter: intFormatter,
		},
		Bars: bars,
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// WeekdayValues builds the pie slices with percentage labels. Empty weekdays
// are omitted; an all-zero range yields a single placeholder slice.
func WeekdayValues(weekdays [7]contributions.WeekdayTotal) []chart.Value {
	total := 0
	for _, w := range weekdays {
		total += w.Total
	}
	var values []chart.Value
	for i, w := range weekdays {
		if w.Total == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", w.Weekday, 100*float64(w.Total)/float64(total)),
			Value: float64(w.Total),
			Style: chart.Style{FillColor: pieColors[i], StrokeColor: drawing.ColorWhite, StrokeWidth: 1},
		})
	}
	if len(values) == 0 {
		values = []chart.Value{{Label: "No contributions", Value: 1, Style: chart.Style{FillColor: chart.ColorAlternateGray}}}
	}
	return values
}

func renderWeekday(weekdays [7]contributions.WeekdayTotal) (image.Image, error) {
	// PieChart draws its title inside the circle's box, so the title goes in its own band.
	pc := chart.PieChart{
		Width:      PanelWidth,
		Height:     PanelHeight,
		Background: chart.Style{Padding: chart.Box{Top: pieTitleBand, Left: 5, Right: 5, Bottom: 5}},
		Values:     WeekdayValues(weekdays),
		Elements:   []chart.Renderable{titleBand("GitHub Contributions by Day of the Week", PanelWidth, pieTitleBand)},
	}
	var buf bytes.Buffer
	if err := pc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// titleBand draws a centered title within the top height pixels of the chart.
func titleBand(title string, width, height int) chart.Renderable {
	return func(r chart.Renderer, _ chart.Box, defaults chart.Style) {
		style := chart.Style{
			Font:                defaults.Font,
			FontSize:            16,
			FontColor:           chart.DefaultTextColor,
			TextHorizontalAlign: chart.TextHorizontalAlignCenter,
			TextVerticalAlign:   chart.TextVerticalAlignTop,
		}
		chart.Draw.TextWithin(r, title, chart.Box{Top: 15, Left: 0, Right: width, Bottom: height - 5}, style)
	}
}

func renderPNG(ch chart.Chart) (image.Image, error) {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

func intFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

// compose stacks the panels vertically on a white canvas below the caption.
func compose(caption string, panels ...image.Image) *image.RGBA {
	width, height := 0, BannerHeight
	for _, p := range panels {
		width = max(width, p.Bounds().Dx())
		height += p.Bounds().Dy()
	}
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	drawCaption(canvas, caption)

	y := BannerHeight
	for _, p := range panels {
		b := p.Bounds()
		draw.Draw(canvas, image.Rect(0, y, b.Dx(), y+b.Dy()), p, b.Min, draw.Over)
		y += b.Dy()
	}
	return canvas
}

func drawCaption(dst *image.RGBA, text string) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: dst, Src: image.NewUniform(color.RGBA{R: 40, G: 40, B: 40, A: 255}), Face: face}
	x := (dst.Bounds().Dx() - dr.MeasureString(text).Ceil()) / 2
	if x < 8 {
		x = 8
	}
	y := (BannerHeight + face.Metrics().Ascent.Ceil()) / 2
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
}
