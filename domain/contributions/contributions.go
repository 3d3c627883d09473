package contributions

import (
	"errors"
	"fmt"
	"strings"
	"time"

	lo "github.com/samber/lo"
)

// DateLayout is the calendar-day layout used for every date read or written by the tool.
const DateLayout = "2006-01-02"

var (
	// ErrEmptyInput is returned when there is no record to derive a date range from.
	ErrEmptyInput = errors.New("contributions: input has no data rows")
	// ErrDuplicateDate is returned when the same calendar day appears twice in the input.
	ErrDuplicateDate = errors.New("contributions: duplicate date")
)

// ParseError reports a value of the input table that could not be interpreted.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: column %q: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Record is one row of the input file.
type Record struct {
	Date          time.Time
	Contributions int
}

// Day is one entry of a DailySeries.
type Day struct {
	Date          time.Time
	Contributions int
}

// DailySeries holds exactly one Day per calendar day between its first and last
// date, in ascending order.
type DailySeries []Day

// CumulativePoint is the running total of contributions up to and including Date.
type CumulativePoint struct {
	Date  time.Time
	Total int
}

// MonthlyTotal is the sum of contributions within one calendar month.
type MonthlyTotal struct {
	Year  int
	Month time.Month
	Total int
}

// Label formats the month as YYYY-MM.
func (m MonthlyTotal) Label() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// WeekdayTotal is the sum of contributions that fell on Weekday.
type WeekdayTotal struct {
	Weekday time.Weekday
	Total   int
}

// Weekdays lists the weekday buckets in reporting order.
var Weekdays = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// DayOf truncates t to its calendar day in UTC.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var dateLayouts = []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006/01/02"}

// ParseDate accepts an ISO-8601 date (optionally with a time part) and returns its calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return DayOf(t), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Normalize expands records to every calendar day between the earliest and the
// latest record. Days without a record get a count of zero.
func Normalize(records []Record) (DailySeries, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}
	counts := make(map[time.Time]int, len(records))
	first := DayOf(records[0].Date)
	last := first
	for _, r := range records {
		d := DayOf(r.Date)
		if _, ok := counts[d]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, d.Format(DateLayout))
		}
		counts[d] = r.Contributions
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	series := make(DailySeries, 0, daysBetween(first, last)+1)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		series = append(series, Day{Date: d, Contributions: counts[d]})
	}
	return series, nil
}

// daysBetween assumes both dates are UTC midnights.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// Total sums every day of the series.
func Total(series DailySeries) int {
	return lo.SumBy(series, func(d Day) int { return d.Contributions })
}

// Cumulative returns the running total for each day of the series.
func Cumulative(series DailySeries) []CumulativePoint {
	out := make([]CumulativePoint, 0, len(series))
	running := 0
	for _, d := range series {
		running += d.Contributions
		out = append(out, CumulativePoint{Date: d.Date, Total: running})
	}
	return out
}

// Monthly folds the series into per-month totals, oldest month first.
func Monthly(series DailySeries) []MonthlyTotal {
	return lo.Reduce(series, func(acc []MonthlyTotal, d Day, _ int) []MonthlyTotal {
		y, m := d.Date.Year(), d.Date.Month()
		if n := len(acc); n > 0 && acc[n-1].Year == y && acc[n-1].Month == m {
			acc[n-1].Total += d.Contributions
			return acc
		}
		return append(acc, MonthlyTotal{Year: y, Month: m, Total: d.Contributions})
	}, []MonthlyTotal{})
}

// ByWeekday folds the series into seven buckets, Monday first.
func ByWeekday(series DailySeries) [7]WeekdayTotal {
	var init [7]WeekdayTotal
	for i, wd := range Weekdays {
		init[i].Weekday = wd
	}
	return lo.Reduce(series, func(acc [7]WeekdayTotal, d Day, _ int) [7]WeekdayTotal {
		acc[weekdayIndex(d.Date.Weekday())].Total += d.Contributions
		return acc
	}, init)
}

// weekdayIndex maps Sunday=0..Saturday=6 to Monday=0..Sunday=6.
func weekdayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
