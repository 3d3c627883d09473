package contributions

import (
	"time"

	lo "github.com/samber/lo"
)

// Summary condenses a DailySeries into headline figures for logs and chart captions.
type Summary struct {
	First         time.Time
	Last          time.Time
	Days          int
	ActiveDays    int
	Total         int
	BestDay       Day
	LongestStreak int
}

// Summarize computes the Summary of a non-empty series. An empty series yields the zero Summary.
func Summarize(series DailySeries) Summary {
	if len(series) == 0 {
		return Summary{}
	}
	s := Summary{
		First:      series[0].Date,
		Last:       series[len(series)-1].Date,
		Days:       len(series),
		ActiveDays: lo.CountBy(series, func(d Day) bool { return d.Contributions > 0 }),
		Total:      Total(series),
		// ties keep the earliest day
		BestDay: lo.MaxBy(series, func(a, b Day) bool { return a.Contributions > b.Contributions }),
	}
	streak := 0
	for _, d := range series {
		if d.Contributions == 0 {
			streak = 0
			continue
		}
		streak++
		if streak > s.LongestStreak {
			s.LongestStreak = streak
		}
	}
	return s
}
