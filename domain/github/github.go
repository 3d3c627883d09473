package github

import "time"

// ContributionDay is a single cell of a user's contribution calendar.
type ContributionDay struct {
	Date              string `json:"date"`
	ContributionCount int    `json:"contributionCount"`
}

// Week groups the days of one calendar column (Sunday to Saturday).
type Week struct {
	ContributionDays []ContributionDay `json:"contributionDays"`
}

// ContributionCalendar is the calendar returned for one contributionsCollection window.
type ContributionCalendar struct {
	TotalContributions int    `json:"totalContributions"`
	Weeks              []Week `json:"weeks"`
}

// Days flattens the calendar weeks in the order GitHub returned them.
func (c ContributionCalendar) Days() []ContributionDay {
	var out []ContributionDay
	for _, w := range c.Weeks {
		out = append(out, w.ContributionDays...)
	}
	return out
}

// Window is a [From, To] time range queried in a single contributionsCollection call.
// GitHub rejects ranges longer than one year.
type Window struct {
	From time.Time
	To   time.Time
}

// YearWindows returns n consecutive one-year windows ending at now, newest first.
func YearWindows(now time.Time, n int) []Window {
	out := make([]Window, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Window{From: now.AddDate(-i-1, 0, 0), To: now.AddDate(-i, 0, 0)})
	}
	return out
}
