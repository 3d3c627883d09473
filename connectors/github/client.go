package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	gh "contrib-stats/domain/github"

	"golang.org/x/oauth2"
)

// Package github provides a minimal GitHub connector used by the importer.
// It reads contribution calendars through the GraphQL API and handles rate
// limiting and auth.

const (
	githubGraphQLEndpoint = "https://api.github.com/graphql"
	rateSafetyMargin      = 2 * time.Second
	maxRateLimitSleep     = 1 * time.Hour
)

const contributionsQuery = `query($login:String!, $from:DateTime!, $to:DateTime!){
  user(login:$login){
    contributionsCollection(from:$from, to:$to){
      contributionCalendar{
        totalContributions
        weeks{
          contributionDays{
            date
            contributionCount
          }
        }
      }
    }
  }
}`

// Client is a thin wrapper over an oauth2-authenticated http.Client.
// Use New to construct it.
type Client struct {
	c        *http.Client
	endpoint string
	sleep    func(context.Context, time.Duration) error
}

// New returns a Client authenticating with token. A nil base client gets a
// 30s timeout.
func New(base *http.Client, token string) *Client {
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	c := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	c.Timeout = base.Timeout
	return &Client{c: c, endpoint: githubGraphQLEndpoint, sleep: sleepContext}
}

// WithEndpoint points the client at another GraphQL endpoint.
func (hc *Client) WithEndpoint(url string) *Client {
	hc.endpoint = url
	return hc
}

func (hc *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	for {
		resp, err := hc.c.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0" {
			reset := resp.Header.Get("X-RateLimit-Reset")
			_ = drainAndClose(resp.Body)
			if reset != "" {
				if sec, err := strconv.ParseInt(reset, 10, 64); err == nil {
					wait := time.Until(time.Unix(sec, 0)) + rateSafetyMargin
					if wait > 0 {
						slog.Warn("rate.limit.sleep", "wait", wait, "resetAt", time.Unix(sec, 0))
						if err := hc.sleep(ctx, wait); err != nil {
							return nil, err
						}
					}
					if req.GetBody != nil {
						body, err := req.GetBody()
						if err != nil {
							return nil, err
						}
						req.Body = body
					}
					if err := ctx.Err(); err != nil {
						return nil, err
					}
					continue
				}
			}
			return nil, errors.New("rate limited by GitHub API")
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}
		// read body for diagnostics and return error
		b, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("github API %s %s returned %d: %s", req.Method, req.URL.String(), resp.StatusCode, string(b))
	}
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, rc)
	return rc.Close()
}

// rateLimitWait inspects GraphQL error messages for rate limit hints and returns
// how long to wait before retrying, capped at one hour. ok is false when the
// errors are not about rate limiting.
func rateLimitWait(resp *http.Response, messages []string) (wait time.Duration, ok bool) {
	if resp == nil {
		return 0, false
	}
	for _, m := range messages {
		if strings.Contains(strings.ToLower(m), "rate limit") {
			ok = true
			break
		}
	}
	if !ok {
		return 0, false
	}
	wait = maxRateLimitSleep
	if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
		if sec, err := strconv.ParseInt(reset, 10, 64); err == nil {
			until := time.Until(time.Unix(sec, 0)) + rateSafetyMargin
			if until > 0 && until < wait {
				wait = until
			}
			if until <= 0 {
				wait = 5 * time.Second
			}
		}
	}
	return wait, true
}

// ContributionCalendar fetches the contribution calendar of login for one window.
// The window must not exceed one year.
func (hc *Client) ContributionCalendar(ctx context.Context, login string, w gh.Window) (gh.ContributionCalendar, error) {
	slog.Debug("phase.calendar.fetch.start", "login", login, "from", w.From, "to", w.To)
	vars := map[string]any{
		"login": login,
		"from":  w.From.UTC().Format(time.RFC3339),
		"to":    w.To.UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(map[string]any{"query": contributionsQuery, "variables": vars})
	if err != nil {
		return gh.ContributionCalendar{}, err
	}
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, hc.endpoint, bytes.NewReader(body))
		if err != nil {
			return gh.ContributionCalendar{}, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		resp, err := hc.do(ctx, req)
		if err != nil {
			return gh.ContributionCalendar{}, err
		}
		var out struct {
			Data struct {
				User *struct {
					ContributionsCollection struct {
						ContributionCalendar gh.ContributionCalendar `json:"contributionCalendar"`
					} `json:"contributionsCollection"`
				} `json:"user"`
			} `json:"data"`
			Errors []struct{ Message string } `json:"errors"`
		}
		err = json.NewDecoder(resp.Body).Decode(&out)
		_ = resp.Body.Close()
		if err != nil {
			return gh.ContributionCalendar{}, fmt.Errorf("decode calendar: %w", err)
		}
		if len(out.Errors) > 0 {
			msgs := make([]string, 0, len(out.Errors))
			for _, e := range out.Errors {
				msgs = append(msgs, e.Message)
			}
			if wait, ok := rateLimitWait(resp, msgs); ok {
				slog.Warn("graphql.rate.limit.sleep", "sleep", wait, "resetAt", resp.Header.Get("X-RateLimit-Reset"))
				if err := hc.sleep(ctx, wait); err != nil {
					return gh.ContributionCalendar{}, err
				}
				continue
			}
			return gh.ContributionCalendar{}, fmt.Errorf("graphql: %s", out.Errors[0].Message)
		}
		if out.Data.User == nil {
			return gh.ContributionCalendar{}, fmt.Errorf("graphql: user %q not found", login)
		}
		cal := out.Data.User.ContributionsCollection.ContributionCalendar
		slog.Debug("phase.calendar.fetch.done", "login", login, "weeks", len(cal.Weeks), "total", cal.TotalContributions)
		return cal, nil
	}
}
