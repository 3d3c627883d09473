package visualize

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"contrib-stats/domain/contributions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func optionsIn(t *testing.T, input string) (Options, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "contributions.csv")
	require.NoError(t, os.WriteFile(in, []byte(input), 0o644))
	var stdout bytes.Buffer
	return Options{
		Input:       in,
		Output:      filepath.Join(dir, "cumulative_contributions_table.csv"),
		Charts:      filepath.Join(dir, "contribution_charts.png"),
		PreviewRows: 10,
		Stdout:      &stdout,
	}, &stdout
}

func TestExecuteGapExample(t *testing.T) {
	opts, stdout := optionsIn(t, "Date,Contributions\n2024-01-01,3\n2024-01-03,2\n")

	rep, err := Execute(opts)
	require.NoError(t, err)
	assert.Len(t, rep.Series, 3)
	assert.Equal(t, 0, rep.Series[1].Contributions)

	out, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	assert.Equal(t, "Date,Cumulative Contributions\n2024-01-01,3\n2024-01-02,3\n2024-01-03,5\n", string(out))

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Cumulative Contributions")
	assert.True(t, strings.HasPrefix(lines[3], "2  2024-01-03"))

	info, err := os.Stat(opts.Charts)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExecuteIsIdempotent(t *testing.T) {
	var b strings.Builder
	b.WriteString("Date,Contributions\n")
	start := time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i += 3 {
		b.WriteString(start.AddDate(0, 0, i).Format(contributions.DateLayout))
		b.WriteString(",")
		b.WriteString(strconv.Itoa(1 + i%9))
		b.WriteString("\n")
	}
	opts, stdout := optionsIn(t, b.String())

	_, err := Execute(opts)
	require.NoError(t, err)
	first, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	firstPreview := stdout.String()

	stdout.Reset()
	_, err = Execute(opts)
	require.NoError(t, err)
	second, err := os.ReadFile(opts.Output)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstPreview, stdout.String())
	assert.Equal(t, 11, strings.Count(firstPreview, "\n"))
}

func TestExecuteFailuresWriteNothing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, err error)
	}{
		{
			name:  "header only",
			input: "Date,Contributions\n",
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, contributions.ErrEmptyInput) },
		},
		{
			name:  "bad date",
			input: "Date,Contributions\nnot-a-date,1\n",
			check: func(t *testing.T, err error) {
				var pe *contributions.ParseError
				assert.True(t, errors.As(err, &pe))
			},
		},
		{
			name:  "non numeric",
			input: "Date,Contributions\n2024-01-01,three\n",
			check: func(t *testing.T, err error) {
				var pe *contributions.ParseError
				assert.True(t, errors.As(err, &pe))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, stdout := optionsIn(t, tt.input)
			_, err := Execute(opts)
			require.Error(t, err)
			tt.check(t, err)

			assert.NoFileExists(t, opts.Output)
			assert.NoFileExists(t, opts.Charts)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestExecuteMissingInput(t *testing.T) {
	opts, _ := optionsIn(t, "")
	opts.Input = filepath.Join(filepath.Dir(opts.Input), "absent.csv")

	_, err := Execute(opts)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, opts.Output)
}

func TestRunRejectsExtraArguments(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "none.yml"))
	assert.Error(t, Run([]string{"extra"}))
}

func TestCaption(t *testing.T) {
	rep, err := Build([]contributions.Record{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Contributions: 3},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Contributions: 2},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"octocat: 2024-01-01 to 2024-01-03 | 5 contributions | 2 active days of 3 | best day 2024-01-01 (3) | longest streak 1 days",
		Caption("octocat", rep.Summary))
}
