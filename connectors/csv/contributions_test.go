package csv

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"contrib-stats/domain/contributions"
	gh "contrib-stats/domain/github"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDecodeContributions(t *testing.T) {
	in := "Date,Contributions\n2024-01-01,3\n2024-01-03, 2\n"
	got, err := DecodeContributions(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []contributions.Record{
		{Date: day(2024, 1, 1), Contributions: 3},
		{Date: day(2024, 1, 3), Contributions: 2},
	}, got)
}

func TestDecodeContributionsColumnOrderAndCase(t *testing.T) {
	in := "contributions,extra,DATE\n5,x,2024-02-02\n"
	got, err := DecodeContributions(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []contributions.Record{{Date: day(2024, 2, 2), Contributions: 5}}, got)
}

func TestDecodeContributionsErrors(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		line   int
		column string
	}{
		{name: "bad date", in: "Date,Contributions\n2024-01-01,1\nyesterday,2\n", line: 3, column: "Date"},
		{name: "non numeric", in: "Date,Contributions\n2024-01-01,many\n", line: 2, column: "Contributions"},
		{name: "negative", in: "Date,Contributions\n2024-01-01,-1\n", line: 2, column: "Contributions"},
		{name: "missing column", in: "Date,Count\n2024-01-01,1\n", line: 1, column: "Contributions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeContributions(strings.NewReader(tt.in))
			var pe *contributions.ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.line, pe.Line)
			assert.Equal(t, tt.column, pe.Column)
		})
	}
}

func TestDecodeContributionsByteOrderMark(t *testing.T) {
	in := "\ufeffDate,Contributions\n2024-01-01,3\n"
	got, err := DecodeContributions(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []contributions.Record{{Date: day(2024, 1, 1), Contributions: 3}}, got)
}

func TestReadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffDate,Contributions\n2024-01-01,3\n2024-01-02,0\n"), 0o644))

	rows, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []map[string]string{
		{"Date": "2024-01-01", "Contributions": "3"},
		{"Date": "2024-01-02", "Contributions": "0"},
	}, rows)

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	rows, err = ReadTable(empty)
	require.NoError(t, err)
	assert.Empty(t, rows)

	ragged := filepath.Join(t.TempDir(), "ragged.csv")
	require.NoError(t, os.WriteFile(ragged, []byte("Date,Contributions\n2024-01-01\n"), 0o644))
	_, err = ReadTable(ragged)
	assert.Error(t, err)
}

func TestDecodeContributionsHeaderOnly(t *testing.T) {
	got, err := DecodeContributions(strings.NewReader("Date,Contributions\n"))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = DecodeContributions(strings.NewReader(""))
	assert.ErrorIs(t, err, contributions.ErrEmptyInput)
}

func TestReadContributionsMissingFile(t *testing.T) {
	_, err := ReadContributions(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteContributionsSortsAndSkipsEmpty(t *testing.T) {
	days := map[string]int{}
	MergeDays(days, []gh.ContributionDay{
		{Date: "2024-01-03", ContributionCount: 2},
		{Date: "2024-01-01", ContributionCount: 1},
		{Date: "2024-01-02", ContributionCount: 0},
		{Date: "", ContributionCount: 9},
	})
	MergeDays(days, []gh.ContributionDay{{Date: "2024-01-01", ContributionCount: 3}})

	path := filepath.Join(t.TempDir(), "contributions.csv")
	n, err := WriteContributions(path, days)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Contributions\n2024-01-01,3\n2024-01-03,2\n", string(b))
	assert.NoError(t, VerifyContributions(path))
}

func TestVerifyContributionsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contributions.csv")
	require.NoError(t, os.WriteFile(path, []byte("day,count\n"), 0o644))
	assert.Error(t, VerifyContributions(path))

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	assert.Error(t, VerifyContributions(path))
}

func TestWriteCumulativeOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("stale\n", 50)), 0o644))

	points := []contributions.CumulativePoint{
		{Date: day(2024, 1, 1), Total: 3},
		{Date: day(2024, 1, 2), Total: 3},
		{Date: day(2024, 1, 3), Total: 5},
	}
	require.NoError(t, WriteCumulative(path, points))
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Cumulative Contributions\n2024-01-01,3\n2024-01-02,3\n2024-01-03,5\n", string(first))

	require.NoError(t, WriteCumulative(path, points))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	rows, err := ReadTable(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, map[string]string{"Date": "2024-01-03", "Cumulative Contributions": "5"}, rows[2])
}

func TestWritePreview(t *testing.T) {
	var points []contributions.CumulativePoint
	for i := 0; i < 12; i++ {
		points = append(points, contributions.CumulativePoint{Date: day(2024, 1, 1).AddDate(0, 0, i), Total: i * 100})
	}

	var buf bytes.Buffer
	require.NoError(t, WritePreview(&buf, points, 10))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "         Date  Cumulative Contributions", lines[0])
	assert.Equal(t, "0  2024-01-01                         0", lines[1])
	assert.Equal(t, "9  2024-01-10                       900", lines[10])

	buf.Reset()
	require.NoError(t, WritePreview(&buf, points[:2], 10))
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))
}
