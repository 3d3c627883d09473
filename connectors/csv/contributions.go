package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"contrib-stats/domain/contributions"
	gh "contrib-stats/domain/github"
)

const (
	dateColumn         = "Date"
	contributionColumn = "Contributions"
	cumulativeColumn   = "Cumulative Contributions"
)

// bom is the UTF-8 byte order mark spreadsheet exports put in front of the header.
const bom = "\ufeff"

var errNegative = errors.New("negative contribution count")

// ReadContributions loads the Date/Contributions table at path. Rows are returned
// in file order; gap filling is left to contributions.Normalize.
func ReadContributions(path string) ([]contributions.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open contributions: %w", err)
	}
	defer f.Close()
	return DecodeContributions(f)
}

// DecodeContributions parses a contributions table from r.
func DecodeContributions(r io.Reader) ([]contributions.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	head, err := readHeader(cr)
	if errors.Is(err, io.EOF) {
		return nil, contributions.ErrEmptyInput
	}
	if err != nil {
		return nil, err
	}
	idx := indexMap(head)
	for _, col := range []string{dateColumn, contributionColumn} {
		if _, ok := idx[strings.ToLower(col)]; !ok {
			return nil, &contributions.ParseError{Line: 1, Column: col, Err: errors.New("missing column")}
		}
	}
	dateIdx := idx[strings.ToLower(dateColumn)]
	countIdx := idx[strings.ToLower(contributionColumn)]

	var out []contributions.Record
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		d, err := contributions.ParseDate(rec[dateIdx])
		if err != nil {
			return nil, &contributions.ParseError{Line: line, Column: dateColumn, Value: rec[dateIdx], Err: err}
		}
		n, err := strconv.Atoi(strings.TrimSpace(rec[countIdx]))
		if err == nil && n < 0 {
			err = errNegative
		}
		if err != nil {
			return nil, &contributions.ParseError{Line: line, Column: contributionColumn, Value: rec[countIdx], Err: err}
		}
		out = append(out, contributions.Record{Date: d, Contributions: n})
	}
	return out, nil
}

// WriteContributions writes the imported calendar days as a Date/Contributions table
// sorted by date. Days without contributions or without a date are skipped.
func WriteContributions(path string, days map[string]int) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{dateColumn, contributionColumn}); err != nil {
		return 0, err
	}
	dates := make([]string, 0, len(days))
	for d, n := range days {
		if d == "" || n == 0 {
			continue
		}
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		if err := w.Write([]string{d, strconv.Itoa(days[d])}); err != nil {
			return 0, err
		}
	}
	w.Flush()
	return len(dates), w.Error()
}

// MergeDays folds calendar days into a date-keyed map. Later days overwrite earlier ones.
func MergeDays(into map[string]int, days []gh.ContributionDay) {
	for _, d := range days {
		into[d.Date] = d.ContributionCount
	}
}

// VerifyContributions checks that the file at path is non-empty and starts with
// the Date,Contributions header.
func VerifyContributions(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("%s is empty", path)
	}
	if len(records[0]) != 2 || records[0][0] != dateColumn || records[0][1] != contributionColumn {
		return fmt.Errorf("%s header is %q, want %q", path, records[0], []string{dateColumn, contributionColumn})
	}
	return nil
}

// WriteCumulative writes the Date/Cumulative Contributions table to path,
// replacing any existing file.
func WriteCumulative(path string, points []contributions.CumulativePoint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeCumulative(f, points); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// EncodeCumulative writes the cumulative table as CSV to w.
func EncodeCumulative(w io.Writer, points []contributions.CumulativePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{dateColumn, cumulativeColumn}); err != nil {
		return err
	}
	for _, p := range points {
		if err := cw.Write([]string{p.Date.Format(contributions.DateLayout), strconv.Itoa(p.Total)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTable loads a headed CSV file as one map per row keyed by column name.
// Values stay strings; the web API serves them as read.
func ReadTable(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true
	head, err := readHeader(cr)
	if errors.Is(err, io.EOF) {
		return []map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	rows := []map[string]string{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(head))
		for i, col := range head {
			row[col] = rec[i]
		}
		rows = append(rows, row)
	}
}

func readHeader(cr *csv.Reader) ([]string, error) {
	head, err := cr.Read()
	if err != nil {
		return nil, err
	}
	head[0] = strings.TrimPrefix(head[0], bom)
	return head, nil
}

func indexMap(headers []string) map[string]int {
	m := map[string]int{}
	for i, h := range headers {
		m[strings.TrimSpace(strings.ToLower(h))] = i
	}
	return m
}
