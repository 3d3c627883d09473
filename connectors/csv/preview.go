package csv

import (
	"fmt"
	"io"
	"strconv"

	"contrib-stats/domain/contributions"
)

// WritePreview prints the first n rows of the cumulative table as an aligned,
// row-indexed text table.
func WritePreview(w io.Writer, points []contributions.CumulativePoint, n int) error {
	if n > len(points) {
		n = len(points)
	}
	if n < 0 {
		n = 0
	}
	rows := points[:n]

	idxW := len(strconv.Itoa(max(n-1, 0)))
	dateW := max(len(dateColumn), len(contributions.DateLayout))
	totalW := len(cumulativeColumn)
	for _, p := range rows {
		totalW = max(totalW, len(strconv.Itoa(p.Total)))
	}

	if _, err := fmt.Fprintf(w, "%*s  %*s  %*s\n", idxW, "", dateW, dateColumn, totalW, cumulativeColumn); err != nil {
		return err
	}
	for i, p := range rows {
		if _, err := fmt.Fprintf(w, "%*d  %*s  %*d\n", idxW, i, dateW, p.Date.Format(contributions.DateLayout), totalW, p.Total); err != nil {
			return err
		}
	}
	return nil
}
