// Package chart draws category totals as horizontal text bars.
package chart

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

const defaultWidth = 40

// TextRenderer writes one line per category: name, a bar proportional to
// the category's share of the grand total, the share and the amount.
type TextRenderer struct {
	// Width is the length of a 100% bar. Zero means 40.
	Width int
	Bar   rune
}

func (r TextRenderer) Render(w io.Writer, rows []core.AggregationRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no transactions to chart")
		return err
	}

	width := r.Width
	if width <= 0 {
		width = defaultWidth
	}
	bar := r.Bar
	if bar == 0 {
		bar = '#'
	}

	total := report.GrandTotal(rows)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		share := 0.0
		if total.Cents > 0 {
			share = float64(row.Total.Cents) / float64(total.Cents)
		}
		n := int(share*float64(width) + 0.5)
		if n == 0 && row.Total.Cents > 0 {
			n = 1
		}
		fmt.Fprintf(tw, "%s\t%s\t%5.1f%%\t%s\n",
			row.Category,
			strings.Repeat(string(bar), n),
			share*100,
			row.Total.String())
	}
	fmt.Fprintf(tw, "total\t\t\t%s\n", total.String())
	return tw.Flush()
}
