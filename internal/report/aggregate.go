// Package report turns transaction sets into category totals, budget
// verdicts and flat tables. Everything here is pure: totals are always
// recomputed from the transactions passed in.
package report

import "fintrack/internal/core"

// AggregateByCategory sums the amounts of transactions matching filter,
// one row per category in first-seen order. Categories without a matching
// transaction produce no row; an empty input yields an empty slice.
func AggregateByCategory(txs []core.Transaction, filter core.KindFilter) []core.AggregationRow {
	rows := make([]core.AggregationRow, 0)
	index := make(map[string]int)
	for _, tx := range txs {
		if !filter.Match(tx.Kind) {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(rows)
			index[tx.Category] = i
			rows = append(rows, core.AggregationRow{Category: tx.Category})
		}
		rows[i].Total = rows[i].Total.Add(tx.Amount)
	}
	return rows
}

// GrandTotal sums every row.
func GrandTotal(rows []core.AggregationRow) core.Money {
	var total core.Money
	for _, r := range rows {
		total = total.Add(r.Total)
	}
	return total
}
