package report

import (
	"strconv"

	"fintrack/internal/core"
)

var (
	ReportHeaders      = []string{"category", "total_amount"}
	TransactionHeaders = []string{"id", "kind", "category", "amount", "date"}
)

// ToTable flattens aggregation rows for export and chart collaborators.
func ToTable(rows []core.AggregationRow) core.Table {
	t := core.Table{
		Headers: append([]string(nil), ReportHeaders...),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Category, r.Total.String()})
	}
	return t
}

// TransactionsTable flattens a user's transactions. The owner id is left out.
func TransactionsTable(txs []core.Transaction) core.Table {
	t := core.Table{
		Headers: append([]string(nil), TransactionHeaders...),
		Rows:    make([][]string, 0, len(txs)),
	}
	for _, tx := range txs {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(int64(tx.ID), 10),
			tx.Kind.String(),
			tx.Category,
			tx.Amount.String(),
			tx.Date.String(),
		})
	}
	return t
}
