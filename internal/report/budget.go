package report

import "fintrack/internal/core"

// CheckBudget compares the Expense total of category against limit.
// Spending exactly the limit is still Within.
func CheckBudget(txs []core.Transaction, category string, limit core.Money) core.BudgetResult {
	var spent core.Money
	for _, tx := range txs {
		if tx.Kind == core.Expense && tx.Category == category {
			spent = spent.Add(tx.Amount)
		}
	}
	status := core.Within
	if spent.Cents > limit.Cents {
		status = core.Exceeded
	}
	return core.BudgetResult{
		Category:   category,
		TotalSpent: spent,
		Limit:      limit,
		Status:     status,
	}
}
