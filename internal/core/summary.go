package core

import (
	"strings"
	"time"
)

const (
	Within   BudgetStatus = "Within"
	Exceeded BudgetStatus = "Exceeded"
)

const (
	EventCreated EventOp = "created"
	EventUpdated EventOp = "updated"
	EventDeleted EventOp = "deleted"
)

type (
	BudgetStatus string
	EventOp      string

	// AggregationRow is a total per category. Derived on demand, never stored.
	AggregationRow struct {
		Category string
		Total    Money
	}

	// BudgetGoal is a spending limit for one category.
	BudgetGoal struct {
		Category string
		Limit    Money
	}

	BudgetResult struct {
		Category   string
		TotalSpent Money
		Limit      Money
		Status     BudgetStatus
	}

	// Table is the hand-off shape for export and rendering collaborators.
	Table struct {
		Headers []string
		Rows    [][]string
	}

	// LedgerEvent notifies that a user's transaction set changed.
	LedgerEvent struct {
		Op            EventOp
		UserID        UserID
		TransactionID TransactionID
		At            time.Time
	}
)

// ParseBudgetGoal validates raw budget input. A zero limit is allowed.
func ParseBudgetGoal(category, limit string) (BudgetGoal, error) {
	category = strings.TrimSpace(category)
	if err := validateCategory(category); err != nil {
		return BudgetGoal{}, err
	}
	m, err := ParseLimit(limit)
	if err != nil {
		return BudgetGoal{}, err
	}
	return BudgetGoal{Category: category, Limit: m}, nil
}
