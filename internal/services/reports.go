package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/report"
)

// ReportService derives summaries from the current transaction set. Nothing
// it returns is stored; every call reads the ledger again.
type ReportService struct {
	ledger *Ledger
}

func NewReportService(ledger *Ledger) *ReportService {
	return &ReportService{ledger: ledger}
}

// CategoryReport totals the user's transactions per category.
func (s *ReportService) CategoryReport(ctx context.Context, userID core.UserID, filter core.KindFilter) ([]core.AggregationRow, error) {
	txs, err := s.ledger.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return report.AggregateByCategory(txs, filter), nil
}

// CheckBudget compares the user's spending in goal.Category with goal.Limit.
func (s *ReportService) CheckBudget(ctx context.Context, userID core.UserID, goal core.BudgetGoal) (core.BudgetResult, error) {
	txs, err := s.ledger.ListTransactions(ctx, userID, core.OnlyKind(core.Expense))
	if err != nil {
		return core.BudgetResult{}, err
	}
	return report.CheckBudget(txs, goal.Category, goal.Limit), nil
}

// ExportReport hands the category report to exporter under dest.
func (s *ReportService) ExportReport(ctx context.Context, userID core.UserID, filter core.KindFilter, exporter export.Exporter, dest string) error {
	rows, err := s.CategoryReport(ctx, userID, filter)
	if err != nil {
		return err
	}
	if err := exporter.Export(ctx, report.ToTable(rows), dest); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	slog.InfoContext(ctx, "Report exported", "user_id", userID, "kind", filter, "destination", dest, "rows", len(rows))
	return nil
}

// ExportTransactions hands every transaction of the user to exporter under dest.
func (s *ReportService) ExportTransactions(ctx context.Context, userID core.UserID, exporter export.Exporter, dest string) error {
	txs, err := s.ledger.ListTransactions(ctx, userID, core.AllKinds())
	if err != nil {
		return err
	}
	if err := exporter.Export(ctx, report.TransactionsTable(txs), dest); err != nil {
		return fmt.Errorf("export transactions: %w", err)
	}
	slog.InfoContext(ctx, "Transactions exported", "user_id", userID, "destination", dest, "rows", len(txs))
	return nil
}
