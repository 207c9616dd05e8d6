package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store/memory"
)

type recordingExporter struct {
	tables map[string]core.Table
	err    error
}

func (e *recordingExporter) Export(_ context.Context, t core.Table, dest string) error {
	if e.err != nil {
		return e.err
	}
	if e.tables == nil {
		e.tables = map[string]core.Table{}
	}
	e.tables[dest] = t
	return nil
}

func seededReports(t *testing.T) (*ReportService, *Ledger) {
	t.Helper()
	ctx := context.Background()
	l := NewLedger(memory.New(), nil)
	for _, in := range []core.TransactionInput{
		mustInput(t, "Expense", "Food", "30", "2024-03-01"),
		mustInput(t, "Expense", "Food", "20", "2024-03-02"),
		mustInput(t, "Income", "Salary", "1000", "2024-03-03"),
	} {
		if _, err := l.AddTransaction(ctx, 1, in); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	// Another user's spending must never leak into user 1's reports.
	_, _ = l.AddTransaction(ctx, 2, mustInput(t, "Expense", "Food", "999", "2024-03-01"))
	return NewReportService(l), l
}

func TestCategoryReport(t *testing.T) {
	rs, _ := seededReports(t)

	rows, err := rs.CategoryReport(context.Background(), 1, core.OnlyKind(core.Expense))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(rows) != 1 || rows[0].Category != "Food" || rows[0].Total.String() != "50.00" {
		t.Fatalf("unexpected rows %+v", rows)
	}

	rows, _ = rs.CategoryReport(context.Background(), 3, core.AllKinds())
	if rows == nil || len(rows) != 0 {
		t.Fatalf("empty ledger should give an empty report, got %#v", rows)
	}
}

func TestReportReflectsLatestEdit(t *testing.T) {
	ctx := context.Background()
	rs, l := seededReports(t)

	list, _ := l.ListTransactions(ctx, 1, core.OnlyKind(core.Expense))
	amount := core.Money{Cents: 100}
	if _, err := l.EditTransaction(ctx, 1, list[0].ID, core.TransactionPatch{Amount: &amount}); err != nil {
		t.Fatalf("edit: %v", err)
	}

	rows, _ := rs.CategoryReport(ctx, 1, core.OnlyKind(core.Expense))
	if rows[0].Total.String() != "21.00" {
		t.Fatalf("report not recomputed after edit: %+v", rows)
	}
}

func TestCheckBudget(t *testing.T) {
	ctx := context.Background()
	rs, _ := seededReports(t)

	tests := []struct {
		limit string
		want  core.BudgetStatus
	}{
		{"50.00", core.Within},
		{"49.99", core.Exceeded},
		{"0", core.Exceeded},
	}
	for _, tt := range tests {
		goal, err := core.ParseBudgetGoal("Food", tt.limit)
		if err != nil {
			t.Fatalf("goal %s: %v", tt.limit, err)
		}
		res, err := rs.CheckBudget(ctx, 1, goal)
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if res.Status != tt.want || res.TotalSpent.Cents != 5000 {
			t.Errorf("limit %s: got %+v, want %s", tt.limit, res, tt.want)
		}
	}
}

func TestExportReportAndTransactions(t *testing.T) {
	ctx := context.Background()
	rs, _ := seededReports(t)
	exp := &recordingExporter{}

	if err := rs.ExportReport(ctx, 1, core.OnlyKind(core.Expense), exp, "march"); err != nil {
		t.Fatalf("export report: %v", err)
	}
	tbl := exp.tables["march"]
	if len(tbl.Rows) != 1 || tbl.Rows[0][0] != "Food" || tbl.Rows[0][1] != "50.00" {
		t.Fatalf("unexpected report table %+v", tbl)
	}

	if err := rs.ExportTransactions(ctx, 1, exp, "all"); err != nil {
		t.Fatalf("export transactions: %v", err)
	}
	if got := len(exp.tables["all"].Rows); got != 3 {
		t.Fatalf("expected 3 transaction rows, got %d", got)
	}
}

func TestExportFailurePropagates(t *testing.T) {
	rs, _ := seededReports(t)
	exp := &recordingExporter{err: errors.Join(core.ErrExportFailed, errors.New("read-only file system"))}

	err := rs.ExportReport(context.Background(), 1, core.AllKinds(), exp, "x")
	if !errors.Is(err, core.ErrExportFailed) {
		t.Fatalf("expected ErrExportFailed, got %v", err)
	}
}
