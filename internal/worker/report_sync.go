// Package worker reacts to ledger events delivered over AMQP.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/services"
)

// ReportSync keeps an exported copy of each user's expense report in step
// with the ledger. It always re-reads the ledger, so replayed or reordered
// events converge on the same output.
type ReportSync struct {
	reports  *services.ReportService
	exporter export.Exporter
}

func NewReportSync(reports *services.ReportService, exporter export.Exporter) *ReportSync {
	return &ReportSync{reports: reports, exporter: exporter}
}

// Destination names the export target for a user.
func Destination(userID core.UserID) string {
	return fmt.Sprintf("report-user-%d", userID)
}

// HandleEvent recomputes and exports the expense report of ev's owner.
// A returned error makes the broker redeliver the event.
func (w *ReportSync) HandleEvent(ctx context.Context, ev core.LedgerEvent) error {
	start := time.Now()
	dest := Destination(ev.UserID)

	if err := w.reports.ExportReport(ctx, ev.UserID, core.OnlyKind(core.Expense), w.exporter, dest); err != nil {
		return fmt.Errorf("sync report for user %d: %w", ev.UserID, err)
	}

	slog.InfoContext(ctx, "Report synced",
		"op", ev.Op,
		"user_id", ev.UserID,
		"transaction_id", ev.TransactionID,
		"destination", dest,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
