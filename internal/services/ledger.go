// Package services orchestrates ledger operations across the Store and
// the optional event bus.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/store"
)

// EventPublisher announces committed ledger mutations.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev core.LedgerEvent) error
}

// Ledger validates transaction input and applies it to the Store. Every
// operation is scoped to one user; foreign records behave as absent.
type Ledger struct {
	store     store.TransactionStore
	publisher EventPublisher
	now       func() time.Time
}

// NewLedger creates a Ledger. publisher may be nil.
func NewLedger(s store.TransactionStore, publisher EventPublisher) *Ledger {
	return &Ledger{
		store:     s,
		publisher: publisher,
		now:       time.Now,
	}
}

// AddTransaction validates in and stores it as a new transaction owned by userID.
func (l *Ledger) AddTransaction(ctx context.Context, userID core.UserID, in core.TransactionInput) (core.Transaction, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	id, err := l.store.InsertTransaction(ctx, userID, in)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to save transaction", "user_id", userID, "error", err)
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	tx := core.Transaction{ID: id, OwnerID: userID, TransactionInput: in}
	logCommitted(ctx, applog.OpCreate, tx)
	l.publish(ctx, core.EventCreated, userID, id)
	return tx, nil
}

// GetTransaction returns ErrNotFound for absent and foreign transactions alike.
func (l *Ledger) GetTransaction(ctx context.Context, userID core.UserID, id core.TransactionID) (core.Transaction, error) {
	tx, ok, err := l.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return tx, nil
}

// EditTransaction replaces only the fields present in patch. The merged
// record is validated with the same rules as AddTransaction.
func (l *Ledger) EditTransaction(ctx context.Context, userID core.UserID, id core.TransactionID, patch core.TransactionPatch) (core.Transaction, error) {
	if err := patch.Validate(); err != nil {
		return core.Transaction{}, err
	}

	current, err := l.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	next := patch.Apply(current.TransactionInput)
	if err := next.Validate(); err != nil {
		return core.Transaction{}, err
	}

	ok, err := l.store.UpdateTransaction(ctx, userID, id, next)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to update transaction", "user_id", userID, "transaction_id", id, "error", err)
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if !ok {
		// Deleted between the read and the write.
		return core.Transaction{}, core.ErrNotFound
	}

	tx := core.Transaction{ID: id, OwnerID: userID, TransactionInput: next}
	logCommitted(ctx, applog.OpUpdate, tx)
	l.publish(ctx, core.EventUpdated, userID, id)
	return tx, nil
}

// DeleteTransaction removes the transaction. A second delete reports ErrNotFound.
func (l *Ledger) DeleteTransaction(ctx context.Context, userID core.UserID, id core.TransactionID) error {
	ok, err := l.store.DeleteTransaction(ctx, userID, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to delete transaction", "user_id", userID, "transaction_id", id, "error", err)
		return fmt.Errorf("delete transaction: %w", err)
	}
	if !ok {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "user_id", userID, "transaction_id", id)
	l.publish(ctx, core.EventDeleted, userID, id)
	return nil
}

// ListTransactions returns the user's transactions in insertion order.
func (l *Ledger) ListTransactions(ctx context.Context, userID core.UserID, filter core.KindFilter) ([]core.Transaction, error) {
	txs, err := l.store.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func logCommitted(ctx context.Context, op string, tx core.Transaction) {
	fields := applog.NewFields().
		WithOperation(op).
		WithTransaction(int64(tx.OwnerID), int64(tx.ID), tx.Kind.String(), tx.Category, tx.Amount.Cents)
	slog.InfoContext(ctx, "Transaction saved", fields.ToSlice()...)
}

// publish never fails the caller: the mutation is already committed.
func (l *Ledger) publish(ctx context.Context, op core.EventOp, userID core.UserID, id core.TransactionID) {
	if l.publisher == nil {
		return
	}
	ev := core.LedgerEvent{Op: op, UserID: userID, TransactionID: id, At: l.now().UTC()}
	if err := l.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		slog.WarnContext(ctx, "Failed to publish ledger event",
			"op", op, "user_id", userID, "transaction_id", id, "error", err)
	}
}
