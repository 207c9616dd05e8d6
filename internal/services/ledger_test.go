package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store/memory"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []core.LedgerEvent
	err    error
}

func (p *fakePublisher) PublishLedgerEvent(_ context.Context, ev core.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

// brokenStore fails every transaction call with a driver error.
type brokenStore struct {
	*memory.Store
}

var errDisk = errors.New("disk I/O error")

func (brokenStore) InsertTransaction(context.Context, core.UserID, core.TransactionInput) (core.TransactionID, error) {
	return 0, errors.Join(core.ErrStoreUnavailable, errDisk)
}

func (brokenStore) ListTransactions(context.Context, core.UserID, core.KindFilter) ([]core.Transaction, error) {
	return nil, errors.Join(core.ErrStoreUnavailable, errDisk)
}

func mustInput(t *testing.T, kind, category, amount, date string) core.TransactionInput {
	t.Helper()
	in, err := core.ParseTransactionInput(kind, category, amount, date)
	if err != nil {
		t.Fatalf("parse input: %v", err)
	}
	return in
}

func TestLedgerAddGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(memory.New(), nil)

	added, err := l.AddTransaction(ctx, 1, mustInput(t, "Expense", " Groceries ", "45.50", "2024-03-01"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added.Category != "Groceries" || added.OwnerID != 1 || added.ID == 0 {
		t.Fatalf("unexpected added transaction %+v", added)
	}

	got, err := l.GetTransaction(ctx, 1, added.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != added {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, added)
	}
}

func TestLedgerAddValidation(t *testing.T) {
	valid := core.TransactionInput{Kind: core.Expense, Category: "Food", Amount: core.Money{Cents: 100}, Date: core.NewDate(2024, 3, 1)}

	tests := []struct {
		name   string
		mutate func(*core.TransactionInput)
		want   error
	}{
		{"bad kind", func(in *core.TransactionInput) { in.Kind = "Transfer" }, core.ErrInvalidKind},
		{"blank category", func(in *core.TransactionInput) { in.Category = "   " }, core.ErrInvalidCategory},
		{"zero amount", func(in *core.TransactionInput) { in.Amount = core.Money{} }, core.ErrInvalidAmount},
		{"negative amount", func(in *core.TransactionInput) { in.Amount = core.Money{Cents: -5} }, core.ErrInvalidAmount},
		{"missing date", func(in *core.TransactionInput) { in.Date = core.Date{} }, core.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := memory.New()
			l := NewLedger(s, nil)
			in := valid
			tt.mutate(&in)
			if _, err := l.AddTransaction(context.Background(), 1, in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			list, _ := s.ListTransactions(context.Background(), 1, core.AllKinds())
			if len(list) != 0 {
				t.Fatalf("rejected input must not be stored, got %v", list)
			}
		})
	}
}

func TestLedgerEditAppliesOnlySuppliedFields(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(memory.New(), nil)
	added, _ := l.AddTransaction(ctx, 1, mustInput(t, "Expense", "Groceries", "45.50", "2024-03-01"))

	cat := "Food"
	edited, err := l.EditTransaction(ctx, 1, added.ID, core.TransactionPatch{Category: &cat})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Category != "Food" || edited.Amount.Cents != 4550 || edited.Kind != core.Expense || edited.Date.String() != "2024-03-01" {
		t.Fatalf("unexpected edit result %+v", edited)
	}

	got, _ := l.GetTransaction(ctx, 1, added.ID)
	if got != edited {
		t.Fatalf("stored %+v, returned %+v", got, edited)
	}

	zero := core.Money{}
	if _, err := l.EditTransaction(ctx, 1, added.ID, core.TransactionPatch{Amount: &zero}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	got, _ = l.GetTransaction(ctx, 1, added.ID)
	if got.Amount.Cents != 4550 {
		t.Fatalf("rejected edit changed the amount: %+v", got)
	}
}

func TestLedgerOwnership(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(memory.New(), nil)
	added, _ := l.AddTransaction(ctx, 1, mustInput(t, "Income", "Salary", "1000", "2024-03-01"))

	if _, err := l.GetTransaction(ctx, 2, added.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get by other user: expected ErrNotFound, got %v", err)
	}
	cat := "Mine"
	if _, err := l.EditTransaction(ctx, 2, added.ID, core.TransactionPatch{Category: &cat}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("edit by other user: expected ErrNotFound, got %v", err)
	}
	if err := l.DeleteTransaction(ctx, 2, added.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete by other user: expected ErrNotFound, got %v", err)
	}
	if _, err := l.GetTransaction(ctx, 1, added.ID); err != nil {
		t.Fatalf("owner lost the transaction: %v", err)
	}
}

func TestLedgerDeleteTwice(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(memory.New(), nil)
	added, _ := l.AddTransaction(ctx, 1, mustInput(t, "Expense", "Food", "3", "2024-03-01"))

	if err := l.DeleteTransaction(ctx, 1, added.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := l.DeleteTransaction(ctx, 1, added.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestLedgerPublishesAfterCommit(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	l := NewLedger(memory.New(), pub)

	added, _ := l.AddTransaction(ctx, 3, mustInput(t, "Expense", "Food", "3", "2024-03-01"))
	cat := "Snacks"
	_, _ = l.EditTransaction(ctx, 3, added.ID, core.TransactionPatch{Category: &cat})
	_ = l.DeleteTransaction(ctx, 3, added.ID)
	_ = l.DeleteTransaction(ctx, 3, added.ID)

	want := []core.EventOp{core.EventCreated, core.EventUpdated, core.EventDeleted}
	if len(pub.events) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), pub.events)
	}
	for i, op := range want {
		ev := pub.events[i]
		if ev.Op != op || ev.UserID != 3 || ev.TransactionID != added.ID || ev.At.IsZero() {
			t.Fatalf("event %d: unexpected %+v", i, ev)
		}
	}
}

func TestLedgerPublishFailureIsNotReturned(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{err: errors.New("broker down")}
	l := NewLedger(memory.New(), pub)

	added, err := l.AddTransaction(ctx, 1, mustInput(t, "Expense", "Food", "3", "2024-03-01"))
	if err != nil {
		t.Fatalf("publish failure leaked into add: %v", err)
	}
	if _, err := l.GetTransaction(ctx, 1, added.ID); err != nil {
		t.Fatalf("transaction not stored: %v", err)
	}
}

func TestLedgerStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	l := NewLedger(brokenStore{memory.New()}, pub)

	if _, err := l.AddTransaction(ctx, 1, mustInput(t, "Expense", "Food", "3", "2024-03-01")); !errors.Is(err, core.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := l.ListTransactions(ctx, 1, core.AllKinds()); !errors.Is(err, core.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("failed mutation must not publish, got %+v", pub.events)
	}
}
