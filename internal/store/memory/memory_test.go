package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
)

func sample(kind core.Kind, cat string, cents int64) core.TransactionInput {
	return core.TransactionInput{Kind: kind, Category: cat, Amount: core.Money{Cents: cents}, Date: core.NewDate(2024, 3, 1)}
}

func TestMemoryStoreUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.CreateUser(ctx, "alice", "hash")
	if err != nil || id != 1 {
		t.Fatalf("unexpected create: id=%d err=%v", id, err)
	}
	if _, err := s.CreateUser(ctx, "alice", "other"); !errors.Is(err, core.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
	u, ok, err := s.FindUser(ctx, "alice")
	if err != nil || !ok || u.ID != id || u.Credential != "hash" {
		t.Fatalf("unexpected find: %+v ok=%v err=%v", u, ok, err)
	}
	if _, ok, _ := s.FindUser(ctx, "bob"); ok {
		t.Fatalf("expected bob to be missing")
	}
}

func TestMemoryStoreOwnership(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, _ := s.InsertTransaction(ctx, 1, sample(core.Expense, "Food", 100))

	if _, ok, _ := s.GetTransaction(ctx, 2, id); ok {
		t.Fatalf("user 2 must not see user 1's transaction")
	}
	if ok, _ := s.UpdateTransaction(ctx, 2, id, sample(core.Income, "X", 1)); ok {
		t.Fatalf("user 2 must not update user 1's transaction")
	}
	if ok, _ := s.DeleteTransaction(ctx, 2, id); ok {
		t.Fatalf("user 2 must not delete user 1's transaction")
	}
	list, _ := s.ListTransactions(ctx, 2, core.AllKinds())
	if len(list) != 0 {
		t.Fatalf("user 2 list should be empty, got %v", list)
	}
	tx, ok, _ := s.GetTransaction(ctx, 1, id)
	if !ok || tx.Category != "Food" {
		t.Fatalf("owner lost access: %+v ok=%v", tx, ok)
	}
}

func TestMemoryStoreIdsAndFilter(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, _ := s.InsertTransaction(ctx, 1, sample(core.Expense, "Food", 100))
	b, _ := s.InsertTransaction(ctx, 1, sample(core.Income, "Salary", 1000))
	if ok, _ := s.DeleteTransaction(ctx, 1, b); !ok {
		t.Fatalf("delete should succeed")
	}
	c, _ := s.InsertTransaction(ctx, 1, sample(core.Expense, "Rent", 500))
	if !(a < b && b < c) {
		t.Fatalf("ids must be strictly increasing and not reused: %d %d %d", a, b, c)
	}

	list, _ := s.ListTransactions(ctx, 1, core.OnlyKind(core.Expense))
	if len(list) != 2 || list[0].ID != a || list[1].ID != c {
		t.Fatalf("unexpected filtered list: %v", list)
	}
	if ok, _ := s.DeleteTransaction(ctx, 1, b); ok {
		t.Fatalf("second delete should report not found")
	}
}
