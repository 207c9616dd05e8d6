package store

import (
	"context"

	"fintrack/internal/core"
)

// Ports for persistence adapters. Every transaction method is scoped to a
// user: a record owned by someone else behaves exactly like a missing one.
type (
	UserStore interface {
		// CreateUser fails with core.ErrDuplicateUser if the username exists.
		CreateUser(ctx context.Context, username, credential string) (core.UserID, error)
		FindUser(ctx context.Context, username string) (user core.User, found bool, err error)
	}

	TransactionStore interface {
		// InsertTransaction assigns a fresh, strictly increasing id.
		InsertTransaction(ctx context.Context, userID core.UserID, in core.TransactionInput) (core.TransactionID, error)
		GetTransaction(ctx context.Context, userID core.UserID, id core.TransactionID) (tx core.Transaction, found bool, err error)
		// ListTransactions returns matching transactions in insertion order.
		ListTransactions(ctx context.Context, userID core.UserID, filter core.KindFilter) ([]core.Transaction, error)
		// UpdateTransaction replaces every field; false when absent or not owned.
		UpdateTransaction(ctx context.Context, userID core.UserID, id core.TransactionID, in core.TransactionInput) (bool, error)
		DeleteTransaction(ctx context.Context, userID core.UserID, id core.TransactionID) (bool, error)
	}

	Store interface {
		UserStore
		TransactionStore
		Close() error
	}
)
