package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/store"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var _ store.Store = (*SQLiteRepository)(nil)

// SQLiteRepository is the durable Store. It holds a single connection, so
// every call is one statement or one transaction committed before return.
type SQLiteRepository struct {
	db *sql.DB
}

// DSN builds the modernc connection string with foreign keys enforced.
func DSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return NewFromDB(db), nil
}

// NewFromDB wraps an already migrated database handle.
func NewFromDB(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// unavailable marks a driver failure. The repository stays usable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, core.ErrStoreUnavailable, err)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, username, credential string) (core.UserID, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, unavailable("begin create user", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE username = ?`, username).Scan(&n); err != nil {
		return 0, unavailable("check username", err)
	}
	if n > 0 {
		return 0, core.ErrDuplicateUser
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO users (username, credential) VALUES (?, ?)`, username, credential)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, core.ErrDuplicateUser
		}
		return 0, unavailable("insert user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, unavailable("read user id", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, unavailable("commit create user", err)
	}

	slog.InfoContext(ctx, "User saved to SQLite", "user_id", id)
	return core.UserID(id), nil
}

func (r *SQLiteRepository) FindUser(ctx context.Context, username string) (core.User, bool, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, credential FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.Credential)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, false, nil
	}
	if err != nil {
		return core.User{}, false, unavailable("find user", err)
	}
	return u, true, nil
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, userID core.UserID, in core.TransactionInput) (core.TransactionID, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, kind, category, amount_cents, date) VALUES (?, ?, ?, ?, ?)`,
		int64(userID), string(in.Kind), in.Category, in.Amount.Cents, in.Date.String())
	if err != nil {
		return 0, unavailable("insert transaction", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, unavailable("read transaction id", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"transaction_id", id,
		"user_id", userID,
		"kind", in.Kind,
		"category", in.Category,
		"amount_cents", in.Amount.Cents,
		"date", in.Date.String())

	return core.TransactionID(id), nil
}

const selectTransaction = `SELECT id, user_id, kind, category, amount_cents, date FROM transactions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		kind    string
		dateStr string
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &kind, &t.Category, &t.Amount.Cents, &dateStr); err != nil {
		return core.Transaction{}, err
	}
	t.Kind = core.Kind(kind)
	d, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode date of transaction %d: %w", t.ID, err)
	}
	t.Date = d
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID core.UserID, id core.TransactionID) (core.Transaction, bool, error) {
	row := r.db.QueryRowContext(ctx, selectTransaction+` WHERE id = ? AND user_id = ?`, int64(id), int64(userID))
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, false, nil
	}
	if err != nil {
		return core.Transaction{}, false, unavailable("get transaction", err)
	}
	return t, true, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID core.UserID, filter core.KindFilter) ([]core.Transaction, error) {
	q := selectTransaction + ` WHERE user_id = ?`
	args := []any{int64(userID)}
	if k, ok := filter.Kind(); ok {
		q += ` AND kind = ?`
		args = append(args, string(k))
	}
	q += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("list transactions", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, unavailable("scan transaction", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate transactions", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, userID core.UserID, id core.TransactionID, in core.TransactionInput) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET kind = ?, category = ?, amount_cents = ?, date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		string(in.Kind), in.Category, in.Amount.Cents, in.Date.String(), int64(id), int64(userID))
	if err != nil {
		return false, unavailable("update transaction", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("read rows affected", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Transaction updated in SQLite", "transaction_id", id, "user_id", userID)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID core.UserID, id core.TransactionID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, int64(id), int64(userID))
	if err != nil {
		return false, unavailable("delete transaction", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("read rows affected", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Transaction deleted from SQLite", "transaction_id", id, "user_id", userID)
	}
	return n > 0, nil
}
