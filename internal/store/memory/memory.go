package memory

import (
	"context"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps users and transactions in process memory. Ids are never
// reused, even after deletes. Nothing survives a restart.
type Store struct {
	mu         sync.Mutex
	lastUserID core.UserID
	lastTxID   core.TransactionID
	users      map[string]core.User
	items      []core.Transaction
}

func New() *Store {
	return &Store{users: map[string]core.User{}}
}

func (s *Store) CreateUser(_ context.Context, username, credential string) (core.UserID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return 0, core.ErrDuplicateUser
	}
	s.lastUserID++
	s.users[username] = core.User{ID: s.lastUserID, Username: username, Credential: credential}
	return s.lastUserID, nil
}

func (s *Store) FindUser(_ context.Context, username string) (core.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	return u, ok, nil
}

func (s *Store) InsertTransaction(_ context.Context, userID core.UserID, in core.TransactionInput) (core.TransactionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTxID++
	s.items = append(s.items, core.Transaction{ID: s.lastTxID, OwnerID: userID, TransactionInput: in})
	return s.lastTxID, nil
}

func (s *Store) GetTransaction(_ context.Context, userID core.UserID, id core.TransactionID) (core.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(userID, id)
	if i < 0 {
		return core.Transaction{}, false, nil
	}
	return s.items[i], true, nil
}

func (s *Store) ListTransactions(_ context.Context, userID core.UserID, filter core.KindFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0)
	for _, tx := range s.items {
		if tx.OwnerID == userID && filter.Match(tx.Kind) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, userID core.UserID, id core.TransactionID, in core.TransactionInput) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(userID, id)
	if i < 0 {
		return false, nil
	}
	s.items[i].TransactionInput = in
	return true, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID core.UserID, id core.TransactionID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(userID, id)
	if i < 0 {
		return false, nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true, nil
}

func (s *Store) Close() error { return nil }

// indexOf applies the ownership check; callers hold mu.
func (s *Store) indexOf(userID core.UserID, id core.TransactionID) int {
	for i, tx := range s.items {
		if tx.ID == id && tx.OwnerID == userID {
			return i
		}
	}
	return -1
}
