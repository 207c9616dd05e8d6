// Package auth registers users and verifies their credentials. Secrets
// are stored only as bcrypt hashes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// Provider implements registration and authentication on top of a UserStore.
type Provider struct {
	users store.UserStore
	cost  int
	// dummy is compared against for unknown users so both failure paths
	// spend the same bcrypt work.
	dummy []byte
}

// NewProvider creates a Provider. A cost outside bcrypt's range falls back
// to DefaultCost.
func NewProvider(users store.UserStore, cost int) (*Provider, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("fintrack-dummy-secret"), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Provider{users: users, cost: cost, dummy: dummy}, nil
}

// Register creates a user. The username is trimmed; the secret is kept as is.
func (p *Provider) Register(ctx context.Context, username, secret string) (core.UserID, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, core.ErrInvalidUsername
	}
	if secret == "" {
		return 0, core.ErrInvalidSecret
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), p.cost)
	if err != nil {
		// bcrypt rejects secrets longer than 72 bytes.
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return 0, core.ErrInvalidSecret
		}
		return 0, fmt.Errorf("hash secret: %w", err)
	}

	id, err := p.users.CreateUser(ctx, username, string(hash))
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "User registered", "user_id", id)
	return id, nil
}

// Authenticate returns the id of the user owning username and secret.
// Unknown users and wrong secrets both yield ErrInvalidCredentials.
func (p *Provider) Authenticate(ctx context.Context, username, secret string) (core.UserID, error) {
	u, ok, err := p.users.FindUser(ctx, strings.TrimSpace(username))
	if err != nil {
		return 0, err
	}
	if !ok {
		_ = bcrypt.CompareHashAndPassword(p.dummy, []byte(secret))
		return 0, core.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Credential), []byte(secret)); err != nil {
		return 0, core.ErrInvalidCredentials
	}
	return u.ID, nil
}
