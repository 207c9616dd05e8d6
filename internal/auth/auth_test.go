package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
	"fintrack/internal/store/memory"
)

func newProvider(t *testing.T) (*Provider, *memory.Store) {
	t.Helper()
	s := memory.New()
	p, err := NewProvider(s, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p, s
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	p, s := newProvider(t)

	id, err := p.Register(ctx, "  alice ", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	u, ok, _ := s.FindUser(ctx, "alice")
	if !ok || u.ID != id {
		t.Fatalf("username should be stored trimmed, got %+v ok=%v", u, ok)
	}
	if u.Credential == "s3cret" || !strings.HasPrefix(u.Credential, "$2") {
		t.Fatalf("credential must be a bcrypt hash, got %q", u.Credential)
	}

	got, err := p.Authenticate(ctx, "alice", "s3cret")
	if err != nil || got != id {
		t.Fatalf("authenticate: id=%d err=%v", got, err)
	}
}

func TestRegisterErrors(t *testing.T) {
	ctx := context.Background()
	p, _ := newProvider(t)
	if _, err := p.Register(ctx, "bob", "pw"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name     string
		username string
		secret   string
		want     error
	}{
		{"empty username", "", "pw", core.ErrInvalidUsername},
		{"blank username", "   ", "pw", core.ErrInvalidUsername},
		{"empty secret", "carol", "", core.ErrInvalidSecret},
		{"too long secret", "carol", strings.Repeat("x", 73), core.ErrInvalidSecret},
		{"duplicate", "bob", "other", core.ErrDuplicateUser},
		{"duplicate after trim", " bob", "other", core.ErrDuplicateUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.Register(ctx, tt.username, tt.secret); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	p, _ := newProvider(t)
	if _, err := p.Register(ctx, "alice", "right"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, wrongSecret := p.Authenticate(ctx, "alice", "wrong")
	_, unknownUser := p.Authenticate(ctx, "mallory", "right")

	if !errors.Is(wrongSecret, core.ErrInvalidCredentials) || !errors.Is(unknownUser, core.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", wrongSecret, unknownUser)
	}
	if core.Message(wrongSecret) != core.Message(unknownUser) {
		t.Fatalf("messages differ: %q vs %q", core.Message(wrongSecret), core.Message(unknownUser))
	}
}

func TestNewProviderClampsCost(t *testing.T) {
	p, err := NewProvider(memory.New(), 99)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if p.cost != DefaultCost {
		t.Fatalf("expected cost %d, got %d", DefaultCost, p.cost)
	}
}
