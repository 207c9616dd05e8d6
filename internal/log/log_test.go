package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Component: ComponentLedger, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown", FieldUserID, 7)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "user_id=7") {
		t.Fatalf("missing fields in %q", out)
	}
	if logger.Component() != ComponentLedger {
		t.Fatalf("unexpected component %q", logger.Component())
	}
}

func TestLoggerFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Output: &buf}).WithComponent(ComponentStorage)

	logger.Failure(context.Background(), "insert failed", OpCreate, errors.New("disk full"))

	out := buf.String()
	for _, want := range []string{"level=ERROR", "operation=create", `error="disk full"`, "component=storage"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestFieldsToSliceIsSorted(t *testing.T) {
	f := NewFields().WithTransaction(1, 2, "Expense", "Food", 4550).WithOperation(OpCreate)
	s := f.ToSlice()
	if len(s) != 12 {
		t.Fatalf("expected 12 entries, got %d", len(s))
	}
	if s[0] != FieldAmountCents || s[1] != int64(4550) {
		t.Fatalf("expected amount_cents first, got %v=%v", s[0], s[1])
	}
	if NewFields().WithError(nil)[FieldError] != nil {
		t.Fatalf("nil error must not add a field")
	}
}

func TestMiddlewareInjectsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Component: ComponentHTTP})

	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("handled")
		})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("request id missing from %q", buf.String())
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil || l.Component() != "unknown" {
		t.Fatalf("unexpected fallback logger %+v", l)
	}
}
