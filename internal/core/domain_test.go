package core

import (
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-03-01", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-02-30", false},
		{"2024-13-01", false},
		{"01/03/2024", false},
		{"", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q expected ok, got %v", tc.in, err)
			}
			if d.String() != tc.in {
				t.Fatalf("%q round trip gave %q", tc.in, d.String())
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, in := range []string{"Income", "income", " EXPENSE "} {
		if _, err := ParseKind(in); err != nil {
			t.Fatalf("%q expected ok, got %v", in, err)
		}
	}
	for _, in := range []string{"", "Transfer", "incomes"} {
		if _, err := ParseKind(in); !errors.Is(err, ErrInvalidKind) {
			t.Fatalf("%q expected ErrInvalidKind, got %v", in, err)
		}
	}
}

func TestKindFilter(t *testing.T) {
	all := AllKinds()
	if !all.Match(Income) || !all.Match(Expense) {
		t.Fatalf("AllKinds should match every kind")
	}
	if _, ok := all.Kind(); ok {
		t.Fatalf("AllKinds should not report a kind")
	}
	exp := OnlyKind(Expense)
	if exp.Match(Income) || !exp.Match(Expense) {
		t.Fatalf("OnlyKind(Expense) matched wrong kinds")
	}
	f, err := ParseKindFilter("all")
	if err != nil || f != all {
		t.Fatalf("ParseKindFilter(all) = %v, %v", f, err)
	}
	if _, err := ParseKindFilter("nope"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestTransactionInputValidate(t *testing.T) {
	good := TransactionInput{
		Kind:     Expense,
		Category: "Groceries",
		Amount:   Money{Cents: 4550},
		Date:     NewDate(2024, 3, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		in   TransactionInput
		want error
	}{
		{TransactionInput{Kind: "", Category: "c", Amount: Money{Cents: 1}, Date: NewDate(2024, 1, 1)}, ErrInvalidKind},
		{TransactionInput{Kind: Income, Category: "  ", Amount: Money{Cents: 1}, Date: NewDate(2024, 1, 1)}, ErrInvalidCategory},
		{TransactionInput{Kind: Income, Category: "c", Amount: Money{Cents: 0}, Date: NewDate(2024, 1, 1)}, ErrInvalidAmount},
		{TransactionInput{Kind: Income, Category: "c", Amount: Money{Cents: -5}, Date: NewDate(2024, 1, 1)}, ErrInvalidAmount},
		{TransactionInput{Kind: Income, Category: "c", Amount: Money{Cents: 1}}, ErrInvalidDate},
	}
	for i, tc := range bads {
		if err := tc.in.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestParseTransactionInput(t *testing.T) {
	in, err := ParseTransactionInput("expense", "  Groceries ", "45.50", "2024-03-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Kind != Expense || in.Category != "Groceries" || in.Amount.Cents != 4550 || in.Date.String() != "2024-03-01" {
		t.Fatalf("unexpected input: %+v", in)
	}

	if _, err := ParseTransactionInput("Gift", "c", "1", "2024-03-01"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if _, err := ParseTransactionInput("Income", "c", "0", "2024-03-01"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := ParseTransactionInput("Income", "c", "1", "2024-02-30"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestTransactionPatch(t *testing.T) {
	base := TransactionInput{Kind: Expense, Category: "Groceries", Amount: Money{Cents: 4550}, Date: NewDate(2024, 3, 1)}

	if !(TransactionPatch{}).IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}

	cat := " Food "
	p := TransactionPatch{Category: &cat}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := p.Apply(base)
	if got.Category != "Food" || got.Amount != base.Amount || got.Date != base.Date || got.Kind != base.Kind {
		t.Fatalf("patch changed unexpected fields: %+v", got)
	}

	zero := Money{}
	if err := (TransactionPatch{Amount: &zero}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	bad := Kind("Transfer")
	if err := (TransactionPatch{Kind: &bad}).Validate(); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestMessageHidesInternals(t *testing.T) {
	wrapped := errors.Join(ErrStoreUnavailable, errors.New("disk I/O error at /var/lib/x.db"))
	if got := Message(wrapped); got != ErrStoreUnavailable.Error() {
		t.Fatalf("unexpected message %q", got)
	}
	if got := Message(errors.New("boom")); got != "internal error" {
		t.Fatalf("unexpected message %q", got)
	}
	if !IsValidation(ErrInvalidDate) || IsValidation(ErrNotFound) {
		t.Fatalf("IsValidation misclassified errors")
	}
}

func TestParseBudgetGoal(t *testing.T) {
	g, err := ParseBudgetGoal(" Food ", "120")
	if err != nil || g.Category != "Food" || g.Limit.Cents != 12000 {
		t.Fatalf("unexpected goal %+v (err=%v)", g, err)
	}
	if _, err := ParseBudgetGoal("", "1"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if _, err := ParseBudgetGoal("Food", "x"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
