package core

import (
	"strings"
	"time"
)

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

// DateLayout is the ISO-8601 calendar date form used for input, storage and export.
const DateLayout = "2006-01-02"

const maxCategoryLen = 100

type (
	UserID        int64
	TransactionID int64

	// Kind carries the sign of a transaction. Only Income and Expense are valid.
	Kind string

	Date struct {
		time.Time
	}

	User struct {
		ID       UserID
		Username string
		// Credential is the opaque hash owned by the auth provider.
		Credential string
	}

	// TransactionInput holds every user-editable field of a transaction.
	TransactionInput struct {
		Kind     Kind
		Category string
		Amount   Money
		Date     Date
	}

	Transaction struct {
		ID      TransactionID
		OwnerID UserID
		TransactionInput
	}

	// TransactionPatch carries only the fields a caller wants to change;
	// nil fields keep their stored value.
	TransactionPatch struct {
		Kind     *Kind
		Category *string
		Amount   *Money
		Date     *Date
	}

	// KindFilter selects all transactions or those of a single kind.
	KindFilter struct {
		kind Kind
	}
)

// ParseKind accepts "Income" or "Expense" in any letter case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

func AllKinds() KindFilter {
	return KindFilter{}
}

func OnlyKind(k Kind) KindFilter {
	return KindFilter{kind: k}
}

// ParseKindFilter maps an empty string or "all" to AllKinds.
func ParseKindFilter(s string) (KindFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return AllKinds(), nil
	}
	k, err := ParseKind(s)
	if err != nil {
		return KindFilter{}, err
	}
	return OnlyKind(k), nil
}

// Kind returns the selected kind and false when the filter matches all kinds.
func (f KindFilter) Kind() (Kind, bool) {
	return f.kind, f.kind != ""
}

func (f KindFilter) Match(k Kind) bool {
	return f.kind == "" || f.kind == k
}

func (f KindFilter) String() string {
	if f.kind == "" {
		return "all"
	}
	return string(f.kind)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. Out-of-range days such as
// 2024-02-30 are rejected rather than normalized.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func validateCategory(c string) error {
	c = strings.TrimSpace(c)
	if c == "" || len(c) > maxCategoryLen {
		return ErrInvalidCategory
	}
	return nil
}

// Normalize trims the category in place.
func (in *TransactionInput) Normalize() {
	in.Category = strings.TrimSpace(in.Category)
}

func (in TransactionInput) Validate() error {
	if !in.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := validateCategory(in.Category); err != nil {
		return err
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if err := in.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// ParseTransactionInput builds a validated input from raw text fields.
func ParseTransactionInput(kind, category, amount, date string) (TransactionInput, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return TransactionInput{}, err
	}
	m, err := ParseMoney(amount)
	if err != nil {
		return TransactionInput{}, err
	}
	d, err := ParseDate(date)
	if err != nil {
		return TransactionInput{}, err
	}
	in := TransactionInput{Kind: k, Category: category, Amount: m, Date: d}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return TransactionInput{}, err
	}
	return in, nil
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Kind == nil && p.Category == nil && p.Amount == nil && p.Date == nil
}

// Validate checks only the supplied fields, using the same rules as add.
func (p TransactionPatch) Validate() error {
	if p.Kind != nil && !p.Kind.Valid() {
		return ErrInvalidKind
	}
	if p.Category != nil {
		if err := validateCategory(*p.Category); err != nil {
			return err
		}
	}
	if p.Amount != nil {
		if err := p.Amount.Validate(); err != nil {
			return err
		}
	}
	if p.Date != nil {
		if err := p.Date.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns in with the supplied patch fields replaced.
func (p TransactionPatch) Apply(in TransactionInput) TransactionInput {
	if p.Kind != nil {
		in.Kind = *p.Kind
	}
	if p.Category != nil {
		in.Category = strings.TrimSpace(*p.Category)
	}
	if p.Amount != nil {
		in.Amount = *p.Amount
	}
	if p.Date != nil {
		in.Date = *p.Date
	}
	return in
}
