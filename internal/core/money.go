// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents so that sums and comparisons are exact.
// Decimal text is parsed with shopspring/decimal, which keeps the full
// precision of the input and lets us reject anything finer than a cent
// instead of rounding it away.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

// maxCents keeps amounts far enough from the int64 edge that summing a
// realistic ledger cannot overflow.
const maxCents = int64(1) << 52

var hundred = decimal.NewFromInt(100)

// ParseMoney converts a decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, but
// only one separator. Zero, negative values, more than two fractional
// digits and malformed input all fail with ErrInvalidAmount.
//
// Examples:
//
//	ParseMoney("12.34") -> {1234}, nil
//	ParseMoney("12,3")  -> {1230}, nil
//	ParseMoney("12.345") -> error
//	ParseMoney("1,000")  -> error
func ParseMoney(s string) (Money, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return Money{}, err
	}
	m, err := MoneyFromDecimal(d)
	if err != nil {
		return Money{}, err
	}
	return m, m.Validate()
}

// ParseLimit is like ParseMoney but allows zero, for budget limits.
func ParseLimit(s string) (Money, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return Money{}, err
	}
	return MoneyFromDecimal(d)
}

// maxFractionDigits is checked on the text, before parsing, so "1,000" or
// "1.000" written with a thousands separator fails instead of becoming 1.00.
const maxFractionDigits = 2

func parseDecimal(s string) (decimal.Decimal, error) {
	s = normalizeDecimal(s)
	if s == "" || strings.Count(s, ".") > 1 {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if _, frac, ok := strings.Cut(s, "."); ok && len(frac) > maxFractionDigits {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return d, nil
}

func normalizeDecimal(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			continue
		case c == ',':
			out = append(out, '.')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// MoneyFromDecimal converts a non-negative decimal with at most two
// fractional digits. Zero is allowed here; Validate rejects it for amounts.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(hundred)
	if !cents.IsInteger() {
		return Money{}, ErrInvalidAmount
	}
	if cents.GreaterThan(decimal.NewFromInt(maxCents)) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > maxCents {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with exactly two decimals, e.g. "45.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}
