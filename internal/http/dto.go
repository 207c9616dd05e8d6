package http

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// amountJSON accepts an amount as a JSON number or a decimal string.
type amountJSON struct {
	money core.Money
}

func (a *amountJSON) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return core.ErrInvalidAmount
	}
	m, err := core.MoneyFromDecimal(d)
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	a.money = m
	return nil
}

type kindJSON struct {
	kind core.Kind
}

func (k *kindJSON) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return core.ErrInvalidKind
	}
	kind, err := core.ParseKind(s)
	if err != nil {
		return err
	}
	k.kind = kind
	return nil
}

type dateJSON struct {
	date core.Date
}

func (d *dateJSON) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return core.ErrInvalidDate
	}
	date, err := core.ParseDate(s)
	if err != nil {
		return err
	}
	d.date = date
	return nil
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       core.UserID `json:"id"`
	Username string      `json:"username"`
}

// transactionRequest is used for both create and partial edit; absent
// fields stay nil.
type transactionRequest struct {
	Type     *kindJSON   `json:"type"`
	Category *string     `json:"category"`
	Amount   *amountJSON `json:"amount"`
	Date     *dateJSON   `json:"date"`
}

// input requires every field, as for a new transaction.
func (req transactionRequest) input() (core.TransactionInput, error) {
	switch {
	case req.Type == nil:
		return core.TransactionInput{}, core.ErrInvalidKind
	case req.Category == nil:
		return core.TransactionInput{}, core.ErrInvalidCategory
	case req.Amount == nil:
		return core.TransactionInput{}, core.ErrInvalidAmount
	case req.Date == nil:
		return core.TransactionInput{}, core.ErrInvalidDate
	}
	return core.TransactionInput{
		Kind:     req.Type.kind,
		Category: *req.Category,
		Amount:   req.Amount.money,
		Date:     req.Date.date,
	}, nil
}

func (req transactionRequest) patch() core.TransactionPatch {
	var p core.TransactionPatch
	if req.Type != nil {
		p.Kind = &req.Type.kind
	}
	p.Category = req.Category
	if req.Amount != nil {
		p.Amount = &req.Amount.money
	}
	if req.Date != nil {
		p.Date = &req.Date.date
	}
	return p
}

type transactionResponse struct {
	ID       core.TransactionID `json:"id"`
	Type     core.Kind          `json:"type"`
	Category string             `json:"category"`
	Amount   string             `json:"amount"`
	Date     string             `json:"date"`
}

func newTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:       tx.ID,
		Type:     tx.Kind,
		Category: tx.Category,
		Amount:   tx.Amount.String(),
		Date:     tx.Date.String(),
	}
}

type categoryRow struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

type categoryReportResponse struct {
	Kind  string        `json:"kind"`
	Rows  []categoryRow `json:"rows"`
	Total string        `json:"total"`
}

type budgetResponse struct {
	Category   string            `json:"category"`
	TotalSpent string            `json:"total_spent"`
	Limit      string            `json:"limit"`
	Status     core.BudgetStatus `json:"status"`
}
