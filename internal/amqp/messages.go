package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// LedgerEventMessage is the wire form of core.LedgerEvent. It carries ids
// only; consumers read the current ledger state themselves.
type LedgerEventMessage struct {
	Op            string    `json:"op"`
	UserID        int64     `json:"user_id"`
	TransactionID int64     `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(ev core.LedgerEvent) *LedgerEventMessage {
	ts := ev.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &LedgerEventMessage{
		Op:            string(ev.Op),
		UserID:        int64(ev.UserID),
		TransactionID: int64(ev.TransactionID),
		Timestamp:     ts,
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Event validates the message and converts it back to a domain event.
func (m *LedgerEventMessage) Event() (core.LedgerEvent, error) {
	switch core.EventOp(m.Op) {
	case core.EventCreated, core.EventUpdated, core.EventDeleted:
	default:
		return core.LedgerEvent{}, fmt.Errorf("unknown op %q", m.Op)
	}
	if m.UserID <= 0 {
		return core.LedgerEvent{}, errors.New("missing user_id")
	}
	return core.LedgerEvent{
		Op:            core.EventOp(m.Op),
		UserID:        core.UserID(m.UserID),
		TransactionID: core.TransactionID(m.TransactionID),
		At:            m.Timestamp,
	}, nil
}

// LedgerEventFromJSON decodes and validates a message body.
func LedgerEventFromJSON(data []byte) (core.LedgerEvent, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return core.LedgerEvent{}, err
	}
	return msg.Event()
}
