// Package events publishes notifications about recorded transactions.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartspend-dev/smartspend/internal/model"
)

// TypeTransactionRecorded is the type of the event sent after every append.
const TypeTransactionRecorded = "transaction.recorded"

// Event describes one recorded transaction.
type Event struct {
	Type        string          `json:"type"`
	User        string          `json:"user"`
	Kind        model.Kind      `json:"kind"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	RecordedAt  time.Time       `json:"recorded_at"`
	PublishedAt time.Time       `json:"published_at"`
}

// TransactionRecorded builds the event for a freshly appended record.
func TransactionRecorded(user string, rec model.Record) Event {
	return Event{
		Type:        TypeTransactionRecorded,
		User:        user,
		Kind:        rec.Kind,
		Category:    rec.Category,
		Amount:      rec.Amount,
		RecordedAt:  rec.Timestamp,
		PublishedAt: time.Now(),
	}
}

// ToJSON encodes the event.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event.
func FromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
