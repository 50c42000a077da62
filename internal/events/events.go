// Package events publishes notifications about committed expense writes.
package events

import (
	"context"
	"encoding/json"
	"time"
)

const (
	ExpenseRecorded = "expense.recorded"
	ExpenseReversed = "expense.reversed"
)

type ExpenseEvent struct {
	Type      string    `json:"type"`
	ExpenseID int64     `json:"expense_id"`
	UserID    int64     `json:"user_id"`
	Amount    int64     `json:"amount"`
	Date      time.Time `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(eventType string, expenseID, userID, amount int64, date time.Time) ExpenseEvent {
	return ExpenseEvent{
		Type:      eventType,
		ExpenseID: expenseID,
		UserID:    userID,
		Amount:    amount,
		Date:      date,
		Timestamp: time.Now().UTC(),
	}
}

func (e ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ExpenseEventFromJSON(data []byte) (ExpenseEvent, error) {
	var event ExpenseEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return ExpenseEvent{}, err
	}
	return event, nil
}

type Publisher interface {
	Publish(ctx context.Context, event ExpenseEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ExpenseEvent) error { return nil }
func (NopPublisher) Close() error                                { return nil }
