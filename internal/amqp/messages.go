package amqp

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// LedgerEventMessage signals that an owner's ledger changed and their cached
// totals were recomputed. Consumers re-read whatever they need from storage;
// the message carries identifiers only.
type LedgerEventMessage struct {
	OwnerID       int64     `json:"owner_id"`
	TransactionID int64     `json:"transaction_id"`
	Action        string    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
}

// GoalCompletedMessage signals that a goal reached its target amount.
type GoalCompletedMessage struct {
	OwnerID   int64     `json:"owner_id"`
	GoalID    int64     `json:"goal_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates a ledger event for one transaction mutation.
func NewLedgerEventMessage(ownerID, transactionID int64, action string) *LedgerEventMessage {
	return &LedgerEventMessage{
		OwnerID:       ownerID,
		TransactionID: transactionID,
		Action:        action,
		Timestamp:     time.Now(),
	}
}

// NewGoalCompletedMessage creates a completion event for one goal.
func NewGoalCompletedMessage(ownerID, goalID int64) *GoalCompletedMessage {
	return &GoalCompletedMessage{
		OwnerID:   ownerID,
		GoalID:    goalID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ToJSON converts the message to JSON bytes
func (m *GoalCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// GoalCompletedMessageFromJSON creates a message from JSON bytes
func GoalCompletedMessageFromJSON(data []byte) (*GoalCompletedMessage, error) {
	var msg GoalCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
