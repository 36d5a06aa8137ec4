package amqp

import (
	"encoding/json"
	"time"
)

// TransactionExportMessage asks the worker to export one transaction to
// the spreadsheet. It carries the ID only; the worker fetches the full
// record from the store.
type TransactionExportMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionExportMessage creates an export message for the given id.
func NewTransactionExportMessage(id int64) *TransactionExportMessage {
	return &TransactionExportMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionExportMessageFromJSON creates a message from JSON bytes
func TransactionExportMessageFromJSON(data []byte) (*TransactionExportMessage, error) {
	var msg TransactionExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BudgetAlertMessage notifies that a budget went over its limit after
// an expense was ingested.
type BudgetAlertMessage struct {
	BudgetID   int64     `json:"budget_id"`
	Category   string    `json:"category"`
	LimitCents int64     `json:"limit_cents"`
	SpentCents int64     `json:"spent_cents"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewBudgetAlertMessage creates an alert message for an overspent budget.
func NewBudgetAlertMessage(budgetID int64, category string, limitCents, spentCents int64) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		BudgetID:   budgetID,
		Category:   category,
		LimitCents: limitCents,
		SpentCents: spentCents,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON creates a message from JSON bytes
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
