package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"rewards/internal/core"
)

// TransactionRecordedMessage announces a purchase to be ingested. The
// message ID lets consumers log and trace redeliveries; deduplication
// itself relies on the transaction ID.
type TransactionRecordedMessage struct {
	MessageID   string           `json:"messageId"`
	Source      string           `json:"source,omitempty"`
	Transaction core.Transaction `json:"transaction"`
	Timestamp   time.Time        `json:"timestamp"`
}

func NewTransactionRecordedMessage(tx core.Transaction, source string) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		MessageID:   uuid.NewString(),
		Source:      source,
		Transaction: tx,
		Timestamp:   time.Now().UTC(),
	}
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
