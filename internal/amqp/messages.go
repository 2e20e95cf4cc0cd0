package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AlertRegenerateMessage asks the worker to rebuild a user's materialized
// alerts. It carries only the user; the worker reads fresh state from the
// database, so stale messages are harmless.
type AlertRegenerateMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAlertRegenerateMessage(userID string) *AlertRegenerateMessage {
	return &AlertRegenerateMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

func (m *AlertRegenerateMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AlertRegenerateMessageFromJSON(data []byte) (*AlertRegenerateMessage, error) {
	var msg AlertRegenerateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
