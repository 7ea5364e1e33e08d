package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SessionCompletedMessage announces that a study session was marked as done.
// It only carries the completion ID; the worker loads the row from the database.
type SessionCompletedMessage struct {
	ID        int64     `json:"id"`
	MessageID string    `json:"message_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSessionCompletedMessage(id int64) *SessionCompletedMessage {
	return &SessionCompletedMessage{
		ID:        id,
		MessageID: uuid.NewString(),
		Timestamp: time.Now(),
	}
}

func (m *SessionCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SessionCompletedMessageFromJSON(data []byte) (*SessionCompletedMessage, error) {
	var msg SessionCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
