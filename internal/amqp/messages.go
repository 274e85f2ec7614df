package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RefreshMessage announces that a channel's snapshot was refreshed.
// Consumers use it to invalidate derived views; the payload carries only
// metadata, readers fetch the snapshot itself from the store.
type RefreshMessage struct {
	RequestID string    `json:"request_id"`
	Channel   string    `json:"channel"`
	Count     int       `json:"count"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewRefreshMessage creates a refresh message for a channel snapshot
func NewRefreshMessage(channel string, count int) *RefreshMessage {
	return &RefreshMessage{
		RequestID: uuid.NewString(),
		Channel:   channel,
		Count:     count,
		FetchedAt: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshMessageFromJSON creates a message from JSON bytes
func RefreshMessageFromJSON(data []byte) (*RefreshMessage, error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
