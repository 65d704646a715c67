package amqp

import (
	"time"

	"github.com/goccy/go-json"

	"thrips/internal/core"
)

// RecordedMessage is published after a count record is stored.
type RecordedMessage struct {
	ID        int64     `json:"id"`
	Tea       int64     `json:"tea"`
	Other     int64     `json:"other"`
	CreatedAt time.Time `json:"createdAt"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordedMessage(rec core.CountRecord) *RecordedMessage {
	return &RecordedMessage{
		ID:        rec.ID,
		Tea:       rec.Tea,
		Other:     rec.Other,
		CreatedAt: rec.CreatedAt,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordedMessageFromJSON decodes a message published by PublishRecorded.
func RecordedMessageFromJSON(data []byte) (*RecordedMessage, error) {
	var msg RecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Record returns the stored record the message describes.
func (m *RecordedMessage) Record() core.CountRecord {
	return core.CountRecord{ID: m.ID, CreatedAt: m.CreatedAt, Tea: m.Tea, Other: m.Other}
}
