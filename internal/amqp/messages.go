package amqp

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// DatasetRefreshMessage announces that a dataset source has new content.
// Consumers drop their cached dataset and rebuild on the next request.
type DatasetRefreshMessage struct {
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDatasetRefreshMessage(source string, rows int) *DatasetRefreshMessage {
	return &DatasetRefreshMessage{
		Source:    source,
		Rows:      rows,
		Timestamp: time.Now().UTC(),
	}
}

// Validate rejects messages that cannot describe a refresh.
func (m *DatasetRefreshMessage) Validate() error {
	if strings.TrimSpace(m.Source) == "" {
		return errors.New("refresh message without source")
	}
	if m.Rows < 0 {
		return errors.New("refresh message with negative row count")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *DatasetRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetRefreshMessageFromJSON decodes and validates a message body
func DatasetRefreshMessageFromJSON(data []byte) (*DatasetRefreshMessage, error) {
	var msg DatasetRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
