package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatSession represents a conversation thread
type ChatSession struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"session_name"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// SourceList is a list of answer sources stored as JSONB alongside a message
type SourceList []Source

// Value implements driver.Valuer for JSONB
func (s SourceList) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal(SourceList{})
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *SourceList) Scan(value interface{}) error {
	if value == nil {
		*s = SourceList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		*s = SourceList{}
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// ChatMessage is one append-only message in a session. Inserting a
// message bumps the owning session's last_updated timestamp.
type ChatMessage struct {
	ID        uuid.UUID  `json:"id"`
	SessionID uuid.UUID  `json:"session_id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Sources   SourceList `json:"sources"`
	Timestamp time.Time  `json:"timestamp"`
}
