package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Metadata represents free-form key/value metadata stored as JSONB
type Metadata map[string]interface{}

// Value implements driver.Valuer for JSONB
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(Metadata{})
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(Metadata)
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
		*m = make(Metadata)
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Document represents an uploaded research document
type Document struct {
	ID         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	Title      string    `json:"title"`
	Content    string    `json:"content,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Embedding  []float64 `json:"-"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	UploadDate time.Time `json:"upload_date"`
	Processed  bool      `json:"processed"`
}

// Chunk represents a contiguous slice of a document's text, sized for
// retrieval granularity finer than the whole document.
// Chunk indices for a document are sequential from 0 with no gaps.
type Chunk struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Embedding  []float64 `json:"-"`
	ChunkType  string    `json:"chunk_type"`
	PageNumber *int      `json:"page_number,omitempty"`
	Metadata   Metadata  `json:"metadata,omitempty"`
}

// DocumentHit is a document returned by vector search with its
// cosine similarity to the query (1 - distance).
type DocumentHit struct {
	Document
	Similarity float64 `json:"similarity"`
}

// ChunkHit is a chunk returned by vector search, joined with its
// owning document's filename and title for display.
type ChunkHit struct {
	Chunk
	Filename   string  `json:"filename"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}
