package models

import (
	"github.com/google/uuid"
)

// Entity represents a node in the knowledge graph. Entities are
// deduplicated only by ID; two entities with the same name are distinct.
type Entity struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	EntityType  string    `json:"entity_type"`
	Description string    `json:"description"`
	Properties  Metadata  `json:"properties,omitempty"`
	Embedding   []float64 `json:"-"`
}

// Relationship represents a directed edge between two entities.
// Both endpoints must already exist when the relationship is created.
type Relationship struct {
	ID               uuid.UUID `json:"id"`
	SourceEntityID   uuid.UUID `json:"source_entity_id"`
	TargetEntityID   uuid.UUID `json:"target_entity_id"`
	RelationshipType string    `json:"relationship_type"`
	Properties       Metadata  `json:"properties,omitempty"`
	Confidence       float64   `json:"confidence_score"`
}

// GraphRelation is one item of knowledge-graph context: a relationship
// together with its resolved source and target entities.
type GraphRelation struct {
	Source       Entity       `json:"source"`
	Relationship Relationship `json:"relationship"`
	Target       Entity       `json:"target"`
}
