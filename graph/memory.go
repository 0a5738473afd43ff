package graph

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"bionexus-backend/models"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory graph store used for tests and for
// running without a Neo4j instance. Entities and relationships keep
// their insertion order so repeated reads over an unchanged store
// return identical sequences.
type MemoryStore struct {
	mu            sync.RWMutex
	entities      map[uuid.UUID]models.Entity
	entityOrder   []uuid.UUID
	relationships map[uuid.UUID]models.Relationship
	relOrder      []uuid.UUID
}

// NewMemoryStore creates an empty in-memory graph store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities:      make(map[uuid.UUID]models.Entity),
		relationships: make(map[uuid.UUID]models.Relationship),
	}
}

// UpsertEntity creates or replaces an entity. A replaced entity keeps
// its original position.
func (s *MemoryStore) UpsertEntity(ctx context.Context, entity models.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[entity.ID]; !ok {
		s.entityOrder = append(s.entityOrder, entity.ID)
	}
	s.entities[entity.ID] = entity
	return nil
}

// UpsertRelationship creates a directed edge; both endpoints must exist
func (s *MemoryStore) UpsertRelationship(ctx context.Context, rel models.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[rel.SourceEntityID]; !ok {
		return fmt.Errorf("source entity %s does not exist", rel.SourceEntityID)
	}
	if _, ok := s.entities[rel.TargetEntityID]; !ok {
		return fmt.Errorf("target entity %s does not exist", rel.TargetEntityID)
	}

	rel.RelationshipType = relationshipType(rel.RelationshipType)
	if _, ok := s.relationships[rel.ID]; !ok {
		s.relOrder = append(s.relOrder, rel.ID)
	}
	s.relationships[rel.ID] = rel
	return nil
}

// SearchByText finds entities whose name or description contains the
// text, in insertion order
func (s *MemoryStore) SearchByText(ctx context.Context, text string, limit int) ([]models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(text)
	var matches []models.Entity
	for _, id := range s.entityOrder {
		if len(matches) >= limit {
			break
		}
		entity := s.entities[id]
		if strings.Contains(strings.ToLower(entity.Name), needle) ||
			strings.Contains(strings.ToLower(entity.Description), needle) {
			matches = append(matches, entity)
		}
	}
	return matches, nil
}

// EntityRelationships returns all relationships touching the entity,
// in insertion order
func (s *MemoryStore) EntityRelationships(ctx context.Context, entityID uuid.UUID) ([]models.GraphRelation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var relations []models.GraphRelation
	for _, id := range s.relOrder {
		rel := s.relationships[id]
		if rel.SourceEntityID != entityID && rel.TargetEntityID != entityID {
			continue
		}
		relations = append(relations, models.GraphRelation{
			Source:       s.entities[rel.SourceEntityID],
			Relationship: rel,
			Target:       s.entities[rel.TargetEntityID],
		})
	}
	return relations, nil
}

// Statistics returns node and relationship counts
func (s *MemoryStore) Statistics(ctx context.Context) (*Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Statistics{
		TotalNodes:         int64(len(s.entities)),
		TotalRelationships: int64(len(s.relationships)),
		EntityTypes:        make(map[string]int64),
		RelationshipTypes:  make(map[string]int64),
	}
	for _, entity := range s.entities {
		stats.EntityTypes[entity.EntityType]++
	}
	for _, rel := range s.relationships {
		stats.RelationshipTypes[rel.RelationshipType]++
	}
	return stats, nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
