package service

import (
	"context"

	"bionexus-backend/models"

	"github.com/google/uuid"
)

// DocumentSearcher is the vector-search capability of the document store
type DocumentSearcher interface {
	SearchSimilarDocuments(ctx context.Context, embedding []float64, limit int) ([]models.DocumentHit, error)
	SearchSimilarChunks(ctx context.Context, embedding []float64, limit int) ([]models.ChunkHit, error)
}

// DocumentWriter is the ingestion capability of the document store
type DocumentWriter interface {
	InsertDocument(ctx context.Context, doc *models.Document) error
	InsertChunk(ctx context.Context, chunk *models.Chunk) error
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}

// EntityWriter persists extracted entities and relationships relationally
type EntityWriter interface {
	InsertEntity(ctx context.Context, entity *models.Entity) error
	InsertRelationship(ctx context.Context, rel *models.Relationship) error
}

// GraphSearcher is the traversal capability of the knowledge graph
type GraphSearcher interface {
	SearchByText(ctx context.Context, text string, limit int) ([]models.Entity, error)
	EntityRelationships(ctx context.Context, entityID uuid.UUID) ([]models.GraphRelation, error)
}

// GraphWriter mirrors entities and relationships into the knowledge graph
type GraphWriter interface {
	UpsertEntity(ctx context.Context, entity models.Entity) error
	UpsertRelationship(ctx context.Context, rel models.Relationship) error
}

// ChatStore is the session-persistence capability used by the orchestrator
type ChatStore interface {
	AppendMessage(ctx context.Context, sessionID uuid.UUID, role, content string, sources []models.Source) (uuid.UUID, error)
}
