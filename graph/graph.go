package graph

import (
	"context"
	"log"
	"os"

	"bionexus-backend/models"

	"github.com/google/uuid"
)

// Store is the knowledge-graph capability consumed by the retrieval
// and ingestion services.
type Store interface {
	// UpsertEntity creates or replaces an entity node
	UpsertEntity(ctx context.Context, entity models.Entity) error

	// UpsertRelationship creates a directed edge; both endpoints must exist
	UpsertRelationship(ctx context.Context, rel models.Relationship) error

	// SearchByText finds entities whose name or description contains the
	// text, case-insensitively, capped at limit
	SearchByText(ctx context.Context, text string, limit int) ([]models.Entity, error)

	// EntityRelationships returns all relationships touching the entity,
	// in either direction, with both endpoints resolved
	EntityRelationships(ctx context.Context, entityID uuid.UUID) ([]models.GraphRelation, error)

	// Statistics returns node and relationship counts
	Statistics(ctx context.Context) (*Statistics, error)

	// Close releases the underlying connection
	Close(ctx context.Context) error
}

// Statistics summarizes graph contents
type Statistics struct {
	TotalNodes         int64            `json:"total_nodes"`
	TotalRelationships int64            `json:"total_relationships"`
	EntityTypes        map[string]int64 `json:"entity_types"`
	RelationshipTypes  map[string]int64 `json:"relationship_types"`
}

// Config holds graph store connection settings
type Config struct {
	URI      string
	User     string
	Password string
}

// NewStoreFromEnv creates a graph store from environment variables.
// When NEO4J_URI is unset the in-memory store is used, so the rest of
// the system keeps working without a graph database.
func NewStoreFromEnv(ctx context.Context) (Store, error) {
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		log.Println("Warning: NEO4J_URI not set, using in-memory graph store")
		return NewMemoryStore(), nil
	}

	cfg := Config{
		URI:      uri,
		User:     os.Getenv("NEO4J_USER"),
		Password: os.Getenv("NEO4J_PASSWORD"),
	}
	if cfg.User == "" {
		cfg.User = "neo4j"
	}

	return NewNeo4jStore(ctx, cfg)
}
