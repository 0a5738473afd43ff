package repository

import (
	"context"
	"fmt"

	"bionexus-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// KnowledgeRepository handles database operations for knowledge-graph
// entities and relationships. The relational copy is the system of
// record; the graph store mirrors it for traversal.
type KnowledgeRepository struct {
	db *pgxpool.Pool
}

// NewKnowledgeRepository creates a new knowledge repository
func NewKnowledgeRepository(db *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

// InsertEntity inserts a knowledge-graph entity
func (r *KnowledgeRepository) InsertEntity(ctx context.Context, entity *models.Entity) error {
	query := `
		INSERT INTO kg_entities (name, entity_type, description, properties, embedding)
		VALUES ($1, $2, $3, $4, $5::vector)
		RETURNING id`

	err := r.db.QueryRow(
		ctx, query,
		entity.Name,
		entity.EntityType,
		entity.Description,
		entity.Properties,
		nullableVector(entity.Embedding),
	).Scan(&entity.ID)

	return err
}

// InsertRelationship inserts a directed relationship. Foreign keys on
// both endpoint columns enforce that the entities already exist.
func (r *KnowledgeRepository) InsertRelationship(ctx context.Context, rel *models.Relationship) error {
	query := `
		INSERT INTO kg_relationships (
			source_entity_id, target_entity_id, relationship_type, properties, confidence_score
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRow(
		ctx, query,
		rel.SourceEntityID,
		rel.TargetEntityID,
		rel.RelationshipType,
		rel.Properties,
		rel.Confidence,
	).Scan(&rel.ID)

	return err
}

// ListEntities returns entities, optionally filtered by type
func (r *KnowledgeRepository) ListEntities(ctx context.Context, entityType string, limit int) ([]models.Entity, error) {
	query := `
		SELECT id, name, entity_type, description, properties
		FROM kg_entities`
	args := []interface{}{}
	if entityType != "" {
		query += ` WHERE entity_type = $1 LIMIT $2`
		args = append(args, entityType, limit)
	} else {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var entities []models.Entity
	for rows.Next() {
		var entity models.Entity
		err := rows.Scan(
			&entity.ID,
			&entity.Name,
			&entity.EntityType,
			&entity.Description,
			&entity.Properties,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, entity)
	}

	return entities, rows.Err()
}
