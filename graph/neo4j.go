package graph

import (
	"context"
	"fmt"
	"strings"

	"bionexus-backend/models"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// allowedLabels maps known entity types to node labels. Entity types come
// from model output and must never be interpolated into Cypher directly;
// anything outside this set gets the plain Entity label.
var allowedLabels = map[string]string{
	"organism":       "Organism",
	"mission":        "Mission",
	"space_mission":  "Mission",
	"equipment":      "Equipment",
	"chemical":       "Chemical",
	"research_topic": "ResearchTopic",
	"phenomenon":     "Phenomenon",
	"researcher":     "Researcher",
	"institution":    "Institution",
	"location":       "Location",
}

// allowedRelationshipTypes is the fixed set of edge types the graph accepts.
// Unknown types collapse to RELATED_TO.
var allowedRelationshipTypes = map[string]bool{
	"STUDIES":    true,
	"ANALYZES":   true,
	"AFFECTS":    true,
	"INFLUENCES": true,
	"CONTAINS":   true,
	"PRODUCES":   true,
	"USES":       true,
	"INVOLVES":   true,
	"MEASURES":   true,
	"MENTIONS":   true,
	"RELATED_TO": true,
}

// entityLabel returns the validated extra label for an entity type
func entityLabel(entityType string) string {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(entityType), " ", "_"))
	if label, ok := allowedLabels[key]; ok {
		return label
	}
	return ""
}

// relationshipType returns the validated edge type for a free-form tag
func relationshipType(relType string) string {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(relType), " ", "_"))
	if allowedRelationshipTypes[key] {
		return key
	}
	return "RELATED_TO"
}

// Neo4jStore is the Neo4j-backed knowledge graph store
type Neo4jStore struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jStore connects to Neo4j and verifies connectivity
func NewNeo4jStore(ctx context.Context, cfg Config) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to Neo4j: %w", err)
	}

	return &Neo4jStore{driver: driver}, nil
}

// Close closes the driver
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// UpsertEntity creates or replaces an entity node
func (s *Neo4jStore) UpsertEntity(ctx context.Context, entity models.Entity) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		MERGE (e:Entity {id: $id})
		SET e.name = $name,
		    e.entity_type = $entity_type,
		    e.description = $description`

	// Extra label comes from the fixed allow-list, never from the raw type string
	if label := entityLabel(entity.EntityType); label != "" {
		query += fmt.Sprintf(", e:%s", label)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]any{
			"id":          entity.ID.String(),
			"name":        entity.Name,
			"entity_type": entity.EntityType,
			"description": entity.Description,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to upsert entity: %w", err)
	}
	return nil
}

// UpsertRelationship creates a directed edge between two existing entities.
// The MATCH on both endpoints means a missing endpoint creates nothing.
func (s *Neo4jStore) UpsertRelationship(ctx context.Context, rel models.Relationship) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	relType := relationshipType(rel.RelationshipType)
	query := fmt.Sprintf(`
		MATCH (s:Entity {id: $source_id}), (t:Entity {id: $target_id})
		MERGE (s)-[r:%s {id: $id}]->(t)
		SET r.confidence_score = $confidence`, relType)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]any{
			"id":         rel.ID.String(),
			"source_id":  rel.SourceEntityID.String(),
			"target_id":  rel.TargetEntityID.String(),
			"confidence": rel.Confidence,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to upsert relationship: %w", err)
	}
	return nil
}

// SearchByText finds entities matching the text by name or description
func (s *Neo4jStore) SearchByText(ctx context.Context, text string, limit int) ([]models.Entity, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		MATCH (e:Entity)
		WHERE toLower(e.name) CONTAINS toLower($text)
		   OR toLower(e.description) CONTAINS toLower($text)
		RETURN e
		LIMIT $limit`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"text": text, "limit": limit})
		if err != nil {
			return nil, err
		}

		var entities []models.Entity
		for res.Next(ctx) {
			node, ok := res.Record().Get("e")
			if !ok {
				continue
			}
			if n, ok := node.(neo4j.Node); ok {
				entities = append(entities, entityFromProps(n.Props))
			}
		}
		return entities, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search graph: %w", err)
	}

	return result.([]models.Entity), nil
}

// EntityRelationships returns all relationships for an entity, both directions
func (s *Neo4jStore) EntityRelationships(ctx context.Context, entityID uuid.UUID) ([]models.GraphRelation, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		MATCH (e:Entity {id: $id})-[r]-(connected:Entity)
		RETURN e, r, connected, startNode(r) = e AS outgoing`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"id": entityID.String()})
		if err != nil {
			return nil, err
		}

		var relations []models.GraphRelation
		for res.Next(ctx) {
			record := res.Record()
			eVal, _ := record.Get("e")
			rVal, _ := record.Get("r")
			cVal, _ := record.Get("connected")
			outVal, _ := record.Get("outgoing")

			eNode, ok1 := eVal.(neo4j.Node)
			rel, ok2 := rVal.(neo4j.Relationship)
			cNode, ok3 := cVal.(neo4j.Node)
			if !ok1 || !ok2 || !ok3 {
				continue
			}

			entity := entityFromProps(eNode.Props)
			connected := entityFromProps(cNode.Props)

			source, target := entity, connected
			if outgoing, ok := outVal.(bool); ok && !outgoing {
				source, target = connected, entity
			}

			relations = append(relations, models.GraphRelation{
				Source: source,
				Target: target,
				Relationship: models.Relationship{
					ID:               parseID(rel.Props, "id"),
					SourceEntityID:   source.ID,
					TargetEntityID:   target.ID,
					RelationshipType: rel.Type,
					Confidence:       floatProp(rel.Props, "confidence_score"),
				},
			})
		}
		return relations, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get entity relationships: %w", err)
	}

	return result.([]models.GraphRelation), nil
}

// Statistics returns node and relationship counts by type
func (s *Neo4jStore) Statistics(ctx context.Context) (*Statistics, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	stats := &Statistics{
		EntityTypes:       make(map[string]int64),
		RelationshipTypes: make(map[string]int64),
	}

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (n:Entity) RETURN count(n) AS node_count", nil)
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			if v, ok := res.Record().Get("node_count"); ok {
				stats.TotalNodes, _ = v.(int64)
			}
		}

		res, err = tx.Run(ctx, "MATCH ()-[r]->() RETURN count(r) AS rel_count", nil)
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			if v, ok := res.Record().Get("rel_count"); ok {
				stats.TotalRelationships, _ = v.(int64)
			}
		}

		res, err = tx.Run(ctx, `
			MATCH (e:Entity)
			RETURN e.entity_type AS entity_type, count(e) AS count
			ORDER BY count DESC`, nil)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			record := res.Record()
			t, _ := record.Get("entity_type")
			c, _ := record.Get("count")
			if name, ok := t.(string); ok {
				stats.EntityTypes[name], _ = c.(int64)
			}
		}

		res, err = tx.Run(ctx, `
			MATCH ()-[r]->()
			RETURN type(r) AS relationship_type, count(r) AS count
			ORDER BY count DESC`, nil)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			record := res.Record()
			t, _ := record.Get("relationship_type")
			c, _ := record.Get("count")
			if name, ok := t.(string); ok {
				stats.RelationshipTypes[name], _ = c.(int64)
			}
		}

		return stats, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get graph statistics: %w", err)
	}

	return result.(*Statistics), nil
}

func entityFromProps(props map[string]any) models.Entity {
	entity := models.Entity{
		ID: parseID(props, "id"),
	}
	if v, ok := props["name"].(string); ok {
		entity.Name = v
	}
	if v, ok := props["entity_type"].(string); ok {
		entity.EntityType = v
	}
	if v, ok := props["description"].(string); ok {
		entity.Description = v
	}
	return entity
}

func parseID(props map[string]any, key string) uuid.UUID {
	if v, ok := props[key].(string); ok {
		if id, err := uuid.Parse(v); err == nil {
			return id
		}
	}
	return uuid.Nil
}

func floatProp(props map[string]any, key string) float64 {
	if v, ok := props[key].(float64); ok {
		return v
	}
	return 0
}
