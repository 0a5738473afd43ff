package graph

import (
	"context"
	"fmt"
	"testing"

	"bionexus-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEntity(t *testing.T, s *MemoryStore, name, entityType string) models.Entity {
	t.Helper()
	entity := models.Entity{ID: uuid.New(), Name: name, EntityType: entityType}
	require.NoError(t, s.UpsertEntity(context.Background(), entity))
	return entity
}

func TestMemoryStoreUpsertRelationshipRequiresEndpoints(t *testing.T) {
	s := NewMemoryStore()
	source := seedEntity(t, s, "ISS", "mission")

	err := s.UpsertRelationship(context.Background(), models.Relationship{
		ID:               uuid.New(),
		SourceEntityID:   source.ID,
		TargetEntityID:   uuid.New(),
		RelationshipType: "contains",
	})

	assert.Error(t, err)
}

func TestMemoryStoreSanitizesRelationshipType(t *testing.T) {
	s := NewMemoryStore()
	source := seedEntity(t, s, "ISS", "mission")
	target := seedEntity(t, s, "Mus musculus", "organism")

	require.NoError(t, s.UpsertRelationship(context.Background(), models.Relationship{
		ID:               uuid.New(),
		SourceEntityID:   source.ID,
		TargetEntityID:   target.ID,
		RelationshipType: "involves",
	}))
	// a type outside the allow-list degrades rather than passing through
	require.NoError(t, s.UpsertRelationship(context.Background(), models.Relationship{
		ID:               uuid.New(),
		SourceEntityID:   source.ID,
		TargetEntityID:   target.ID,
		RelationshipType: "'); DROP EVERYTHING; //",
	}))

	stats, err := s.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.RelationshipTypes["INVOLVES"])
	assert.Equal(t, int64(1), stats.RelationshipTypes["RELATED_TO"])
}

func TestMemoryStoreSearchByTextCaseInsensitive(t *testing.T) {
	s := NewMemoryStore()
	seedEntity(t, s, "Arabidopsis thaliana", "organism")
	seedEntity(t, s, "Bioreactor", "equipment")

	matches, err := s.SearchByText(context.Background(), "arabidopsis", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Arabidopsis thaliana", matches[0].Name)
}

func TestMemoryStoreSearchByTextMatchesDescription(t *testing.T) {
	s := NewMemoryStore()
	entity := models.Entity{
		ID:          uuid.New(),
		Name:        "OSD-379",
		EntityType:  "mission",
		Description: "Rodent research reference mission",
	}
	require.NoError(t, s.UpsertEntity(context.Background(), entity))

	matches, err := s.SearchByText(context.Background(), "rodent", 10)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestMemoryStoreEntityRelationshipsBothDirections(t *testing.T) {
	s := NewMemoryStore()
	mission := seedEntity(t, s, "ISS", "mission")
	organism := seedEntity(t, s, "Mus musculus", "organism")
	topic := seedEntity(t, s, "Bone Loss", "research_topic")

	require.NoError(t, s.UpsertRelationship(context.Background(), models.Relationship{
		ID: uuid.New(), SourceEntityID: mission.ID, TargetEntityID: organism.ID, RelationshipType: "involves",
	}))
	require.NoError(t, s.UpsertRelationship(context.Background(), models.Relationship{
		ID: uuid.New(), SourceEntityID: topic.ID, TargetEntityID: organism.ID, RelationshipType: "affects",
	}))

	relations, err := s.EntityRelationships(context.Background(), organism.ID)
	require.NoError(t, err)
	// the organism is target of both edges; both must surface
	assert.Len(t, relations, 2)
	for _, rel := range relations {
		assert.Equal(t, "Mus musculus", rel.Target.Name)
	}
}

func TestMemoryStoreSearchByTextInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	var names []string
	for i := 0; i < 15; i++ {
		name := fmt.Sprintf("mouse strain %02d", i)
		names = append(names, name)
		seedEntity(t, s, name, "organism")
	}

	first, err := s.SearchByText(context.Background(), "mouse", 10)
	require.NoError(t, err)
	require.Len(t, first, 10)
	for i, entity := range first {
		assert.Equal(t, names[i], entity.Name)
	}

	// unchanged store: repeated searches return the identical sequence
	for run := 0; run < 20; run++ {
		again, err := s.SearchByText(context.Background(), "mouse", 10)
		require.NoError(t, err)
		require.Len(t, again, 10)
		for i := range again {
			assert.Equal(t, first[i].ID, again[i].ID)
		}
	}
}

func TestMemoryStoreEntityRelationshipsInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	hub := seedEntity(t, s, "Microgravity", "phenomenon")
	var relIDs []uuid.UUID
	for i := 0; i < 12; i++ {
		other := seedEntity(t, s, fmt.Sprintf("organism %02d", i), "organism")
		rel := models.Relationship{
			ID: uuid.New(), SourceEntityID: hub.ID, TargetEntityID: other.ID, RelationshipType: "affects",
		}
		require.NoError(t, s.UpsertRelationship(context.Background(), rel))
		relIDs = append(relIDs, rel.ID)
	}

	for run := 0; run < 20; run++ {
		relations, err := s.EntityRelationships(context.Background(), hub.ID)
		require.NoError(t, err)
		require.Len(t, relations, len(relIDs))
		for i, rel := range relations {
			assert.Equal(t, relIDs[i], rel.Relationship.ID)
		}
	}
}

func TestMemoryStoreUpsertKeepsPosition(t *testing.T) {
	s := NewMemoryStore()
	first := seedEntity(t, s, "Mus musculus", "organism")
	seedEntity(t, s, "Arabidopsis", "organism")

	// replacing the first entity must not move it to the back
	first.Description = "updated"
	require.NoError(t, s.UpsertEntity(context.Background(), first))

	matches, err := s.SearchByText(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Mus musculus", matches[0].Name)
	assert.Equal(t, "updated", matches[0].Description)
}

func TestMemoryStoreStatistics(t *testing.T) {
	s := NewMemoryStore()
	seedEntity(t, s, "ISS", "mission")
	seedEntity(t, s, "Mir", "mission")
	seedEntity(t, s, "Mus musculus", "organism")

	stats, err := s.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalNodes)
	assert.Equal(t, int64(0), stats.TotalRelationships)
	assert.Equal(t, int64(2), stats.EntityTypes["mission"])
	assert.Equal(t, int64(1), stats.EntityTypes["organism"])
}
