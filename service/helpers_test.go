package service

import (
	"context"
	"errors"

	"bionexus-backend/llm"
	"bionexus-backend/models"

	"github.com/google/uuid"
)

// fakeEmbedder returns a fixed vector or error and records inputs
type fakeEmbedder struct {
	vec   []float64
	err   error
	texts []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

// fakeCompleter scripts completions per call index and records every
// message list it receives
type fakeCompleter struct {
	fn    func(call int, messages []llm.Message) (string, error)
	calls [][]llm.Message
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	call := len(f.calls)
	f.calls = append(f.calls, messages)
	if f.fn == nil {
		return "", errors.New("no completion scripted")
	}
	return f.fn(call, messages)
}

// scriptedCompleter replies with responses[call] in order
func scriptedCompleter(responses ...string) *fakeCompleter {
	return &fakeCompleter{
		fn: func(call int, _ []llm.Message) (string, error) {
			if call >= len(responses) {
				return "", errors.New("ran out of scripted responses")
			}
			return responses[call], nil
		},
	}
}

type fakeDocumentSearcher struct {
	docs     []models.DocumentHit
	chunks   []models.ChunkHit
	docErr   error
	chunkErr error

	docCalls   int
	chunkCalls int
}

func (f *fakeDocumentSearcher) SearchSimilarDocuments(ctx context.Context, embedding []float64, limit int) ([]models.DocumentHit, error) {
	f.docCalls++
	return f.docs, f.docErr
}

func (f *fakeDocumentSearcher) SearchSimilarChunks(ctx context.Context, embedding []float64, limit int) ([]models.ChunkHit, error) {
	f.chunkCalls++
	return f.chunks, f.chunkErr
}

type fakeGraphSearcher struct {
	entities  []models.Entity
	relations map[uuid.UUID][]models.GraphRelation
	searchErr error

	searchCalls int
}

func (f *fakeGraphSearcher) SearchByText(ctx context.Context, text string, limit int) ([]models.Entity, error) {
	f.searchCalls++
	return f.entities, f.searchErr
}

func (f *fakeGraphSearcher) EntityRelationships(ctx context.Context, entityID uuid.UUID) ([]models.GraphRelation, error) {
	return f.relations[entityID], nil
}

type appendedMessage struct {
	sessionID uuid.UUID
	role      string
	content   string
	sources   []models.Source
}

type fakeChatStore struct {
	appended []appendedMessage
	err      error
}

func (f *fakeChatStore) AppendMessage(ctx context.Context, sessionID uuid.UUID, role, content string, sources []models.Source) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.appended = append(f.appended, appendedMessage{sessionID, role, content, sources})
	return uuid.New(), nil
}

type fakeDocumentWriter struct {
	docs      []*models.Document
	chunks    []*models.Chunk
	processed []uuid.UUID

	docErr   error
	chunkErr error
}

func (f *fakeDocumentWriter) InsertDocument(ctx context.Context, doc *models.Document) error {
	if f.docErr != nil {
		return f.docErr
	}
	doc.ID = uuid.New()
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeDocumentWriter) InsertChunk(ctx context.Context, chunk *models.Chunk) error {
	if f.chunkErr != nil {
		return f.chunkErr
	}
	chunk.ID = uuid.New()
	f.chunks = append(f.chunks, chunk)
	return nil
}

func (f *fakeDocumentWriter) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	f.processed = append(f.processed, id)
	return nil
}

type fakeEntityWriter struct {
	entities []*models.Entity
	rels     []*models.Relationship
}

func (f *fakeEntityWriter) InsertEntity(ctx context.Context, entity *models.Entity) error {
	entity.ID = uuid.New()
	f.entities = append(f.entities, entity)
	return nil
}

func (f *fakeEntityWriter) InsertRelationship(ctx context.Context, rel *models.Relationship) error {
	rel.ID = uuid.New()
	f.rels = append(f.rels, rel)
	return nil
}

type fakeGraphWriter struct {
	entities []models.Entity
	rels     []models.Relationship
}

func (f *fakeGraphWriter) UpsertEntity(ctx context.Context, entity models.Entity) error {
	f.entities = append(f.entities, entity)
	return nil
}

func (f *fakeGraphWriter) UpsertRelationship(ctx context.Context, rel models.Relationship) error {
	f.rels = append(f.rels, rel)
	return nil
}

func docHit(title, filename string, similarity float64) models.DocumentHit {
	hit := models.DocumentHit{Similarity: similarity}
	hit.ID = uuid.New()
	hit.Title = title
	hit.Filename = filename
	return hit
}

func chunkHit(filename string, index int, similarity float64) models.ChunkHit {
	hit := models.ChunkHit{Filename: filename, Similarity: similarity}
	hit.ID = uuid.New()
	hit.ChunkIndex = index
	return hit
}
