package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"bionexus-backend/llm"
	"bionexus-backend/models"
)

const (
	defaultChunkSizeWords = 1000
	defaultChunkOverlap   = 200

	maxSummaryInputChars      = 4000
	maxSummaryWords           = 500
	maxEntityInputChars       = 3000
	maxRelationshipInputChars = 2000
	maxEntitiesPerPattern     = 5
)

const summaryPromptTemplate = `Please provide a concise summary of the following space bioscience research document.
Focus on the main findings, research objectives, and key conclusions.
Keep the summary under %d words.

Document content:
%s`

const entityPromptTemplate = `Extract scientific entities from the following space bioscience research text.
Focus on:
- Research topics and phenomena
- Scientific instruments and equipment
- Biological systems and organisms
- Chemical compounds and materials
- Space missions and experiments
- Researchers and institutions
- Locations (space stations, planets, etc.)

Return the entities as a JSON list with the format:
[
    {
        "name": "entity name",
        "type": "entity type",
        "description": "brief description"
    }
]

Text:
%s`

const relationshipPromptTemplate = `Given these entities found in a space bioscience research document: %s

Identify relationships between these entities based on the following text.
Return relationships as JSON in this format:
[
    {
        "source": "entity1",
        "target": "entity2",
        "relationship": "relationship_type",
        "description": "brief description of the relationship"
    }
]

Common relationship types:
- studies, analyzes, affects, influences, contains, produces, uses, involves, measures

Text:
%s`

// fallbackEntityPatterns drives entity extraction when no completion
// provider is available or it fails. Deliberately coarse.
var fallbackEntityPatterns = []struct {
	entityType string
	pattern    *regexp.Regexp
}{
	{"space_mission", regexp.MustCompile(`\b[A-Z][a-z]+-\d+\b|\bISS\b|\bInternational Space Station\b`)},
	{"organism", regexp.MustCompile(`(?i)\b[A-Z][a-z]+ [a-z]+\b(?:.*(?:mouse|mice|rat|cell|organism))`)},
	{"chemical", regexp.MustCompile(`\b[A-Z][a-zA-Z]*\d+\b|\b[A-Z]{2,}\b`)},
	{"equipment", regexp.MustCompile(`(?i)\bmicroscop[ey]\b|\bspectromet[ery]\b|\bchamber\b|\bbioreactor\b`)},
}

// extractedEntity is the provider-facing shape of an extracted entity
type extractedEntity struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// extractedRelationship is the provider-facing shape of a relationship
type extractedRelationship struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	Relationship string `json:"relationship"`
	Description  string `json:"description"`
}

// IngestService turns raw document text into searchable state: a summary,
// embedded chunks, and knowledge-graph entities mirrored into both the
// relational store and the graph store.
type IngestService struct {
	embedder  llm.Embedder
	completer llm.Completer
	docs      DocumentWriter
	entities  EntityWriter
	graph     GraphWriter

	chunkSize    int
	chunkOverlap int
}

// IngestOption is a functional option for IngestService
type IngestOption func(*IngestService)

// IngestWithEmbedder sets the embedding provider
func IngestWithEmbedder(embedder llm.Embedder) IngestOption {
	return func(s *IngestService) {
		s.embedder = embedder
	}
}

// IngestWithCompleter sets the completion provider used for summaries
// and entity extraction
func IngestWithCompleter(completer llm.Completer) IngestOption {
	return func(s *IngestService) {
		s.completer = completer
	}
}

// IngestWithDocumentWriter sets the relational document store
func IngestWithDocumentWriter(docs DocumentWriter) IngestOption {
	return func(s *IngestService) {
		s.docs = docs
	}
}

// IngestWithEntityWriter sets the relational entity store
func IngestWithEntityWriter(entities EntityWriter) IngestOption {
	return func(s *IngestService) {
		s.entities = entities
	}
}

// IngestWithGraphWriter sets the knowledge-graph mirror
func IngestWithGraphWriter(graph GraphWriter) IngestOption {
	return func(s *IngestService) {
		s.graph = graph
	}
}

// IngestWithChunking overrides the word-window chunking parameters
func IngestWithChunking(size, overlap int) IngestOption {
	return func(s *IngestService) {
		s.chunkSize = size
		s.chunkOverlap = overlap
	}
}

// NewIngestService creates an ingest service with default chunking
func NewIngestService(opts ...IngestOption) *IngestService {
	s := &IngestService{
		chunkSize:    defaultChunkSizeWords,
		chunkOverlap: defaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestDocument processes one document end to end. Provider failures
// degrade (no summary, no entities, unembedded chunks) but storage
// failures abort: a document either lands fully or not at all from the
// relational side's point of view, subject to MarkProcessed at the end.
func (s *IngestService) IngestDocument(ctx context.Context, filename, title, content string) (*models.Document, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("document %q has no content", filename)
	}
	if title == "" {
		title = filename
	}

	doc := &models.Document{
		Filename: filename,
		Title:    title,
		Content:  content,
		Summary:  s.summarize(ctx, content),
		Metadata: models.Metadata{"source": "upload"},
	}
	doc.Embedding = s.embed(ctx, summaryOrLead(doc.Summary, content))

	if err := s.docs.InsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	for i, text := range chunkWords(content, s.chunkSize, s.chunkOverlap) {
		chunk := &models.Chunk{
			DocumentID: doc.ID,
			ChunkIndex: i,
			Content:    text,
			ChunkType:  "text",
			Embedding:  s.embed(ctx, text),
			Metadata:   models.Metadata{"word_count": len(strings.Fields(text))},
		}
		if err := s.docs.InsertChunk(ctx, chunk); err != nil {
			return nil, fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}

	if err := s.persistKnowledge(ctx, content); err != nil {
		return nil, err
	}

	if err := s.docs.MarkProcessed(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("failed to mark document processed: %w", err)
	}
	doc.Processed = true

	log.Printf("Ingested document %s (%s)", doc.ID, filename)
	return doc, nil
}

// persistKnowledge extracts entities and relationships and writes them
// to the relational store and the graph mirror. Entities that fail to
// mirror into the graph are logged, not fatal; the relational copy is
// the system of record.
func (s *IngestService) persistKnowledge(ctx context.Context, content string) error {
	extracted := s.extractEntities(ctx, content)
	if len(extracted) == 0 {
		return nil
	}

	byName := make(map[string]*models.Entity, len(extracted))
	for _, e := range extracted {
		if e.Name == "" || byName[e.Name] != nil {
			continue
		}
		entity := &models.Entity{
			Name:        e.Name,
			EntityType:  strings.ToLower(strings.ReplaceAll(e.Type, " ", "_")),
			Description: e.Description,
		}
		if err := s.entities.InsertEntity(ctx, entity); err != nil {
			return fmt.Errorf("failed to insert entity %q: %w", e.Name, err)
		}
		byName[e.Name] = entity

		if s.graph != nil {
			if err := s.graph.UpsertEntity(ctx, *entity); err != nil {
				log.Printf("Warning: failed to mirror entity %q into graph: %v", e.Name, err)
			}
		}
	}

	for _, r := range s.extractRelationships(ctx, extracted, content) {
		source, target := byName[r.Source], byName[r.Target]
		if source == nil || target == nil {
			continue
		}
		rel := &models.Relationship{
			SourceEntityID:   source.ID,
			TargetEntityID:   target.ID,
			RelationshipType: strings.ToLower(r.Relationship),
			Properties:       models.Metadata{"description": r.Description},
			Confidence:       1.0,
		}
		if err := s.entities.InsertRelationship(ctx, rel); err != nil {
			return fmt.Errorf("failed to insert relationship %q -> %q: %w", r.Source, r.Target, err)
		}
		if s.graph != nil {
			if err := s.graph.UpsertRelationship(ctx, *rel); err != nil {
				log.Printf("Warning: failed to mirror relationship into graph: %v", err)
			}
		}
	}

	return nil
}

// chunkWords splits content into word windows of size words with the
// given overlap. Chunk indices are contiguous from zero.
func chunkWords(content string, size, overlap int) []string {
	words := strings.Fields(content)
	if len(words) == 0 {
		return nil
	}
	step := size - overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

func (s *IngestService) summarize(ctx context.Context, content string) string {
	if s.completer == nil {
		return fallbackSummarize(content)
	}

	input := truncateText(content, maxSummaryInputChars)
	messages := []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf(summaryPromptTemplate, maxSummaryWords, input)},
	}
	summary, err := s.completer.Complete(ctx, messages)
	if err != nil {
		log.Printf("Warning: summary generation failed: %v", err)
		return fallbackSummarize(content)
	}
	return strings.TrimSpace(summary)
}

// fallbackSummarize takes the first three sentences, capped at 500
// characters.
func fallbackSummarize(content string) string {
	sentences := strings.SplitN(content, ".", 4)
	n := len(sentences)
	if n > 3 {
		n = 3
	}
	summary := strings.Join(sentences[:n], ".")
	if len(summary) > 500 {
		summary = truncateText(summary, 500) + "..."
	}
	return summary
}

func (s *IngestService) embed(ctx context.Context, text string) []float64 {
	if s.embedder == nil {
		return nil
	}
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("Warning: embedding generation failed: %v", err)
		return nil
	}
	return embedding
}

func (s *IngestService) extractEntities(ctx context.Context, text string) []extractedEntity {
	if s.completer == nil {
		return fallbackExtractEntities(text)
	}

	input := truncateText(text, maxEntityInputChars)
	messages := []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf(entityPromptTemplate, input)},
	}
	response, err := s.completer.Complete(ctx, messages)
	if err != nil {
		log.Printf("Warning: entity extraction failed: %v", err)
		return fallbackExtractEntities(text)
	}

	var entities []extractedEntity
	if err := extractJSONArray(response, &entities); err != nil {
		log.Printf("Warning: could not parse extracted entities: %v", err)
		return fallbackExtractEntities(text)
	}
	return entities
}

func fallbackExtractEntities(text string) []extractedEntity {
	var entities []extractedEntity
	for _, p := range fallbackEntityPatterns {
		matches := p.pattern.FindAllString(text, -1)
		if len(matches) > maxEntitiesPerPattern {
			matches = matches[:maxEntitiesPerPattern]
		}
		for _, m := range matches {
			entities = append(entities, extractedEntity{
				Name:        m,
				Type:        p.entityType,
				Description: fmt.Sprintf("%s mentioned in research text", p.entityType),
			})
		}
	}
	return entities
}

func (s *IngestService) extractRelationships(ctx context.Context, entities []extractedEntity, text string) []extractedRelationship {
	if s.completer == nil || len(entities) < 2 {
		return nil
	}

	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	input := truncateText(text, maxRelationshipInputChars)
	messages := []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf(relationshipPromptTemplate, strings.Join(names, ", "), input)},
	}
	response, err := s.completer.Complete(ctx, messages)
	if err != nil {
		log.Printf("Warning: relationship extraction failed: %v", err)
		return nil
	}

	var relationships []extractedRelationship
	if err := extractJSONArray(response, &relationships); err != nil {
		log.Printf("Warning: could not parse extracted relationships: %v", err)
		return nil
	}
	return relationships
}

// summaryOrLead prefers the summary as the document-level embedding
// text, falling back to the leading content.
func summaryOrLead(summary, content string) string {
	if strings.TrimSpace(summary) != "" {
		return summary
	}
	return truncateText(content, maxSummaryInputChars)
}
