package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"bionexus-backend/llm"
	"bionexus-backend/models"
)

const (
	defaultSimilarityThreshold = 0.7
	defaultDocumentLimit       = 10
	defaultChunkLimit          = 20
	defaultGraphLimit          = 20

	// Knowledge-graph context is never ranked against vector results;
	// it enters the merged list at a flat mid-level score.
	graphRelevanceScore = 0.5
)

// Retriever performs hybrid retrieval over the document store and the
// knowledge graph. Retrieval never fails outright: each failing
// sub-search degrades to an empty list.
type Retriever struct {
	embedder   llm.Embedder
	docs       DocumentSearcher
	graph      GraphSearcher
	threshold  float64
	docLimit   int
	chunkLimit int
	graphLimit int
}

// RetrieverOption is a functional option for Retriever
type RetrieverOption func(*Retriever)

// RetrieverWithEmbedder sets the embedding provider
func RetrieverWithEmbedder(embedder llm.Embedder) RetrieverOption {
	return func(r *Retriever) {
		r.embedder = embedder
	}
}

// RetrieverWithDocumentSearcher sets the document store
func RetrieverWithDocumentSearcher(docs DocumentSearcher) RetrieverOption {
	return func(r *Retriever) {
		r.docs = docs
	}
}

// RetrieverWithGraphSearcher sets the knowledge graph store
func RetrieverWithGraphSearcher(graph GraphSearcher) RetrieverOption {
	return func(r *Retriever) {
		r.graph = graph
	}
}

// RetrieverWithThreshold sets the similarity cutoff. Results below the
// threshold are dropped, not down-ranked. Applied identically to
// document and chunk hits; tunable if chunks ever warrant their own.
func RetrieverWithThreshold(threshold float64) RetrieverOption {
	return func(r *Retriever) {
		r.threshold = threshold
	}
}

// NewRetriever creates a retriever with default limits and threshold
func NewRetriever(opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		threshold:  defaultSimilarityThreshold,
		docLimit:   defaultDocumentLimit,
		chunkLimit: defaultChunkLimit,
		graphLimit: defaultGraphLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve runs vector search over documents and chunks plus, when
// enabled, substring search over the knowledge graph, and merges the
// three result lists into one ranked evidence sequence.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, includeGraph bool) *models.SearchResults {
	results := &models.SearchResults{
		Documents:      []models.DocumentHit{},
		Chunks:         []models.ChunkHit{},
		KnowledgeGraph: []models.GraphRelation{},
	}

	embedding := r.queryEmbedding(ctx, queryText)
	if len(embedding) > 0 {
		results.Documents = r.searchDocuments(ctx, embedding)
		results.Chunks = r.searchChunks(ctx, embedding)
	}

	if includeGraph {
		results.KnowledgeGraph = r.searchKnowledgeGraph(ctx, queryText)
	}

	results.Combined = combineResults(results)
	return results
}

// queryEmbedding embeds the query text; a provider failure degrades
// vector search to empty results rather than failing retrieval.
func (r *Retriever) queryEmbedding(ctx context.Context, queryText string) []float64 {
	if r.embedder == nil {
		return nil
	}
	embedding, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		log.Printf("Warning: Failed to generate query embedding: %v. Skipping vector search.", err)
		return nil
	}
	return embedding
}

func (r *Retriever) searchDocuments(ctx context.Context, embedding []float64) []models.DocumentHit {
	if r.docs == nil {
		return []models.DocumentHit{}
	}

	hits, err := r.docs.SearchSimilarDocuments(ctx, embedding, r.docLimit)
	if err != nil {
		log.Printf("Warning: Document search failed: %v", err)
		return []models.DocumentHit{}
	}

	filtered := make([]models.DocumentHit, 0, len(hits))
	for _, hit := range hits {
		if hit.Similarity >= r.threshold {
			filtered = append(filtered, hit)
		}
	}
	return filtered
}

func (r *Retriever) searchChunks(ctx context.Context, embedding []float64) []models.ChunkHit {
	if r.docs == nil {
		return []models.ChunkHit{}
	}

	hits, err := r.docs.SearchSimilarChunks(ctx, embedding, r.chunkLimit)
	if err != nil {
		log.Printf("Warning: Chunk search failed: %v", err)
		return []models.ChunkHit{}
	}

	filtered := make([]models.ChunkHit, 0, len(hits))
	for _, hit := range hits {
		if hit.Similarity >= r.threshold {
			filtered = append(filtered, hit)
		}
	}
	return filtered
}

// searchKnowledgeGraph matches entities by name/description and expands
// each match to its direct relationships in both directions.
func (r *Retriever) searchKnowledgeGraph(ctx context.Context, queryText string) []models.GraphRelation {
	if r.graph == nil {
		return []models.GraphRelation{}
	}

	entities, err := r.graph.SearchByText(ctx, queryText, r.graphLimit)
	if err != nil {
		log.Printf("Warning: Knowledge graph search failed: %v", err)
		return []models.GraphRelation{}
	}

	kgContext := []models.GraphRelation{}
	for _, entity := range entities {
		relations, err := r.graph.EntityRelationships(ctx, entity.ID)
		if err != nil {
			log.Printf("Warning: Failed to get relationships for entity %s: %v", entity.ID, err)
			continue
		}
		kgContext = append(kgContext, relations...)
	}
	return kgContext
}

// combineResults tags every retrieved item with its origin, relevance
// and display title, then sorts by relevance descending. The sort is
// stable: ties keep their original relative order, so identical inputs
// always produce identical evidence ordering.
func combineResults(results *models.SearchResults) []models.EvidenceItem {
	combined := make([]models.EvidenceItem, 0, len(results.Documents)+len(results.Chunks)+len(results.KnowledgeGraph))

	for _, doc := range results.Documents {
		combined = append(combined, models.EvidenceItem{
			Type:           models.EvidenceTypeDocument,
			Source:         models.EvidenceSourceVector,
			RelevanceScore: doc.Similarity,
			Title:          displayTitle(doc.Title, doc.Document.Filename),
		})
	}

	for _, chunk := range results.Chunks {
		combined = append(combined, models.EvidenceItem{
			Type:           models.EvidenceTypeChunk,
			Source:         models.EvidenceSourceVector,
			RelevanceScore: chunk.Similarity,
			Title:          fmt.Sprintf("%s (chunk %d)", displayTitle(chunk.Filename, ""), chunk.ChunkIndex),
		})
	}

	for _, rel := range results.KnowledgeGraph {
		combined = append(combined, models.EvidenceItem{
			Type:           models.EvidenceTypeKnowledgeGraph,
			Source:         models.EvidenceSourceGraph,
			RelevanceScore: graphRelevanceScore,
			Title:          "KG: " + displayTitle(rel.Source.Name, ""),
		})
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].RelevanceScore > combined[j].RelevanceScore
	})

	return combined
}

// displayTitle falls back from title to filename to "Unknown"
func displayTitle(title, filename string) string {
	if title != "" {
		return title
	}
	if filename != "" {
		return filename
	}
	return "Unknown"
}
