package models

// Evidence origin tags
const (
	EvidenceTypeDocument       = "document"
	EvidenceTypeChunk          = "chunk"
	EvidenceTypeKnowledgeGraph = "knowledge_graph"

	EvidenceSourceVector = "vector_search"
	EvidenceSourceGraph  = "graph_search"
)

// EvidenceItem is one entry in the merged, ranked evidence list offered
// to the reasoning pipeline. Transient; lifetime is one query.
type EvidenceItem struct {
	Type           string  `json:"type"`
	Source         string  `json:"source"`
	RelevanceScore float64 `json:"relevance_score"`
	Title          string  `json:"title"`
}

// SearchResults holds the raw and merged output of hybrid retrieval
type SearchResults struct {
	Documents      []DocumentHit   `json:"documents"`
	Chunks         []ChunkHit      `json:"chunks"`
	KnowledgeGraph []GraphRelation `json:"knowledge_graph"`
	Combined       []EvidenceItem  `json:"combined_results"`
}

// Source is one attributed citation on an answer
type Source struct {
	Type       string  `json:"type"`
	Title      string  `json:"title"`
	Filename   string  `json:"filename"`
	Similarity float64 `json:"similarity"`
	ID         string  `json:"id"`
	ChunkIndex *int    `json:"chunk_index,omitempty"`
}

// Answer is the composed result returned to the caller of AskQuestion.
// It is always well-formed, even under total backend failure.
type Answer struct {
	Query             string         `json:"query"`
	Answer            string         `json:"answer"`
	Sources           []Source       `json:"sources"`
	FollowUpQuestions []string       `json:"follow_up_questions"`
	Confidence        float64        `json:"confidence"`
	QueryType         QueryType      `json:"query_type"`
	NumSources        int            `json:"num_sources"`
	SearchResults     *SearchResults `json:"search_results,omitempty"`
}
