package models

// QueryType classifies a user question
type QueryType string

const (
	QueryTypeFactual     QueryType = "factual"
	QueryTypeAnalytical  QueryType = "analytical"
	QueryTypeComparative QueryType = "comparative"
	QueryTypeProcedural  QueryType = "procedural"
	QueryTypeUnknown     QueryType = "unknown"
	QueryTypeError       QueryType = "error"
)

// ValidQueryType reports whether t is one of the four classifiable types
func ValidQueryType(t QueryType) bool {
	switch t {
	case QueryTypeFactual, QueryTypeAnalytical, QueryTypeComparative, QueryTypeProcedural:
		return true
	}
	return false
}

// QueryConstraints are optional constraints extracted during classification
type QueryConstraints struct {
	TimePeriod string `json:"time_period,omitempty"`
	Scope      string `json:"scope,omitempty"`
	Format     string `json:"format,omitempty"`
}

// Query is a classified user question. Produced by the classifier,
// consumed by the reasoning pipeline; never persisted.
type Query struct {
	Text        string           `json:"query"`
	Type        QueryType        `json:"query_type"`
	KeyConcepts []string         `json:"key_concepts,omitempty"`
	Constraints QueryConstraints `json:"constraints,omitempty"`
}
