package service

import (
	"context"
	"fmt"
	"log"

	"bionexus-backend/llm"
	"bionexus-backend/models"
)

const classifyPrompt = `You are a query classification specialist. Analyze the research query
and identify its type and specific constraints. Return the analysis in JSON format.`

const classifyTemplate = `Classify this query: "%s"

Types:
- factual: Asking for specific facts, data, or information
- analytical: Requesting analysis, interpretation, or comparison
- comparative: Comparing different studies, methods, or findings
- procedural: Asking about methods, procedures, or how things work

Also identify:
- Key concepts/entities mentioned
- Time constraints
- Scope constraints
- Output preferences

Return as JSON:
{
    "query_type": "type",
    "key_concepts": ["concept1", "concept2"],
    "constraints": {
        "time_period": "if specified",
        "scope": "if specified",
        "format": "if specified"
    }
}`

// QueryClassifier classifies questions via one completion call.
// Classification never fails the caller: any provider or parse failure
// degrades to the factual default.
type QueryClassifier struct {
	completer llm.Completer
}

// NewQueryClassifier creates a classifier over the given completion provider
func NewQueryClassifier(completer llm.Completer) *QueryClassifier {
	return &QueryClassifier{completer: completer}
}

type classification struct {
	QueryType   string                  `json:"query_type"`
	KeyConcepts []string                `json:"key_concepts"`
	Constraints models.QueryConstraints `json:"constraints"`
}

// Classify determines the query type and extracts key concepts and constraints
func (c *QueryClassifier) Classify(ctx context.Context, queryText string) models.Query {
	fallback := models.Query{Text: queryText, Type: models.QueryTypeFactual}

	if c.completer == nil {
		return fallback
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: classifyPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf(classifyTemplate, queryText)},
	}

	response, err := c.completer.Complete(ctx, messages)
	if err != nil {
		log.Printf("Warning: Query classification failed: %v. Defaulting to factual.", err)
		return fallback
	}

	var parsed classification
	if err := extractJSONObject(response, &parsed); err != nil {
		log.Printf("Warning: Could not parse classification response: %v. Defaulting to factual.", err)
		return fallback
	}

	queryType := models.QueryType(parsed.QueryType)
	if !models.ValidQueryType(queryType) {
		queryType = models.QueryTypeFactual
	}

	return models.Query{
		Text:        queryText,
		Type:        queryType,
		KeyConcepts: parsed.KeyConcepts,
		Constraints: parsed.Constraints,
	}
}
