package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"unicode/utf8"

	"bionexus-backend/llm"
	"bionexus-backend/models"
)

const (
	defaultMaxSources    = 10
	maxFollowUpQuestions = 5
	maxAnswerExcerptLen  = 1000

	// Sources scoring above this similarity count toward the
	// multiple-strong-sources confidence bonus.
	strongSourceThreshold = 0.8
	strongSourceBonus     = 0.1
	maxSourceBonus        = 0.3
)

const followUpPrompt = `You are a research question generator. Generate follow-up questions based on
the original query and answer. Return the questions in JSON array format.`

const followUpTemplate = `Generate 3-5 follow-up questions for:

Original Query: "%s"
Answer Summary: %s

Questions should:
- Explore uncovered aspects
- Dig deeper into findings
- Connect to broader implications
- Suggest comparative angles

Return as JSON array:
["question 1", "question 2", "question 3"]`

// AnswerComposer assembles the final answer: confidence score, source
// citations and follow-up questions around the pipeline's response.
type AnswerComposer struct {
	completer  llm.Completer
	maxSources int
}

// ComposerOption is a functional option for AnswerComposer
type ComposerOption func(*AnswerComposer)

// ComposerWithMaxSources sets the citation cap on composed answers
func ComposerWithMaxSources(n int) ComposerOption {
	return func(c *AnswerComposer) {
		if n > 0 {
			c.maxSources = n
		}
	}
}

// NewAnswerComposer creates a composer over the given completion provider
func NewAnswerComposer(completer llm.Completer, opts ...ComposerOption) *AnswerComposer {
	c := &AnswerComposer{
		completer:  completer,
		maxSources: defaultMaxSources,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose builds the Answer from retrieval and pipeline output. When the
// pipeline reported an error the answer explains it with zero confidence
// and no sources, while keeping the real classification.
func (c *AnswerComposer) Compose(ctx context.Context, queryText string, results *models.SearchResults, pipelineResult *PipelineResult, query models.Query) *models.Answer {
	if pipelineResult.Status != PipelineStatusSuccess {
		return &models.Answer{
			Query:             queryText,
			Answer:            fmt.Sprintf("I encountered an error while processing your query: %s", pipelineResult.Error),
			Sources:           []models.Source{},
			FollowUpQuestions: []string{},
			Confidence:        0.0,
			QueryType:         query.Type,
			SearchResults:     results,
		}
	}

	sources := extractSources(results, c.maxSources)
	answer := &models.Answer{
		Query:             queryText,
		Answer:            pipelineResult.Response,
		Sources:           sources,
		FollowUpQuestions: c.followUpQuestions(ctx, queryText, pipelineResult.Response),
		Confidence:        calculateConfidence(results),
		QueryType:         query.Type,
		NumSources:        len(sources),
		SearchResults:     results,
	}
	return answer
}

// extractSources builds citations from documents then chunks, in that
// order, truncated to the first max after concatenation. No re-sorting
// by score happens here; each group keeps its incoming order.
func extractSources(results *models.SearchResults, max int) []models.Source {
	sources := make([]models.Source, 0, len(results.Documents)+len(results.Chunks))

	for _, doc := range results.Documents {
		sources = append(sources, models.Source{
			Type:       models.EvidenceTypeDocument,
			Title:      displayTitle(doc.Title, doc.Document.Filename),
			Filename:   doc.Document.Filename,
			Similarity: doc.Similarity,
			ID:         doc.ID.String(),
		})
	}

	for _, chunk := range results.Chunks {
		index := chunk.ChunkIndex
		sources = append(sources, models.Source{
			Type:       models.EvidenceTypeChunk,
			Title:      displayTitle(chunk.Title, chunk.Filename),
			Filename:   chunk.Filename,
			Similarity: chunk.Similarity,
			ID:         chunk.ID.String(),
			ChunkIndex: &index,
		})
	}

	if len(sources) > max {
		sources = sources[:max]
	}
	return sources
}

// calculateConfidence averages the similarity of all vector evidence and
// adds a capped bonus for multiple strongly relevant sources. Graph
// context never contributes. No vector evidence means exactly 0.0.
func calculateConfidence(results *models.SearchResults) float64 {
	var similarities []float64
	for _, doc := range results.Documents {
		similarities = append(similarities, doc.Similarity)
	}
	for _, chunk := range results.Chunks {
		similarities = append(similarities, chunk.Similarity)
	}

	if len(similarities) == 0 {
		return 0.0
	}

	var sum float64
	var strongSources int
	for _, s := range similarities {
		sum += s
		if s > strongSourceThreshold {
			strongSources++
		}
	}

	bonus := math.Min(float64(strongSources)*strongSourceBonus, maxSourceBonus)
	confidence := math.Min(sum/float64(len(similarities))+bonus, 1.0)
	return math.Round(confidence*100) / 100
}

// followUpQuestions asks the provider for 3-5 follow-ups; any failure
// yields an empty list.
func (c *AnswerComposer) followUpQuestions(ctx context.Context, queryText, answer string) []string {
	if c.completer == nil {
		return []string{}
	}

	answer = truncateText(answer, maxAnswerExcerptLen)

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: followUpPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf(followUpTemplate, queryText, answer)},
	}

	response, err := c.completer.Complete(ctx, messages)
	if err != nil {
		log.Printf("Warning: Follow-up question generation failed: %v", err)
		return []string{}
	}

	var questions []string
	if err := extractJSONArray(response, &questions); err != nil {
		log.Printf("Warning: Could not parse follow-up questions: %v", err)
		return []string{}
	}

	if len(questions) > maxFollowUpQuestions {
		questions = questions[:maxFollowUpQuestions]
	}
	return questions
}

// truncateText caps s at n bytes without splitting a multi-byte rune
func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
