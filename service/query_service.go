package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"bionexus-backend/models"
)

// QueryService orchestrates a question end to end: hybrid retrieval,
// query classification, the reasoning pipeline, answer composition and
// optional chat persistence. It never returns an error; every failure
// mode is folded into the Answer it hands back.
type QueryService struct {
	retriever    *Retriever
	classifier   *QueryClassifier
	pipeline     *ReasoningPipeline
	composer     *AnswerComposer
	chat         ChatStore
	includeGraph bool
}

// QueryServiceOption is a functional option for QueryService
type QueryServiceOption func(*QueryService)

// QueryServiceWithRetriever sets the hybrid retriever
func QueryServiceWithRetriever(retriever *Retriever) QueryServiceOption {
	return func(s *QueryService) {
		s.retriever = retriever
	}
}

// QueryServiceWithClassifier sets the query classifier
func QueryServiceWithClassifier(classifier *QueryClassifier) QueryServiceOption {
	return func(s *QueryService) {
		s.classifier = classifier
	}
}

// QueryServiceWithPipeline sets the reasoning pipeline
func QueryServiceWithPipeline(pipeline *ReasoningPipeline) QueryServiceOption {
	return func(s *QueryService) {
		s.pipeline = pipeline
	}
}

// QueryServiceWithComposer sets the answer composer
func QueryServiceWithComposer(composer *AnswerComposer) QueryServiceOption {
	return func(s *QueryService) {
		s.composer = composer
	}
}

// QueryServiceWithChatStore sets the conversation store. Without one,
// answers are never persisted.
func QueryServiceWithChatStore(chat ChatStore) QueryServiceOption {
	return func(s *QueryService) {
		s.chat = chat
	}
}

// QueryServiceWithGraphContext toggles knowledge-graph retrieval
func QueryServiceWithGraphContext(include bool) QueryServiceOption {
	return func(s *QueryService) {
		s.includeGraph = include
	}
}

// NewQueryService creates the orchestrator. Graph context is on by
// default.
func NewQueryService(opts ...QueryServiceOption) *QueryService {
	s := &QueryService{includeGraph: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AskQuestion answers a question over the corpus. A non-nil sessionID
// persists the exchange as a user message followed by an assistant
// message; a nil one runs the query statelessly. The returned Answer is
// always usable: orchestration failures surface as a query_type of
// "error" with zero confidence, never as a panic or an error value.
func (s *QueryService) AskQuestion(ctx context.Context, query string, sessionID *uuid.UUID) (answer *models.Answer) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Error: query orchestration panicked: %v", r)
			answer = errorAnswer(query, fmt.Sprintf("internal error: %v", r))
		}
	}()

	results := s.retriever.Retrieve(ctx, query, s.includeGraph)
	classified := s.classifier.Classify(ctx, query)

	pipelineResult := s.pipeline.Run(ctx, classified, results.Documents, results.KnowledgeGraph)

	answer = s.composer.Compose(ctx, query, results, pipelineResult, classified)

	if sessionID != nil && s.chat != nil {
		if err := s.persistExchange(ctx, *sessionID, query, answer); err != nil {
			log.Printf("Error: failed to save chat history: %v", err)
			return errorAnswer(query, fmt.Sprintf("failed to save chat history: %v", err))
		}
	}

	return answer
}

// persistExchange writes the user turn then the assistant turn. Order
// matters for history replay.
func (s *QueryService) persistExchange(ctx context.Context, sessionID uuid.UUID, query string, answer *models.Answer) error {
	if _, err := s.chat.AppendMessage(ctx, sessionID, models.RoleUser, query, nil); err != nil {
		return fmt.Errorf("append user message: %w", err)
	}
	if _, err := s.chat.AppendMessage(ctx, sessionID, models.RoleAssistant, answer.Answer, answer.Sources); err != nil {
		return fmt.Errorf("append assistant message: %w", err)
	}
	return nil
}

func errorAnswer(query, reason string) *models.Answer {
	return &models.Answer{
		Query:             query,
		Answer:            fmt.Sprintf("I encountered an error while processing your query: %s", reason),
		Sources:           []models.Source{},
		FollowUpQuestions: []string{},
		Confidence:        0.0,
		QueryType:         models.QueryTypeError,
		NumSources:        0,
	}
}
