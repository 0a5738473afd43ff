package service

import (
	"context"
	"errors"
	"testing"

	"bionexus-backend/llm"
	"bionexus-backend/models"

	"github.com/google/uuid"
)

// newTestQueryService wires a fully working orchestrator out of fakes.
// The completer serves, in order: classification, the four pipeline
// stages, then follow-up questions.
func newTestQueryService(chat ChatStore) (*QueryService, *fakeCompleter) {
	completer := scriptedCompleter(
		`{"query_type": "analytical", "key_concepts": ["bone density"]}`,
		"search stage output",
		"analysis output",
		"final answer",
		"verification output",
		`["follow-up one"]`,
	)

	retriever := NewRetriever(
		RetrieverWithEmbedder(&fakeEmbedder{vec: []float64{0.1}}),
		RetrieverWithDocumentSearcher(&fakeDocumentSearcher{
			docs: []models.DocumentHit{docHit("Bone Study", "bone.pdf", 0.9)},
		}),
	)

	svc := NewQueryService(
		QueryServiceWithRetriever(retriever),
		QueryServiceWithClassifier(NewQueryClassifier(completer)),
		QueryServiceWithPipeline(NewReasoningPipeline(completer)),
		QueryServiceWithComposer(NewAnswerComposer(completer)),
		QueryServiceWithChatStore(chat),
		QueryServiceWithGraphContext(false),
	)
	return svc, completer
}

func TestAskQuestionEndToEnd(t *testing.T) {
	svc, _ := newTestQueryService(nil)

	answer := svc.AskQuestion(context.Background(), "How does microgravity affect bones?", nil)

	if answer.Answer != "final answer" {
		t.Errorf("expected synthesized answer, got %q", answer.Answer)
	}
	if answer.QueryType != models.QueryTypeAnalytical {
		t.Errorf("expected analytical classification, got %s", answer.QueryType)
	}
	if answer.NumSources != 1 {
		t.Errorf("expected 1 source, got %d", answer.NumSources)
	}
	if answer.SearchResults == nil {
		t.Error("answer should echo the search results")
	}
	if len(answer.FollowUpQuestions) != 1 {
		t.Errorf("expected 1 follow-up, got %d", len(answer.FollowUpQuestions))
	}
}

func TestAskQuestionNeverPanicsWithNothingWired(t *testing.T) {
	svc := NewQueryService()

	answer := svc.AskQuestion(context.Background(), "anything", nil)

	if answer == nil {
		t.Fatal("expected an answer, got nil")
	}
	if answer.QueryType != models.QueryTypeError {
		t.Errorf("expected error query type, got %s", answer.QueryType)
	}
	if answer.Confidence != 0.0 {
		t.Errorf("expected zero confidence, got %v", answer.Confidence)
	}
	if answer.Query != "anything" {
		t.Errorf("error answer must still echo the query, got %q", answer.Query)
	}
}

func TestAskQuestionProviderFailureKeepsClassification(t *testing.T) {
	completer := &fakeCompleter{
		fn: func(call int, _ []llm.Message) (string, error) {
			if call == 0 {
				return `{"query_type": "procedural"}`, nil
			}
			return "", errors.New("provider down")
		},
	}
	svc := NewQueryService(
		QueryServiceWithRetriever(NewRetriever()),
		QueryServiceWithClassifier(NewQueryClassifier(completer)),
		QueryServiceWithPipeline(NewReasoningPipeline(completer)),
		QueryServiceWithComposer(NewAnswerComposer(completer)),
	)

	answer := svc.AskQuestion(context.Background(), "How is the experiment run?", nil)

	// pipeline failure degrades the answer but not the classification
	if answer.QueryType != models.QueryTypeProcedural {
		t.Errorf("expected procedural, got %s", answer.QueryType)
	}
	if answer.Confidence != 0.0 {
		t.Errorf("expected zero confidence, got %v", answer.Confidence)
	}
}

func TestAskQuestionPersistsExchangeInOrder(t *testing.T) {
	chat := &fakeChatStore{}
	svc, _ := newTestQueryService(chat)
	sessionID := uuid.New()

	answer := svc.AskQuestion(context.Background(), "How does microgravity affect bones?", &sessionID)

	if len(chat.appended) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(chat.appended))
	}
	user, assistant := chat.appended[0], chat.appended[1]
	if user.role != models.RoleUser || user.content != "How does microgravity affect bones?" {
		t.Errorf("first persisted message must be the user turn, got %+v", user)
	}
	if assistant.role != models.RoleAssistant || assistant.content != answer.Answer {
		t.Errorf("second persisted message must be the assistant turn, got %+v", assistant)
	}
	if len(assistant.sources) != len(answer.Sources) {
		t.Error("assistant message must carry the answer's sources")
	}
	if user.sessionID != sessionID || assistant.sessionID != sessionID {
		t.Error("messages must land in the given session")
	}
}

func TestAskQuestionWithoutSessionWritesNothing(t *testing.T) {
	chat := &fakeChatStore{}
	svc, _ := newTestQueryService(chat)

	svc.AskQuestion(context.Background(), "stateless question", nil)

	if len(chat.appended) != 0 {
		t.Errorf("expected no persisted messages, got %d", len(chat.appended))
	}
}

func TestAskQuestionChatFailureBecomesErrorAnswer(t *testing.T) {
	chat := &fakeChatStore{err: errors.New("sessions table missing")}
	svc, _ := newTestQueryService(chat)
	sessionID := uuid.New()

	answer := svc.AskQuestion(context.Background(), "q", &sessionID)

	if answer.QueryType != models.QueryTypeError {
		t.Errorf("expected error query type, got %s", answer.QueryType)
	}
	if answer.Confidence != 0.0 {
		t.Errorf("expected zero confidence, got %v", answer.Confidence)
	}
}
