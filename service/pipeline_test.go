package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bionexus-backend/llm"
	"bionexus-backend/models"
)

func TestPipelineRunsStagesInOrder(t *testing.T) {
	completer := scriptedCompleter(
		"relevant documents identified",
		"key findings extracted",
		"synthesized answer text",
		"verification notes",
	)
	p := NewReasoningPipeline(completer)
	query := models.Query{Text: "How does microgravity affect bone density?", Type: models.QueryTypeFactual}

	result := p.Run(context.Background(), query, []models.DocumentHit{docHit("Bone Study", "bone.pdf", 0.9)}, nil)

	if result.Status != PipelineStatusSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.Error)
	}
	if len(completer.calls) != 4 {
		t.Fatalf("expected 4 completion calls, got %d", len(completer.calls))
	}
	if result.Response != "synthesized answer text" {
		t.Errorf("response must come from the synthesize stage, got %q", result.Response)
	}
	if result.Analysis != "key findings extracted" {
		t.Errorf("analysis must come from the analyze stage, got %q", result.Analysis)
	}

	// transcript: user question plus one assistant message per stage
	if len(result.Transcript) != 5 {
		t.Fatalf("expected transcript of 5 messages, got %d", len(result.Transcript))
	}
	if result.Transcript[0].Role != llm.RoleUser || result.Transcript[0].Content != query.Text {
		t.Errorf("transcript must open with the user question, got %+v", result.Transcript[0])
	}
	for i, msg := range result.Transcript[1:] {
		if msg.Role != llm.RoleAssistant {
			t.Errorf("transcript message %d: expected assistant role, got %s", i+1, msg.Role)
		}
	}
}

func TestPipelineVerifyDoesNotReplaceResponse(t *testing.T) {
	completer := scriptedCompleter("s1", "s2", "the real answer", "CORRECTION: everything is wrong")
	p := NewReasoningPipeline(completer)

	result := p.Run(context.Background(), models.Query{Text: "q"}, nil, nil)

	if result.Response != "the real answer" {
		t.Errorf("verification output must not replace the response, got %q", result.Response)
	}
	if result.Transcript[len(result.Transcript)-1].Content != "CORRECTION: everything is wrong" {
		t.Error("verification output must still be recorded in the transcript")
	}
}

func TestPipelineAbortsOnStageFailure(t *testing.T) {
	completer := &fakeCompleter{
		fn: func(call int, _ []llm.Message) (string, error) {
			if call == 1 {
				return "", errors.New("rate limited")
			}
			return "ok", nil
		},
	}
	p := NewReasoningPipeline(completer)

	result := p.Run(context.Background(), models.Query{Text: "q"}, nil, nil)

	if result.Status != PipelineStatusError {
		t.Fatalf("expected error status, got %s", result.Status)
	}
	if !strings.Contains(result.Error, "analyze stage failed") {
		t.Errorf("error should name the failing stage, got %q", result.Error)
	}
	// later stages must not run after a failure
	if len(completer.calls) != 2 {
		t.Errorf("expected pipeline to stop after 2 calls, got %d", len(completer.calls))
	}
	if result.Response != "" {
		t.Errorf("failed run must not carry a response, got %q", result.Response)
	}
}

func TestPipelineNilCompleter(t *testing.T) {
	p := NewReasoningPipeline(nil)

	result := p.Run(context.Background(), models.Query{Text: "q"}, nil, nil)

	if result.Status != PipelineStatusError {
		t.Fatalf("expected error status, got %s", result.Status)
	}
}

func TestPipelineStagePromptsCarryEvidence(t *testing.T) {
	completer := scriptedCompleter("a", "b", "c", "d")
	p := NewReasoningPipeline(completer)
	docs := []models.DocumentHit{docHit("Plant Growth", "plants.pdf", 0.92)}
	kg := []models.GraphRelation{{
		Source:       models.Entity{Name: "Arabidopsis"},
		Relationship: models.Relationship{RelationshipType: "studies"},
		Target:       models.Entity{Name: "Microgravity"},
	}}

	p.Run(context.Background(), models.Query{Text: "q"}, docs, kg)

	searchMsgs := completer.calls[0]
	if searchMsgs[0].Role != llm.RoleSystem {
		t.Error("each stage must lead with its system instruction")
	}
	if !strings.Contains(searchMsgs[2].Content, "Plant Growth") {
		t.Error("search stage should see the retrieved documents")
	}

	analyzeMsgs := completer.calls[1]
	if !strings.Contains(analyzeMsgs[2].Content, "Arabidopsis -[studies]-> Microgravity") {
		t.Error("analyze stage should see the knowledge graph context")
	}
}
