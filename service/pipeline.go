package service

import (
	"context"
	"fmt"
	"strings"

	"bionexus-backend/llm"
	"bionexus-backend/models"
)

// Pipeline result statuses
const (
	PipelineStatusSuccess = "success"
	PipelineStatusError   = "error"
)

// Stage instruction preambles. Each stage is a single completion call
// with its preamble plus the stage's contextual inputs.
const (
	searchStagePrompt = `You are an expert at searching through a large repository of space-bioscience research documents.
You understand scientific terminology, research methodologies, and can identify the most relevant
documents based on user queries. You excel at semantic search and can understand the context
behind research questions.

Analyze the provided documents and identify the most relevant ones.`

	analyzeStagePrompt = `You are a seasoned space-biology researcher with expertise in microgravity effects,
radiation biology, and space exploration technologies. You can analyze complex research data, identify
patterns, and synthesize information from multiple sources to provide comprehensive insights.

Analyze the search results and extract key findings.`

	synthesizeStagePrompt = `You are an expert at combining information from multiple research sources to
create comprehensive, well-structured answers. You understand how to present complex
scientific information in an accessible way while maintaining accuracy and citing sources.

Synthesize the analyzed findings into a coherent answer.`

	verifyStagePrompt = `You are a meticulous fact checker with deep knowledge of scientific research standards
and methodology. You ensure all claims are properly supported by evidence and
that citations are accurate and relevant.

Verify the accuracy of the synthesized answer.`
)

// PipelineResult is the outcome of one reasoning pipeline run
type PipelineResult struct {
	Status     string        `json:"status"`
	Response   string        `json:"response"`
	Analysis   string        `json:"analysis"`
	Transcript []llm.Message `json:"transcript"`
	Error      string        `json:"error,omitempty"`
}

// ReasoningPipeline runs the fixed four-stage chain
// search -> analyze -> synthesize -> verify. Stages execute strictly in
// order; each consumes the transcript the previous stage appended to.
type ReasoningPipeline struct {
	completer llm.Completer
}

// NewReasoningPipeline creates a pipeline over the given completion provider
func NewReasoningPipeline(completer llm.Completer) *ReasoningPipeline {
	return &ReasoningPipeline{completer: completer}
}

// pipelineState is the state threaded through the stages
type pipelineState struct {
	transcript []llm.Message
	documents  []models.DocumentHit
	kgContext  []models.GraphRelation
	analysis   string
	response   string
}

// Run executes all four stages. A completion failure in any stage
// aborts the run; the caller receives a structured error result, never
// an error value.
func (p *ReasoningPipeline) Run(ctx context.Context, query models.Query, documents []models.DocumentHit, kgContext []models.GraphRelation) *PipelineResult {
	if p.completer == nil {
		return &PipelineResult{
			Status: PipelineStatusError,
			Error:  "completion provider not set",
		}
	}

	state := &pipelineState{
		transcript: []llm.Message{{Role: llm.RoleUser, Content: query.Text}},
		documents:  documents,
		kgContext:  kgContext,
	}

	stages := []func(context.Context, *pipelineState) error{
		p.runSearch,
		p.runAnalyze,
		p.runSynthesize,
		p.runVerify,
	}

	for _, stage := range stages {
		if err := stage(ctx, state); err != nil {
			return &PipelineResult{
				Status:     PipelineStatusError,
				Error:      err.Error(),
				Transcript: state.transcript,
			}
		}
	}

	return &PipelineResult{
		Status:     PipelineStatusSuccess,
		Response:   state.response,
		Analysis:   state.analysis,
		Transcript: state.transcript,
	}
}

// runSearch identifies the most relevant documents for the question
func (p *ReasoningPipeline) runSearch(ctx context.Context, state *pipelineState) error {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: searchStagePrompt},
		{Role: llm.RoleUser, Content: state.transcript[0].Content},
		{Role: llm.RoleUser, Content: "Available documents:\n" + formatDocumentEvidence(state.documents)},
	}

	response, err := p.completer.Complete(ctx, messages)
	if err != nil {
		return fmt.Errorf("search stage failed: %w", err)
	}

	state.transcript = append(state.transcript, llm.Message{Role: llm.RoleAssistant, Content: response})
	return nil
}

// runAnalyze extracts key findings from the transcript and graph context
func (p *ReasoningPipeline) runAnalyze(ctx context.Context, state *pipelineState) error {
	var transcript strings.Builder
	for _, msg := range state.transcript {
		transcript.WriteString(msg.Content)
		transcript.WriteString("\n")
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: analyzeStagePrompt},
		{Role: llm.RoleUser, Content: transcript.String()},
		{Role: llm.RoleUser, Content: "Knowledge graph context:\n" + formatGraphContext(state.kgContext)},
	}

	response, err := p.completer.Complete(ctx, messages)
	if err != nil {
		return fmt.Errorf("analyze stage failed: %w", err)
	}

	state.analysis = response
	state.transcript = append(state.transcript, llm.Message{Role: llm.RoleAssistant, Content: response})
	return nil
}

// runSynthesize drafts the answer from the analysis and original question
func (p *ReasoningPipeline) runSynthesize(ctx context.Context, state *pipelineState) error {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: synthesizeStagePrompt},
		{Role: llm.RoleUser, Content: "Analysis results:\n" + state.analysis},
		{Role: llm.RoleUser, Content: "Original query: " + state.transcript[0].Content},
	}

	response, err := p.completer.Complete(ctx, messages)
	if err != nil {
		return fmt.Errorf("synthesize stage failed: %w", err)
	}

	state.response = response
	state.transcript = append(state.transcript, llm.Message{Role: llm.RoleAssistant, Content: response})
	return nil
}

// runVerify fact-checks the draft against the document evidence. Its
// output lands in the transcript only; the synthesized response is the
// one returned. Intentional: verification serves as an audit record.
func (p *ReasoningPipeline) runVerify(ctx context.Context, state *pipelineState) error {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: verifyStagePrompt},
		{Role: llm.RoleUser, Content: "Synthesized answer:\n" + state.response},
		{Role: llm.RoleUser, Content: "Available evidence:\n" + formatDocumentEvidence(state.documents)},
	}

	response, err := p.completer.Complete(ctx, messages)
	if err != nil {
		return fmt.Errorf("verify stage failed: %w", err)
	}

	state.transcript = append(state.transcript, llm.Message{Role: llm.RoleAssistant, Content: response})
	return nil
}

// formatDocumentEvidence renders document hits for a stage prompt
func formatDocumentEvidence(documents []models.DocumentHit) string {
	if len(documents) == 0 {
		return "(no documents retrieved)"
	}

	var builder strings.Builder
	for i, doc := range documents {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(fmt.Sprintf("- %s (similarity %.2f)", displayTitle(doc.Title, doc.Document.Filename), doc.Similarity))
		if doc.Summary != "" {
			builder.WriteString("\n  ")
			builder.WriteString(doc.Summary)
		}
	}
	return builder.String()
}

// formatGraphContext renders knowledge-graph relations for a stage prompt
func formatGraphContext(kgContext []models.GraphRelation) string {
	if len(kgContext) == 0 {
		return "(no knowledge graph context)"
	}

	var builder strings.Builder
	for i, rel := range kgContext {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(fmt.Sprintf("- %s -[%s]-> %s",
			rel.Source.Name, rel.Relationship.RelationshipType, rel.Target.Name))
		if rel.Target.Description != "" {
			builder.WriteString(": ")
			builder.WriteString(rel.Target.Description)
		}
	}
	return builder.String()
}
