package service

import (
	"errors"
	"testing"
)

func TestExtractJSONObjectFromProse(t *testing.T) {
	text := `Sure! Here is the classification you asked for:

{"query_type": "factual", "key_concepts": ["radiation"]}

Hope that helps.`

	var parsed struct {
		QueryType   string   `json:"query_type"`
		KeyConcepts []string `json:"key_concepts"`
	}
	if err := extractJSONObject(text, &parsed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.QueryType != "factual" {
		t.Errorf("expected factual, got %q", parsed.QueryType)
	}
	if len(parsed.KeyConcepts) != 1 || parsed.KeyConcepts[0] != "radiation" {
		t.Errorf("unexpected concepts: %v", parsed.KeyConcepts)
	}
}

func TestExtractJSONObjectSpansToLastBrace(t *testing.T) {
	// nested objects rely on the span running to the final brace
	text := `{"constraints": {"scope": "ISS"}}`

	var parsed struct {
		Constraints struct {
			Scope string `json:"scope"`
		} `json:"constraints"`
	}
	if err := extractJSONObject(text, &parsed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Constraints.Scope != "ISS" {
		t.Errorf("expected ISS, got %q", parsed.Constraints.Scope)
	}
}

func TestExtractJSONObjectNoJSON(t *testing.T) {
	var parsed map[string]interface{}
	err := extractJSONObject("no structured data here", &parsed)
	if !errors.Is(err, ErrNoJSON) {
		t.Errorf("expected ErrNoJSON, got %v", err)
	}
}

func TestExtractJSONObjectMalformed(t *testing.T) {
	var parsed map[string]interface{}
	err := extractJSONObject(`prefix {"a": } suffix`, &parsed)
	if err == nil {
		t.Error("expected a parse error")
	}
	if errors.Is(err, ErrNoJSON) {
		t.Error("malformed JSON is not the same as missing JSON")
	}
}

func TestExtractJSONArrayFromProse(t *testing.T) {
	text := `Here are some questions:
["What about radiation?", "How long do effects last?"]
`

	var questions []string
	if err := extractJSONArray(text, &questions); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
}

func TestExtractJSONArrayNoJSON(t *testing.T) {
	var questions []string
	if err := extractJSONArray("none", &questions); !errors.Is(err, ErrNoJSON) {
		t.Errorf("expected ErrNoJSON, got %v", err)
	}
}
