package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when no brace- or bracket-delimited JSON value
// can be located in a completion's free text.
var ErrNoJSON = errors.New("no JSON value found in text")

// extractJSONObject locates the first '{' through the last '}' in text
// and unmarshals that span into v. Model output routinely wraps JSON in
// prose, so the span is cut before parsing. Every call site shares the
// same degrade-to-default behavior on failure.
func extractJSONObject(text string, v interface{}) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ErrNoJSON
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("failed to parse extracted JSON: %w", err)
	}
	return nil
}

// extractJSONArray locates the first '[' through the last ']' in text
// and unmarshals that span into v.
func extractJSONArray(text string, v interface{}) error {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return ErrNoJSON
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("failed to parse extracted JSON: %w", err)
	}
	return nil
}
