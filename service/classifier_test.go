package service

import (
	"context"
	"errors"
	"testing"

	"bionexus-backend/llm"
	"bionexus-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifyParsesProviderResponse(t *testing.T) {
	completer := scriptedCompleter(`Here is the classification:
{
    "query_type": "comparative",
    "key_concepts": ["bone density", "muscle atrophy"],
    "constraints": {"time_period": "post-2015", "scope": "ISS missions"}
}
Let me know if you need anything else.`)
	c := NewQueryClassifier(completer)

	query := c.Classify(context.Background(), "Compare bone loss and muscle loss on ISS missions since 2015")

	assert.Equal(t, models.QueryTypeComparative, query.Type)
	assert.Equal(t, []string{"bone density", "muscle atrophy"}, query.KeyConcepts)
	assert.Equal(t, "post-2015", query.Constraints.TimePeriod)
	assert.Equal(t, "ISS missions", query.Constraints.Scope)
	assert.Equal(t, "Compare bone loss and muscle loss on ISS missions since 2015", query.Text)
}

func TestClassifyDefaultsToFactualOnProviderError(t *testing.T) {
	completer := &fakeCompleter{
		fn: func(int, []llm.Message) (string, error) {
			return "", errors.New("provider unavailable")
		},
	}
	c := NewQueryClassifier(completer)

	query := c.Classify(context.Background(), "What is microgravity?")

	assert.Equal(t, models.QueryTypeFactual, query.Type)
	assert.Equal(t, "What is microgravity?", query.Text)
	assert.Empty(t, query.KeyConcepts)
}

func TestClassifyDefaultsToFactualOnUnparseableResponse(t *testing.T) {
	c := NewQueryClassifier(scriptedCompleter("I cannot classify that."))

	query := c.Classify(context.Background(), "What is microgravity?")

	assert.Equal(t, models.QueryTypeFactual, query.Type)
}

func TestClassifyInvalidTypeFallsBackButKeepsConcepts(t *testing.T) {
	c := NewQueryClassifier(scriptedCompleter(
		`{"query_type": "philosophical", "key_concepts": ["radiation"]}`,
	))

	query := c.Classify(context.Background(), "Why does radiation exist?")

	assert.Equal(t, models.QueryTypeFactual, query.Type)
	assert.Equal(t, []string{"radiation"}, query.KeyConcepts)
}

func TestClassifyNilCompleter(t *testing.T) {
	c := NewQueryClassifier(nil)

	query := c.Classify(context.Background(), "anything")

	assert.Equal(t, models.QueryTypeFactual, query.Type)
}
