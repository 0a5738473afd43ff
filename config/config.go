package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config carries every runtime setting the server and CLIs read from
// the environment.
type Config struct {
	DatabaseURL string

	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	GeminiAPIKey string
	GroqAPIKey   string

	DefaultModel string
	Temperature  float64
	MaxTokens    int

	SimilarityThreshold   float64
	MaxSources            int
	IncludeKnowledgeGraph bool

	Port string
}

// Load reads configuration from the environment, applying defaults for
// everything but credentials.
func Load() *Config {
	return &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		Neo4jURI:      os.Getenv("NEO4J_URI"),
		Neo4jUser:     envOr("NEO4J_USER", "neo4j"),
		Neo4jPassword: os.Getenv("NEO4J_PASSWORD"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GroqAPIKey:   os.Getenv("GROQ_API_KEY"),

		DefaultModel: envOr("DEFAULT_MODEL", "llama-3.3-70b-versatile"),
		Temperature:  envFloat("TEMPERATURE", 0.1),
		MaxTokens:    envInt("MAX_TOKENS", 2000),

		SimilarityThreshold:   envFloat("SIMILARITY_THRESHOLD", 0.7),
		MaxSources:            envInt("MAX_SOURCES", 10),
		IncludeKnowledgeGraph: envBool("INCLUDE_KNOWLEDGE_GRAPH", true),

		Port: envOr("PORT", "8080"),
	}
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	if c.GroqAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY environment variable is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
