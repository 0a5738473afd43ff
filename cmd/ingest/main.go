package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"bionexus-backend/config"
	"bionexus-backend/graph"
	"bionexus-backend/llm"
	"bionexus-backend/repository"
	"bionexus-backend/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// ingestExtensions lists the plain-text document types this tool reads
var ingestExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

func main() {
	dir := flag.String("dir", "./documents", "directory of documents to ingest")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	graphStore, err := graph.NewStoreFromEnv(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize graph store: %v", err)
	}
	defer graphStore.Close(ctx)

	completer := llm.NewGroqCompleter(
		cfg.GroqAPIKey,
		llm.GroqWithModel(cfg.DefaultModel),
		llm.GroqWithTemperature(cfg.Temperature),
		llm.GroqWithMaxTokens(cfg.MaxTokens),
	)
	ingestService := service.NewIngestService(
		service.IngestWithEmbedder(llm.NewGeminiEmbedder(cfg.GeminiAPIKey)),
		service.IngestWithCompleter(completer),
		service.IngestWithDocumentWriter(repository.NewDocumentRepository(pool)),
		service.IngestWithEntityWriter(repository.NewKnowledgeRepository(pool)),
		service.IngestWithGraphWriter(graphStore),
	)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Failed to read directory %s: %v", *dir, err)
	}

	var ingested, failed int
	for _, entry := range entries {
		if entry.IsDir() || !ingestExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		path := filepath.Join(*dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Error: failed to read %s: %v", path, err)
			failed++
			continue
		}

		title := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		doc, err := ingestService.IngestDocument(ctx, entry.Name(), title, string(content))
		if err != nil {
			log.Printf("Error: failed to ingest %s: %v", entry.Name(), err)
			failed++
			continue
		}

		log.Printf("✓ Ingested %s as %s", entry.Name(), doc.ID)
		ingested++
	}

	log.Printf("Done: %d ingested, %d failed", ingested, failed)
}
