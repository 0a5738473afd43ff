package main

import (
	"context"
	"log"

	"bionexus-backend/config"
	"bionexus-backend/graph"
	"bionexus-backend/handlers"
	"bionexus-backend/llm"
	"bionexus-backend/repository"
	"bionexus-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	db, err := initPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize Postgres: ", err)
	}
	defer db.Close()

	graphStore, err := graph.NewStoreFromEnv(context.Background())
	if err != nil {
		log.Fatal("Failed to initialize graph store: ", err)
	}
	defer graphStore.Close(context.Background())
	log.Println("Graph store initialized")

	// Repositories
	docRepo := repository.NewDocumentRepository(db)
	knowledgeRepo := repository.NewKnowledgeRepository(db)
	chatRepo := repository.NewChatRepository(db)

	// Model providers
	embedder := llm.NewGeminiEmbedder(cfg.GeminiAPIKey)
	completer := llm.NewGroqCompleter(
		cfg.GroqAPIKey,
		llm.GroqWithModel(cfg.DefaultModel),
		llm.GroqWithTemperature(cfg.Temperature),
		llm.GroqWithMaxTokens(cfg.MaxTokens),
	)

	// Services
	retriever := service.NewRetriever(
		service.RetrieverWithEmbedder(embedder),
		service.RetrieverWithDocumentSearcher(docRepo),
		service.RetrieverWithGraphSearcher(graphStore),
		service.RetrieverWithThreshold(cfg.SimilarityThreshold),
	)
	queryService := service.NewQueryService(
		service.QueryServiceWithRetriever(retriever),
		service.QueryServiceWithClassifier(service.NewQueryClassifier(completer)),
		service.QueryServiceWithPipeline(service.NewReasoningPipeline(completer)),
		service.QueryServiceWithComposer(service.NewAnswerComposer(
			completer,
			service.ComposerWithMaxSources(cfg.MaxSources),
		)),
		service.QueryServiceWithChatStore(chatRepo),
		service.QueryServiceWithGraphContext(cfg.IncludeKnowledgeGraph),
	)
	ingestService := service.NewIngestService(
		service.IngestWithEmbedder(embedder),
		service.IngestWithCompleter(completer),
		service.IngestWithDocumentWriter(docRepo),
		service.IngestWithEntityWriter(knowledgeRepo),
		service.IngestWithGraphWriter(graphStore),
	)

	// Handlers
	askHandler := handlers.NewAskHandler(queryService)
	chatHandler := handlers.NewChatHandler(chatRepo)
	documentHandler := handlers.NewDocumentHandler(docRepo, ingestService, graphStore)

	// Setup Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Question answering
		api.POST("/ask", askHandler.Ask)
		api.GET("/suggestions", askHandler.Suggestions)

		// Chat sessions
		api.POST("/chat/sessions", chatHandler.CreateSession)
		api.GET("/chat/sessions", chatHandler.ListSessions)
		api.GET("/chat/sessions/:id/messages", chatHandler.GetMessages)

		// Documents
		api.POST("/documents", documentHandler.Upload)
		api.GET("/documents", documentHandler.List)
		api.GET("/documents/:id", documentHandler.Get)
		api.DELETE("/documents/:id", documentHandler.Delete)

		// Knowledge graph
		api.GET("/knowledge-graph/statistics", documentHandler.GraphStatistics)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	// Enable pgvector extension
	ctx := context.Background()
	_, err = pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		log.Printf("Warning: Failed to create pgvector extension: %v", err)
		log.Println("This may be normal if extension is already installed or requires superuser privileges")
	} else {
		log.Println("pgvector extension enabled")
	}

	log.Println("Postgres connection established with pgvector support")
	return pool, nil
}
