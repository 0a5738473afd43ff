package main

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

var tables = []struct {
	name string
	sql  string
}{
	{
		name: "documents",
		sql: `
CREATE TABLE IF NOT EXISTS documents (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    filename VARCHAR(255) NOT NULL,
    title TEXT,
    content TEXT,
    summary TEXT,
    embedding vector(768),
    metadata JSONB DEFAULT '{}'::jsonb,
    upload_date TIMESTAMP DEFAULT NOW(),
    processed BOOLEAN DEFAULT false
);`,
	},
	{
		name: "document_chunks",
		sql: `
CREATE TABLE IF NOT EXISTS document_chunks (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    document_id UUID REFERENCES documents(id),
    chunk_index INTEGER NOT NULL,
    content TEXT NOT NULL,
    embedding vector(768),
    chunk_type VARCHAR(50) DEFAULT 'text',
    page_number INTEGER,
    metadata JSONB DEFAULT '{}'::jsonb,

    CONSTRAINT chunk_order_unique UNIQUE (document_id, chunk_index)
);`,
	},
	{
		name: "kg_entities",
		sql: `
CREATE TABLE IF NOT EXISTS kg_entities (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(255) NOT NULL,
    entity_type VARCHAR(100) NOT NULL,
    description TEXT,
    properties JSONB DEFAULT '{}'::jsonb,
    embedding vector(768)
);`,
	},
	{
		name: "kg_relationships",
		sql: `
CREATE TABLE IF NOT EXISTS kg_relationships (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    source_entity_id UUID REFERENCES kg_entities(id),
    target_entity_id UUID REFERENCES kg_entities(id),
    relationship_type VARCHAR(100) NOT NULL,
    properties JSONB DEFAULT '{}'::jsonb,
    confidence_score FLOAT DEFAULT 1.0
);`,
	},
	{
		name: "chat_sessions",
		sql: `
CREATE TABLE IF NOT EXISTS chat_sessions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    session_name VARCHAR(255) DEFAULT 'Chat Session',
    created_at TIMESTAMP DEFAULT NOW(),
    last_updated TIMESTAMP DEFAULT NOW()
);`,
	},
	{
		name: "chat_messages",
		sql: `
CREATE TABLE IF NOT EXISTS chat_messages (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    session_id UUID REFERENCES chat_sessions(id),
    role VARCHAR(20) NOT NULL CHECK (role IN ('user', 'assistant')),
    content TEXT NOT NULL,
    sources JSONB DEFAULT '[]'::jsonb,
    timestamp TIMESTAMP DEFAULT NOW()
);`,
	},
}

var indexes = []struct {
	name string
	sql  string
}{
	{
		name: "Document vector similarity search (HNSW)",
		sql: `CREATE INDEX IF NOT EXISTS idx_documents_embedding_hnsw ON documents
USING hnsw (embedding vector_cosine_ops)
WITH (m = 16, ef_construction = 64);`,
	},
	{
		name: "Chunk vector similarity search (HNSW)",
		sql: `CREATE INDEX IF NOT EXISTS idx_chunks_embedding_hnsw ON document_chunks
USING hnsw (embedding vector_cosine_ops)
WITH (m = 16, ef_construction = 64);`,
	},
	{
		name: "Chunk to document lookup",
		sql:  "CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON document_chunks(document_id);",
	},
	{
		name: "Entity type filtering",
		sql:  "CREATE INDEX IF NOT EXISTS idx_entities_type ON kg_entities(entity_type);",
	},
	{
		name: "Message history by session",
		sql:  "CREATE INDEX IF NOT EXISTS idx_messages_session_id ON chat_messages(session_id, timestamp);",
	},
}

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()

	// Enable pgvector extension
	_, err = pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		log.Printf("Warning: Failed to create pgvector extension: %v", err)
	} else {
		log.Println("✓ pgvector extension enabled")
	}

	for _, table := range tables {
		if _, err := pool.Exec(ctx, table.sql); err != nil {
			log.Fatalf("Failed to create %s table: %v", table.name, err)
		}
		log.Printf("✓ Created %s table", table.name)
	}

	for _, index := range indexes {
		if _, err := pool.Exec(ctx, index.sql); err != nil {
			log.Printf("Warning: Failed to create index (%s): %v", index.name, err)
		} else {
			log.Printf("✓ Created index: %s", index.name)
		}
	}

	log.Println("Schema setup complete")
}
