package repository

import (
	"context"
	"fmt"
	"strings"

	"bionexus-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles database operations for documents and chunks
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// nullableVector returns a query argument for a possibly-absent embedding
func nullableVector(embedding []float64) interface{} {
	if len(embedding) == 0 {
		return nil
	}
	return formatVector(embedding)
}

// InsertDocument inserts a new document
func (r *DocumentRepository) InsertDocument(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (
			filename, title, content, summary, embedding, metadata, processed
		) VALUES ($1, $2, $3, $4, $5::vector, $6, $7)
		RETURNING id, upload_date`

	err := r.db.QueryRow(
		ctx, query,
		doc.Filename,
		doc.Title,
		doc.Content,
		doc.Summary,
		nullableVector(doc.Embedding),
		doc.Metadata,
		doc.Processed,
	).Scan(&doc.ID, &doc.UploadDate)

	return err
}

// InsertChunk inserts a document chunk. The owning document must exist;
// a missing document violates the foreign key and fails the insert.
func (r *DocumentRepository) InsertChunk(ctx context.Context, chunk *models.Chunk) error {
	query := `
		INSERT INTO document_chunks (
			document_id, chunk_index, content, chunk_type, page_number, embedding, metadata
		) VALUES ($1, $2, $3, $4, $5, $6::vector, $7)
		RETURNING id`

	err := r.db.QueryRow(
		ctx, query,
		chunk.DocumentID,
		chunk.ChunkIndex,
		chunk.Content,
		chunk.ChunkType,
		chunk.PageNumber,
		nullableVector(chunk.Embedding),
		chunk.Metadata,
	).Scan(&chunk.ID)

	return err
}

// MarkProcessed flags a document as fully ingested
func (r *DocumentRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE documents SET processed = true WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// SearchSimilarDocuments returns documents nearest to the embedding by
// cosine distance, with similarity = 1 - distance.
func (r *DocumentRepository) SearchSimilarDocuments(ctx context.Context, embedding []float64, limit int) ([]models.DocumentHit, error) {
	vectorStr := formatVector(embedding)

	query := `
		SELECT id, filename, title, summary, metadata, upload_date, processed,
			1 - (embedding <=> $1::vector) AS similarity
		FROM documents
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1::vector
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, vectorStr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var hits []models.DocumentHit
	for rows.Next() {
		var hit models.DocumentHit
		err := rows.Scan(
			&hit.ID,
			&hit.Document.Filename,
			&hit.Document.Title,
			&hit.Summary,
			&hit.Metadata,
			&hit.UploadDate,
			&hit.Processed,
			&hit.Similarity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		hits = append(hits, hit)
	}

	return hits, rows.Err()
}

// SearchSimilarChunks returns chunks nearest to the embedding, joined
// with the owning document for filename and title.
func (r *DocumentRepository) SearchSimilarChunks(ctx context.Context, embedding []float64, limit int) ([]models.ChunkHit, error) {
	vectorStr := formatVector(embedding)

	query := `
		SELECT dc.id, dc.document_id, dc.chunk_index, dc.content, dc.chunk_type,
			dc.page_number, dc.metadata, d.filename, d.title,
			1 - (dc.embedding <=> $1::vector) AS similarity
		FROM document_chunks dc
		JOIN documents d ON dc.document_id = d.id
		WHERE dc.embedding IS NOT NULL
		ORDER BY dc.embedding <=> $1::vector
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, vectorStr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var hits []models.ChunkHit
	for rows.Next() {
		var hit models.ChunkHit
		err := rows.Scan(
			&hit.ID,
			&hit.DocumentID,
			&hit.ChunkIndex,
			&hit.Content,
			&hit.ChunkType,
			&hit.PageNumber,
			&hit.Metadata,
			&hit.Filename,
			&hit.Title,
			&hit.Similarity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		hits = append(hits, hit)
	}

	return hits, rows.Err()
}

// GetAllDocuments returns all documents without content
func (r *DocumentRepository) GetAllDocuments(ctx context.Context) ([]*models.Document, error) {
	query := `
		SELECT id, filename, title, summary, metadata, upload_date, processed
		FROM documents
		ORDER BY upload_date DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		err := rows.Scan(
			&doc.ID,
			&doc.Filename,
			&doc.Title,
			&doc.Summary,
			&doc.Metadata,
			&doc.UploadDate,
			&doc.Processed,
		)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// GetByID retrieves a document with its full content
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc := &models.Document{}
	query := `
		SELECT id, filename, title, content, summary, metadata, upload_date, processed
		FROM documents
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.Filename,
		&doc.Title,
		&doc.Content,
		&doc.Summary,
		&doc.Metadata,
		&doc.UploadDate,
		&doc.Processed,
	)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Delete removes a document and its chunks
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Chunks first, documents second (foreign key constraint)
	if _, err := r.db.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
