package repository

import (
	"context"
	"fmt"

	"bionexus-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatRepository handles database operations for chat sessions and messages
type ChatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateSession creates a new chat session and returns its ID
func (r *ChatRepository) CreateSession(ctx context.Context, name string) (uuid.UUID, error) {
	if name == "" {
		name = "Chat Session"
	}

	var id uuid.UUID
	query := `
		INSERT INTO chat_sessions (session_name)
		VALUES ($1)
		RETURNING id`

	err := r.db.QueryRow(ctx, query, name).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// GetSessions returns all sessions, most recently updated first
func (r *ChatRepository) GetSessions(ctx context.Context) ([]*models.ChatSession, error) {
	query := `
		SELECT id, session_name, created_at, last_updated
		FROM chat_sessions
		ORDER BY last_updated DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.ChatSession
	for rows.Next() {
		session := &models.ChatSession{}
		err := rows.Scan(&session.ID, &session.Name, &session.CreatedAt, &session.LastUpdated)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// AppendMessage appends a message to a session and bumps the session's
// last_updated timestamp. Messages are append-only.
func (r *ChatRepository) AppendMessage(ctx context.Context, sessionID uuid.UUID, role, content string, sources []models.Source) (uuid.UUID, error) {
	var id uuid.UUID
	query := `
		INSERT INTO chat_messages (session_id, role, content, sources)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRow(ctx, query, sessionID, role, content, models.SourceList(sources)).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to append message: %w", err)
	}

	_, err = r.db.Exec(
		ctx,
		`UPDATE chat_sessions SET last_updated = NOW() WHERE id = $1`,
		sessionID,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to update session timestamp: %w", err)
	}

	return id, nil
}

// GetMessages returns all messages for a session in insertion order
func (r *ChatRepository) GetMessages(ctx context.Context, sessionID uuid.UUID) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, session_id, role, content, sources, timestamp
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY timestamp ASC`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		msg := &models.ChatMessage{}
		err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.Sources, &msg.Timestamp)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
