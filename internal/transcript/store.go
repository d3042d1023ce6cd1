// Package transcript persists the raw message log of every conversation so
// operators can review how a lead was collected.
package transcript

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Direction marks who authored a message.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// Message is one logged chat message.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Direction Direction `json:"direction"`
	Body      string    `json:"body"`
	Phase     string    `json:"phase,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store appends and reads conversation transcripts. All methods are nil-safe:
// a nil store silently drops writes so the engine can run without a database.
type Store struct {
	db *sql.DB
}

// NewStore creates a transcript store. Returns nil when db is nil.
func NewStore(db *sql.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// Append records a message. A missing ID or timestamp is filled in.
func (s *Store) Append(ctx context.Context, msg Message) error {
	if s == nil || s.db == nil {
		return nil
	}
	if msg.ChatID == "" {
		return errors.New("transcript: chat id required")
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO messages (id, chat_id, direction, body, phase, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.ChatID, msg.Direction, msg.Body, nullString(msg.Phase), msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("transcript: append failed: %w", err)
	}
	return nil
}

// List returns up to limit messages for a chat, oldest first.
func (s *Store) List(ctx context.Context, chatID string, limit int) ([]Message, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if chatID == "" {
		return nil, errors.New("transcript: chat id required")
	}
	if limit <= 0 {
		limit = 200
	}

	query := `
		SELECT id, chat_id, direction, body, phase, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("transcript: list failed: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var phase sql.NullString
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Direction, &m.Body, &phase, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("transcript: scan failed: %w", err)
		}
		m.Phase = phase.String
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transcript: list failed: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
