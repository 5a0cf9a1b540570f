package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultListLimit is used when ListGenerations is called without a positive limit.
const DefaultListLimit = 50

// Generation is one recorded generation result.
type Generation struct {
	ID          uuid.UUID `json:"id"`
	SessionID   string    `json:"session_id,omitempty"`
	Mode        string    `json:"mode"`
	Provider    string    `json:"provider"`
	Tone        string    `json:"tone"`
	Length      string    `json:"length"`
	Topic       string    `json:"topic,omitempty"`
	PromptHash  string    `json:"prompt_hash"`
	Text        string    `json:"text"`
	Regenerated bool      `json:"regenerated"`
	CreatedAt   time.Time `json:"created_at"`
}

// PromptHash returns the hex SHA-256 of a prompt. Prompts themselves are not stored.
func PromptHash(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// SaveGeneration inserts g, assigning an ID and timestamp when missing.
func (db *DB) SaveGeneration(ctx context.Context, g *Generation) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO generations (id, session_id, mode, provider, tone, length, topic, prompt_hash, text, regenerated, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		g.ID, g.SessionID, g.Mode, g.Provider, g.Tone, g.Length, g.Topic, g.PromptHash, g.Text, g.Regenerated, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save generation: %w", err)
	}
	return nil
}

// GetGeneration retrieves a generation by ID. It returns nil, nil when none exists.
func (db *DB) GetGeneration(ctx context.Context, id uuid.UUID) (*Generation, error) {
	var g Generation
	err := db.pool.QueryRow(ctx,
		`SELECT id, session_id, mode, provider, tone, length, topic, prompt_hash, text, regenerated, created_at
		 FROM generations WHERE id = $1`,
		id,
	).Scan(&g.ID, &g.SessionID, &g.Mode, &g.Provider, &g.Tone, &g.Length, &g.Topic, &g.PromptHash, &g.Text, &g.Regenerated, &g.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get generation: %w", err)
	}
	return &g, nil
}

// ListGenerations retrieves the most recent generations, newest first.
func (db *DB) ListGenerations(ctx context.Context, limit int) ([]Generation, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, mode, provider, tone, length, topic, prompt_hash, text, regenerated, created_at
		 FROM generations ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer rows.Close()

	var out []Generation
	for rows.Next() {
		var g Generation
		if err := rows.Scan(&g.ID, &g.SessionID, &g.Mode, &g.Provider, &g.Tone, &g.Length, &g.Topic, &g.PromptHash, &g.Text, &g.Regenerated, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	return out, nil
}
