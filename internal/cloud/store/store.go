package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/refassist/internal/cloud"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the documents table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS user_documents (
			user_id    TEXT PRIMARY KEY,
			data       JSONB NOT NULL,
			revision   UUID NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating user_documents: %w", err)
	}

	return nil
}

func (s *Store) GetDocument(ctx context.Context, userID string) (*cloud.Document, error) {
	query := `SELECT user_id, data, revision, updated_at FROM user_documents WHERE user_id = $1`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cloud.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	return doc, nil
}

func (s *Store) PutDocument(ctx context.Context, userID string, snap cloud.Snapshot) (*cloud.Document, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	query := `
		INSERT INTO user_documents (user_id, data, revision, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			data = EXCLUDED.data,
			revision = EXCLUDED.revision,
			updated_at = NOW()
		RETURNING user_id, data, revision, updated_at
	`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, userID, data, uuid.New()))
	if err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}

	return doc, nil
}

func (s *Store) DeleteDocument(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_documents WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*cloud.Document, error) {
	var (
		doc  cloud.Document
		data []byte
	)

	if err := s.Scan(&doc.UserID, &data, &doc.Revision, &doc.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &doc.Snapshot); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	return &doc, nil
}
