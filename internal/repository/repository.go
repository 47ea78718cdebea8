package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BerylCAtieno/file-renamer-api/internal/models"
)

var ErrNotFound = errors.New("not found")

// Repository persists sessions for their lifetime only. Expired sessions read as
// missing even before the janitor purges them.
type Repository interface {
	CreateSession(ctx context.Context, session *models.Session, expiresAt time.Time) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	UpdateSession(ctx context.Context, id, instructions string, estimatedTokens int, expiresAt time.Time) error
	DeleteSession(ctx context.Context, id string) error
	ExpiredSessions(ctx context.Context, now time.Time) ([]string, error)
	ContentKeys(ctx context.Context, sessionID string) ([]string, error)

	DeleteFile(ctx context.Context, sessionID, fileID string) (*models.FileDescriptor, error)

	SaveSnippets(ctx context.Context, sessionID string, snippets []models.ExtractedSnippet) error
	ListSnippets(ctx context.Context, sessionID string) ([]models.ExtractedSnippet, error)

	ReplacePlan(ctx context.Context, sessionID string, entries []models.RenamePlanEntry) error
	UpsertPlanEntries(ctx context.Context, sessionID string, entries []models.RenamePlanEntry) error
	SetAllIncluded(ctx context.Context, sessionID string, included bool) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

type sessionRow struct {
	ID              string    `db:"id"`
	Instructions    string    `db:"instructions"`
	EstimatedTokens int       `db:"estimated_tokens"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type planRow struct {
	FileID        string    `db:"file_id"`
	OriginalName  string    `db:"original_name"`
	Proposal      string    `db:"proposal"`
	BuiltFilename string    `db:"built_filename"`
	FinalName     string    `db:"final_name"`
	Included      bool      `db:"included"`
	Edited        bool      `db:"edited"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type snippetRow struct {
	FileID        string `db:"file_id"`
	Text          string `db:"text"`
	DateCandidate string `db:"date_candidate"`
}

func (r *repository) CreateSession(ctx context.Context, session *models.Session, expiresAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, instructions, estimated_tokens, created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, session.ID, session.Instructions, session.EstimatedTokens, session.CreatedAt.UTC(), session.UpdatedAt.UTC(), expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	for _, f := range session.Files {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO files (id, session_id, position, original_name, mime_type, size_bytes, content_key, last_modified, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, f.ID, session.ID, f.Position, f.OriginalName, f.MimeType, f.SizeBytes, f.ContentKey, f.LastModified, f.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert file %s: %w", f.ID, err)
		}
	}

	return tx.Commit()
}

func (r *repository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var row sessionRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, instructions, estimated_tokens, created_at, updated_at
		FROM sessions
		WHERE id = ? AND expires_at > ?
	`, id, time.Now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:              row.ID,
		Instructions:    row.Instructions,
		EstimatedTokens: row.EstimatedTokens,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
		Files:           []models.FileDescriptor{},
		Plan:            []models.RenamePlanEntry{},
	}

	err = r.db.SelectContext(ctx, &session.Files, `
		SELECT id, session_id, position, original_name, mime_type, size_bytes, content_key, last_modified, created_at
		FROM files
		WHERE session_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load files: %w", err)
	}

	var rows []planRow
	err = r.db.SelectContext(ctx, &rows, `
		SELECT p.file_id, f.original_name, p.proposal, p.built_filename, p.final_name, p.included, p.edited, p.updated_at
		FROM plan_entries p
		JOIN files f ON f.id = p.file_id
		WHERE p.session_id = ?
		ORDER BY f.position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	for _, pr := range rows {
		entry := models.RenamePlanEntry{
			FileID:        pr.FileID,
			OriginalName:  pr.OriginalName,
			BuiltFilename: pr.BuiltFilename,
			FinalName:     pr.FinalName,
			Included:      pr.Included,
			Edited:        pr.Edited,
			UpdatedAt:     pr.UpdatedAt,
		}
		if err := json.Unmarshal([]byte(pr.Proposal), &entry.Proposal); err != nil {
			return nil, fmt.Errorf("failed to decode proposal for %s: %w", pr.FileID, err)
		}
		session.Plan = append(session.Plan, entry)
	}

	return session, nil
}

func (r *repository) UpdateSession(ctx context.Context, id, instructions string, estimatedTokens int, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET instructions = ?, estimated_tokens = ?, updated_at = ?, expires_at = ?
		WHERE id = ?
	`, instructions, estimatedTokens, time.Now().UTC(), expiresAt.UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *repository) DeleteSession(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *repository) ExpiredSessions(ctx context.Context, now time.Time) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM sessions WHERE expires_at <= ? ORDER BY expires_at`, now.UTC())
	return ids, err
}

// ContentKeys lists staged object keys of a session, expired or not.
func (r *repository) ContentKeys(ctx context.Context, sessionID string) ([]string, error) {
	var keys []string
	err := r.db.SelectContext(ctx, &keys, `SELECT content_key FROM files WHERE session_id = ? ORDER BY position`, sessionID)
	return keys, err
}

func (r *repository) DeleteFile(ctx context.Context, sessionID, fileID string) (*models.FileDescriptor, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var f models.FileDescriptor
	err = tx.GetContext(ctx, &f, `
		SELECT id, session_id, position, original_name, mime_type, size_bytes, content_key, last_modified, created_at
		FROM files
		WHERE id = ? AND session_id = ?
	`, fileID, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, fileID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repository) SaveSnippets(ctx context.Context, sessionID string, snippets []models.ExtractedSnippet) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, s := range snippets {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO snippets (file_id, session_id, text, date_candidate)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (file_id) DO UPDATE SET text = excluded.text, date_candidate = excluded.date_candidate
		`, s.FileID, sessionID, s.Text, s.DateCandidate)
		if err != nil {
			return fmt.Errorf("failed to save snippet for %s: %w", s.FileID, err)
		}
	}

	return tx.Commit()
}

func (r *repository) ListSnippets(ctx context.Context, sessionID string) ([]models.ExtractedSnippet, error) {
	var rows []snippetRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT s.file_id, s.text, s.date_candidate
		FROM snippets s
		JOIN files f ON f.id = s.file_id
		WHERE s.session_id = ?
		ORDER BY f.position
	`, sessionID)
	if err != nil {
		return nil, err
	}

	snippets := make([]models.ExtractedSnippet, len(rows))
	for i, row := range rows {
		snippets[i] = models.ExtractedSnippet{FileID: row.FileID, Text: row.Text, DateCandidate: row.DateCandidate}
	}
	return snippets, nil
}

func (r *repository) ReplacePlan(ctx context.Context, sessionID string, entries []models.RenamePlanEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_entries WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	if err := upsertEntries(ctx, tx, sessionID, entries); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) UpsertPlanEntries(ctx context.Context, sessionID string, entries []models.RenamePlanEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsertEntries(ctx, tx, sessionID, entries); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) SetAllIncluded(ctx context.Context, sessionID string, included bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE plan_entries SET included = ?, updated_at = ? WHERE session_id = ?
	`, included, time.Now().UTC(), sessionID)
	return err
}

func upsertEntries(ctx context.Context, tx *sqlx.Tx, sessionID string, entries []models.RenamePlanEntry) error {
	for _, e := range entries {
		proposal, err := json.Marshal(e.Proposal)
		if err != nil {
			return fmt.Errorf("failed to encode proposal for %s: %w", e.FileID, err)
		}

		updatedAt := e.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now()
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO plan_entries (file_id, session_id, proposal, built_filename, final_name, included, edited, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (file_id) DO UPDATE SET
				proposal = excluded.proposal,
				built_filename = excluded.built_filename,
				final_name = excluded.final_name,
				included = excluded.included,
				edited = excluded.edited,
				updated_at = excluded.updated_at
		`, e.FileID, sessionID, string(proposal), e.BuiltFilename, e.FinalName, e.Included, e.Edited, updatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to save plan entry %s: %w", e.FileID, err)
		}
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
