package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"scribe-ai/backend/internal/model"
)

// NoteStore is the note/folder storage the builtin tools operate on.
type NoteStore interface {
	CreateNote(ctx context.Context, note *model.Note) error
	GetNote(ctx context.Context, id string) (*model.Note, error)
	UpdateNote(ctx context.Context, note *model.Note) error
	DeleteNote(ctx context.Context, id string) error
	SearchNotes(ctx context.Context, query string, limit int) ([]model.Note, error)
	CreateFolder(ctx context.Context, folder *model.Folder) error
	ListFolders(ctx context.Context) ([]model.Folder, error)
	MoveNote(ctx context.Context, noteID string, folderID *string) (*model.Note, error)
}

type sqliteNoteStore struct {
	db *sql.DB
}

func NewSQLiteNoteStore(db *sql.DB) NoteStore {
	return &sqliteNoteStore{db: db}
}

func (s *sqliteNoteStore) CreateNote(ctx context.Context, note *model.Note) error {
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	var metadata sql.NullString
	if len(note.Metadata) > 0 && string(note.Metadata) != "null" {
		metadata = sql.NullString{String: string(note.Metadata), Valid: true}
	}

	query := "INSERT INTO notes (id, folder_id, title, content, metadata, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err := s.db.ExecContext(ctx, query,
		note.ID, note.FolderID, note.Title, note.Content, metadata, note.CreatedAt, note.UpdatedAt)
	return err
}

func (s *sqliteNoteStore) GetNote(ctx context.Context, id string) (*model.Note, error) {
	query := "SELECT id, folder_id, title, content, metadata, created_at, updated_at FROM notes WHERE id = ?"
	note, err := scanNote(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return note, nil
}

func (s *sqliteNoteStore) UpdateNote(ctx context.Context, note *model.Note) error {
	note.UpdatedAt = time.Now().UTC()
	query := "UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ?"
	result, err := s.db.ExecContext(ctx, query, note.Title, note.Content, note.UpdatedAt, note.ID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *sqliteNoteStore) DeleteNote(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *sqliteNoteStore) SearchNotes(ctx context.Context, query string, limit int) ([]model.Note, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, folder_id, title, content, metadata, created_at, updated_at
		FROM notes
		WHERE title LIKE ? OR content LIKE ?
		ORDER BY updated_at DESC
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *note)
	}
	return notes, rows.Err()
}

func (s *sqliteNoteStore) CreateFolder(ctx context.Context, folder *model.Folder) error {
	folder.CreatedAt = time.Now().UTC()
	query := "INSERT INTO folders (id, parent_id, name, created_at) VALUES (?, ?, ?, ?)"
	_, err := s.db.ExecContext(ctx, query, folder.ID, folder.ParentID, folder.Name, folder.CreatedAt)
	return err
}

func (s *sqliteNoteStore) ListFolders(ctx context.Context) ([]model.Folder, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, parent_id, name, created_at FROM folders ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []model.Folder
	for rows.Next() {
		var folder model.Folder
		var parentID sql.NullString
		if err := rows.Scan(&folder.ID, &parentID, &folder.Name, &folder.CreatedAt); err != nil {
			return nil, err
		}
		if parentID.Valid {
			folder.ParentID = &parentID.String
		}
		folders = append(folders, folder)
	}
	return folders, rows.Err()
}

func (s *sqliteNoteStore) MoveNote(ctx context.Context, noteID string, folderID *string) (*model.Note, error) {
	if folderID != nil {
		var exists string
		err := s.db.QueryRowContext(ctx, "SELECT id FROM folders WHERE id = ?", *folderID).Scan(&exists)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: folder %s", ErrNotFound, *folderID)
			}
			return nil, err
		}
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE notes SET folder_id = ?, updated_at = ? WHERE id = ?",
		folderID, time.Now().UTC(), noteID)
	if err != nil {
		return nil, err
	}
	if err := requireRow(result); err != nil {
		return nil, err
	}
	return s.GetNote(ctx, noteID)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNote(row rowScanner) (*model.Note, error) {
	var note model.Note
	var folderID, metadata sql.NullString
	if err := row.Scan(&note.ID, &folderID, &note.Title, &note.Content,
		&metadata, &note.CreatedAt, &note.UpdatedAt); err != nil {
		return nil, err
	}
	if folderID.Valid {
		note.FolderID = &folderID.String
	}
	if metadata.Valid {
		note.Metadata = json.RawMessage(metadata.String)
	}
	return &note, nil
}
