package tool

import (
	"context"

	"scribe-ai/backend/internal/model"
)

// ServiceKBStore is the backing-service name the builtin tools report for
// circuit breaking.
const ServiceKBStore = "kb_store"

// Store is the note/folder persistence the builtin tools operate on.
// Implemented by the repository layer.
type Store interface {
	CreateNote(ctx context.Context, note *model.Note) error
	GetNote(ctx context.Context, id string) (*model.Note, error)
	UpdateNote(ctx context.Context, note *model.Note) error
	DeleteNote(ctx context.Context, id string) error
	SearchNotes(ctx context.Context, query string, limit int) ([]model.Note, error)
	CreateFolder(ctx context.Context, folder *model.Folder) error
	ListFolders(ctx context.Context) ([]model.Folder, error)
	MoveNote(ctx context.Context, noteID string, folderID *string) (*model.Note, error)
}
