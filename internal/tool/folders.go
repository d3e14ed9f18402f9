package tool

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"scribe-ai/backend/internal/model"
)

type createFolderTool struct {
	store Store
}

func NewCreateFolderTool(store Store) Tool { return &createFolderTool{store: store} }

func (t *createFolderTool) Name() string { return "create_folder" }

func (t *createFolderTool) Description() string {
	return "Create a new folder, optionally nested inside a parent folder."
}

func (t *createFolderTool) Schema() *JSONSchema {
	return &JSONSchema{
		Type: "object",
		Properties: map[string]any{
			"name":      map[string]any{"type": "string", "description": "Folder name"},
			"parent_id": map[string]any{"type": "string", "description": "Parent folder id"},
		},
		Required: []string{"name"},
	}
}

func (t *createFolderTool) Scope() string   { return ScopeWrite }
func (t *createFolderTool) Service() string { return ServiceKBStore }

func (t *createFolderTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	folder := &model.Folder{
		ID:   uuid.New().String(),
		Name: stringArg(args, "name"),
	}
	if parentID := stringArg(args, "parent_id"); parentID != "" {
		folder.ParentID = &parentID
	}
	if err := t.store.CreateFolder(ctx, folder); err != nil {
		return nil, fmt.Errorf("could not create folder: %w", err)
	}
	return folder, nil
}

type listFoldersTool struct {
	store Store
}

func NewListFoldersTool(store Store) Tool { return &listFoldersTool{store: store} }

func (t *listFoldersTool) Name() string { return "list_folders" }

func (t *listFoldersTool) Description() string {
	return "List all folders in the knowledge base."
}

func (t *listFoldersTool) Schema() *JSONSchema {
	return &JSONSchema{Type: "object", Properties: map[string]any{}}
}

func (t *listFoldersTool) Scope() string   { return ScopeRead }
func (t *listFoldersTool) Service() string { return ServiceKBStore }

func (t *listFoldersTool) Execute(ctx context.Context, _ map[string]any) (any, error) {
	folders, err := t.store.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"folders": folders, "count": len(folders)}, nil
}

type moveNoteTool struct {
	store Store
}

func NewMoveNoteTool(store Store) Tool { return &moveNoteTool{store: store} }

func (t *moveNoteTool) Name() string { return "move_note" }

func (t *moveNoteTool) Description() string {
	return "Move a note into a folder, or to the root when no folder id is given."
}

func (t *moveNoteTool) Schema() *JSONSchema {
	return &JSONSchema{
		Type: "object",
		Properties: map[string]any{
			"note_id":   map[string]any{"type": "string", "description": "Note id"},
			"folder_id": map[string]any{"type": "string", "description": "Target folder id, omit for root"},
		},
		Required: []string{"note_id"},
	}
}

func (t *moveNoteTool) Scope() string   { return ScopeWrite }
func (t *moveNoteTool) Service() string { return ServiceKBStore }

func (t *moveNoteTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	var folderID *string
	if id := stringArg(args, "folder_id"); id != "" {
		folderID = &id
	}
	return t.store.MoveNote(ctx, stringArg(args, "note_id"), folderID)
}

// RegisterBuiltins registers all knowledge-base tools against one store.
func RegisterBuiltins(registry *Registry, store Store) error {
	builtins := []Tool{
		NewCreateNoteTool(store),
		NewGetNoteTool(store),
		NewUpdateNoteTool(store),
		NewDeleteNoteTool(store),
		NewSearchNotesTool(store),
		NewCreateFolderTool(store),
		NewListFoldersTool(store),
		NewMoveNoteTool(store),
	}
	for _, t := range builtins {
		if err := registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}
