package tool

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"scribe-ai/backend/internal/model"
)

const defaultSearchLimit = 20

// stringArg extracts an optional string argument; absent means "".
func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

type createNoteTool struct {
	store Store
}

func NewCreateNoteTool(store Store) Tool { return &createNoteTool{store: store} }

func (t *createNoteTool) Name() string { return "create_note" }

func (t *createNoteTool) Description() string {
	return "Create a new note with a title and markdown content, optionally inside a folder."
}

func (t *createNoteTool) Schema() *JSONSchema {
	return &JSONSchema{
		Type: "object",
		Properties: map[string]any{
			"title":     map[string]any{"type": "string", "description": "Note title"},
			"content":   map[string]any{"type": "string", "description": "Markdown body"},
			"folder_id": map[string]any{"type": "string", "description": "Parent folder id"},
		},
		Required: []string{"title"},
	}
}

func (t *createNoteTool) Scope() string   { return ScopeWrite }
func (t *createNoteTool) Service() string { return ServiceKBStore }

func (t *createNoteTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	note := &model.Note{
		ID:      uuid.New().String(),
		Title:   stringArg(args, "title"),
		Content: stringArg(args, "content"),
	}
	if folderID := stringArg(args, "folder_id"); folderID != "" {
		note.FolderID = &folderID
	}
	if err := t.store.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("could not create note: %w", err)
	}
	return note, nil
}

type getNoteTool struct {
	store Store
}

func NewGetNoteTool(store Store) Tool { return &getNoteTool{store: store} }

func (t *getNoteTool) Name() string { return "get_note" }

func (t *getNoteTool) Description() string {
	return "Fetch a note by its id, returning its title and full content."
}

func (t *getNoteTool) Schema() *JSONSchema {
	return &JSONSchema{
		Type: "object",
		Properties: map[string]any{
			"id": map[string]any{"type": "string", "description": "Note id"},
		},
		Required: []string{"id"},
	}
}

func (t *getNoteTool) Scope() string   { return ScopeRead }
func (t *getNoteTool) Service() string { return ServiceKBStore }

func (t *getNoteTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	return t.store.GetNote(ctx, stringArg(args, "id"))
}

type updateNoteTool struct {
	store Store
}

func NewUpdateNoteTool(store Store) Tool { return &updateNoteTool{store: store} }

func (t *updateNoteTool) Name() string { return "update_note" }

func (t *updateNoteTool) Description() string {
	return "Update a note's title and/or content. Fields not supplied are left unchanged."
}

func (t *updateNoteTool) Schema() *JSONSchema {
	return &JSONSchema{
		Type: "object",
		Properties: map[string]any{
			"id":      map[string]any{"type": "string", "description": "Note id"},
			"title":   map[string]any{"type": "string", "description": "New title"},
			"content": map[string]any{"type": "string", "description": "New markdown body"},
		},
		Required: []string{"id"},
	}
}

func (t *updateNoteTool) Scope() string   { return ScopeWrite }
func (t *updateNoteTool) Service() string { return ServiceKBStore }

func (t *updateNoteTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	note, err := t.store.GetNote(ctx, stringArg(args, "id"))
	if err != nil {
		return nil, err
	}
	if title, ok := args["title"].(string); ok {
		note.Title = title
	}
	if content, ok := args["content"].(string); ok {
		note.Content = content
	}
	if err := t.store.UpdateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("could not update note: %w", err)
	}
	return note, nil
}

type deleteNoteTool struct {
	store Store
}

func NewDeleteNoteTool(store Store) Tool { return &deleteNoteTool{store: store} }

func (t *deleteNoteTool) Name() string { return "delete_note" }

func (t *deleteNoteTool) Description() string {
	return "Permanently delete a note by id."
}

func (t *deleteNoteTool) Schema() *JSONSchema {
	return &JSONSchema{
		Type: "object",
		Properties: map[string]any{
			"id": map[string]any{"type": "string", "description": "Note id"},
		},
		Required: []string{"id"},
	}
}

func (t *deleteNoteTool) Scope() string   { return ScopeWrite }
func (t *deleteNoteTool) Service() string { return ServiceKBStore }

func (t *deleteNoteTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	id := stringArg(args, "id")
	if err := t.store.DeleteNote(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": true, "id": id}, nil
}

type searchNotesTool struct {
	store Store
}

func NewSearchNotesTool(store Store) Tool { return &searchNotesTool{store: store} }

func (t *searchNotesTool) Name() string { return "search_notes" }

func (t *searchNotesTool) Description() string {
	return "Search notes by title and content. Returns matching notes ordered by last update."
}

func (t *searchNotesTool) Schema() *JSONSchema {
	return &JSONSchema{
		Type: "object",
		Properties: map[string]any{
			"query": map[string]any{"type": "string", "description": "Search terms"},
			"limit": map[string]any{"type": "integer", "description": "Max results, default 20"},
		},
		Required: []string{"query"},
	}
}

func (t *searchNotesTool) Scope() string   { return ScopeRead }
func (t *searchNotesTool) Service() string { return ServiceKBStore }

func (t *searchNotesTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	limit := defaultSearchLimit
	if raw, ok := args["limit"].(float64); ok && raw > 0 {
		limit = int(raw)
	}
	notes, err := t.store.SearchNotes(ctx, stringArg(args, "query"), limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return map[string]any{"notes": notes, "count": len(notes)}, nil
}
