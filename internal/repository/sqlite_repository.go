package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"scribe-ai/backend/internal/model"
)

type sqliteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateConversation(ctx context.Context, conversation *model.Conversation) error {
	query := "INSERT INTO conversations (id, user_id, title, model, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query,
		conversation.ID, conversation.UserID, conversation.Title, conversation.Model,
		conversation.CreatedAt, conversation.UpdatedAt,
	)
	return err
}

func (r *sqliteRepository) GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error) {
	query := "SELECT id, user_id, title, model, created_at, updated_at FROM conversations WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, conversationID)

	var conversation model.Conversation
	err := row.Scan(&conversation.ID, &conversation.UserID, &conversation.Title,
		&conversation.Model, &conversation.CreatedAt, &conversation.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *sqliteRepository) GetConversations(ctx context.Context, userID string) ([]*model.Conversation, error) {
	query := "SELECT id, user_id, title, model, created_at, updated_at FROM conversations WHERE user_id = ? ORDER BY updated_at DESC"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []*model.Conversation
	for rows.Next() {
		var conversation model.Conversation
		if err := rows.Scan(&conversation.ID, &conversation.UserID, &conversation.Title,
			&conversation.Model, &conversation.CreatedAt, &conversation.UpdatedAt); err != nil {
			return nil, err
		}
		conversations = append(conversations, &conversation)
	}
	return conversations, rows.Err()
}

func (r *sqliteRepository) UpdateConversationTitle(ctx context.Context, conversationID, newTitle string) error {
	query := "UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, newTitle, time.Now().UTC(), conversationID)
	return err
}

func (r *sqliteRepository) DeleteConversation(ctx context.Context, conversationID string) error {
	query := "DELETE FROM conversations WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, conversationID)
	return err
}

func (r *sqliteRepository) AddMessage(ctx context.Context, conversationID string, message *model.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextSeq(ctx, tx, conversationID)
	if err != nil {
		return err
	}

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}
	if err := insertMessage(ctx, tx, conversationID, seq, "", message); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE conversations SET updated_at = ? WHERE id = ?", message.Timestamp, conversationID); err != nil {
		return fmt.Errorf("could not update conversation timestamp: %w", err)
	}

	return tx.Commit()
}

func (r *sqliteRepository) GetMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	query := `
		SELECT id, role, content, reasoning, tool_calls, tool_call_id, name, timestamp
		FROM messages
		WHERE conversation_id = ?
		ORDER BY seq ASC
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// CommitBatch runs the whole append in one transaction: the batch-id
// idempotency check, duplicate filtering against already-persisted state,
// and the ordered insert all see and produce a consistent snapshot.
func (r *sqliteRepository) CommitBatch(ctx context.Context, conversationID, batchID string, messages []model.Message) (*BatchResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists string
	err = tx.QueryRowContext(ctx, "SELECT id FROM conversations WHERE id = ?", conversationID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	replayed, err := batchExists(ctx, tx, conversationID, batchID)
	if err != nil {
		return nil, err
	}
	if replayed {
		// Idempotent replay: nothing is applied, every submitted message
		// counts as filtered.
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return &BatchResult{
			Applied:            false,
			DuplicatesFiltered: len(messages),
		}, nil
	}

	toolCallIDs, signatures, err := existingDedupState(ctx, tx, conversationID)
	if err != nil {
		return nil, err
	}

	fresh := filterDuplicates(messages, toolCallIDs, signatures)
	filtered := len(messages) - len(fresh)

	now := time.Now().UTC()
	seq, err := nextSeq(ctx, tx, conversationID)
	if err != nil {
		return nil, err
	}

	applied := make([]model.Message, 0, len(fresh))
	for _, msg := range fresh {
		if msg.ID == "" {
			msg.ID = uuid.New().String()
		}
		msg.Timestamp = now
		if err := insertMessage(ctx, tx, conversationID, seq, batchID, &msg); err != nil {
			return nil, err
		}
		seq++
		applied = append(applied, msg)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO batches (conversation_id, batch_id, message_count, created_at) VALUES (?, ?, ?, ?)",
		conversationID, batchID, len(applied), now); err != nil {
		return nil, fmt.Errorf("could not record batch: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE conversations SET updated_at = ? WHERE id = ?", now, conversationID); err != nil {
		return nil, fmt.Errorf("could not update conversation timestamp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &BatchResult{
		Applied:            true,
		Messages:           applied,
		DuplicatesFiltered: filtered,
	}, nil
}

func batchExists(ctx context.Context, tx *sql.Tx, conversationID, batchID string) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM batches WHERE conversation_id = ? AND batch_id = ?",
		conversationID, batchID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func nextSeq(ctx context.Context, tx *sql.Tx, conversationID string) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), -1) + 1 FROM messages WHERE conversation_id = ?",
		conversationID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("could not compute next sequence: %w", err)
	}
	return seq, nil
}

// existingDedupState loads the tool_call_ids of persisted tool messages and
// the tool-call signatures of persisted assistant messages.
func existingDedupState(ctx context.Context, tx *sql.Tx, conversationID string) (map[string]bool, map[string]bool, error) {
	toolCallIDs := make(map[string]bool)
	signatures := make(map[string]bool)

	rows, err := tx.QueryContext(ctx, `
		SELECT role, tool_call_id, tool_calls
		FROM messages
		WHERE conversation_id = ? AND (tool_call_id IS NOT NULL OR tool_calls IS NOT NULL)
	`, conversationID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		var toolCallID, toolCallsJSON sql.NullString
		if err := rows.Scan(&role, &toolCallID, &toolCallsJSON); err != nil {
			return nil, nil, err
		}
		if role == model.RoleTool && toolCallID.Valid {
			toolCallIDs[toolCallID.String] = true
		}
		if role == model.RoleAssistant && toolCallsJSON.Valid {
			var calls []model.ToolCall
			if err := json.Unmarshal([]byte(toolCallsJSON.String), &calls); err == nil {
				if sig := toolCallSignature(calls); sig != "" {
					signatures[sig] = true
				}
			}
		}
	}
	return toolCallIDs, signatures, rows.Err()
}

// filterDuplicates drops tool messages whose tool_call_id was already
// persisted and assistant messages whose exact tool-call set was already
// persisted. Both sets are extended as the batch is walked, so duplicates
// within one batch are filtered too.
func filterDuplicates(messages []model.Message, toolCallIDs, signatures map[string]bool) []model.Message {
	fresh := make([]model.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == model.RoleTool && msg.ToolCallID != "" {
			if toolCallIDs[msg.ToolCallID] {
				continue
			}
			toolCallIDs[msg.ToolCallID] = true
		}
		if msg.Role == model.RoleAssistant && len(msg.ToolCalls) > 0 {
			sig := toolCallSignature(msg.ToolCalls)
			if signatures[sig] {
				continue
			}
			signatures[sig] = true
		}
		fresh = append(fresh, msg)
	}
	return fresh
}

// toolCallSignature identifies an assistant message's tool-call set
// independent of ordering.
func toolCallSignature(calls []model.ToolCall) string {
	parts := make([]string, 0, len(calls))
	for _, call := range calls {
		name := call.Name
		if name == "" {
			name = "unknown"
		}
		parts = append(parts, call.ID+":"+name)
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

func insertMessage(ctx context.Context, tx *sql.Tx, conversationID string, seq int64, batchID string, msg *model.Message) error {
	// Assistant messages that only carry tool calls persist NULL content.
	var content sql.NullString
	if msg.Content != "" || len(msg.ToolCalls) == 0 {
		content = sql.NullString{String: msg.Content, Valid: true}
	}

	var reasoning sql.NullString
	if msg.Reasoning != "" {
		reasoning = sql.NullString{String: msg.Reasoning, Valid: true}
	}

	var toolCalls sql.NullString
	if len(msg.ToolCalls) > 0 {
		encoded, err := json.Marshal(msg.ToolCalls)
		if err != nil {
			return fmt.Errorf("could not encode tool calls: %w", err)
		}
		toolCalls = sql.NullString{String: string(encoded), Valid: true}
	}

	var toolCallID, name, batch sql.NullString
	if msg.ToolCallID != "" {
		toolCallID = sql.NullString{String: msg.ToolCallID, Valid: true}
	}
	if msg.Name != "" {
		name = sql.NullString{String: msg.Name, Valid: true}
	}
	if batchID != "" {
		batch = sql.NullString{String: batchID, Valid: true}
	}

	query := `
		INSERT INTO messages (id, conversation_id, seq, role, content, reasoning, tool_calls, tool_call_id, name, batch_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(ctx, query,
		msg.ID, conversationID, seq, msg.Role, content, reasoning, toolCalls, toolCallID, name, batch, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("could not insert message: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (model.Message, error) {
	var msg model.Message
	var content, reasoning, toolCallsJSON, toolCallID, name sql.NullString

	if err := row.Scan(&msg.ID, &msg.Role, &content, &reasoning, &toolCallsJSON,
		&toolCallID, &name, &msg.Timestamp); err != nil {
		return msg, err
	}

	if content.Valid {
		msg.Content = content.String
	}
	if reasoning.Valid {
		msg.Reasoning = reasoning.String
	}
	if toolCallsJSON.Valid {
		if err := json.Unmarshal([]byte(toolCallsJSON.String), &msg.ToolCalls); err != nil {
			return msg, fmt.Errorf("could not decode tool calls: %w", err)
		}
	}
	if toolCallID.Valid {
		msg.ToolCallID = toolCallID.String
	}
	if name.Valid {
		msg.Name = name.String
	}
	return msg, nil
}
