package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Import the sqlite3 driver.
)

// InitDB connects to the SQLite database and creates the schema.
func InitDB(dataSourceName string) (*sql.DB, error) {
	// Ensure the directory for the database file exists.
	dir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dataSourceName+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Enable WAL mode for better concurrency.
	// This allows readers to not block writers.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		slog.Warn("Failed to enable WAL mode for SQLite, continuing without it.", "error", err)
	}

	if err := CreateTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// CreateTables executes the SQL statements to create the database schema.
// Exported so tests can build the schema against an in-memory database.
func CreateTables(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			model TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_conversations_user_id_updated_at ON conversations(user_id, updated_at DESC);

		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('system', 'user', 'assistant', 'tool')),
			content TEXT,
			reasoning TEXT,
			tool_calls TEXT,
			tool_call_id TEXT,
			name TEXT,
			batch_id TEXT,
			timestamp DATETIME NOT NULL,
			FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE,
			UNIQUE (conversation_id, seq)
		);
		CREATE INDEX IF NOT EXISTS idx_messages_conversation_id_seq ON messages(conversation_id, seq);
		CREATE INDEX IF NOT EXISTS idx_messages_tool_call_id ON messages(conversation_id, tool_call_id);

		CREATE TABLE IF NOT EXISTS batches (
			conversation_id TEXT NOT NULL,
			batch_id TEXT NOT NULL,
			message_count INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (conversation_id, batch_id),
			FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY,
			parent_id TEXT,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (parent_id) REFERENCES folders(id) ON DELETE SET NULL
		);

		CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			folder_id TEXT,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			metadata TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (folder_id) REFERENCES folders(id) ON DELETE SET NULL
		);
		CREATE INDEX IF NOT EXISTS idx_notes_folder_id ON notes(folder_id);
		CREATE INDEX IF NOT EXISTS idx_notes_title ON notes(title);
	`
	_, err := db.Exec(schema)
	return err
}
