package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore keeps documents as rows of the documents table.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// NewSQLiteStore opens (creating if needed) the database at dbPath. Call Migrate before use.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load decodes the stored body of doc into v. A missing row leaves v untouched.
func (s *SQLiteStore) Load(ctx context.Context, doc Document, v any) error {
	if err := validateDocument(ctx, doc); err != nil {
		return err
	}

	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE name = ?`, string(doc)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", doc, err)
	}
	if body == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", doc, err)
	}
	return nil
}

// Save replaces the stored body of doc.
func (s *SQLiteStore) Save(ctx context.Context, doc Document, v any) error {
	if err := validateDocument(ctx, doc); err != nil {
		return err
	}

	body, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", doc, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`, string(doc), string(body))
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", doc, err)
	}

	slog.Debug("saved document", "document", doc, "bytes", len(body))
	return nil
}

// CopyDocuments copies every existing document from src to dst, returning the names copied.
// Documents absent in src are skipped so dst keeps whatever it had.
func CopyDocuments(ctx context.Context, src, dst DocumentStore) ([]Document, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var copied []Document
	for _, doc := range AllDocuments {
		var raw json.RawMessage
		if err := src.Load(ctx, doc, &raw); err != nil {
			return copied, fmt.Errorf("failed to read %s: %w", doc, err)
		}
		if len(raw) == 0 {
			continue
		}
		if err := dst.Save(ctx, doc, raw); err != nil {
			return copied, fmt.Errorf("failed to write %s: %w", doc, err)
		}
		copied = append(copied, doc)
	}
	return copied, nil
}
