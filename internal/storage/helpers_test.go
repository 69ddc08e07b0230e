package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestStore returns a JSON file store rooted in a fresh temp dir.
func createTestStore(t *testing.T) *JSONFileStore {
	t.Helper()
	store, err := NewJSONFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

// createTestSQLiteStore returns a migrated SQLite store in a fresh temp dir.
func createTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

// countingStore records how often each document is saved.
type countingStore struct {
	DocumentStore
	saves map[Document]int
	mu    sync.Mutex
}

func newCountingStore(inner DocumentStore) *countingStore {
	return &countingStore{DocumentStore: inner, saves: make(map[Document]int)}
}

func (c *countingStore) Save(ctx context.Context, doc Document, v any) error {
	c.mu.Lock()
	c.saves[doc]++
	c.mu.Unlock()
	return c.DocumentStore.Save(ctx, doc, v)
}

func (c *countingStore) count(doc Document) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves[doc]
}
