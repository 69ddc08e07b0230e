// Package testutil provides test fixtures for code that needs real stores: a document
// backend in a temporary directory and a fluent builder for seeding user data.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/finfacil/internal/storage"
)

// Backend selects the document store behind a TestStores.
type Backend string

// Supported test backends.
const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

// TestStores bundles a document store with the stores built on it.
type TestStores struct {
	Docs       storage.DocumentStore
	Categories *storage.CategoryStore
	Ledger     *storage.LedgerStore
	Dir        string
	t          *testing.T
}

// SetupTestStores creates stores under t.TempDir(). SQLite databases are migrated and
// every store is closed when the test ends.
//
// Example:
//
//	st := testutil.SetupTestStores(t, testutil.BackendSQLite)
//	testutil.NewLedgerBuilder(t, "42").WithIncome("300.50", "SALARIO", "01/06/2024").Build(st.Ledger)
func SetupTestStores(t *testing.T, backend Backend) *TestStores {
	t.Helper()
	dir := t.TempDir()

	var docs storage.DocumentStore
	switch backend {
	case BackendSQLite:
		db, err := storage.NewSQLiteStore(filepath.Join(dir, "test.db"))
		if err != nil {
			t.Fatalf("failed to create test database: %v", err)
		}
		if err := db.Migrate(context.Background()); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		docs = db
	default:
		files, err := storage.NewJSONFileStore(dir)
		if err != nil {
			t.Fatalf("failed to create test data directory: %v", err)
		}
		docs = files
	}

	t.Cleanup(func() {
		_ = docs.Close()
	})

	return &TestStores{
		Docs:       docs,
		Categories: storage.NewCategoryStore(docs, storage.DefaultCategoryDefaults()),
		Ledger:     storage.NewLedgerStore(docs),
		Dir:        dir,
		t:          t,
	}
}
