package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/finfacil/internal/config"
	"github.com/Veraticus/finfacil/internal/dialog"
	"github.com/Veraticus/finfacil/internal/storage"
)

// stores bundles the document backend with the stores built on it.
type stores struct {
	docs       storage.DocumentStore
	categories *storage.CategoryStore
	ledger     *storage.LedgerStore
}

func (s *stores) Close() error {
	return s.docs.Close()
}

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// openStores opens the configured backend, migrating SQLite databases first.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	var docs storage.DocumentStore

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := storage.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		docs = db
	default:
		dir, err := storage.NewJSONFileStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		docs = dir
	}

	slog.Debug("opened storage",
		"backend", cfg.Storage.Backend,
		"data_dir", cfg.Storage.DataDir)

	return &stores{
		docs:       docs,
		categories: storage.NewCategoryStore(docs, cfg.Categories.CategoryDefaults()),
		ledger:     storage.NewLedgerStore(docs),
	}, nil
}

func newEngine(s *stores) *dialog.Engine {
	return dialog.NewEngine(s.categories, s.ledger)
}
