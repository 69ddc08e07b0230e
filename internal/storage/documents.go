package storage

import (
	"context"
	"fmt"
)

// Document names one persisted mapping of user id to value.
type Document string

// Documents written by the stores.
const (
	DocBalances          Document = "balances"
	DocIncomeCategories  Document = "income_categories"
	DocExpenseCategories Document = "expense_categories"
	DocIncomeRecords     Document = "income_records"
	DocExpenseRecords    Document = "expense_records"
	DocSequences         Document = "sequences"
)

// AllDocuments lists every document in a stable order.
var AllDocuments = []Document{
	DocBalances,
	DocIncomeCategories,
	DocExpenseCategories,
	DocIncomeRecords,
	DocExpenseRecords,
	DocSequences,
}

// Valid reports whether d is one of AllDocuments.
func (d Document) Valid() bool {
	for _, known := range AllDocuments {
		if d == known {
			return true
		}
	}
	return false
}

// DocumentStore loads and saves whole documents. Load leaves v untouched when the
// document does not exist yet; Save replaces the document.
type DocumentStore interface {
	Load(ctx context.Context, doc Document, v any) error
	Save(ctx context.Context, doc Document, v any) error
	Close() error
}

func validateDocument(ctx context.Context, doc Document) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if !doc.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownDocument, doc)
	}
	return nil
}

// loadMap reads doc as a map, returning an empty map for missing documents.
func loadMap[T any](ctx context.Context, docs DocumentStore, doc Document) (map[string]T, error) {
	out := make(map[string]T)
	if err := docs.Load(ctx, doc, &out); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", doc, err)
	}
	if out == nil {
		out = make(map[string]T)
	}
	return out, nil
}

func saveMap[T any](ctx context.Context, docs DocumentStore, doc Document, m map[string]T) error {
	if err := docs.Save(ctx, doc, m); err != nil {
		return fmt.Errorf("failed to save %s: %w", doc, err)
	}
	return nil
}
