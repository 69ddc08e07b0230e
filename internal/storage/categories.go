package storage

import (
	"context"
	"log/slog"
	"slices"
	"sort"

	"github.com/Veraticus/finfacil/internal/model"
	"github.com/Veraticus/finfacil/internal/textnorm"
)

// CategoryDefaults are the categories every user starts with, in display order.
type CategoryDefaults struct {
	Expense []string
	Income  []string
}

// DefaultCategoryDefaults returns the stock defaults.
func DefaultCategoryDefaults() CategoryDefaults {
	return CategoryDefaults{
		Expense: []string{"TRANSPORTE", "MERCADO", "ROUPAS"},
		Income:  []string{"SALARIO", "EXTRAS"},
	}
}

// CategoryStore manages the per-user category lists of both namespaces.
type CategoryStore struct {
	docs     DocumentStore
	defaults CategoryDefaults
}

// NewCategoryStore creates a category store. Empty default lists fall back to the stock ones.
func NewCategoryStore(docs DocumentStore, defaults CategoryDefaults) *CategoryStore {
	stock := DefaultCategoryDefaults()
	if len(defaults.Expense) == 0 {
		defaults.Expense = stock.Expense
	}
	if len(defaults.Income) == 0 {
		defaults.Income = stock.Income
	}
	return &CategoryStore{docs: docs, defaults: defaults}
}

func documentFor(ns model.CategoryType) Document {
	if ns == model.CategoryTypeIncome {
		return DocIncomeCategories
	}
	return DocExpenseCategories
}

// Defaults returns a copy of the default list for ns.
func (s *CategoryStore) Defaults(ns model.CategoryType) []string {
	if ns == model.CategoryTypeIncome {
		return slices.Clone(s.defaults.Income)
	}
	return slices.Clone(s.defaults.Expense)
}

// Categories returns the user's list for ns after repairing it: defaults come first in their
// fixed order, the remaining entries follow sorted descending, and numeric-looking entries
// are dropped. The document is written only when the repaired list differs from what was
// stored.
func (s *CategoryStore) Categories(ctx context.Context, userID string, ns model.CategoryType) ([]string, error) {
	if err := s.validate(ctx, userID, ns); err != nil {
		return nil, err
	}

	doc := documentFor(ns)
	all, err := loadMap[[]string](ctx, s.docs, doc)
	if err != nil {
		return nil, err
	}

	stored, known := all[userID]
	repaired := s.repair(stored, ns)
	if known && slices.Equal(stored, repaired) {
		return repaired, nil
	}

	all[userID] = repaired
	if err := saveMap(ctx, s.docs, doc, all); err != nil {
		return nil, err
	}
	slog.Debug("repaired category list",
		"user_id", userID,
		"namespace", ns,
		"before", len(stored),
		"after", len(repaired))
	return slices.Clone(repaired), nil
}

// PeekCategories returns the stored list for ns, or the defaults for unknown users. It never
// writes.
func (s *CategoryStore) PeekCategories(ctx context.Context, userID string, ns model.CategoryType) ([]string, error) {
	if err := s.validate(ctx, userID, ns); err != nil {
		return nil, err
	}

	all, err := loadMap[[]string](ctx, s.docs, documentFor(ns))
	if err != nil {
		return nil, err
	}
	if stored, ok := all[userID]; ok {
		return slices.Clone(stored), nil
	}
	return s.Defaults(ns), nil
}

// ViewCategories returns the same list Categories would, without persisting the repair.
func (s *CategoryStore) ViewCategories(ctx context.Context, userID string, ns model.CategoryType) ([]string, error) {
	if err := s.validate(ctx, userID, ns); err != nil {
		return nil, err
	}

	all, err := loadMap[[]string](ctx, s.docs, documentFor(ns))
	if err != nil {
		return nil, err
	}
	return s.repair(all[userID], ns), nil
}

// SetCategories replaces the user's list for ns verbatim.
func (s *CategoryStore) SetCategories(ctx context.Context, userID string, ns model.CategoryType, list []string) error {
	if err := s.validate(ctx, userID, ns); err != nil {
		return err
	}

	doc := documentFor(ns)
	all, err := loadMap[[]string](ctx, s.docs, doc)
	if err != nil {
		return err
	}
	if list == nil {
		list = []string{}
	}
	all[userID] = slices.Clone(list)
	return saveMap(ctx, s.docs, doc, all)
}

// Resolve finds the display string matching input after normalization. It never writes.
func (s *CategoryStore) Resolve(ctx context.Context, userID string, ns model.CategoryType, input string) (string, bool, error) {
	list, err := s.ViewCategories(ctx, userID, ns)
	if err != nil {
		return "", false, err
	}
	if i := textnorm.IndexOf(list, input); i >= 0 {
		return list[i], true, nil
	}
	return "", false, nil
}

func (s *CategoryStore) repair(stored []string, ns model.CategoryType) []string {
	defaults := s.Defaults(ns)

	var extras []string
	for _, c := range stored {
		if textnorm.IndexOf(defaults, c) < 0 {
			extras = append(extras, c)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(extras)))

	merged := make([]string, 0, len(defaults)+len(extras))
	for _, c := range append(defaults, extras...) {
		if textnorm.IsValidCategory(c) {
			merged = append(merged, c)
		}
	}
	return merged
}

func (s *CategoryStore) validate(ctx context.Context, userID string, ns model.CategoryType) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	return validateNamespace(ns)
}
