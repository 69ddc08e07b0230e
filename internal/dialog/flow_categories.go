package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Veraticus/finfacil/internal/model"
	"github.com/Veraticus/finfacil/internal/textnorm"
)

func (e *Engine) startAddExpenseCategory(ctx context.Context, s *Session, _ input) (outcome, error) {
	return e.promptCategoryName(ctx, s, model.CategoryTypeExpense, addCategoryPrompt)
}

func (e *Engine) startAddIncomeCategory(ctx context.Context, s *Session, _ input) (outcome, error) {
	return e.promptCategoryName(ctx, s, model.CategoryTypeIncome, addCategoryPrompt)
}

func (e *Engine) startRemoveExpenseCategory(ctx context.Context, s *Session, _ input) (outcome, error) {
	return e.promptCategoryName(ctx, s, model.CategoryTypeExpense, removeCategoryPrompt)
}

func (e *Engine) startRemoveIncomeCategory(ctx context.Context, s *Session, _ input) (outcome, error) {
	return e.promptCategoryName(ctx, s, model.CategoryTypeIncome, removeCategoryPrompt)
}

func (e *Engine) promptCategoryName(ctx context.Context, s *Session, ns model.CategoryType,
	prompt func(model.CategoryType, []string) Reply) (outcome, error) {
	list, err := e.categories.ViewCategories(ctx, s.UserID, ns)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to load %s categories: %w", ns, err)
	}
	s.Step = StepAskName
	return next(prompt(ns, list)), nil
}

func (e *Engine) addExpenseCategoryName(ctx context.Context, s *Session, in input) (outcome, error) {
	return e.addCategory(ctx, s, model.CategoryTypeExpense, textnorm.Normalize(in.text))
}

func (e *Engine) addIncomeCategoryName(ctx context.Context, s *Session, in input) (outcome, error) {
	return e.addCategory(ctx, s, model.CategoryTypeIncome, in.text)
}

// addCategory stores name in ns. Expense names arrive normalized; income names are kept as
// typed.
func (e *Engine) addCategory(ctx context.Context, s *Session, ns model.CategoryType, name string) (outcome, error) {
	name = strings.TrimSpace(name)
	switch {
	case textnorm.Normalize(name) == model.AllCategories:
		return next(text(msgReservedName)), nil
	case name == "" || !textnorm.IsValidCategory(name):
		return next(text(msgNumericName)), nil
	}

	list, err := e.categories.ViewCategories(ctx, s.UserID, ns)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to load %s categories: %w", ns, err)
	}
	if textnorm.IndexOf(list, name) >= 0 {
		return next(categoryExists(list)), nil
	}

	list = append(list, name)
	if err := e.categories.SetCategories(ctx, s.UserID, ns, list); err != nil {
		return outcome{}, fmt.Errorf("failed to save %s categories: %w", ns, err)
	}

	slog.Info("category added", "user_id", s.UserID, "namespace", ns, "category", name)
	return finish(categoryAdded(name, list), helpReply()), nil
}

func (e *Engine) removeExpenseCategoryName(ctx context.Context, s *Session, in input) (outcome, error) {
	if !textnorm.IsValidCategory(in.text) {
		return next(text(msgNumericName)), nil
	}

	list, err := e.categories.ViewCategories(ctx, s.UserID, model.CategoryTypeExpense)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to load expense categories: %w", err)
	}
	if textnorm.IndexOf(list, in.text) < 0 {
		return next(categoryNotFound()), nil
	}

	category := textnorm.Normalize(in.text)
	count, err := e.ledger.CountExpensesByCategory(ctx, s.UserID, category)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to count expenses: %w", err)
	}
	if count > 0 {
		s.PendingRemoval = category
		s.Step = StepConfirmRemoval
		return next(confirmExpenseRemoval(category, count)), nil
	}

	remaining, err := e.dropCategory(ctx, s.UserID, model.CategoryTypeExpense, list, category)
	if err != nil {
		return outcome{}, err
	}
	return finish(categoryRemoved(category, remaining), helpReply()), nil
}

func (e *Engine) confirmExpenseCategoryRemoval(ctx context.Context, s *Session, in input) (outcome, error) {
	confirmed, err := parseYesNo(in.text, false)
	if err != nil {
		return next(withKeyboard(msgConfirmBad, yesNoKeyboard)), nil
	}
	if !confirmed {
		return finish(clearKeyboard(msgCancelled), helpReply()), nil
	}
	if s.PendingRemoval == "" {
		return outcome{}, missing("category to remove")
	}

	list, err := e.categories.ViewCategories(ctx, s.UserID, model.CategoryTypeExpense)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to load expense categories: %w", err)
	}
	if _, err := e.dropCategory(ctx, s.UserID, model.CategoryTypeExpense, list, s.PendingRemoval); err != nil {
		return outcome{}, err
	}
	removed, err := e.ledger.RemoveExpensesByCategory(ctx, s.UserID, s.PendingRemoval)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to remove expenses: %w", err)
	}

	return finish(categoryRemovedWithExpenses(s.PendingRemoval, removed), helpReply()), nil
}

func (e *Engine) removeIncomeCategoryName(ctx context.Context, s *Session, in input) (outcome, error) {
	if !textnorm.IsValidCategory(in.text) {
		return next(text(msgNumericName)), nil
	}

	stored, ok, err := e.categories.Resolve(ctx, s.UserID, model.CategoryTypeIncome, in.text)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to resolve income category: %w", err)
	}
	if !ok {
		return next(categoryNotFound()), nil
	}

	s.PendingRemoval = stored
	s.Step = StepConfirmRemoval
	return next(confirmIncomeRemoval(stored)), nil
}

// confirmIncomeCategoryRemoval removes only the category; income already recorded under
// it stays.
func (e *Engine) confirmIncomeCategoryRemoval(ctx context.Context, s *Session, in input) (outcome, error) {
	confirmed, err := parseYesNo(in.text, false)
	if err != nil {
		return next(withKeyboard(msgConfirmBad, yesNoKeyboard)), nil
	}
	if !confirmed {
		return finish(clearKeyboard(msgCancelled), helpReply()), nil
	}
	if s.PendingRemoval == "" {
		return outcome{}, missing("category to remove")
	}

	list, err := e.categories.ViewCategories(ctx, s.UserID, model.CategoryTypeIncome)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to load income categories: %w", err)
	}
	remaining, err := e.dropCategory(ctx, s.UserID, model.CategoryTypeIncome, list, s.PendingRemoval)
	if err != nil {
		return outcome{}, err
	}

	return finish(categoryRemoved(s.PendingRemoval, remaining), helpReply()), nil
}

func (e *Engine) dropCategory(ctx context.Context, userID string, ns model.CategoryType, list []string, category string) ([]string, error) {
	remaining := slices.DeleteFunc(slices.Clone(list), func(c string) bool {
		return textnorm.EqualFold(c, category)
	})
	if err := e.categories.SetCategories(ctx, userID, ns, remaining); err != nil {
		return nil, fmt.Errorf("failed to save %s categories: %w", ns, err)
	}
	slog.Info("category removed", "user_id", userID, "namespace", ns, "category", category)
	return remaining, nil
}
