package dialog

import (
	"context"
	"fmt"

	"github.com/Veraticus/finfacil/internal/model"
)

func (e *Engine) cmdStart(ctx context.Context, userID string) ([]Reply, error) {
	returning, err := e.ledger.HasBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return []Reply{greetingReply(returning)}, nil
}

func (e *Engine) cmdHelp(_ context.Context, _ string) ([]Reply, error) {
	return []Reply{helpReply()}, nil
}

func (e *Engine) cmdIncomeMenu(_ context.Context, _ string) ([]Reply, error) {
	return []Reply{incomeMenuReply()}, nil
}

func (e *Engine) cmdExpenseMenu(_ context.Context, _ string) ([]Reply, error) {
	return []Reply{expenseMenuReply()}, nil
}

func (e *Engine) cmdReportMenu(_ context.Context, _ string) ([]Reply, error) {
	return []Reply{reportMenuReply()}, nil
}

func (e *Engine) cmdBalance(ctx context.Context, userID string) ([]Reply, error) {
	balance, err := e.ledger.Balance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance: %w", err)
	}
	return []Reply{balanceReply(balance)}, nil
}

func (e *Engine) cmdListIncomeCategories(ctx context.Context, userID string) ([]Reply, error) {
	return e.listCategories(ctx, userID, model.CategoryTypeIncome)
}

func (e *Engine) cmdListExpenseCategories(ctx context.Context, userID string) ([]Reply, error) {
	return e.listCategories(ctx, userID, model.CategoryTypeExpense)
}

func (e *Engine) listCategories(ctx context.Context, userID string, ns model.CategoryType) ([]Reply, error) {
	list, err := e.categories.Categories(ctx, userID, ns)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s categories: %w", ns, err)
	}
	return []Reply{categoryListReply(ns, list)}, nil
}
