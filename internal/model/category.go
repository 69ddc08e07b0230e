// Package model holds the records a user builds up through the chat: categories, income
// entries and expense entries.
package model

import (
	"fmt"
	"strings"
)

// CategoryType names one of the two category namespaces.
type CategoryType string

const (
	// CategoryTypeIncome holds the categories offered when recording income.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense holds the categories offered when recording expenses.
	CategoryTypeExpense CategoryType = "expense"
)

// AllCategories is the report filter sentinel meaning "every category". It can never be
// created as a real category.
const AllCategories = "GERAL"

// Valid reports whether t is a known namespace.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// ParseCategoryType accepts the namespace names used on the command line.
func ParseCategoryType(s string) (CategoryType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "entrada", "entradas":
		return CategoryTypeIncome, nil
	case "expense", "despesa", "despesas":
		return CategoryTypeExpense, nil
	default:
		return "", fmt.Errorf("unknown category type %q: want income or expense", s)
	}
}
