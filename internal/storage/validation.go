// Package storage persists balances, categories and records as per-purpose documents
// keyed by user id.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finfacil/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrUnknownDocument    = errors.New("unknown document")
	ErrInvalidCategoryNS  = errors.New("invalid category namespace")
	ErrNonPositiveAmount  = errors.New("amount must be greater than zero")
	ErrSchemaVersionDrift = errors.New("database schema version mismatch")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateNamespace(ns model.CategoryType) error {
	if !ns.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategoryNS, ns)
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrNonPositiveAmount, amount.String())
	}
	return nil
}
