// Package storage provides the ledger's SQLite persistence layer.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// Storage errors.
var (
	ErrNilContext          = errors.New("context cannot be nil")
	ErrEmptyString         = errors.New("string parameter cannot be empty")
	ErrStoreUnavailable    = errors.New("ledger store unavailable")
	ErrStoreClosed         = errors.New("ledger store is closed")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidMonth        = errors.New("month must be between 1 and 12")
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

// validateTransaction checks a transaction before insertion. Only the date
// is always required; the rest is checked in strict mode.
func validateTransaction(txn model.Transaction, strict bool) error {
	if strings.TrimSpace(txn.Date) == "" {
		return fmt.Errorf("%w: missing date", ErrInvalidInput)
	}
	if !strict {
		return nil
	}

	if err := validateDate(txn.Date); err != nil {
		return err
	}
	if strings.TrimSpace(txn.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidInput)
	}
	if math.IsNaN(txn.Amount) || math.IsInf(txn.Amount, 0) || txn.Amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive magnitude, got %v", ErrInvalidInput, txn.Amount)
	}
	if !txn.Type.IsValid() {
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, txn.Type)
	}
	return nil
}

// validateDate requires the zero-padded YYYY-MM-DD layout.
func validateDate(date string) error {
	parsed, err := time.Parse(model.DateLayout, date)
	if err != nil || parsed.Format(model.DateLayout) != date {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, date)
	}
	return nil
}

// validateCategory checks a category before insertion.
func validateCategory(name string, categoryType model.CategoryType, strict bool) error {
	if !strict {
		return nil
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: missing category name", ErrInvalidInput)
	}
	if !categoryType.IsValid() {
		return fmt.Errorf("%w: unknown category type %q", ErrInvalidInput, categoryType)
	}
	return nil
}

// isConstraintViolation reports whether err is a UNIQUE or other constraint failure.
func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrConstraint ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
